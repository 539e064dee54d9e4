package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pitabwire/assetattr/model"
)

// Mutation outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

// Recorder receives mutation and size observations. observability.Metrics
// satisfies it.
type Recorder interface {
	RecordMutation(operation, outcome string)
	SetCatalogEntities(kind string, count int)
}

type nopRecorder struct{}

func (nopRecorder) RecordMutation(string, string)  {}
func (nopRecorder) SetCatalogEntities(string, int) {}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation logs.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator replaces the uuid generator. Intended for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// Store is the attribute catalog: the attribute library, the category tree
// and the manufacturer registry, kept mutually consistent. Reads are lock-free
// against the last published snapshot. Writers are serialized and publish a
// complete new snapshot per operation.
type Store struct {
	snap atomic.Pointer[snapshot]
	mu   sync.Mutex // serializes writers

	seed     model.CatalogDefinition
	logger   *zap.Logger
	recorder Recorder
	newID    func() string
	validate *validator.Validate
}

// NewStore builds a store from seed data. The seed must be referentially
// consistent and acyclic.
func NewStore(seed model.CatalogDefinition, opts ...Option) (*Store, error) {
	s := &Store{
		seed:     seed.Clone(),
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		newID:    func() string { return uuid.New().String() },
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap := snapshotFromDefinition(s.seed)
	if problems := checkIntegrity(snap); len(problems) > 0 {
		return nil, model.NewInvalidInputError("seed data is inconsistent", problems...)
	}
	s.publish(snap)
	return s, nil
}

// Reset discards every mutation and restores the seed data.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := snapshotFromDefinition(s.seed)
	next.version = s.current().version + 1
	s.publish(next)
	s.recorder.RecordMutation("reset", OutcomeOK)
	s.logger.Info("catalog reset to seed", zap.Uint64("version", next.version))
}

// Version returns a counter that increases with every published mutation.
func (s *Store) Version() uint64 {
	return s.current().version
}

// Verify runs the integrity check against the current snapshot.
func (s *Store) Verify() error {
	if problems := checkIntegrity(s.current()); len(problems) > 0 {
		return &model.ErrorEnvelope{
			Code:    model.ErrInternalError,
			Message: "catalog integrity check failed",
			Details: problems,
		}
	}
	return nil
}

// Definition exports the current state in seed form.
func (s *Store) Definition() model.CatalogDefinition {
	return s.current().definition()
}

func (s *Store) current() *snapshot {
	return s.snap.Load()
}

func (s *Store) publish(next *snapshot) {
	s.snap.Store(next)
	s.recorder.SetCatalogEntities("attribute", len(next.attributes))
	s.recorder.SetCatalogEntities("category", len(next.categories))
	s.recorder.SetCatalogEntities("manufacturer", len(next.manufacturers))
}

// errNoChange lets a mutation report success without publishing.
var errNoChange = errors.New("no change")

// mutate applies fn to a private clone of the current snapshot and publishes
// the clone if fn succeeds and the result passes the integrity check. A
// failing fn leaves the published state untouched.
func (s *Store) mutate(ctx context.Context, op string, fn func(*snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current().clone()
	err := fn(next)
	if errors.Is(err, errNoChange) {
		s.recorder.RecordMutation(op, OutcomeOK)
		s.logger.Debug("catalog mutation made no change", zap.String("operation", op))
		return nil
	}
	if err != nil {
		s.recorder.RecordMutation(op, OutcomeRejected)
		s.logger.Warn("catalog mutation rejected", zap.String("operation", op), zap.Error(err))
		return err
	}

	if problems := checkIntegrity(next); len(problems) > 0 {
		s.recorder.RecordMutation(op, OutcomeRejected)
		s.logger.Error("catalog mutation broke integrity",
			zap.String("operation", op),
			zap.Int("problems", len(problems)),
			zap.String("first", problems[0].Message),
		)
		return &model.ErrorEnvelope{
			Code:    model.ErrInternalError,
			Message: fmt.Sprintf("%s would leave the catalog inconsistent", op),
			Details: problems,
		}
	}

	next.version++
	s.publish(next)
	s.recorder.RecordMutation(op, OutcomeOK)
	s.logger.Debug("catalog mutation applied", zap.String("operation", op), zap.Uint64("version", next.version))
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// checkInput runs struct validation and maps failures to INVALID_INPUT.
func (s *Store) checkInput(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.NewInvalidInputError(err.Error())
	}
	details := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		code := model.FieldInvalid
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			code = model.FieldRequired
		}
		details = append(details, model.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Code:    code,
			Message: fmt.Sprintf("failed %q check", fe.Tag()),
		})
	}
	return model.NewInvalidInputError(details[0].Field+" is invalid", details...)
}

// fieldPath turns "AttributeInput.Label" into "label" and
// "AttributeInput.DropdownOptions[1]" into "dropdown_options[1]".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	var b strings.Builder
	for i, r := range ns {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && ns[i-1] != '.' && ns[i-1] != '[' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// --- Reads ---

// Attribute returns a copy of the attribute with the given id.
func (s *Store) Attribute(id string) (model.Attribute, bool) {
	a, ok := s.current().attributes[id]
	if !ok {
		return model.Attribute{}, false
	}
	return a.Clone(), true
}

// Attributes returns every attribute in creation order.
func (s *Store) Attributes() []model.Attribute {
	snap := s.current()
	out := make([]model.Attribute, 0, len(snap.attributeOrder))
	for _, id := range snap.attributeOrder {
		out = append(out, snap.attributes[id].Clone())
	}
	return out
}

// Category returns a copy of the category with the given id.
func (s *Store) Category(id string) (model.Category, bool) {
	c, ok := s.current().categories[id]
	if !ok {
		return model.Category{}, false
	}
	return c.Clone(), true
}

// Categories returns every category in creation order.
func (s *Store) Categories() []model.Category {
	snap := s.current()
	out := make([]model.Category, 0, len(snap.categoryOrder))
	for _, id := range snap.categoryOrder {
		out = append(out, snap.categories[id].Clone())
	}
	return out
}

// Manufacturer returns a copy of the manufacturer with the given id.
func (s *Store) Manufacturer(id string) (model.Manufacturer, bool) {
	m, ok := s.current().manufacturers[id]
	if !ok {
		return model.Manufacturer{}, false
	}
	return m.Clone(), true
}

// Manufacturers returns every manufacturer in creation order.
func (s *Store) Manufacturers() []model.Manufacturer {
	snap := s.current()
	out := make([]model.Manufacturer, 0, len(snap.manufacturerOrder))
	for _, id := range snap.manufacturerOrder {
		out = append(out, snap.manufacturers[id].Clone())
	}
	return out
}
