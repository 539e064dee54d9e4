package preference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pitabwire/assetattr/internal/config"
)

// ParentInheritanceKey is the storage key of the inheritance display toggle.
const ParentInheritanceKey = "enableParentInheritance"

// WriteRecorder observes successful preference writes.
type WriteRecorder interface {
	RecordPreferenceWrite(key string)
}

// Preferences reads and writes typed preferences over a KV backend.
type Preferences struct {
	kv       KV
	logger   *zap.Logger
	recorder WriteRecorder

	// Serialises toggles so two concurrent toggles do not read the same value.
	mu sync.Mutex
}

// Option configures Preferences.
type Option func(*Preferences)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Preferences) { p.logger = l }
}

// WithRecorder sets the write recorder.
func WithRecorder(r WriteRecorder) Option {
	return func(p *Preferences) { p.recorder = r }
}

// New wraps a KV backend.
func New(kv KV, opts ...Option) *Preferences {
	p := &Preferences{kv: kv, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParentInheritance reports whether inherited attributes should be shown.
// It defaults to true when the value is absent, unparseable, or the backend
// fails.
func (p *Preferences) ParentInheritance(ctx context.Context) bool {
	raw, err := p.kv.Get(ctx, ParentInheritanceKey)
	if errors.Is(err, ErrNotFound) {
		return true
	}
	if err != nil {
		p.logger.Warn("reading preference failed, using default",
			zap.String("key", ParentInheritanceKey),
			zap.Error(err),
		)
		return true
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	p.logger.Warn("malformed preference value, using default",
		zap.String("key", ParentInheritanceKey),
		zap.String("value", raw),
	)
	return true
}

// SetParentInheritance persists the toggle.
func (p *Preferences) SetParentInheritance(ctx context.Context, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(ctx, enabled)
}

// ToggleParentInheritance flips the toggle, persists it, and returns the new
// value.
func (p *Preferences) ToggleParentInheritance(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := !p.ParentInheritance(ctx)
	if err := p.write(ctx, next); err != nil {
		return !next, err
	}
	return next, nil
}

// HealthCheck delegates to the backend when it supports one.
func (p *Preferences) HealthCheck(ctx context.Context) error {
	if hc, ok := p.kv.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (p *Preferences) write(ctx context.Context, enabled bool) error {
	if err := p.kv.Set(ctx, ParentInheritanceKey, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("write %s: %w", ParentInheritanceKey, err)
	}
	if p.recorder != nil {
		p.recorder.RecordPreferenceWrite(ParentInheritanceKey)
	}
	p.logger.Info("preference updated",
		zap.String("key", ParentInheritanceKey),
		zap.Bool("value", enabled),
	)
	return nil
}

// Open builds the backend selected by cfg. The returned close function
// releases any connection the backend holds and is never nil.
func Open(ctx context.Context, cfg config.PreferencesConfig) (KV, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemoryKV(), func() {}, nil

	case config.DriverFile:
		return NewFileKV(cfg.Path), func() {}, nil

	case config.DriverRedis:
		addr := os.Getenv(cfg.AddrEnv)
		if addr == "" {
			return nil, nil, fmt.Errorf("redis address env %s is not set", cfg.AddrEnv)
		}
		client := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisKV(client, cfg.KeyPrefix), func() { client.Close() }, nil

	case config.DriverPostgres:
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			return nil, nil, fmt.Errorf("database url env %s is not set", cfg.DSNEnv)
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		kv := NewPgKV(pool, cfg.Table)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown preference driver %q", cfg.Driver)
}
