package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pitabwire/assetattr/internal/catalog"
	"github.com/pitabwire/assetattr/internal/config"
	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/internal/openapi"
	"github.com/pitabwire/assetattr/internal/preference"
)

// Dependencies holds all injected dependencies for the HTTP transport layer.
// Metrics and Gatherer are optional.
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       *catalog.Store
	Preferences *preference.Preferences
	API         *openapi.Index
	Metrics     *observability.Metrics
	Gatherer    prometheus.Gatherer
}

type handlers struct {
	store      *catalog.Store
	prefs      *preference.Preferences
	api        *openapi.Index
	metrics    *observability.Metrics
	maxBody    int64
	allowReset bool
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics endpoints sit outside
// the API group and skip the handler timeout.
func NewRouter(deps Dependencies) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{
		store:      deps.Store,
		prefs:      deps.Preferences,
		api:        deps.API,
		metrics:    deps.Metrics,
		maxBody:    deps.Config.Server.MaxBodyBytes,
		allowReset: deps.Config.Seed.AllowReset,
	}

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(observability.TracingMiddleware)
	r.Use(Recovery(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.MetricsMiddleware)
	}
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(SecurityHeaders)
	r.Use(RequestLogging(logger))

	r.Get("/health", observability.HandleHealth())
	checks := observability.ReadinessChecks{
		CatalogConsistent: deps.Store.Verify,
		OpenAPILoaded:     func() bool { return deps.API != nil },
	}
	if deps.Preferences != nil {
		checks.PreferenceStore = deps.Preferences
	}
	r.Get("/ready", observability.HandleReady(checks))
	if m := deps.Config.Observability.Metrics; m.Enabled && deps.Gatherer != nil {
		r.Method(http.MethodGet, m.Path, observability.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))

		r.Get("/openapi.json", h.openAPIDocument)

		r.Route("/attributes", func(r chi.Router) {
			r.Get("/", h.listAttributes)
			r.Post("/", h.addAttribute)
			r.Get("/{id}", h.getAttribute)
			r.Patch("/{id}", h.editAttribute)
			r.Delete("/{id}", h.deleteAttribute)
			r.Post("/{id}/preferred", h.togglePreferred)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.addCategory)
			r.Get("/{id}", h.getCategory)
			r.Patch("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
			r.Get("/{id}/path", h.getCategoryPath)
			r.Get("/{id}/inherited", h.getInheritedAttributes)
			r.Get("/{id}/attributes", h.getEffectiveAttributes)
			r.Put("/{id}/attributes/order", h.reorderAttributes)
			r.Put("/{id}/attributes/{attributeId}", h.applyAttribute)
			r.Delete("/{id}/attributes/{attributeId}", h.removeAttribute)
			r.Post("/{id}/attributes/{attributeId}/toggle", h.toggleAttribute)
		})

		r.Route("/manufacturers", func(r chi.Router) {
			r.Get("/", h.listManufacturers)
			r.Post("/", h.addManufacturer)
			r.Get("/{id}", h.getManufacturer)
			r.Patch("/{id}", h.editManufacturer)
			r.Delete("/{id}", h.deleteManufacturer)
			r.Post("/{id}/models", h.addModel)
			r.Patch("/{id}/models/{modelId}", h.editModel)
			r.Delete("/{id}/models/{modelId}", h.deleteModel)
			r.Put("/{id}/categories/{categoryId}", h.linkManufacturer)
			r.Delete("/{id}/categories/{categoryId}", h.unlinkManufacturer)
		})

		r.Route("/preferences/parent-inheritance", func(r chi.Router) {
			r.Get("/", h.getParentInheritance)
			r.Put("/", h.setParentInheritance)
			r.Post("/toggle", h.toggleParentInheritance)
		})

		r.Post("/admin/reset", h.resetCatalog)
	})

	return r
}
