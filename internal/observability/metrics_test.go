package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pitabwire/assetattr/internal/catalog"
	"github.com/pitabwire/assetattr/internal/preference"
	"github.com/pitabwire/assetattr/model"
)

// Compile-time checks that Metrics plugs into the engine and preferences.
var (
	_ catalog.Recorder         = (*Metrics)(nil)
	_ preference.WriteRecorder = (*Metrics)(nil)
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return InitMetrics(reg), reg
}

func TestInitMetrics_registersAllMetrics(t *testing.T) {
	m, reg := newTestMetrics(t)

	// Record a value for each metric so they appear in Gather.
	m.RecordHTTPRequest("GET", "/test", 200, time.Millisecond, 100)
	m.RecordMutation("add_attribute", catalog.OutcomeOK)
	m.SetCatalogEntities("attribute", 3)
	m.RecordRequestInvalid("/api/attributes")
	m.RecordPreferenceWrite(preference.ParentInheritanceKey)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	expected := []string{
		"assetattr_http_requests_total",
		"assetattr_http_request_duration_seconds",
		"assetattr_http_response_size_bytes",
		"assetattr_mutations_total",
		"assetattr_catalog_entities",
		"assetattr_request_validation_failures_total",
		"assetattr_preference_writes_total",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordHTTPRequest("GET", "/api/attributes/{id}", 200, 50*time.Millisecond, 1024)
	m.RecordHTTPRequest("GET", "/api/attributes/{id}", 200, 100*time.Millisecond, 2048)
	m.RecordHTTPRequest("DELETE", "/api/manufacturers/{id}", 409, 200*time.Millisecond, 256)

	if val := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/attributes/{id}", "200")); val != 2 {
		t.Errorf("GET requests = %v, want 2", val)
	}
	if val := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("DELETE", "/api/manufacturers/{id}", "409")); val != 1 {
		t.Errorf("DELETE requests = %v, want 1", val)
	}
}

func TestMetrics_asCatalogRecorder(t *testing.T) {
	m, _ := newTestMetrics(t)
	store, err := catalog.NewStore(catalogSeed(), catalog.WithRecorder(m))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if val := testutil.ToFloat64(m.CatalogEntities.WithLabelValues("category")); val != 1 {
		t.Errorf("category gauge = %v, want 1", val)
	}

	if err := store.TogglePreferred(t.Context(), "height"); err != nil {
		t.Fatalf("TogglePreferred() error = %v", err)
	}
	if err := store.ApplyAttribute(t.Context(), "height", "ghost"); err == nil {
		t.Fatal("ApplyAttribute() on unknown category should fail")
	}

	if val := testutil.ToFloat64(m.MutationsTotal.WithLabelValues("toggle_preferred", catalog.OutcomeOK)); val != 1 {
		t.Errorf("ok mutations = %v, want 1", val)
	}
	if val := testutil.ToFloat64(m.MutationsTotal.WithLabelValues("apply_attribute", catalog.OutcomeRejected)); val != 1 {
		t.Errorf("rejected mutations = %v, want 1", val)
	}
}

func TestRecordPreferenceWrite(t *testing.T) {
	m, _ := newTestMetrics(t)
	p := preference.New(preference.NewMemoryKV(), preference.WithRecorder(m))

	if _, err := p.ToggleParentInheritance(t.Context()); err != nil {
		t.Fatalf("ToggleParentInheritance() error = %v", err)
	}
	if val := testutil.ToFloat64(m.PreferenceWritesTotal.WithLabelValues(preference.ParentInheritanceKey)); val != 1 {
		t.Errorf("preference writes = %v, want 1", val)
	}
}

func TestMetrics_recordsReset(t *testing.T) {
	m, _ := newTestMetrics(t)
	store, err := catalog.NewStore(catalogSeed(), catalog.WithRecorder(m))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	store.Reset()
	store.Reset()
	if val := testutil.ToFloat64(m.MutationsTotal.WithLabelValues("reset", catalog.OutcomeOK)); val != 2 {
		t.Errorf("resets = %v, want 2", val)
	}
}

func TestMetricsMiddleware_recordsRequestMetrics(t *testing.T) {
	m, _ := newTestMetrics(t)

	// Build a chi router so route patterns are captured.
	r := chi.NewRouter()
	r.Use(m.MetricsMiddleware)
	r.Get("/api/categories/{id}/path", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories/boiler/path", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	val := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/categories/{id}/path", "200"))
	if val != 1 {
		t.Errorf("requests total = %v, want 1", val)
	}
	if count := testutil.CollectAndCount(m.HTTPResponseSizeBytes); count == 0 {
		t.Error("expected response size histogram to have observations")
	}
}

func TestMetricsMiddleware_mountedRouter(t *testing.T) {
	m, _ := newTestMetrics(t)

	api := chi.NewRouter()
	api.Delete("/attributes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r := chi.NewRouter()
	r.Use(m.MetricsMiddleware)
	r.Mount("/api", api)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/attributes/x", nil))

	val := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("DELETE", "/api/attributes/{id}", "404"))
	if val != 1 {
		t.Errorf("404 requests = %v, want 1", val)
	}
}

func TestMetricsMiddleware_fallsBackToPath(t *testing.T) {
	m, _ := newTestMetrics(t)

	// Use middleware directly without chi router.
	handler := m.MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw/path", nil))

	if val := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/raw/path", "200")); val != 1 {
		t.Errorf("raw path requests = %v, want 1", val)
	}
}

func TestHandler_servesMetrics(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.RecordMutation("reset", catalog.OutcomeOK)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `assetattr_mutations_total{operation="reset",outcome="ok"} 1`) {
		t.Errorf("metrics response missing mutation counter:\n%s", rec.Body.String())
	}
}

func TestHistogramBuckets(t *testing.T) {
	if len(httpDurationBuckets) != 11 {
		t.Errorf("httpDurationBuckets length = %d, want 11", len(httpDurationBuckets))
	}
	for i := 1; i < len(httpDurationBuckets); i++ {
		if httpDurationBuckets[i] <= httpDurationBuckets[i-1] {
			t.Errorf("httpDurationBuckets not sorted at index %d", i)
		}
	}
}

func catalogSeed() model.CatalogDefinition {
	return model.CatalogDefinition{
		Attributes: []model.Attribute{
			{ID: "height", Label: "Height", Type: model.AttributeTypeNumber, AppliedToCategories: []string{}},
		},
		Categories: []model.Category{{ID: "boiler", Name: "Boiler"}},
	}
}
