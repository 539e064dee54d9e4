package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pitabwire/assetattr/internal/catalog"
	"github.com/pitabwire/assetattr/internal/config"
	"github.com/pitabwire/assetattr/internal/openapi"
	"github.com/pitabwire/assetattr/internal/seed"
)

func TestRouter_everyAPIRouteIsDocumented(t *testing.T) {
	s := newTestServer(t)
	router := s.handler.(chi.Routes)
	api, err := openapi.Load()
	if err != nil {
		t.Fatalf("openapi.Load() error = %v", err)
	}

	seen := map[string]bool{}
	err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api/") || route == "/api/openapi.json" {
			return nil
		}
		route = strings.TrimSuffix(route, "/")
		op, ok := api.Lookup(method, route)
		if !ok {
			return errors.New(method + " " + route + " has no documented operation")
		}
		seen[op.ID] = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != len(api.OperationIDs()) {
		for _, id := range api.OperationIDs() {
			if !seen[id] {
				t.Errorf("operation %s is documented but not routed", id)
			}
		}
	}
}

func TestRouter_requestIDEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/attributes", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	if got := w.Header().Get(middleware.RequestIDHeader); got != "req-42" {
		t.Errorf("X-Request-Id = %q, want req-42", got)
	}

	w = s.do(http.MethodGet, "/api/attributes", "")
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("generated request id should be echoed")
	}
}

func TestRouter_securityHeaders(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/categories", "")
	if w.Header().Get("X-Frame-Options") != "DENY" || w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("headers = %v", w.Header())
	}
}

func TestRouter_corsPreflight(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/attributes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/attributes", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unknown origin = %q", got)
	}
}

func TestRouter_metricsDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Observability.Metrics.Enabled = false })
	if w := s.do(http.MethodGet, "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRouter_readyWithoutPreferences(t *testing.T) {
	store, err := catalog.NewStore(seed.Default())
	if err != nil {
		t.Fatal(err)
	}
	api, err := openapi.Load()
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(Dependencies{Config: config.Defaults(), Store: store, API: api})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Recovery(nil))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("body = %s", w.Body.String())
	}
}
