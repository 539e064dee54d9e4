package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pitabwire/assetattr/internal/catalog"
	"github.com/pitabwire/assetattr/internal/preference"
)

func TestHandleHealth_returnsOK(t *testing.T) {
	origVersion, origCommit := Version, Commit
	Version = "1.2.3"
	Commit = "abc1234"
	t.Cleanup(func() {
		Version = origVersion
		Commit = origCommit
	})

	rec := httptest.NewRecorder()
	HandleHealth().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" || resp.Commit != "abc1234" {
		t.Errorf("resp = %+v", resp)
	}
}

func serveReady(t *testing.T, checks ReadinessChecks) (int, ReadinessResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	HandleReady(checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	var resp ReadinessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return rec.Code, resp
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) HealthCheck(_ context.Context) error {
	return m.err
}

func TestHandleReady_allHealthy(t *testing.T) {
	store, err := catalog.NewStore(catalogSeed())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	code, resp := serveReady(t, ReadinessChecks{
		CatalogConsistent: store.Verify,
		OpenAPILoaded:     func() bool { return true },
		PreferenceStore:   preference.New(preference.NewMemoryKV()),
	})

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Status != "ready" {
		t.Errorf("status = %q, want ready", resp.Status)
	}
	for _, name := range []string{"catalog", "openapi", "preference_store"} {
		if resp.Checks[name].Status != "ok" {
			t.Errorf("%s = %+v, want ok", name, resp.Checks[name])
		}
	}
}

func TestHandleReady_catalogInconsistent(t *testing.T) {
	code, resp := serveReady(t, ReadinessChecks{
		CatalogConsistent: func() error { return errors.New("catalog integrity check failed") },
		OpenAPILoaded:     func() bool { return true },
	})

	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if resp.Status != "not_ready" {
		t.Errorf("status = %q, want not_ready", resp.Status)
	}
	if resp.Checks["catalog"].Error != "catalog integrity check failed" {
		t.Errorf("catalog = %+v", resp.Checks["catalog"])
	}
}

func TestHandleReady_openAPINotLoaded(t *testing.T) {
	code, resp := serveReady(t, ReadinessChecks{
		CatalogConsistent: func() error { return nil },
		OpenAPILoaded:     func() bool { return false },
	})

	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if resp.Checks["openapi"].Status != "error" {
		t.Errorf("openapi = %+v, want error", resp.Checks["openapi"])
	}
}

func TestHandleReady_preferenceStoreDown(t *testing.T) {
	code, resp := serveReady(t, ReadinessChecks{
		CatalogConsistent: func() error { return nil },
		OpenAPILoaded:     func() bool { return true },
		PreferenceStore:   &mockHealthChecker{err: errors.New("connection refused")},
	})

	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if resp.Checks["preference_store"].Error != "connection refused" {
		t.Errorf("preference_store = %+v", resp.Checks["preference_store"])
	}
}

func TestHandleReady_nilCheckerFunctions(t *testing.T) {
	code, resp := serveReady(t, ReadinessChecks{})

	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if resp.Checks["catalog"].Status != "error" || resp.Checks["openapi"].Status != "error" {
		t.Errorf("checks = %+v", resp.Checks)
	}
	if _, ok := resp.Checks["preference_store"]; ok {
		t.Error("optional check should be skipped when nil")
	}
}
