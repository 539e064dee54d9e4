package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	bodySizeBuckets     = []float64{100, 1024, 10240, 102400, 1048576}
)

// Metrics holds all Prometheus metric instruments for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Catalog metrics
	MutationsTotal      *prometheus.CounterVec
	CatalogEntities     *prometheus.GaugeVec
	RequestInvalidTotal *prometheus.CounterVec

	// Preference metrics
	PreferenceWritesTotal *prometheus.CounterVec
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assetattr_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assetattr_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPResponseSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assetattr_http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),

		// Catalog
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assetattr_mutations_total",
			Help: "Total catalog mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		CatalogEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "assetattr_catalog_entities",
			Help: "Number of entities in the published catalog snapshot.",
		}, []string{"kind"}),
		RequestInvalidTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assetattr_request_validation_failures_total",
			Help: "Total request bodies rejected by the API document.",
		}, []string{"path_pattern"}),

		// Preferences
		PreferenceWritesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assetattr_preference_writes_total",
			Help: "Total preference writes.",
		}, []string{"key"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSizeBytes,
		m.MutationsTotal,
		m.CatalogEntities,
		m.RequestInvalidTotal,
		m.PreferenceWritesTotal,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration, respSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
	m.HTTPResponseSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(respSize))
}

// RecordMutation counts a catalog mutation attempt.
func (m *Metrics) RecordMutation(operation, outcome string) {
	m.MutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// SetCatalogEntities sets the entity count for one kind.
func (m *Metrics) SetCatalogEntities(kind string, count int) {
	m.CatalogEntities.WithLabelValues(kind).Set(float64(count))
}

// RecordRequestInvalid counts a request body rejected before decoding.
func (m *Metrics) RecordRequestInvalid(pathPattern string) {
	m.RequestInvalidTotal.WithLabelValues(pathPattern).Inc()
}

// RecordPreferenceWrite counts a persisted preference write.
func (m *Metrics) RecordPreferenceWrite(key string) {
	m.PreferenceWritesTotal.WithLabelValues(key).Inc()
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics using
// chi's route pattern (not the actual URL path) to avoid label cardinality
// explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, RoutePattern(r), sw.status, time.Since(start), sw.bytes)
	})
}

// Handler returns the Prometheus HTTP handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RoutePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	// chi route patterns have trailing /*, remove it.
	pattern = strings.ReplaceAll(pattern, "/*/", "/")
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture status and bytes.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
