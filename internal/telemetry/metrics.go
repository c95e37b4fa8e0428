package telemetry

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one process.
// Each instance owns its registry so several can coexist in tests.
type Metrics struct {
	namespace string
	registry  *prometheus.Registry

	unitDuration        *prometheus.HistogramVec
	failedUnits         *prometheus.CounterVec
	nonConvergence      prometheus.Counter
	invariantViolations *prometheus.CounterVec
	snapshotsWritten    *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors under the given namespace.
func NewMetrics(namespace, version string) *Metrics {
	// Prometheus names may not contain hyphens
	ns := strings.ReplaceAll(namespace, "-", "_")

	m := &Metrics{namespace: ns, registry: prometheus.NewRegistry()}

	m.unitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    ns + "_batch_unit_duration_seconds",
			Help:    "Duration of one batch unit in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	m.failedUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: ns + "_batch_units_failed_total",
			Help: "Total number of failed batch units",
		},
		[]string{"kind"},
	)
	m.nonConvergence = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: ns + "_pagerank_nonconvergence_total",
			Help: "Total number of authority runs that hit the PageRank iteration cap",
		},
	)
	m.invariantViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: ns + "_mindshare_invariant_violations_total",
			Help: "Total number of mindshare units whose shares did not sum to the fixed total",
		},
		[]string{"window"},
	)
	m.snapshotsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: ns + "_snapshots_written_total",
			Help: "Total number of snapshot rows upserted",
		},
		[]string{"table"},
	)
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: ns + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    ns + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: ns + "_build_info",
			Help: "Build information",
		},
		[]string{"version"},
	)

	m.registry.MustRegister(
		m.unitDuration,
		m.failedUnits,
		m.nonConvergence,
		m.invariantViolations,
		m.snapshotsWritten,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		info,
	)
	info.WithLabelValues(version).Set(1)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveUnit records how long a batch unit took.
func (m *Metrics) ObserveUnit(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.unitDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// IncFailedUnit counts a failed batch unit.
func (m *Metrics) IncFailedUnit(kind string) {
	if m == nil {
		return
	}
	m.failedUnits.WithLabelValues(kind).Inc()
}

// IncNonConvergence counts a PageRank run that hit its iteration cap.
func (m *Metrics) IncNonConvergence() {
	if m == nil {
		return
	}
	m.nonConvergence.Inc()
}

// IncInvariantViolation counts a mindshare unit that failed its sum check.
func (m *Metrics) IncInvariantViolation(window string) {
	if m == nil {
		return
	}
	m.invariantViolations.WithLabelValues(window).Inc()
}

// AddSnapshots counts rows written to a snapshot table.
func (m *Metrics) AddSnapshots(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.snapshotsWritten.WithLabelValues(table).Add(float64(n))
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
