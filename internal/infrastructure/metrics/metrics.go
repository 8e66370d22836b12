package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/ledgersync/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Sync metrics
	SyncOperations     *prometheus.CounterVec
	ReferenceFallbacks *prometheus.CounterVec

	// ERP metrics
	ERPRequests *prometheus.CounterVec
	ERPDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Sync metrics
		SyncOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgersync_sync_operations_total",
				Help: "External sync operations by entity type, operation and outcome",
			},
			[]string{"entity_type", "operation", "outcome"},
		),
		ReferenceFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgersync_reference_fallbacks_total",
				Help: "ERP references that fell back to a configured default",
			},
			[]string{"reference"},
		),

		// ERP metrics
		ERPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgersync_erp_requests_total",
				Help: "Total ERP RPC calls",
			},
			[]string{"model", "method", "result"},
		),
		ERPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgersync_erp_duration_seconds",
				Help:    "ERP RPC call duration",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgersync_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgersync_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgersync_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgersync_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgersync_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),
	}
}

// ObserveSync counts one external phase outcome.
func (m *Metrics) ObserveSync(entityType domain.EntityType, op domain.SyncOperation, outcome domain.SyncOutcome) {
	m.SyncOperations.WithLabelValues(string(entityType), string(op), string(outcome)).Inc()
}

// ObserveFallback counts a reference resolved to its default.
func (m *Metrics) ObserveFallback(reference string) {
	m.ReferenceFallbacks.WithLabelValues(reference).Inc()
}

// ObserveERPCall records one ERP RPC call.
func (m *Metrics) ObserveERPCall(model, method string, elapsed time.Duration, err error) {
	m.ERPRequests.WithLabelValues(model, method, domain.ErrorClass(err)).Inc()
	m.ERPDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
