package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/overlens/internal/core/ports"
)

const namespace = "overlens"

// PrometheusMetrics implements ports.Metrics with Prometheus collectors.
type PrometheusMetrics struct {
	gatherer prometheus.Gatherer

	cacheLookups     *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	restarts         prometheus.Counter
}

var _ ports.Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the index collectors on a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		gatherer: reg,
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Index cache lookups by result (hit, miss)",
		}, []string{"result"}),
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "requests_total",
			Help:      "Analysis requests by outcome (ok, timeout, terminated, error)",
		}, []string{"outcome"}),
		analysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "request_duration_seconds",
			Help:      "Analysis request latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		restarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "restarts_total",
			Help:      "Analysis worker restarts",
		}),
	}
}

// CacheLookup counts a cache hit or miss.
func (m *PrometheusMetrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// AnalysisFinished records one worker request.
func (m *PrometheusMetrics) AnalysisFinished(outcome string, elapsed time.Duration) {
	m.analyses.WithLabelValues(outcome).Inc()
	m.analysisDuration.Observe(elapsed.Seconds())
}

// WorkerRestarted counts a worker restart.
func (m *PrometheusMetrics) WorkerRestarted() {
	m.restarts.Inc()
}

// Gatherer exposes the registry the collectors live on.
func (m *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
