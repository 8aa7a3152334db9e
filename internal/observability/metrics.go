// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the scanner. A nil *Metrics is
// valid and turns every recording method into a no-op, so tests don't have
// to touch the global registry.
type Metrics struct {
	// Scan metrics
	ScansTotal   *prometheus.CounterVec
	ScanDuration prometheus.Histogram

	// Funnel metrics
	UniverseSize       prometheus.Gauge
	CandidatesSelected prometheus.Gauge
	DeepChecksTotal    prometheus.Counter
	AlertsCreated      prometheus.Counter

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Upstream metrics
	UpstreamLatency *prometheus.HistogramVec

	// Delivery metrics
	ForwarderErrors prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "momentum_scanner"
	}

	return &Metrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of scan runs by status",
		}, []string{"status"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Scan run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		UniverseSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "universe_size",
			Help:      "Number of snapshot entries in the last scan",
		}),
		CandidatesSelected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "candidates_selected",
			Help:      "Number of candidates surviving the prefilter in the last scan",
		}),
		DeepChecksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "deep_checks_total",
			Help:      "Total number of candidates that reached deep validation",
		}),
		AlertsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "alerts_created_total",
			Help:      "Total number of alerts created",
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits by namespace",
		}, []string{"namespace"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses by namespace",
		}, []string{"namespace"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Upstream API call duration in seconds by operation",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		ForwarderErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forwarder",
			Name:      "errors_total",
			Help:      "Total number of alert delivery failures",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ScanCompleted records one finished scan run.
func (m *Metrics) ScanCompleted(failed bool, duration time.Duration, universe, candidates int) {
	if m == nil {
		return
	}
	status := "success"
	if failed {
		status = "error"
	}
	m.ScansTotal.WithLabelValues(status).Inc()
	m.ScanDuration.Observe(duration.Seconds())
	m.UniverseSize.Set(float64(universe))
	m.CandidatesSelected.Set(float64(candidates))
}

// DeepCheck records one candidate reaching deep validation.
func (m *Metrics) DeepCheck() {
	if m == nil {
		return
	}
	m.DeepChecksTotal.Inc()
}

// AlertFired records one created alert.
func (m *Metrics) AlertFired() {
	if m == nil {
		return
	}
	m.AlertsCreated.Inc()
}

// CacheHit records a hit in the given cache namespace.
func (m *Metrics) CacheHit(namespace string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(namespace).Inc()
}

// CacheMiss records a miss in the given cache namespace.
func (m *Metrics) CacheMiss(namespace string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(namespace).Inc()
}

// UpstreamCall records the duration of one upstream API call.
func (m *Metrics) UpstreamCall(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(op).Observe(d.Seconds())
}

// ForwardError records one alert delivery failure.
func (m *Metrics) ForwardError() {
	if m == nil {
		return
	}
	m.ForwarderErrors.Inc()
}
