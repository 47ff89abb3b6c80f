// Package observability exposes Prometheus metrics for the scan pipeline.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScanMetrics counts scan transactions by terminal outcome and rejection reason.
type ScanMetrics struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
}

// NewScanMetrics constructs and registers the scan counters on a fresh registry.
func NewScanMetrics() *ScanMetrics {
	reg := prometheus.NewRegistry()
	m := &ScanMetrics{
		registry: reg,
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kahvekart",
			Subsystem: "scan",
			Name:      "outcomes_total",
			Help:      "Scan transactions by terminal status and rejection reason.",
		}, []string{"status", "reason"}),
	}
	reg.MustRegister(m.outcomes)
	return m
}

// Observe records one terminal scan outcome.
func (m *ScanMetrics) Observe(status, reason string) {
	m.outcomes.WithLabelValues(status, reason).Inc()
}

// Handler serves the registry for /metrics.
func (m *ScanMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
