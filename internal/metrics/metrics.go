package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters and gauges exported by vhostmgr.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Operation outcomes by operation and result kind
	Operations *prometheus.CounterVec

	// Operation latency by operation
	OperationLatency *prometheus.HistogramVec

	// Managed domains by certificate status, refreshed on every list
	Domains *prometheus.GaugeVec
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vhostmgr_operations_total",
			Help: "Total mutating operations by operation and result kind",
		}, []string{"operation", "kind"}), // kind is "ok" on success

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vhostmgr_operation_duration_seconds",
			Help:    "Duration of mutating operations including external commands",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"operation"}),

		Domains: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vhostmgr_domains",
			Help: "Managed domains by certificate status",
		}, []string{"ssl_status"}),
	}
}

// ObserveOperation records one finished operation
func (m *Metrics) ObserveOperation(operation, kind string, d time.Duration) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "ok"
	}
	m.Operations.WithLabelValues(operation, kind).Inc()
	m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// SetDomains replaces the per-status domain gauge
func (m *Metrics) SetDomains(byStatus map[string]int) {
	if m == nil {
		return
	}
	m.Domains.Reset()
	for status, n := range byStatus {
		m.Domains.WithLabelValues(status).Set(float64(n))
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
