// Package metrics owns the server's Prometheus registry and the HTTP
// endpoint that exposes it together with a health probe.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics are the RPC-level instruments recorded by the gRPC interceptors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     *prometheus.CounterVec
}

// NewRegistry returns a private registry with Go runtime and process
// collectors already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// NewMetrics creates the RPC instruments and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophforum_rpc_requests_total",
				Help: "Total number of RPCs by method and status code",
			},
			[]string{"method", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gophforum_rpc_duration_seconds",
				Help:    "RPC latency by method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophforum_rpc_rate_limited_total",
				Help: "Total number of RPCs rejected by the rate limiter",
			},
			[]string{"method"},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.RateLimited)
	return m
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, code).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}
