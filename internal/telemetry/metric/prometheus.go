package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nftmesh"

// Outcome labels for ledger operation counters.
const (
	OutcomeOK         = "ok"
	OutcomeRejected   = "rejected"
	OutcomeCorruption = "corruption"
	OutcomeError      = "error"
)

// Metrics holds all application metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Ledger metrics
	OpsTotal    *prometheus.CounterVec
	TokensTotal prometheus.Gauge
	EventsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRateLimited     prometheus.Counter
}

// New creates a metrics set with its own registry, including the
// standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by operation and outcome",
		}, []string{"op", "outcome"}),

		TokensTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "tokens",
			Help:      "Number of tokens currently in the ledger",
		}),

		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "events_total",
			Help:      "Ledger events emitted by type",
		}, []string{"type"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route, and status code",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		HTTPRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "HTTP requests rejected by the rate limiter",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OpsTotal,
		m.TokensTotal,
		m.EventsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRateLimited,
	)

	return m
}

// Registry returns the underlying registry, for components that register
// their own collectors (the Badger engine).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOp records one ledger operation with its outcome.
func (m *Metrics) ObserveOp(op, outcome string) {
	m.OpsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveEvent records one emitted ledger event.
func (m *Metrics) ObserveEvent(eventType string) {
	m.EventsTotal.WithLabelValues(eventType).Inc()
}
