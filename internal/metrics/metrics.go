// Package metrics exposes Prometheus metrics for auth-front.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authfront"

// Metrics owns a private registry so tests and multiple app instances do
// not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	// AuthAttempts counts form and OAuth submissions by flow and outcome.
	AuthAttempts *prometheus.CounterVec

	// UpstreamDuration measures calls to the auth API.
	UpstreamDuration *prometheus.HistogramVec

	// HTTPRequests counts browser-facing requests by method and status.
	HTTPRequests *prometheus.CounterVec
}

// New creates the metric set and registers runtime collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of authentication attempts",
			},
			[]string{"flow", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Duration of auth API calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"call", "outcome"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "status"},
		),
	}
}

// RecordAttempt records one auth attempt
func (m *Metrics) RecordAttempt(flow, outcome string) {
	m.AuthAttempts.WithLabelValues(flow, outcome).Inc()
}

// ObserveUpstream records one auth API call
func (m *Metrics) ObserveUpstream(call, outcome string, d time.Duration) {
	m.UpstreamDuration.WithLabelValues(call, outcome).Observe(d.Seconds())
}

// ObserveRequest records one served request
func (m *Metrics) ObserveRequest(method string, status int) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
