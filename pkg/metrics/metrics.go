// Package metrics exposes the relay's Prometheus collectors.
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

// Metrics holds the application collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PersonaBuilds    *prometheus.CounterVec
	ChatReplies      *prometheus.CounterVec
	UpstreamFailures *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
	BuildLatency     prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		PersonaBuilds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personagen_persona_builds_total",
			Help: "Personas built, by the source that produced them",
		}, []string{"source"}),
		ChatReplies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personagen_chat_replies_total",
			Help: "Chat replies, by generation mode",
		}, []string{"mode"}),
		UpstreamFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personagen_upstream_failures_total",
			Help: "Failed calls to external collaborators",
		}, []string{"collaborator"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personagen_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "personagen_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"route"}),
		BuildLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "personagen_persona_build_duration_seconds",
			Help:    "Time spent building a persona from a document",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}
}

func (m *Metrics) PersonaBuilt(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.PersonaBuilds.WithLabelValues(source).Inc()
	if d > 0 {
		m.BuildLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) ChatReplied(mode string) {
	if m == nil {
		return
	}
	m.ChatReplies.WithLabelValues(mode).Inc()
}

func (m *Metrics) UpstreamFailed(collaborator string) {
	if m == nil {
		return
	}
	m.UpstreamFailures.WithLabelValues(collaborator).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
