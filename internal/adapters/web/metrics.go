package web

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	views      *prometheus.CounterVec
	selections *prometheus.CounterVec
	created    prometheus.Counter
	sessions   prometheus.Gauge
}

// NewMetrics registers the collectors, plus the Go runtime and process
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bubbleview_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bubbleview_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bubbleview_bubble_views_total",
			Help: "Bubbles rendered, by preview strategy of the selection.",
		}, []string{"strategy"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bubbleview_selections_total",
			Help: "Selection requests by outcome.",
		}, []string{"outcome"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bubbleview_bubbles_created_total",
			Help: "Bubbles created through the API.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bubbleview_selection_sessions",
			Help: "Live selection sessions.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.views, m.selections, m.created, m.sessions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) bubbleViewed(strategy string) {
	if m == nil {
		return
	}
	m.views.WithLabelValues(strategy).Inc()
}

func (m *Metrics) selection(outcome string) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(outcome).Inc()
}

func (m *Metrics) bubbleCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Metrics) setSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}
