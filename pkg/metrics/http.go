package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ssm"

// HTTPMetrics tracks request volume and latency per route pattern.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})
	reg.MustRegister(requests, latency)
	return &HTTPMetrics{requests: requests, latency: latency}
}

// Observe records one completed request.
func (h *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	route = normalizeLabel(route)
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// EngagementMetrics counts like/unlike/comment mutations.
type EngagementMetrics struct {
	mutations *prometheus.CounterVec
	streams   prometheus.Gauge
}

// NewEngagementMetrics registers the engagement collectors on reg.
func NewEngagementMetrics(reg prometheus.Registerer) *EngagementMetrics {
	if reg == nil {
		return &EngagementMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reel_engagement_mutations_total",
		Help:      "Reel engagement mutations by action.",
	}, []string{"action"})
	streams := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reel_engagement_streams",
		Help:      "Open engagement SSE streams.",
	})
	reg.MustRegister(mutations, streams)
	return &EngagementMetrics{mutations: mutations, streams: streams}
}

// IncMutation increments the counter for action (like, unlike, comment, comment_delete).
func (e *EngagementMetrics) IncMutation(action string) {
	if e == nil || e.mutations == nil {
		return
	}
	e.mutations.WithLabelValues(normalizeLabel(action)).Inc()
}

// StreamOpened and StreamClosed track live SSE subscribers.
func (e *EngagementMetrics) StreamOpened() {
	if e == nil || e.streams == nil {
		return
	}
	e.streams.Inc()
}

func (e *EngagementMetrics) StreamClosed() {
	if e == nil || e.streams == nil {
		return
	}
	e.streams.Dec()
}

// Handler exposes the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
