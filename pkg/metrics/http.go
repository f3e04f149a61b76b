package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request throughput and latency for the API surface.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by status class.",
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// ObserveRequest records a completed request.
func (h *HTTPMetrics) ObserveRequest(method, route, status string, duration time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	method = normalizeLabel(method)
	route = normalizeLabel(route)
	h.duration.WithLabelValues(method, route).Observe(duration.Seconds())
	h.requests.WithLabelValues(method, route, normalizeLabel(status)).Inc()
}

// QuoteMetrics tracks the quote pipeline.
type QuoteMetrics struct {
	conversions *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewQuoteMetrics registers quote lifecycle counters on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_conversions_total",
		Help: "Cart to quote conversions by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_status_transitions_total",
		Help: "Quote status transitions applied by admins.",
	}, []string{"to_status"})
	reg.MustRegister(conversions, transitions)
	return &QuoteMetrics{
		conversions: conversions,
		transitions: transitions,
	}
}

// IncConversion records a conversion attempt outcome ("success" or "failure").
func (q *QuoteMetrics) IncConversion(outcome string) {
	if q == nil || q.conversions == nil {
		return
	}
	q.conversions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTransition records a status transition to the given status.
func (q *QuoteMetrics) IncTransition(toStatus string) {
	if q == nil || q.transitions == nil {
		return
	}
	q.transitions.WithLabelValues(normalizeLabel(toStatus)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
