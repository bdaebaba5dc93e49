package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

const namespace = "emotion_detector"

// Outcomes of a call to the emotion API, used as the "outcome" label
const (
	OutcomeSuccess           = "success"
	OutcomeRejected          = "rejected"
	OutcomeUnexpectedStatus  = "unexpected_status"
	OutcomeMalformedResponse = "malformed_response"
	OutcomeNetworkError      = "network_error"
	OutcomeTimeout           = "timeout"
	OutcomeUnavailable       = "unavailable"
)

// Metrics holds the Prometheus collectors for the service
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlight        prometheus.Gauge

	ExternalDuration *prometheus.HistogramVec
	ExternalTotal    *prometheus.CounterVec
	BreakerState     *prometheus.GaugeVec
	Dominant         *prometheus.CounterVec
	RateLimited      prometheus.Counter
}

// NewMetrics creates a registry with Go runtime and process collectors and
// registers the service metrics on it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being processed.",
		}),
		ExternalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "external_api",
			Name:      "request_duration_seconds",
			Help:      "Duration of emotion API calls in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"api"}),
		ExternalTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "external_api",
			Name:      "requests_total",
			Help:      "Emotion API calls by outcome.",
		}, []string{"api", "outcome"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "external_api",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"api"}),
		Dominant: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dominant_emotion_total",
			Help:      "Classified texts by dominant emotion.",
		}, []string{"emotion"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),
	}

	reg.MustRegister(
		m.RequestDuration, m.RequestsTotal, m.InFlight,
		m.ExternalDuration, m.ExternalTotal, m.BreakerState,
		m.Dominant, m.RateLimited,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveExternalCall records one emotion API call
func (m *Metrics) ObserveExternalCall(api, outcome string, seconds float64) {
	m.ExternalTotal.WithLabelValues(api, outcome).Inc()
	m.ExternalDuration.WithLabelValues(api).Observe(seconds)
}

// ObserveDominant counts one classified text
func (m *Metrics) ObserveDominant(emotion string) {
	m.Dominant.WithLabelValues(emotion).Inc()
}

// SetBreakerState publishes a breaker transition
func (m *Metrics) SetBreakerState(api string, state gobreaker.State) {
	m.BreakerState.WithLabelValues(api).Set(breakerStateValue(state))
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
