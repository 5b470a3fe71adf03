// Package metrics defines the prometheus collectors exported by the gateway.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shopcart"

// Metrics holds the gateway's collectors.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	PaymentPolls    *prometheus.CounterVec
	PaymentAttempts *prometheus.CounterVec
	ActivePollers   prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Calls made to the commerce backend, by method and status.",
		}, []string{"method", "status"}),
		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Commerce backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		PaymentPolls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_polls_total",
			Help:      "QR payment status checks, by outcome.",
		}, []string{"outcome"}),
		PaymentAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_attempts_total",
			Help:      "Payment attempts reaching a state, by method and status.",
		}, []string{"method", "status"}),
		ActivePollers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_payment_pollers",
			Help:      "QR payment pollers currently running.",
		}),
	}
}

// ObserveBackend records one backend call. A status of zero means the call
// failed before a response arrived.
func (m *Metrics) ObserveBackend(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.BackendRequests.WithLabelValues(method, label).Inc()
	m.BackendDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// PollOutcome records the result of a QR status check.
func (m *Metrics) PollOutcome(outcome string) {
	if m == nil {
		return
	}
	m.PaymentPolls.WithLabelValues(outcome).Inc()
}

// AttemptTransition records a payment attempt reaching status.
func (m *Metrics) AttemptTransition(method, status string) {
	if m == nil {
		return
	}
	m.PaymentAttempts.WithLabelValues(method, status).Inc()
}

// PollerStarted and PollerStopped track running pollers.
func (m *Metrics) PollerStarted() {
	if m != nil {
		m.ActivePollers.Inc()
	}
}

func (m *Metrics) PollerStopped() {
	if m != nil {
		m.ActivePollers.Dec()
	}
}
