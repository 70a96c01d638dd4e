package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records HTTP traffic and notification outcomes.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

// New registers the collectors on reg. A nil registerer yields a Metrics
// whose methods are no-ops.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wedding_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wedding_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wedding_notifications_total",
		Help: "RSVP confirmation notifications by driver and result.",
	}, []string{"driver", "result"})
	reg.MustRegister(requests, duration, notifications)
	return &Metrics{
		requests:      requests,
		duration:      duration,
		notifications: notifications,
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveNotification counts one notification attempt; err nil means sent.
func (m *Metrics) ObserveNotification(driver string, err error) {
	if m == nil || m.notifications == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.notifications.WithLabelValues(driver, result).Inc()
}
