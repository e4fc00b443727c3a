// Package metrics registers the application's Prometheus collectors.
// Services report through the package-level helpers, which no-op until
// Init has run so unit tests need no registry setup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the application collectors.
type Metrics struct {
	// HTTP request totals by method, path and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency by method and path.
	HTTPRequestDuration *prometheus.HistogramVec

	// Checkout openings by outcome (created, conflict).
	OrdersTotal *prometheus.CounterVec

	// Finalization attempts by outcome (confirmed, conflict).
	BookingsTotal *prometheus.CounterVec

	// Hold sets released by the expiry reaper.
	ExpiredHoldSetsTotal prometheus.Counter
}

// New creates the collectors and registers them on the default
// registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates the collectors and registers them on the
// given registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		OrdersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_orders_total",
				Help: "Total number of checkout intents by outcome",
			},
			[]string{"status"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking finalization attempts by outcome",
			},
			[]string{"status"},
		),
		ExpiredHoldSetsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "expired_hold_sets_total",
				Help: "Total number of hold sets released by the expiry reaper",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OrdersTotal,
		m.BookingsTotal,
		m.ExpiredHoldSetsTotal,
	)

	return m
}

var defaultMetrics *Metrics

// Init initializes the default metrics instance.
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get returns the default metrics instance, nil before Init.
func Get() *Metrics { return defaultMetrics }

// OrderAttempt records a checkout opening outcome.
func OrderAttempt(status string) {
	if defaultMetrics != nil {
		defaultMetrics.OrdersTotal.WithLabelValues(status).Inc()
	}
}

// BookingAttempt records a finalization outcome.
func BookingAttempt(status string) {
	if defaultMetrics != nil {
		defaultMetrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

// ReapedHoldSets records hold sets released by the reaper.
func ReapedHoldSets(n int) {
	if defaultMetrics != nil {
		defaultMetrics.ExpiredHoldSetsTotal.Add(float64(n))
	}
}
