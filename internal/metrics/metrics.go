package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the instruments shared by the fulfillment flow and the HTTP layer.
type Metrics struct {
	FulfillmentRequests *prometheus.CounterVec   // fulfillment_requests_total{outcome}
	FulfillmentDuration prometheus.Histogram     // fulfillment_duration_seconds
	StockReservations   *prometheus.CounterVec   // stock_reservations_total{outcome}
	HTTPRequests        *prometheus.CounterVec   // http_requests_total{method,route,status}
	HTTPDuration        *prometheus.HistogramVec // http_request_duration_seconds{method,route}
}

// New creates the instruments and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FulfillmentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_requests_total",
			Help: "Total number of order fulfillment requests by outcome.",
		}, []string{"outcome"}),
		FulfillmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fulfillment_duration_seconds",
			Help:    "Duration of the order fulfillment transaction in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		StockReservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_reservations_total",
			Help: "Stock reservations by outcome (reserved, insufficient, error).",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.FulfillmentRequests, m.FulfillmentDuration, m.StockReservations, m.HTTPRequests, m.HTTPDuration)
	}
	return m
}

// Nop returns unregistered instruments, for tests and tools that do not expose /metrics.
func Nop() *Metrics { return New(nil) }
