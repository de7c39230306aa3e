// Package metrics registers the subsystem's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the handlers and middleware record into.
type Metrics struct {
	// HTTP traffic (method, path, status_code)
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Seat mutations by operation (select, change, release, block, unblock,
	// auto_assign) and outcome (success, conflict, invalid, error)
	SeatOperationsTotal *prometheus.CounterVec

	// Check-ins by outcome (success, conflict, invalid, error) and undos
	CheckInsTotal *prometheus.CounterVec
	UndoTotal     prometheus.Counter

	// Boarding passes issued
	BoardingPassesTotal prometheus.Counter
}

// New creates the metrics and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with the given registry; tests pass
// a throwaway registry to avoid duplicate registration.
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
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		SeatOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_operations_total",
				Help: "Seat assignment operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		CheckInsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkins_total",
				Help: "Passenger check-in attempts by outcome",
			},
			[]string{"outcome"},
		),
		UndoTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "checkin_undo_total",
				Help: "Check-ins reverted",
			},
		),
		BoardingPassesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "boarding_passes_issued_total",
				Help: "Boarding passes generated",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatOperationsTotal,
		m.CheckInsTotal,
		m.UndoTotal,
		m.BoardingPassesTotal,
	)
	return m
}
