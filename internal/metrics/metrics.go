package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parley_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Turn metrics
	TurnsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_turns_started_total",
			Help: "Total model turns started",
		},
	)

	TurnsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_turns_completed_total",
			Help: "Total model turns that reached completion",
		},
	)

	TurnFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_turn_failures_total",
			Help: "Total model turn failures by classified category",
		},
		[]string{"category"},
	)

	// Persistence metrics
	MessagesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_messages_persisted_total",
			Help: "Total durable message records written",
		},
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_persist_failures_total",
			Help: "Total failed message batch writes",
		},
	)
)
