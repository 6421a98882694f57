// Package metrics exposes Prometheus collectors for the daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesReceived counts decoded bus messages per kind.
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mudra_messages_received_total",
			Help: "Total number of decoded bus messages",
		},
		[]string{"kind"},
	)

	// MessagesDropped counts malformed or unroutable bus messages.
	MessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mudra_messages_dropped_total",
			Help: "Total number of dropped bus messages",
		},
	)

	// Ticks counts loop iterations.
	Ticks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mudra_ticks_total",
			Help: "Total number of processed ticks",
		},
	)

	// PollErrors counts failed polls of the signal bus.
	PollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mudra_poll_errors_total",
			Help: "Total number of signal bus poll errors",
		},
	)

	// Transitions counts state changes.
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mudra_transitions_total",
			Help: "Total number of gesture state transitions",
		},
		[]string{"from", "to"},
	)

	// Actions counts actuator calls per kind.
	Actions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mudra_actions_total",
			Help: "Total number of actuator calls",
		},
		[]string{"kind"},
	)

	// ActionErrors counts failed actuator calls per kind.
	ActionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mudra_action_errors_total",
			Help: "Total number of failed actuator calls",
		},
		[]string{"kind"},
	)

	// CalibrationPoints tracks how many calibration slots are set.
	CalibrationPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mudra_calibration_points",
			Help: "Number of calibration slots currently set",
		},
	)

	// TickDuration tracks processing time per tick, excluding the poll wait.
	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mudra_tick_duration_seconds",
			Help:    "Tick processing time in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)

	// Enabled is 1 while gesture detection is on.
	Enabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mudra_enabled",
			Help: "Whether gesture detection is enabled",
		},
	)
)
