// Package metrics holds the Prometheus collectors for the auth subsystem.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lighthouse"

var (
	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration attempts by outcome.",
	}, []string{"outcome"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Credential login attempts by outcome.",
	}, []string{"outcome"})

	passwordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Password reset operations by stage and outcome.",
	}, []string{"stage", "outcome"})

	hashDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Latency of bcrypt hash and verify calls.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"op"})
)

// Outcome labels shared by the counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

func RecordRegistration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

func RecordLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}

// RecordPasswordReset counts a reset step; stage is "request" or "consume".
func RecordPasswordReset(stage, outcome string) {
	passwordResets.WithLabelValues(stage, outcome).Inc()
}

// ObserveHash matches util.HashObserver.
func ObserveHash(op string, elapsed time.Duration) {
	hashDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
