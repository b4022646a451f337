package drill

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incidentdrill"

var (
	phaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drill",
			Name:      "phase_transitions_total",
			Help:      "Total accepted phase operations by action and target phase",
		},
		[]string{"action", "phase"},
	)

	rejectedOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drill",
			Name:      "rejected_operations_total",
			Help:      "Total walkthrough operations rejected by the phase controller",
		},
		[]string{"reason"},
	)

	reportsCompiled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "drill",
			Name:      "reports_compiled_total",
			Help:      "Total formal incident reports compiled",
		},
	)
)

func recordTransition(action, phase string) {
	phaseTransitions.WithLabelValues(action, phase).Inc()
}

func recordRejected(err error) {
	rejectedOperations.WithLabelValues(rejectReason(err)).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrPhaseLocked):
		return "phase_locked"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrIncompleteRecord):
		return "incomplete_record"
	case errors.Is(err, ErrUnknownPhase):
		return "unknown_phase"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrNoCheckpoint):
		return "no_checkpoint"
	default:
		return "other"
	}
}
