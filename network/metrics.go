package network

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcileOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anticipation",
		Name:      "reconcile_outcomes_total",
		Help:      "Reconciliations by how the correction was applied.",
	}, []string{"outcome"})

	replayedInputs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "anticipation",
		Name:      "replayed_inputs_total",
		Help:      "Recorded inputs re-applied during reconciliation.",
	})

	interpolatorUnderruns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "anticipation",
		Name:      "interpolator_underruns_total",
		Help:      "Interpolator updates that had no measurement at or after the render time.",
	})

	linkMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anticipation",
		Name:      "link_messages_total",
		Help:      "Messages passed through a link, by direction.",
	}, []string{"direction"})
)
