package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageTransitions counts workflow commands by stage and outcome
	// (ok / rejected).
	StageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rolltrack_stage_transitions_total",
		Help: "The total number of stage transition commands processed",
	}, []string{"stage", "result"})

	// StageWasteKg accumulates measured stage waste per stage and section.
	StageWasteKg = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rolltrack_stage_waste_kg_total",
		Help: "The total stage waste recorded, in kilograms",
	}, []string{"stage", "section"})

	// RollsReceived counts rolls that reached the terminal received state.
	RollsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rolltrack_rolls_received_total",
		Help: "The total number of rolls received",
	})
)
