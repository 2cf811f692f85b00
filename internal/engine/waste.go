package engine

import "github.com/plastimar/rolltrack/internal/domain/models"

// StageWaste returns the material lost between two consecutive stages, or nil
// when either quantity is unrecorded. Waste is never negative: an output larger
// than its input is a data-entry anomaly upstream, and flooring keeps it from
// cancelling genuine waste elsewhere. Callers that need to detect the anomaly
// compare the raw quantities themselves.
func StageWaste(inputKg, outputKg *float64) *float64 {
	if inputKg == nil || outputKg == nil {
		return nil
	}
	waste := *inputKg - *outputKg
	if waste < 0 {
		waste = 0
	}
	return &waste
}

// StageWastePercentage returns the stage waste as a percentage of the input, or
// nil when the input is unrecorded or zero. The result is not rounded; rounding
// is a presentation concern.
func StageWastePercentage(inputKg, outputKg *float64) *float64 {
	if inputKg == nil || *inputKg == 0 {
		return nil
	}
	waste := StageWaste(inputKg, outputKg)
	if waste == nil {
		return nil
	}
	pct := *waste / *inputKg * 100
	return &pct
}

// RollCumulativeWaste returns the waste from extrusion down to the last
// recorded stage of the roll, floored at zero, or nil when no stage beyond
// extrusion has been recorded.
func RollCumulativeWaste(roll *models.Roll) *float64 {
	latest := LatestStageRecord(roll)
	if latest == nil || latest.Stage == models.StageExtrusion {
		return nil
	}
	return StageWaste(roll.ExtrusionKg, &latest.QuantityKg)
}

// JobOrderCumulativeWaste sums extrusion-to-cutting waste over the rolls that
// have both quantities recorded. Each term is floored at zero before summing:
// a roll that regressed (cutting above extrusion, a data error) must not let
// its negative term cancel genuine waste from other rolls.
func JobOrderCumulativeWaste(rolls []models.Roll) float64 {
	var total float64
	for i := range rolls {
		roll := &rolls[i]
		if roll.ExtrusionKg == nil || roll.CuttingKg == nil {
			continue
		}
		total += *StageWaste(roll.ExtrusionKg, roll.CuttingKg)
	}
	return total
}

// JobOrderWastePercentage relates the job order's cumulative waste to its total
// extruded quantity, or nil when nothing has been extruded.
func JobOrderWastePercentage(rolls []models.Roll) *float64 {
	var extruded float64
	for i := range rolls {
		if rolls[i].ExtrusionKg != nil {
			extruded += *rolls[i].ExtrusionKg
		}
	}
	if extruded == 0 {
		return nil
	}
	pct := JobOrderCumulativeWaste(rolls) / extruded * 100
	return &pct
}
