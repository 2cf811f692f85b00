package engine

import (
	"fmt"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

// RecordStage writes a measured stage quantity onto the roll after validating
// it. Re-recording a stage requires overwrite; a stage output may never exceed
// the most recently recorded upstream quantity.
func RecordStage(roll *models.Roll, stage models.Stage, quantityKg float64, overwrite bool) error {
	if quantityKg < 0 {
		return fmt.Errorf("%w: %s quantity %.3f kg is negative", ErrInvalidQuantity, stage, quantityKg)
	}

	if existing := roll.StageQuantity(stage); existing != nil && !overwrite {
		return fmt.Errorf("%w: %s already holds %.3f kg on roll %s", ErrStageAlreadyRecorded, stage, *existing, roll.ID)
	}

	if upstream := upstreamOf(roll, stage); upstream != nil && quantityKg > upstream.QuantityKg {
		return fmt.Errorf("%w: %s %.3f kg exceeds %s %.3f kg", ErrExceedsUpstream, stage, quantityKg, upstream.Stage, upstream.QuantityKg)
	}

	roll.SetStageQuantity(stage, quantityKg)
	return nil
}

// UpstreamQuantity returns the most recent non-null prior stage quantity of the
// roll: printing if recorded, else extrusion, else nil. Printing is optional,
// which is why cutting cannot simply look one stage back.
func UpstreamQuantity(roll *models.Roll) *float64 {
	if roll.PrintingKg != nil {
		return roll.PrintingKg
	}
	return roll.ExtrusionKg
}

// upstreamOf resolves the stage record the given stage is measured against.
// Extrusion has no upstream; its ceiling is the job order balance.
func upstreamOf(roll *models.Roll, stage models.Stage) *models.StageRecord {
	switch stage {
	case models.StagePrinting:
		if roll.ExtrusionKg != nil {
			return &models.StageRecord{Stage: models.StageExtrusion, QuantityKg: *roll.ExtrusionKg}
		}
	case models.StageCutting:
		if roll.PrintingKg != nil {
			return &models.StageRecord{Stage: models.StagePrinting, QuantityKg: *roll.PrintingKg}
		}
		if roll.ExtrusionKg != nil {
			return &models.StageRecord{Stage: models.StageExtrusion, QuantityKg: *roll.ExtrusionKg}
		}
	}
	return nil
}

// LatestStageRecord returns the furthest downstream recorded stage of the roll,
// or nil when nothing has been recorded yet.
func LatestStageRecord(roll *models.Roll) *models.StageRecord {
	switch {
	case roll.CuttingKg != nil:
		return &models.StageRecord{Stage: models.StageCutting, QuantityKg: *roll.CuttingKg}
	case roll.PrintingKg != nil:
		return &models.StageRecord{Stage: models.StagePrinting, QuantityKg: *roll.PrintingKg}
	case roll.ExtrusionKg != nil:
		return &models.StageRecord{Stage: models.StageExtrusion, QuantityKg: *roll.ExtrusionKg}
	}
	return nil
}
