package models

import (
	"fmt"
	"time"
)

// Stage identifies one of the three quantity-producing production stages.
type Stage string

const (
	StageExtrusion Stage = "extrusion"
	StagePrinting  Stage = "printing"
	StageCutting   Stage = "cutting"
)

// ParseStage converts an external stage name into a Stage.
func ParseStage(value string) (Stage, error) {
	switch Stage(value) {
	case StageExtrusion, StagePrinting, StageCutting:
		return Stage(value), nil
	default:
		return "", fmt.Errorf("unknown stage %q", value)
	}
}

// RollStatus is the position of a roll in the production workflow.
type RollStatus string

const (
	StatusAwaitingExtrusion RollStatus = "awaiting_extrusion"
	StatusAwaitingPrinting  RollStatus = "awaiting_printing"
	StatusAwaitingCutting   RollStatus = "awaiting_cutting"
	StatusAwaitingReceiving RollStatus = "awaiting_receiving"
	StatusReceived          RollStatus = "received"
	StatusDamaged           RollStatus = "damaged"
	StatusQualityIssue      RollStatus = "quality_issue"
)

// Roll is one physical unit of extruded material tracked through production.
// Stage quantities are pointers so "not yet recorded" stays distinct from a
// legitimate zero-output stage.
type Roll struct {
	ID          string     `bson:"_id" json:"id"`
	JobOrderID  string     `bson:"job_order_id" json:"job_order_id"`
	Sequence    int        `bson:"sequence" json:"sequence"`
	OperatorID  string     `bson:"operator_id" json:"operator_id"`
	Section     string     `bson:"section" json:"section"`
	ExtrusionKg *float64   `bson:"extrusion_kg,omitempty" json:"extrusion_kg,omitempty"`
	PrintingKg  *float64   `bson:"printing_kg,omitempty" json:"printing_kg,omitempty"`
	CuttingKg   *float64   `bson:"cutting_kg,omitempty" json:"cutting_kg,omitempty"`
	Status      RollStatus `bson:"status" json:"status"`
	Notes       string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Version     int64      `bson:"version" json:"version"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// StageQuantity returns the recorded quantity for the given stage, or nil when
// the stage has not been recorded yet.
func (r *Roll) StageQuantity(stage Stage) *float64 {
	switch stage {
	case StageExtrusion:
		return r.ExtrusionKg
	case StagePrinting:
		return r.PrintingKg
	case StageCutting:
		return r.CuttingKg
	default:
		return nil
	}
}

// SetStageQuantity stores the quantity for the given stage.
func (r *Roll) SetStageQuantity(stage Stage, quantityKg float64) {
	switch stage {
	case StageExtrusion:
		r.ExtrusionKg = &quantityKg
	case StagePrinting:
		r.PrintingKg = &quantityKg
	case StageCutting:
		r.CuttingKg = &quantityKg
	}
}
