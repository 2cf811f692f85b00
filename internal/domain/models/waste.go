package models

import "time"

// StageRecord is a (stage, quantity) pair produced while computing waste. It is
// a computation artifact, never persisted.
type StageRecord struct {
	Stage      Stage
	QuantityKg float64
}

// WasteRecord is the read model the aggregator works on: one roll's cumulative
// waste joined with the grouping attributes of its job order.
type WasteRecord struct {
	RollID       string    `json:"roll_id"`
	JobOrderID   string    `json:"job_order_id"`
	OperatorID   string    `json:"operator_id"`
	Section      string    `json:"section"`
	CustomerName string    `json:"customer_name"`
	Date         time.Time `json:"date"`
	InputKg      float64   `json:"input_kg"`
	OutputKg     float64   `json:"output_kg"`
	WasteKg      float64   `json:"waste_kg"`
	WastePct     *float64  `json:"waste_pct,omitempty"`
}

// WasteSummary aggregates waste records for one grouping key.
//
// MeanWastePct is the unweighted mean of the per-record percentages, carried
// over from the legacy reporting behavior. TotalInputKg and TotalOutputKg are
// included so consumers can recompute a weighted figure if they prefer.
type WasteSummary struct {
	Key           string    `json:"key"`
	Date          time.Time `json:"date,omitzero"`
	TotalInputKg  float64   `json:"total_input_kg"`
	TotalOutputKg float64   `json:"total_output_kg"`
	TotalWasteKg  float64   `json:"total_waste_kg"`
	MeanWastePct  *float64  `json:"mean_waste_pct,omitempty"`
	RecordCount   int       `json:"record_count"`
}

// DailyWasteReport is the aggregated daily figure persisted for the reporting
// consumers.
type DailyWasteReport struct {
	Date         time.Time      `bson:"date" json:"date"`
	TotalWasteKg float64        `bson:"total_waste_kg" json:"total_waste_kg"`
	MeanWastePct *float64       `bson:"mean_waste_pct,omitempty" json:"mean_waste_pct,omitempty"`
	RollCount    int            `bson:"roll_count" json:"roll_count"`
	Sections     []WasteSummary `bson:"sections" json:"sections"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
}
