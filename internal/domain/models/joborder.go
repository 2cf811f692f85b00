package models

import "time"

// JobOrder is the authorization context rolls draw against. The customer and
// order references are owned by the order-management subsystem; they are
// carried here only so waste reporting can group by them.
type JobOrder struct {
	ID               string    `bson:"_id" json:"id"`
	CustomerName     string    `bson:"customer_name" json:"customer_name"`
	OrderRef         string    `bson:"order_ref" json:"order_ref"`
	ItemRef          string    `bson:"item_ref" json:"item_ref"`
	TargetKg         float64   `bson:"target_kg" json:"target_kg"`
	RequiresPrinting bool      `bson:"requires_printing" json:"requires_printing"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
