package model

import "time"

type MovementType string

const (
	MovementSet      MovementType = "set"
	MovementSubtract MovementType = "subtract"
	MovementRestore  MovementType = "restore"
)

// StockMovement records one change of a product's stock quantity.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	ProductID      string       `db:"product_id" json:"product_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	QuantityChange int64        `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int64        `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int64        `db:"quantity_after" json:"quantity_after"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id"`
	Notes          *string      `db:"notes" json:"notes"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
