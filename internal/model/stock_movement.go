package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementSale            MovementType = "sale"
	MovementPurchaseReceipt MovementType = "purchase_receipt"
	MovementProduction      MovementType = "production"
	MovementProductionUse   MovementType = "production_use"
	MovementTransferOut     MovementType = "transfer_out"
	MovementTransferIn      MovementType = "transfer_in"
	MovementAdjustment      MovementType = "adjustment"
	MovementB2BShip         MovementType = "b2b_ship"
)

// StockMovement is the append-only log behind every ledger delta.
// Adjustments are logged, never destructive; the ledger invariant (stock
// never negative) is enforced where the delta is applied.
type StockMovement struct {
	BaseModel
	OutletID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"outlet_id"`
	IngredientID *uuid.UUID   `gorm:"type:uuid;index" json:"ingredient_id,omitempty"`
	ProductID    *uuid.UUID   `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Type         MovementType `gorm:"type:varchar(20);not null;index" json:"type"`

	Quantity     float64         `gorm:"type:decimal(14,3);not null" json:"quantity"` // signed delta in native unit
	BalanceAfter float64         `gorm:"type:decimal(14,3);not null" json:"balance_after"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"unit_cost"`

	// Reference back to the document that caused the delta.
	RefType string     `gorm:"type:varchar(30)" json:"ref_type,omitempty"`
	RefID   *uuid.UUID `gorm:"type:uuid;index" json:"ref_id,omitempty"`

	Note            string  `gorm:"type:text" json:"note,omitempty"`
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
}
