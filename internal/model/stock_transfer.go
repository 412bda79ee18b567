package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferDraft    TransferStatus = "draft"
	TransferShipped  TransferStatus = "shipped"
	TransferReceived TransferStatus = "received"
	TransferCancelled TransferStatus = "cancelled"
)

// StockTransfer moves ingredient stock between two outlets of the same
// business. Ship deducts the source outlet atomically; receive books the
// same quantities into the target outlet by SKU, carrying the source
// average cost.
type StockTransfer struct {
	BaseModel
	SourceOutletID uuid.UUID      `gorm:"type:uuid;not null;index" json:"source_outlet_id" validate:"uuid_required"`
	TargetOutletID uuid.UUID      `gorm:"type:uuid;not null;index" json:"target_outlet_id" validate:"uuid_required"`
	Status         TransferStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	ShippedAt      *time.Time     `json:"shipped_at,omitempty"`
	ReceivedAt     *time.Time     `json:"received_at,omitempty"`
	Note           string         `gorm:"type:text" json:"note,omitempty"`

	Items []StockTransferItem `gorm:"foreignKey:StockTransferID;constraint:OnDelete:CASCADE" json:"items"`
}

type StockTransferItem struct {
	BaseModel
	StockTransferID uuid.UUID `gorm:"type:uuid;not null;index" json:"stock_transfer_id"`
	IngredientID    uuid.UUID `gorm:"type:uuid;not null" json:"ingredient_id" validate:"uuid_required"` // source-side ingredient
	SKU             string    `gorm:"type:varchar(50);not null" json:"sku"`
	Quantity        float64   `gorm:"type:decimal(14,3);not null" json:"quantity" validate:"gt=0"`
	Unit            string    `gorm:"type:varchar(20);not null" json:"unit"`

	// UnitCost is frozen at ship time from the source ingredient's average
	// cost, so the receiving outlet books the goods at the sender's cost
	// basis.
	UnitCost decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"unit_cost"`
}
