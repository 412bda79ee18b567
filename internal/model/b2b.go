package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type B2BStatus string

const (
	// pending → processed → shipped → completed; rejected terminal from
	// pending or processed. Payment tracked orthogonally.
	B2BPending   B2BStatus = "pending"
	B2BProcessed B2BStatus = "processed"
	B2BShipped   B2BStatus = "shipped"
	B2BCompleted B2BStatus = "completed"
	B2BRejected  B2BStatus = "rejected"
)

var b2bTransitions = map[B2BStatus][]B2BStatus{
	B2BPending:   {B2BProcessed, B2BRejected},
	B2BProcessed: {B2BShipped, B2BRejected},
	B2BShipped:   {B2BCompleted},
}

// CanTransition reports whether the request may move to target.
func (r *B2BRequest) CanTransition(target B2BStatus) bool {
	for _, s := range b2bTransitions[r.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// B2BRequest is the seller-side mirror of a buyer's B2B purchase order.
// Exactly one request exists per B2B PO; the protocol keeps the two
// documents' statuses in lockstep.
type B2BRequest struct {
	BaseModel
	SourceOutletID uuid.UUID `gorm:"type:uuid;not null;index" json:"source_outlet_id"` // buyer
	TargetOutletID uuid.UUID `gorm:"type:uuid;not null;index" json:"target_outlet_id"` // seller
	OriginalPoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"original_po_id"`
	Status         B2BStatus `gorm:"type:varchar(15);not null;index" json:"status"`

	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_amount"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(10);default:'unpaid'" json:"payment_status"`

	// Set on ship.
	CourierName   string     `gorm:"type:varchar(100)" json:"courier_name,omitempty"`
	WaybillNumber string     `gorm:"type:varchar(50)" json:"waybill_number,omitempty"`
	ShippedAt     *time.Time `json:"shipped_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	// SellerOrderID points at the accounts-receivable Order written on the
	// seller's books at ship time.
	SellerOrderID *uuid.UUID `gorm:"type:uuid" json:"seller_order_id,omitempty"`

	Note  string           `gorm:"type:text" json:"note,omitempty"`
	Items []B2BRequestItem `gorm:"foreignKey:B2BRequestID;constraint:OnDelete:CASCADE" json:"items"`
}

// B2BRequestItem mirrors one buyer PO line. SKU is the stable join key to
// the seller's sellable product at ship time.
type B2BRequestItem struct {
	BaseModel
	B2BRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"b2b_request_id"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null" json:"ingredient_id"` // buyer-side ingredient
	SKU          string          `gorm:"type:varchar(50);not null" json:"sku"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity     float64         `gorm:"type:decimal(14,3);not null" json:"quantity" validate:"gt=0"`
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit"`
	Cost         decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"cost"`
}

// RecalcTotal recomputes TotalAmount from the line items.
func (r *B2BRequest) RecalcTotal() {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.Cost.Mul(decimal.NewFromFloat(it.Quantity)))
	}
	r.TotalAmount = total
}
