package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type POStatus string

const (
	// draft → (pending_approval) → ordered|pending → processed → shipped → received
	// cancelled / rejected terminal
	POStatusDraft           POStatus = "draft"
	POStatusPendingApproval POStatus = "pending_approval"
	POStatusOrdered         POStatus = "ordered" // placed with a non-network supplier
	POStatusPending         POStatus = "pending" // placed with a network supplier, awaiting counterparty
	POStatusProcessed       POStatus = "processed"
	POStatusShipped         POStatus = "shipped"
	POStatusReceived        POStatus = "received"
	POStatusCancelled       POStatus = "cancelled"
	POStatusRejected        POStatus = "rejected"
)

var poTransitions = map[POStatus][]POStatus{
	POStatusDraft:           {POStatusPendingApproval, POStatusOrdered, POStatusPending, POStatusCancelled},
	POStatusPendingApproval: {POStatusOrdered, POStatusPending, POStatusRejected, POStatusCancelled},
	POStatusOrdered:         {POStatusReceived, POStatusCancelled},
	POStatusPending:         {POStatusProcessed, POStatusRejected, POStatusCancelled},
	POStatusProcessed:       {POStatusShipped, POStatusRejected},
	POStatusShipped:         {POStatusReceived},
}

// CanTransition reports whether moving from the current status to target is
// a legal lifecycle step. Terminal states have no outgoing transitions.
func (p *PurchaseOrder) CanTransition(target POStatus) bool {
	for _, s := range poTransitions[p.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Receivable reports whether goods can be booked in against this PO.
func (p *PurchaseOrder) Receivable() bool {
	return p.Status == POStatusOrdered || p.Status == POStatusShipped
}

// PurchaseOrder is a procurement document. TotalEstimated is Σ qty*cost at
// order time; after receipt the total is recomputed from receivedQty and
// finalCost per line.
type PurchaseOrder struct {
	BaseModel
	PONumber   string     `gorm:"type:varchar(30);uniqueIndex" json:"po_number"`
	OutletID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"outlet_id" validate:"uuid_required"`
	Outlet     *Outlet    `gorm:"foreignKey:OutletID" json:"outlet,omitempty"`
	SupplierID uuid.UUID  `gorm:"type:uuid;not null;index" json:"supplier_id" validate:"uuid_required"`
	Supplier   *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Status     POStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	IsB2B      bool       `gorm:"default:false" json:"is_b2b"`

	// DistributorStatus mirrors the counterparty B2BRequest state so the
	// buyer UI can show seller progress without joining across outlets.
	DistributorStatus string `gorm:"type:varchar(20)" json:"distributor_status,omitempty"`

	TotalEstimated decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_estimated"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(10);default:'unpaid'" json:"payment_status"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	PaymentDueAt   *time.Time      `json:"payment_due_at,omitempty"` // tempo only

	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ReceivedAt  *time.Time `json:"received_at,omitempty"`

	Note  string               `gorm:"type:text" json:"note,omitempty"`
	Items []PurchaseOrderItem  `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// PurchaseOrderItem is one procurement line. ReceivedQuantity may differ
// from Quantity (partial or over-delivery); FinalCost is the landed unit
// cost in the line unit, filled at receipt.
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	IngredientID     uuid.UUID       `gorm:"type:uuid;not null" json:"ingredient_id" validate:"uuid_required"`
	Ingredient       *Ingredient     `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	SKU              string          `gorm:"type:varchar(50);not null" json:"sku"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity         float64         `gorm:"type:decimal(14,3);not null" json:"quantity" validate:"gt=0"`
	Unit             string          `gorm:"type:varchar(20);not null" json:"unit" validate:"required"`
	Cost             decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"cost"`
	ReceivedQuantity float64         `gorm:"type:decimal(14,3);default:0" json:"received_quantity"`
	FinalCost        decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"final_cost"`
}

// RecalcTotal recomputes TotalEstimated from the line items. Post-receipt
// lines use receivedQuantity * finalCost, everything else quantity * cost.
func (p *PurchaseOrder) RecalcTotal() {
	total := decimal.Zero
	for _, it := range p.Items {
		if it.ReceivedQuantity > 0 {
			total = total.Add(it.FinalCost.Mul(decimal.NewFromFloat(it.ReceivedQuantity)))
		} else {
			total = total.Add(it.Cost.Mul(decimal.NewFromFloat(it.Quantity)))
		}
	}
	p.TotalEstimated = total
}

type PRStatus string

const (
	PRPending  PRStatus = "pending"
	PRApproved PRStatus = "approved"
	PRRejected PRStatus = "rejected"
)

// PurchaseRequest is a lightweight pre-PO request. It never mutates stock;
// approval converts it into a draft PurchaseOrder.
type PurchaseRequest struct {
	BaseModel
	OutletID    uuid.UUID             `gorm:"type:uuid;not null;index" json:"outlet_id" validate:"uuid_required"`
	RequestedBy *uuid.UUID            `gorm:"type:uuid" json:"requested_by,omitempty"`
	SupplierID  *uuid.UUID            `gorm:"type:uuid" json:"supplier_id,omitempty"`
	Status      PRStatus              `gorm:"type:varchar(10);not null;index" json:"status"`
	Note        string                `gorm:"type:text" json:"note,omitempty"`
	PoID        *uuid.UUID            `gorm:"type:uuid" json:"po_id,omitempty"` // set once converted
	Items       []PurchaseRequestItem `gorm:"foreignKey:PurchaseRequestID;constraint:OnDelete:CASCADE" json:"items"`
}

type PurchaseRequestItem struct {
	BaseModel
	PurchaseRequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_request_id"`
	IngredientID      uuid.UUID `gorm:"type:uuid;not null" json:"ingredient_id" validate:"uuid_required"`
	Quantity          float64   `gorm:"type:decimal(14,3);not null" json:"quantity" validate:"gt=0"`
	Unit              string    `gorm:"type:varchar(20);not null" json:"unit" validate:"required"`
}
