package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPaid      OrderStatus = "paid"
	OrderServed    OrderStatus = "served"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderDineIn   OrderType = "dine_in"
	OrderTakeAway OrderType = "take_away"
	OrderDelivery OrderType = "delivery"
	OrderB2B      OrderType = "b2b"
)

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayTransfer PaymentMethod = "transfer"
	PayQris     PaymentMethod = "qris"
	PayDebt     PaymentMethod = "debt"
	PayTempo    PaymentMethod = "tempo" // procurement only: unpaid with due date
)

// Order is the immutable record of a committed transaction. Items are
// snapshots; only Status and PaymentStatus move after creation (served,
// payment settled).
type Order struct {
	BaseModel
	OutletID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"outlet_id"`
	OrderNumber   string          `gorm:"type:varchar(30);uniqueIndex" json:"order_number"`
	Type          OrderType       `gorm:"type:varchar(20);not null" json:"type"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(10);not null" json:"payment_status"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"subtotal"`
	Total         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	ChangeDue     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"change_due"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ShiftID       *uuid.UUID      `gorm:"type:uuid;index" json:"shift_id,omitempty"`
	StaffID       *uuid.UUID      `gorm:"type:uuid" json:"staff_id,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`

	// Set on seller-side orders created by a B2B shipment; back-reference
	// to the buyer's purchase order.
	ReferencePoID *uuid.UUID `gorm:"type:uuid;index" json:"reference_po_id,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is a committed cart line snapshot.
type OrderItem struct {
	BaseModel
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"` // nil for custom lines
	VariantID        *uuid.UUID      `gorm:"type:uuid" json:"variant_id,omitempty"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU              string          `gorm:"type:varchar(50)" json:"sku"`
	Quantity         float64         `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"line_total"`
	AppliedWholesale bool            `gorm:"default:false" json:"applied_wholesale"`
	IsPromoBonus     bool            `gorm:"default:false" json:"is_promo_bonus"`
	IsCustom         bool            `gorm:"default:false" json:"is_custom"`
	Note             string          `gorm:"type:text" json:"note,omitempty"`
}
