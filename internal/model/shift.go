package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is a register session at one outlet. Checkout commits are only
// allowed while a shift is open; running totals per payment method are
// updated inside the same transaction as the Order write.
type Shift struct {
	BaseModel
	OutletID uuid.UUID   `gorm:"type:uuid;not null;index" json:"outlet_id" validate:"uuid_required"`
	Outlet   *Outlet     `gorm:"foreignKey:OutletID" json:"outlet,omitempty"`
	UserID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User     *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status   ShiftStatus `gorm:"type:varchar(10);not null;index" json:"status"`

	OpenedAt time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	OpeningCash decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"opening_cash"`
	// ClosingCash is the counted drawer amount entered at close;
	// ExpectedCash = OpeningCash + TotalCash.
	ClosingCash  decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"closing_cash"`
	ExpectedCash decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"expected_cash"`

	TotalCash     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_cash"`
	TotalTransfer decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_transfer"`
	TotalQris     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_qris"`
	TotalDebt     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_debt"`
	TotalOrders   int             `gorm:"default:0" json:"total_orders"`

	Note string `gorm:"type:text" json:"note,omitempty"`
}

func (Shift) TableName() string {
	return "shifts"
}

// AddSale bumps the running total for the given payment method.
func (s *Shift) AddSale(method PaymentMethod, amount decimal.Decimal) {
	switch method {
	case PayCash:
		s.TotalCash = s.TotalCash.Add(amount)
	case PayTransfer:
		s.TotalTransfer = s.TotalTransfer.Add(amount)
	case PayQris:
		s.TotalQris = s.TotalQris.Add(amount)
	case PayDebt:
		s.TotalDebt = s.TotalDebt.Add(amount)
	}
	s.TotalOrders++
}
