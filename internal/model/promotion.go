package model

import (
	"time"

	"github.com/google/uuid"
)

// Promotion is a buy-X-get-Y rule. The cart pass injects a zero-price bonus
// line of GetQuantity units per completed set of BuyQuantity trigger units.
type Promotion struct {
	BaseModel
	Name         string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	BuyProductID uuid.UUID  `gorm:"type:uuid;not null" json:"buy_product_id" validate:"uuid_required"`
	BuyQuantity  float64    `gorm:"type:decimal(14,3);not null" json:"buy_quantity" validate:"gt=0"`
	GetProductID uuid.UUID  `gorm:"type:uuid;not null" json:"get_product_id" validate:"uuid_required"`
	GetQuantity  float64    `gorm:"type:decimal(14,3);not null" json:"get_quantity" validate:"gt=0"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
}

// ActiveAt reports whether the promotion applies at t.
func (p *Promotion) ActiveAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && t.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && t.After(*p.EndsAt) {
		return false
	}
	return true
}
