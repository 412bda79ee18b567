package model

import "github.com/shopspring/decimal"

// Customer is a CRM entry. DebtBalance grows when a checkout settles with
// the debt payment method and shrinks via debt payments.
type Customer struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Phone       string          `gorm:"type:varchar(20);index" json:"phone"`
	Email       string          `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Address     string          `gorm:"type:text" json:"address"`
	DebtBalance decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"debt_balance"`
	Points      int             `gorm:"default:0" json:"points"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
}
