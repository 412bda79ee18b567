package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CashEntryType string

const (
	CashIn  CashEntryType = "in"
	CashOut CashEntryType = "out"
)

type CashCategory string

const (
	CashCategorySale          CashCategory = "sale"
	CashCategoryPurchase      CashCategory = "purchase"
	CashCategoryDebtPayment   CashCategory = "debt_payment"
	CashCategoryB2BSettlement CashCategory = "b2b_settlement"
	CashCategoryAdjustment    CashCategory = "adjustment"
)

// CashEntry is one row of the cash ledger. Entries are append-only and are
// always written inside the same transaction as the document that caused
// them.
type CashEntry struct {
	BaseModel
	OutletID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"outlet_id"`
	Type        CashEntryType   `gorm:"type:varchar(5);not null" json:"type"`
	Category    CashCategory    `gorm:"type:varchar(20);not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method      PaymentMethod   `gorm:"type:varchar(20)" json:"method,omitempty"`
	Description string          `gorm:"type:text" json:"description,omitempty"`

	RefType string     `gorm:"type:varchar(30)" json:"ref_type,omitempty"`
	RefID   *uuid.UUID `gorm:"type:uuid;index" json:"ref_id,omitempty"`
}
