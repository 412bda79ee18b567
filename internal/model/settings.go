package model

import "github.com/shopspring/decimal"

// BusinessSettings holds business-level knobs that used to be scattered
// constants: the PO approval threshold, tempo payment terms and the
// auto-reorder supplier score floors. Single row, created on seed.
type BusinessSettings struct {
	BaseModel
	BusinessName string `gorm:"type:varchar(255)" json:"business_name"`
	Address      string `gorm:"type:text" json:"address"`
	PaperSize    string `gorm:"type:varchar(10);default:'80mm'" json:"paper_size"`

	// POs above this total need OWNER/MANAGER approval.
	ApprovalThreshold decimal.Decimal `gorm:"type:decimal(15,2);default:5000000" json:"approval_threshold"`

	// Tempo receipts fall due this many days after the receive date.
	TempoDurationDays int `gorm:"default:14" json:"tempo_duration_days"`

	// Auto-reorder substitutes the default supplier when its score is below
	// ReorderScoreFloor and an alternative in the same category scores above
	// ReorderPreferredScore.
	ReorderScoreFloor     int `gorm:"default:70" json:"reorder_score_floor"`
	ReorderPreferredScore int `gorm:"default:80" json:"reorder_preferred_score"`
}
