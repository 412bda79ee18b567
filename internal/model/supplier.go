package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier is a sourcing counterparty. When IsSibosNetwork is true the
// supplier is another outlet in the same network and the B2B fulfillment
// protocol applies instead of plain ordering.
type Supplier struct {
	BaseModel
	Name             string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category         string     `gorm:"type:varchar(100)" json:"category"`
	ContactPerson    string     `gorm:"type:varchar(100)" json:"contact_person"`
	Phone            string     `gorm:"type:varchar(20)" json:"phone"`
	IsSibosNetwork   bool       `gorm:"default:false" json:"is_sibos_network"`
	OutletID         *uuid.UUID `gorm:"type:uuid;index" json:"outlet_id,omitempty"` // set only for network suppliers
	Outlet           *Outlet    `gorm:"foreignKey:OutletID" json:"outlet,omitempty"`
	PerformanceScore int        `gorm:"default:75" json:"performance_score" validate:"gte=0,lte=100"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
}

// SupplierCatalogItem is one row of a supplier's price list. SKU is the
// stable join key to outlet ingredients (name matching is deliberately not
// used anywhere as a foreign key).
type SupplierCatalogItem struct {
	BaseModel
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id" validate:"uuid_required"`
	Supplier   *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	SKU        string          `gorm:"type:varchar(50);not null;index" json:"sku" validate:"required"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category   string          `gorm:"type:varchar(100)" json:"category"`
	Unit       string          `gorm:"type:varchar(20)" json:"unit"`
	Price      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
}
