package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is outlet-scoped raw or semi-finished material. Stock is held
// in the ingredient's native unit; AvgCost is the weighted-average cost per
// native unit and is only updated on restocking events (PO receipt,
// production, transfer receive).
type Ingredient struct {
	BaseModel
	OutletID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_outlet_sku,unique" json:"outlet_id" validate:"uuid_required"`
	Outlet     *Outlet         `gorm:"foreignKey:OutletID" json:"outlet,omitempty"`
	SKU        string          `gorm:"type:varchar(50);not null;index:idx_outlet_sku,unique" json:"sku" validate:"required"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category   string          `gorm:"type:varchar(100)" json:"category"`
	Stock      float64         `gorm:"type:decimal(14,3);default:0" json:"stock"`
	Unit       string          `gorm:"type:varchar(20);not null" json:"unit" validate:"required,known_unit"`
	MinStock   float64         `gorm:"type:decimal(14,3);default:0" json:"min_stock"`
	AvgCost    decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"avg_cost"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier   *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	// Recipe is set only for semi-finished ingredients manufactured from
	// other ingredients (produce operation).
	Recipe []IngredientRecipeItem `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
}

// IngredientRecipeItem is one bill-of-materials row of a semi-finished
// ingredient. Unit must be convertible to the component's native unit.
type IngredientRecipeItem struct {
	BaseModel
	IngredientID uuid.UUID   `gorm:"type:uuid;not null;index" json:"ingredient_id" validate:"uuid_required"`
	ComponentID  uuid.UUID   `gorm:"type:uuid;not null" json:"component_id" validate:"uuid_required"`
	Component    *Ingredient `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
	Quantity     float64     `gorm:"type:decimal(14,3);not null" json:"quantity" validate:"gt=0"`
	Unit         string      `gorm:"type:varchar(20);not null" json:"unit" validate:"required,known_unit"`
}

// HasRecipe reports whether the ingredient is semi-finished.
func (i *Ingredient) HasRecipe() bool {
	return len(i.Recipe) > 0
}

// IsLowStock reports whether the ingredient is at or below its reorder
// threshold.
func (i *Ingredient) IsLowStock() bool {
	return i.MinStock > 0 && i.Stock <= i.MinStock
}
