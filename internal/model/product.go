package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel identifies a delivery platform. Closed enum; channel prices are
// keyed by it so unknown channels get rejected at the boundary.
type Channel string

const (
	ChannelGrabFood   Channel = "grabfood"
	ChannelGoFood     Channel = "gofood"
	ChannelShopeeFood Channel = "shopeefood"
)

// ValidChannel reports whether c is a known delivery channel.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelGrabFood, ChannelGoFood, ChannelShopeeFood:
		return true
	}
	return false
}

// Product is a sellable catalog entry. Exactly one of the three stock
// resolution modes applies: variant matrix (HasVariants), bundle
// composition (IsBundle), or the plain product itself (recipe-driven when
// Recipe is set, direct Stock otherwise).
type Product struct {
	BaseModel
	SKU         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit"`
	Price       decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"price"`
	Cogs        decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"cogs"` // authored; derived from recipe/bundle when zero
	Stock       float64         `gorm:"type:decimal(14,3);default:0" json:"stock"`
	HasVariants bool            `gorm:"default:false" json:"has_variants"`
	IsBundle    bool            `gorm:"default:false" json:"is_bundle"`

	// IsGlobalPrice true berarti harga pusat berlaku di semua outlet dan
	// OutletPrices diabaikan.
	IsGlobalPrice bool `gorm:"default:true" json:"is_global_price"`

	// Availability window. ScheduleDays is a comma-joined list of lowercase
	// weekday names; an empty schedule means always visible.
	ScheduleDays  string `gorm:"type:varchar(100)" json:"schedule_days,omitempty"`
	ScheduleStart string `gorm:"type:varchar(5)" json:"schedule_start,omitempty"` // HH:MM
	ScheduleEnd   string `gorm:"type:varchar(5)" json:"schedule_end,omitempty"`

	Recipe         []RecipeItem          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
	Variants       []ProductVariant      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	WholesaleTiers []WholesaleTier       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"wholesale_tiers,omitempty"`
	BundleItems    []BundleItem          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"bundle_items,omitempty"`
	OutletPrices   []ProductOutletPrice  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"outlet_prices,omitempty"`
	ChannelPrices  []ProductChannelPrice `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"channel_prices,omitempty"`

	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
}

// RecipeItem is one ingredient-consumption row of a product's bill of
// materials: (ingredientId, quantity, unit). Unit must be convertible to
// the referenced ingredient's native unit; that is enforced at authoring
// time, not here.
type RecipeItem struct {
	BaseModel
	ProductID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantID    *uuid.UUID  `gorm:"type:uuid;index" json:"variant_id,omitempty"` // set when the row belongs to a variant's recipe override
	IngredientID uuid.UUID   `gorm:"type:uuid;not null" json:"ingredient_id" validate:"uuid_required"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Quantity     float64     `gorm:"type:decimal(14,3);not null" json:"quantity" validate:"gt=0"`
	Unit         string      `gorm:"type:varchar(20);not null" json:"unit" validate:"required,known_unit"`
}

// ProductVariant is one attribute-combination of a variant product, with
// its own price and stock (or recipe rows carrying its VariantID).
type ProductVariant struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"` // e.g. "Large / Iced"
	SKU       string          `gorm:"type:varchar(50);index" json:"sku"`
	Price     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"price"`
	Stock     float64         `gorm:"type:decimal(14,3);default:0" json:"stock"`
	HasRecipe bool            `gorm:"default:false" json:"has_recipe"`
}

// WholesaleTier is a quantity-break price: the tier applies once the
// purchased quantity reaches MinQty.
type WholesaleTier struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	MinQty    float64         `gorm:"type:decimal(14,3);not null" json:"min_qty" validate:"gt=0"`
	Price     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
}

// BundleItem is one member product of a bundle.
type BundleItem struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	MemberID  uuid.UUID `gorm:"type:uuid;not null" json:"member_id" validate:"uuid_required"`
	Member    *Product  `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Quantity  float64   `gorm:"type:decimal(14,3);not null" json:"quantity" validate:"gt=0"`
}

// ProductOutletPrice overrides the base price at one outlet. Only consulted
// when the product's IsGlobalPrice is false.
type ProductOutletPrice struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index:idx_product_outlet,unique" json:"product_id"`
	VariantID *uuid.UUID      `gorm:"type:uuid;index" json:"variant_id,omitempty"`
	OutletID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_product_outlet,unique" json:"outlet_id" validate:"uuid_required"`
	Price     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	Available bool            `gorm:"default:true" json:"available"`
}

// ProductChannelPrice is the price/commission pair for one delivery channel.
type ProductChannelPrice struct {
	BaseModel
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_product_channel,unique" json:"product_id"`
	Channel    Channel         `gorm:"type:varchar(20);not null;index:idx_product_channel,unique" json:"channel" validate:"required,oneof=grabfood gofood shopeefood"`
	Price      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	Commission decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"commission"` // percent
}

// AvailableAt evaluates the availability schedule against t. An empty
// schedule always passes.
func (p *Product) AvailableAt(t time.Time) bool {
	if p.ScheduleDays == "" && p.ScheduleStart == "" {
		return true
	}
	if p.ScheduleDays != "" {
		day := strings.ToLower(t.Weekday().String())
		found := false
		for _, d := range strings.Split(p.ScheduleDays, ",") {
			if strings.TrimSpace(d) == day {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.ScheduleStart != "" && p.ScheduleEnd != "" {
		now := t.Format("15:04")
		if p.ScheduleStart <= p.ScheduleEnd {
			return now >= p.ScheduleStart && now <= p.ScheduleEnd
		}
		// Overnight window (e.g. 22:00 - 02:00), same handling as shifts.
		return now >= p.ScheduleStart || now <= p.ScheduleEnd
	}
	return true
}

// HasRecipe reports whether the plain product resolves stock from a recipe.
func (p *Product) HasRecipe() bool {
	return len(p.Recipe) > 0
}
