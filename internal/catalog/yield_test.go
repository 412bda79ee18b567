package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"sibos-pos/internal/model"
)

func TestAvailabilityDirectStock(t *testing.T) {
	p := &model.Product{Stock: 42}
	assert.Equal(t, 42.0, Availability(p, StockSnapshot{}))
}

func TestAvailabilityRecipeBottleneck(t *testing.T) {
	flour := uuid.New()
	oil := uuid.New()
	p := &model.Product{
		Recipe: []model.RecipeItem{
			{IngredientID: flour, Quantity: 0.2, Unit: "kg"},
			{IngredientID: oil, Quantity: 50, Unit: "ml"},
		},
	}
	snap := StockSnapshot{
		flour: {Stock: 25.5, Unit: "kg"},    // floor(25.5/0.2) = 127
		oil:   {Stock: 4, Unit: "liter"},    // floor(4000/50) = 80 <- bottleneck
	}
	assert.Equal(t, 80.0, Availability(p, snap))

	// Remove the bottleneck and the flour line dominates.
	snap[oil] = IngredientInfo{Stock: 20, Unit: "liter"}
	assert.Equal(t, 127.0, Availability(p, snap))
}

func TestAvailabilityCrossUnitLine(t *testing.T) {
	sugar := uuid.New()
	p := &model.Product{
		Recipe: []model.RecipeItem{{IngredientID: sugar, Quantity: 250, Unit: "gram"}},
	}
	snap := StockSnapshot{sugar: {Stock: 3, Unit: "kg"}}
	assert.Equal(t, 12.0, Availability(p, snap))
}

func TestAvailabilityMissingIngredientIsZero(t *testing.T) {
	p := &model.Product{
		Recipe: []model.RecipeItem{{IngredientID: uuid.New(), Quantity: 1, Unit: "pcs"}},
	}
	assert.Zero(t, Availability(p, StockSnapshot{}))
}

func TestAvailabilityIncompatibleUnitIsZero(t *testing.T) {
	milk := uuid.New()
	p := &model.Product{
		Recipe: []model.RecipeItem{{IngredientID: milk, Quantity: 100, Unit: "gram"}},
	}
	snap := StockSnapshot{milk: {Stock: 5, Unit: "liter"}}
	assert.Zero(t, Availability(p, snap))
}

func TestAvailabilityVariants(t *testing.T) {
	espresso := uuid.New()
	parent := &model.Product{HasVariants: true}
	hot := model.ProductVariant{BaseModel: model.BaseModel{ID: uuid.New()}, Stock: 10}
	iced := model.ProductVariant{BaseModel: model.BaseModel{ID: uuid.New()}, HasRecipe: true}
	parent.Variants = []model.ProductVariant{hot, iced}
	icedID := parent.Variants[1].ID
	parent.Recipe = []model.RecipeItem{
		{IngredientID: espresso, VariantID: &icedID, Quantity: 18, Unit: "gram"},
	}
	snap := StockSnapshot{espresso: {Stock: 0.09, Unit: "kg"}} // 90g -> 5 portions
	assert.Equal(t, 15.0, Availability(parent, snap))
	assert.Equal(t, 5.0, VariantAvailability(parent, &parent.Variants[1], snap))
}

func TestAvailabilityBundle(t *testing.T) {
	member1 := &model.Product{Stock: 9}
	member2 := &model.Product{Stock: 20}
	bundle := &model.Product{
		IsBundle: true,
		BundleItems: []model.BundleItem{
			{Member: member1, Quantity: 2}, // floor(9/2) = 4 <- bottleneck
			{Member: member2, Quantity: 1},
		},
	}
	assert.Equal(t, 4.0, Availability(bundle, StockSnapshot{}))

	// A member missing its preload counts as an absent entity.
	bundle.BundleItems[1].Member = nil
	assert.Zero(t, Availability(bundle, StockSnapshot{}))
}

func TestDeriveCogsFromRecipe(t *testing.T) {
	beans := uuid.New()
	milk := uuid.New()
	p := &model.Product{
		Recipe: []model.RecipeItem{
			{IngredientID: beans, Quantity: 18, Unit: "gram"},
			{IngredientID: milk, Quantity: 150, Unit: "ml"},
		},
	}
	snap := StockSnapshot{
		beans: {Unit: "kg", AvgCost: decimal.NewFromInt(120000)}, // 120 per gram
		milk:  {Unit: "liter", AvgCost: decimal.NewFromInt(18000)},
	}
	// 18g * 120 + 150ml * 18 = 2160 + 2700 = 4860
	assert.True(t, decimal.NewFromInt(4860).Equal(DeriveCogs(p, snap)), "got %s", DeriveCogs(p, snap))
}

func TestDeriveCogsAuthoredWins(t *testing.T) {
	p := &model.Product{Cogs: decimal.NewFromInt(5000)}
	assert.True(t, decimal.NewFromInt(5000).Equal(DeriveCogs(p, StockSnapshot{})))
}
