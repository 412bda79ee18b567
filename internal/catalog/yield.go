// Package catalog holds the pure computations behind the sellable catalog:
// availability (recipe yield), price resolution and the promotion pass.
// Everything here works on loaded snapshots so it can run inside or outside
// a database transaction.
package catalog

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sibos-pos/internal/model"
	"sibos-pos/internal/unitconv"
)

// IngredientInfo is one ledger row in a stock snapshot.
type IngredientInfo struct {
	Stock   float64
	Unit    string
	AvgCost decimal.Decimal
}

// StockSnapshot maps ingredient id to its current ledger state. Built per
// request; availability is recomputed on every read because ingredient
// stock moves independently of the product record.
type StockSnapshot map[uuid.UUID]IngredientInfo

// Availability derives how many units of the product are sellable right
// now. Recipe products run the bill-of-materials bottleneck computation;
// bundles take the min across members; variant products sum their
// variants; everything else reads direct stock.
func Availability(p *model.Product, snap StockSnapshot) float64 {
	switch {
	case p.HasVariants:
		total := 0.0
		for i := range p.Variants {
			total += VariantAvailability(p, &p.Variants[i], snap)
		}
		return total
	case p.IsBundle:
		return bundleAvailability(p, snap)
	case p.HasRecipe():
		return recipeYield(p.Recipe, nil, snap)
	default:
		return p.Stock
	}
}

// VariantAvailability resolves one variant: its own recipe rows when it has
// a recipe, direct variant stock otherwise.
func VariantAvailability(p *model.Product, v *model.ProductVariant, snap StockSnapshot) float64 {
	if v.HasRecipe {
		return recipeYield(p.Recipe, &v.ID, snap)
	}
	return v.Stock
}

// recipeYield is the classic bottleneck computation: per line, convert the
// ingredient's stock into the line unit, divide by the required quantity,
// floor, and take the minimum. A missing ingredient or an inconvertible
// unit yields zero (fail safe, not fail open). variantID nil selects the
// product-level rows (those without a VariantID).
func recipeYield(lines []model.RecipeItem, variantID *uuid.UUID, snap StockSnapshot) float64 {
	matched := false
	yield := math.Inf(1)
	for _, line := range lines {
		if variantID == nil {
			if line.VariantID != nil {
				continue
			}
		} else if line.VariantID == nil || *line.VariantID != *variantID {
			continue
		}
		matched = true
		info, ok := snap[line.IngredientID]
		if !ok {
			return 0
		}
		inLineUnit, err := unitconv.Convert(info.Stock, info.Unit, line.Unit)
		if err != nil {
			return 0
		}
		portions := math.Floor(inLineUnit / line.Quantity)
		if portions < yield {
			yield = portions
		}
	}
	if !matched || math.IsInf(yield, 1) {
		return 0
	}
	if yield < 0 {
		return 0
	}
	return yield
}

// bundleAvailability is the min over member products of
// floor(memberAvailability / memberQty). Members missing their preload
// count as absent entities, so zero.
func bundleAvailability(p *model.Product, snap StockSnapshot) float64 {
	if len(p.BundleItems) == 0 {
		return 0
	}
	yield := math.Inf(1)
	for _, bi := range p.BundleItems {
		if bi.Member == nil {
			return 0
		}
		avail := Availability(bi.Member, snap)
		sets := math.Floor(avail / bi.Quantity)
		if sets < yield {
			yield = sets
		}
	}
	if math.IsInf(yield, 1) || yield < 0 {
		return 0
	}
	return yield
}

// DeriveCogs returns the product's unit cost: the authored figure when one
// is set, otherwise the sum of recipe-ingredient average costs
// (unit-converted) or of bundle-member costs. Missing references contribute
// zero so the rest of the catalog stays usable.
func DeriveCogs(p *model.Product, snap StockSnapshot) decimal.Decimal {
	if !p.Cogs.IsZero() {
		return p.Cogs
	}
	if p.IsBundle {
		total := decimal.Zero
		for _, bi := range p.BundleItems {
			if bi.Member == nil {
				continue
			}
			total = total.Add(DeriveCogs(bi.Member, snap).Mul(decimal.NewFromFloat(bi.Quantity)))
		}
		return total
	}
	if !p.HasRecipe() {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, line := range p.Recipe {
		if line.VariantID != nil {
			continue
		}
		info, ok := snap[line.IngredientID]
		if !ok {
			continue
		}
		// AvgCost is per native unit; scale it to the line unit.
		factor, err := unitconv.Convert(1, line.Unit, info.Unit)
		if err != nil {
			continue
		}
		costPerLineUnit := info.AvgCost.Mul(decimal.NewFromFloat(factor))
		total = total.Add(costPerLineUnit.Mul(decimal.NewFromFloat(line.Quantity)))
	}
	return total
}
