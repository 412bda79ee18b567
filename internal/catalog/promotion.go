package catalog

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sibos-pos/internal/model"
)

// CartItem is one line of an in-flight register session: a product
// snapshot plus quantity and resolved price. Bonus lines carry zero price
// and are system-managed; custom lines have no catalog id.
type CartItem struct {
	LineID           uuid.UUID        `json:"line_id"`
	ProductID        *uuid.UUID       `json:"product_id,omitempty"`
	VariantID        *uuid.UUID       `json:"variant_id,omitempty"`
	Name             string           `json:"name"`
	SKU              string           `json:"sku,omitempty"`
	Quantity         float64          `json:"quantity"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	AppliedWholesale bool             `json:"applied_wholesale"`
	IsPromoBonus     bool             `json:"is_promo_bonus"`
	IsCustom         bool             `json:"is_custom"`
	Note             string           `json:"note,omitempty"`
}

// LineTotal is quantity * unit price.
func (c *CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromFloat(c.Quantity))
}

// RewardResolver looks up the reward product for a bonus line snapshot.
type RewardResolver func(productID uuid.UUID) (name, sku string, ok bool)

// ApplyPromotions derives the full line set from the real lines and the
// active promotions. Prior bonus lines are stripped first and regenerated
// from scratch, which makes the pass idempotent: applying it twice yields
// the same cart. Per promotion, trigger quantities are summed across lines,
// sets = floor(total / buyQty), and one zero-price bonus line of
// sets*getQty units is injected. Promotions whose reward product cannot be
// resolved are skipped.
func ApplyPromotions(lines []CartItem, promos []model.Promotion, now time.Time, resolve RewardResolver) []CartItem {
	out := make([]CartItem, 0, len(lines))
	for _, l := range lines {
		if !l.IsPromoBonus {
			out = append(out, l)
		}
	}

	for _, promo := range promos {
		if !promo.ActiveAt(now) {
			continue
		}
		triggerQty := 0.0
		for _, l := range out {
			if l.IsPromoBonus || l.ProductID == nil {
				continue
			}
			if *l.ProductID == promo.BuyProductID {
				triggerQty += l.Quantity
			}
		}
		sets := math.Floor(triggerQty / promo.BuyQuantity)
		if sets <= 0 {
			continue
		}
		name, sku, ok := resolve(promo.GetProductID)
		if !ok {
			continue
		}
		rewardID := promo.GetProductID
		out = append(out, CartItem{
			LineID:       uuid.New(),
			ProductID:    &rewardID,
			Name:         name,
			SKU:          sku,
			Quantity:     sets * promo.GetQuantity,
			UnitPrice:    decimal.Zero,
			IsPromoBonus: true,
			Note:         promo.Name,
		})
	}
	return out
}
