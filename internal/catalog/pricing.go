package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sibos-pos/internal/model"
)

// ResolvePrice computes the effective unit price for a cart line. Order of
// resolution: variant price (or product base price), then the per-outlet
// override when the product is not globally priced, then the deepest
// reachable wholesale tier. The second return reports whether a wholesale
// tier applied.
func ResolvePrice(p *model.Product, v *model.ProductVariant, quantity float64, outletID uuid.UUID) (decimal.Decimal, bool) {
	price := basePrice(p, v, outletID)

	// Wholesale: the tier with the largest MinQty still satisfied by the
	// quantity wins, so a bigger order can never price higher.
	applied := false
	bestMin := 0.0
	for _, tier := range p.WholesaleTiers {
		if quantity >= tier.MinQty && tier.MinQty > bestMin {
			bestMin = tier.MinQty
			price = tier.Price
			applied = true
		}
	}
	return price, applied
}

func basePrice(p *model.Product, v *model.ProductVariant, outletID uuid.UUID) decimal.Decimal {
	if v != nil {
		if !p.IsGlobalPrice {
			for _, op := range p.OutletPrices {
				if op.OutletID == outletID && op.VariantID != nil && *op.VariantID == v.ID {
					return op.Price
				}
			}
		}
		return v.Price
	}
	if !p.IsGlobalPrice {
		for _, op := range p.OutletPrices {
			if op.OutletID == outletID && op.VariantID == nil {
				return op.Price
			}
		}
	}
	return p.Price
}

// ChannelPrice returns the delivery-platform price for the product, falling
// back to the base price when the channel has no explicit entry. Unknown
// channels are rejected.
func ChannelPrice(p *model.Product, ch model.Channel) (decimal.Decimal, error) {
	if !model.ValidChannel(ch) {
		return decimal.Zero, model.ErrMissingEntity
	}
	for _, cp := range p.ChannelPrices {
		if cp.Channel == ch {
			return cp.Price, nil
		}
	}
	return p.Price, nil
}

// AvailableAtOutlet reports whether the product is sellable at the outlet
// (per-outlet availability override, default true).
func AvailableAtOutlet(p *model.Product, outletID uuid.UUID) bool {
	for _, op := range p.OutletPrices {
		if op.OutletID == outletID && op.VariantID == nil {
			return op.Available
		}
	}
	return true
}
