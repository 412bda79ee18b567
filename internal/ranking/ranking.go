// Package ranking scores candidate sourcing options for an ingredient by a
// weighted blend of nominal price and supplier performance.
package ranking

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Option tags.
const (
	TagRecommended = "recommended"
	TagTrusted     = "trusted"
	TagRisk        = "risk"
	TagBestPrice   = "best_price"
)

// Option source kinds.
const (
	SourceCurrent  = "current_supplier"
	SourceNetwork  = "network_catalog"
	SourceFallback = "alternative"
)

// Score bands for tagging.
const (
	trustedScoreMin = 90
	riskScoreMax    = 50
)

// Option is one candidate sourcing choice for an ingredient.
type Option struct {
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	Source        string          `json:"source"`
	Price         decimal.Decimal `json:"price"`
	Score         int             `json:"score"`
	WeightedPrice decimal.Decimal `json:"weighted_price"`
	Tags          []string        `json:"tags"`
}

// WeightedPrice applies the performance penalty:
// price * (1 + (100-score)/200). Monotonic in score, so a low performer
// ranks worse than its nominal price suggests while the displayed price
// never changes.
func WeightedPrice(price decimal.Decimal, score int) decimal.Decimal {
	penalty := decimal.NewFromInt(int64(100 - score)).Div(decimal.NewFromInt(200))
	return price.Mul(decimal.NewFromInt(1).Add(penalty))
}

// Rank orders options ascending by weighted price and applies tags: the top
// option is recommended, score >= 90 is trusted, score < 50 is risk, and
// the option(s) at the globally lowest nominal price get best_price (which
// can differ from recommended).
func Rank(options []Option) []Option {
	if len(options) == 0 {
		return options
	}
	out := make([]Option, len(options))
	copy(out, options)

	for i := range out {
		out[i].WeightedPrice = WeightedPrice(out[i].Price, out[i].Score)
		out[i].Tags = nil
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WeightedPrice.LessThan(out[j].WeightedPrice)
	})

	lowest := out[0].Price
	for _, o := range out[1:] {
		if o.Price.LessThan(lowest) {
			lowest = o.Price
		}
	}

	for i := range out {
		if i == 0 {
			out[i].Tags = append(out[i].Tags, TagRecommended)
		}
		if out[i].Score >= trustedScoreMin {
			out[i].Tags = append(out[i].Tags, TagTrusted)
		}
		if out[i].Score < riskScoreMax {
			out[i].Tags = append(out[i].Tags, TagRisk)
		}
		if out[i].Price.Equal(lowest) {
			out[i].Tags = append(out[i].Tags, TagBestPrice)
		}
	}
	return out
}

// Candidate is a same-category alternative considered by the auto-reorder
// substitution.
type Candidate struct {
	SupplierID   uuid.UUID
	SupplierName string
	Score        int
}

// PickSubstitute selects the top-scoring alternative above minScore, or
// nil when none qualifies. Callers must attach a human-readable note when
// substituting; silent switches are not allowed.
func PickSubstitute(candidates []Candidate, minScore int) *Candidate {
	var best *Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.Score <= minScore {
			continue
		}
		if best == nil || c.Score > best.Score {
			best = c
		}
	}
	return best
}
