package ranking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedPrice(t *testing.T) {
	// score 100 -> no penalty; score 0 -> +50%; score 60 -> +20%
	assert.True(t, decimal.NewFromInt(1000).Equal(WeightedPrice(decimal.NewFromInt(1000), 100)))
	assert.True(t, decimal.NewFromInt(1500).Equal(WeightedPrice(decimal.NewFromInt(1000), 0)))
	assert.True(t, decimal.NewFromInt(1200).Equal(WeightedPrice(decimal.NewFromInt(1000), 60)))
}

func TestRankTagsAndOrder(t *testing.T) {
	cheapButBad := Option{SupplierID: uuid.New(), SupplierName: "Murah Jaya", Price: decimal.NewFromInt(10000), Score: 40}
	pricierButGood := Option{SupplierID: uuid.New(), SupplierName: "Andalan", Price: decimal.NewFromInt(11000), Score: 95}

	// weighted: 10000*1.30 = 13000 vs 11000*1.025 = 11275
	out := Rank([]Option{cheapButBad, pricierButGood})
	require.Len(t, out, 2)

	assert.Equal(t, "Andalan", out[0].SupplierName)
	assert.Contains(t, out[0].Tags, TagRecommended)
	assert.Contains(t, out[0].Tags, TagTrusted)
	assert.NotContains(t, out[0].Tags, TagBestPrice)

	assert.Equal(t, "Murah Jaya", out[1].SupplierName)
	assert.Contains(t, out[1].Tags, TagBestPrice, "lowest nominal price differs from recommended")
	assert.Contains(t, out[1].Tags, TagRisk)
	assert.NotContains(t, out[1].Tags, TagRecommended)
}

func TestRankDoesNotMutateNominalPrice(t *testing.T) {
	opt := Option{SupplierID: uuid.New(), Price: decimal.NewFromInt(5000), Score: 10}
	out := Rank([]Option{opt})
	assert.True(t, decimal.NewFromInt(5000).Equal(out[0].Price))
	assert.True(t, out[0].WeightedPrice.GreaterThan(out[0].Price))
}

func TestPickSubstitute(t *testing.T) {
	a := Candidate{SupplierID: uuid.New(), SupplierName: "A", Score: 82}
	b := Candidate{SupplierID: uuid.New(), SupplierName: "B", Score: 91}
	c := Candidate{SupplierID: uuid.New(), SupplierName: "C", Score: 78}

	got := PickSubstitute([]Candidate{a, b, c}, 80)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.SupplierName)

	assert.Nil(t, PickSubstitute([]Candidate{c}, 80), "no candidate above the floor")
	assert.Nil(t, PickSubstitute(nil, 80))
}
