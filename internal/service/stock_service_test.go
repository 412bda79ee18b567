package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWeightedAverageCost(t *testing.T) {
	t.Run("blends old and received value by quantity", func(t *testing.T) {
		// 10 pcs @ 1000 + 10 pcs @ 2000 = 20 pcs @ 1500
		got := weightedAverageCost(10, decimal.NewFromInt(1000), 10, decimal.NewFromInt(2000))
		assert.True(t, got.Equal(decimal.NewFromInt(1500)), "got %s", got)
	})

	t.Run("uneven quantities weight toward the larger lot", func(t *testing.T) {
		// 30 @ 1000 + 10 @ 2000 = 40 @ 1250
		got := weightedAverageCost(30, decimal.NewFromInt(1000), 10, decimal.NewFromInt(2000))
		assert.True(t, got.Equal(decimal.NewFromInt(1250)), "got %s", got)
	})

	t.Run("depleted ledger takes the received cost as-is", func(t *testing.T) {
		got := weightedAverageCost(0, decimal.NewFromInt(9999), 5, decimal.NewFromInt(1750))
		assert.True(t, got.Equal(decimal.NewFromInt(1750)), "got %s", got)
	})

	t.Run("negative ledger also resets to the received cost", func(t *testing.T) {
		got := weightedAverageCost(-2, decimal.NewFromInt(800), 5, decimal.NewFromInt(1200))
		assert.True(t, got.Equal(decimal.NewFromInt(1200)), "got %s", got)
	})

	t.Run("fractional quantities keep decimal precision", func(t *testing.T) {
		// 1.5 kg @ 10000 + 0.5 kg @ 14000 = 2 kg @ 11000
		got := weightedAverageCost(1.5, decimal.NewFromInt(10000), 0.5, decimal.NewFromInt(14000))
		assert.True(t, got.Equal(decimal.NewFromInt(11000)), "got %s", got)
	})
}
