package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sibos-pos/internal/model"
)

func testResolver(names map[uuid.UUID]string) RewardResolver {
	return func(id uuid.UUID) (string, string, bool) {
		n, ok := names[id]
		return n, "SKU-" + n, ok
	}
}

func TestApplyPromotionsBOGO(t *testing.T) {
	trigger := uuid.New()
	reward := uuid.New()
	promo := model.Promotion{
		Name:         "Buy 2 Get 1",
		BuyProductID: trigger,
		BuyQuantity:  2,
		GetProductID: reward,
		GetQuantity:  1,
		IsActive:     true,
	}
	lines := []CartItem{
		{LineID: uuid.New(), ProductID: &trigger, Name: "Es Teh", Quantity: 5, UnitPrice: decimal.NewFromInt(5000)},
	}
	resolver := testResolver(map[uuid.UUID]string{reward: "Es Teh"})

	out := ApplyPromotions(lines, []model.Promotion{promo}, time.Now(), resolver)
	require.Len(t, out, 2)
	bonus := out[1]
	assert.True(t, bonus.IsPromoBonus)
	assert.Equal(t, 2.0, bonus.Quantity, "floor(5/2) sets of 1")
	assert.True(t, bonus.UnitPrice.IsZero())
	assert.Equal(t, reward, *bonus.ProductID)
}

func TestApplyPromotionsIdempotent(t *testing.T) {
	trigger := uuid.New()
	reward := uuid.New()
	promo := model.Promotion{
		BuyProductID: trigger, BuyQuantity: 2,
		GetProductID: reward, GetQuantity: 2,
		IsActive: true,
	}
	lines := []CartItem{
		{LineID: uuid.New(), ProductID: &trigger, Quantity: 4, UnitPrice: decimal.NewFromInt(1000)},
	}
	resolver := testResolver(map[uuid.UUID]string{reward: "Bonus"})

	once := ApplyPromotions(lines, []model.Promotion{promo}, time.Now(), resolver)
	twice := ApplyPromotions(once, []model.Promotion{promo}, time.Now(), resolver)

	require.Len(t, once, 2)
	require.Len(t, twice, 2, "reapplication must not compound bonus lines")
	assert.Equal(t, once[1].Quantity, twice[1].Quantity)
}

func TestApplyPromotionsBonusNotCountedAsTrigger(t *testing.T) {
	// Self-referential promo: buy 2 of X get 1 of X. The injected bonus
	// line must not feed back into the trigger sum.
	product := uuid.New()
	promo := model.Promotion{
		BuyProductID: product, BuyQuantity: 2,
		GetProductID: product, GetQuantity: 1,
		IsActive: true,
	}
	lines := []CartItem{
		{LineID: uuid.New(), ProductID: &product, Quantity: 4, UnitPrice: decimal.NewFromInt(1000)},
	}
	resolver := testResolver(map[uuid.UUID]string{product: "Roti"})

	out := ApplyPromotions(lines, []model.Promotion{promo}, time.Now(), resolver)
	out = ApplyPromotions(out, []model.Promotion{promo}, time.Now(), resolver)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[1].Quantity)
}

func TestApplyPromotionsInactiveAndExpired(t *testing.T) {
	trigger := uuid.New()
	reward := uuid.New()
	past := time.Now().Add(-time.Hour)
	promos := []model.Promotion{
		{BuyProductID: trigger, BuyQuantity: 1, GetProductID: reward, GetQuantity: 1, IsActive: false},
		{BuyProductID: trigger, BuyQuantity: 1, GetProductID: reward, GetQuantity: 1, IsActive: true, EndsAt: &past},
	}
	lines := []CartItem{{LineID: uuid.New(), ProductID: &trigger, Quantity: 3}}
	out := ApplyPromotions(lines, promos, time.Now(), testResolver(map[uuid.UUID]string{reward: "X"}))
	assert.Len(t, out, 1)
}

func TestApplyPromotionsMissingRewardSkipped(t *testing.T) {
	trigger := uuid.New()
	promo := model.Promotion{
		BuyProductID: trigger, BuyQuantity: 1,
		GetProductID: uuid.New(), GetQuantity: 1,
		IsActive: true,
	}
	lines := []CartItem{{LineID: uuid.New(), ProductID: &trigger, Quantity: 2}}
	out := ApplyPromotions(lines, []model.Promotion{promo}, time.Now(), testResolver(nil))
	assert.Len(t, out, 1, "unresolvable reward product skips the promo")
}
