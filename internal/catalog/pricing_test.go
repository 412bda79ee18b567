package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"sibos-pos/internal/model"
)

func price(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestResolvePriceWholesaleTiers(t *testing.T) {
	p := &model.Product{
		Price: price(38000),
		WholesaleTiers: []model.WholesaleTier{
			{MinQty: 6, Price: price(37500)},
			{MinQty: 12, Price: price(36000)},
		},
	}
	cases := []struct {
		qty  float64
		want int64
		wholesale bool
	}{
		{5, 38000, false},
		{6, 37500, true},
		{10, 37500, true},
		{12, 36000, true},
		{100, 36000, true},
	}
	for _, c := range cases {
		got, applied := ResolvePrice(p, nil, c.qty, uuid.Nil)
		assert.True(t, price(c.want).Equal(got), "qty=%v got %s", c.qty, got)
		assert.Equal(t, c.wholesale, applied, "qty=%v", c.qty)
	}
}

func TestResolvePriceMonotonic(t *testing.T) {
	p := &model.Product{
		Price: price(38000),
		WholesaleTiers: []model.WholesaleTier{
			{MinQty: 6, Price: price(37500)},
			{MinQty: 12, Price: price(36000)},
			{MinQty: 24, Price: price(34000)},
		},
	}
	prev := decimal.NewFromInt(1 << 40)
	for qty := 1.0; qty <= 40; qty++ {
		got, _ := ResolvePrice(p, nil, qty, uuid.Nil)
		assert.True(t, got.LessThanOrEqual(prev), "qty=%v price rose from %s to %s", qty, prev, got)
		prev = got
	}
}

func TestResolvePriceOutletOverride(t *testing.T) {
	outlet := uuid.New()
	other := uuid.New()
	p := &model.Product{
		Price:         price(10000),
		IsGlobalPrice: false,
		OutletPrices: []model.ProductOutletPrice{
			{OutletID: outlet, Price: price(12000)},
		},
	}
	got, _ := ResolvePrice(p, nil, 1, outlet)
	assert.True(t, price(12000).Equal(got))

	got, _ = ResolvePrice(p, nil, 1, other)
	assert.True(t, price(10000).Equal(got))

	// Global pricing ignores the override rows.
	p.IsGlobalPrice = true
	got, _ = ResolvePrice(p, nil, 1, outlet)
	assert.True(t, price(10000).Equal(got))
}

func TestResolvePriceVariant(t *testing.T) {
	outlet := uuid.New()
	v := model.ProductVariant{BaseModel: model.BaseModel{ID: uuid.New()}, Price: price(25000)}
	vid := v.ID
	p := &model.Product{
		Price:         price(20000),
		HasVariants:   true,
		IsGlobalPrice: false,
		Variants:      []model.ProductVariant{v},
		OutletPrices: []model.ProductOutletPrice{
			{OutletID: outlet, VariantID: &vid, Price: price(27000)},
		},
	}
	got, _ := ResolvePrice(p, &p.Variants[0], 1, outlet)
	assert.True(t, price(27000).Equal(got))

	got, _ = ResolvePrice(p, &p.Variants[0], 1, uuid.New())
	assert.True(t, price(25000).Equal(got), "variant price, not parent base")
}

func TestChannelPrice(t *testing.T) {
	p := &model.Product{
		Price: price(20000),
		ChannelPrices: []model.ProductChannelPrice{
			{Channel: model.ChannelGoFood, Price: price(24000)},
		},
	}
	got, err := ChannelPrice(p, model.ChannelGoFood)
	assert.NoError(t, err)
	assert.True(t, price(24000).Equal(got))

	got, err = ChannelPrice(p, model.ChannelGrabFood)
	assert.NoError(t, err)
	assert.True(t, price(20000).Equal(got), "fallback to base price")

	_, err = ChannelPrice(p, model.Channel("ubereats"))
	assert.Error(t, err, "unknown channel is rejected")
}
