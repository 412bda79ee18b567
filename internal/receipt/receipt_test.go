package receipt

import (
	"strings"
	"testing"

	"sibos-pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	order := &model.Order{
		OrderNumber:   "ORD-20260829-A1B2C3",
		Status:        model.OrderPaid,
		PaymentStatus: model.PaymentPaid,
		PaymentMethod: model.PayCash,
		Subtotal:      decimal.NewFromInt(54000),
		Total:         decimal.NewFromInt(54000),
		AmountPaid:    decimal.NewFromInt(60000),
		ChangeDue:     decimal.NewFromInt(6000),
		Items: []model.OrderItem{
			{Name: "Kopi Susu", Quantity: 3, UnitPrice: decimal.NewFromInt(18000), LineTotal: decimal.NewFromInt(54000)},
			{Name: "Kopi Susu", Quantity: 1, UnitPrice: decimal.Zero, LineTotal: decimal.Zero, IsPromoBonus: true},
		},
	}
	outlet := &model.Outlet{Name: "Outlet Pusat", Address: "Jl. Sudirman 1"}

	got := Format(order, outlet)

	assert.Contains(t, got, "Outlet Pusat")
	assert.Contains(t, got, "ORD-20260829-A1B2C3")
	assert.Contains(t, got, "Kopi Susu (promo)")
	assert.Contains(t, got, "Rp54000")
	assert.Contains(t, got, "Kembali")
	assert.Contains(t, got, "Rp6000")
	assert.NotContains(t, got, "BELUM LUNAS")
}

func TestFormatUnpaidTempo(t *testing.T) {
	order := &model.Order{
		OrderNumber:   "ORD-20260829-D4E5F6",
		PaymentStatus: model.PaymentUnpaid,
		PaymentMethod: model.PayDebt,
		Subtotal:      decimal.NewFromInt(100000),
		Total:         decimal.NewFromInt(100000),
		AmountPaid:    decimal.Zero,
		ChangeDue:     decimal.Zero,
	}
	outlet := &model.Outlet{Name: "Outlet Pusat"}

	got := Format(order, outlet)

	assert.Contains(t, got, "BELUM LUNAS")
	assert.NotContains(t, got, "Kembali")
	// fixed width lines only
	for _, line := range strings.Split(strings.TrimRight(got, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 40, "line too wide: %q", line)
	}
}
