// Package receipt renders committed orders as plain-text receipts for
// thermal printers. Pure formatting; no business logic lives here.
package receipt

import (
	"fmt"
	"strings"

	"sibos-pos/internal/model"

	"github.com/shopspring/decimal"
)

const lineWidth = 32 // 58mm paper

// Format renders an order receipt for the given outlet. The output is a
// fixed-width text block; the caller decides the transport (download,
// print spooler, preview).
func Format(order *model.Order, outlet *model.Outlet) string {
	var b strings.Builder

	center(&b, outlet.Name)
	if outlet.Address != "" {
		center(&b, outlet.Address)
	}
	if outlet.Phone != "" {
		center(&b, outlet.Phone)
	}
	rule(&b)

	b.WriteString(order.OrderNumber + "\n")
	b.WriteString(order.CreatedAt.Format("02/01/2006 15:04") + "\n")
	rule(&b)

	for _, item := range order.Items {
		b.WriteString(item.Name)
		if item.IsPromoBonus {
			b.WriteString(" (promo)")
		}
		b.WriteString("\n")
		qty := fmt.Sprintf("  %s x %s", trimQty(item.Quantity), money(item.UnitPrice))
		pad(&b, qty, money(item.LineTotal))
	}
	rule(&b)

	pad(&b, "Subtotal", money(order.Subtotal))
	pad(&b, "Total", money(order.Total))
	pad(&b, strings.ToUpper(string(order.PaymentMethod)), money(order.AmountPaid))
	if order.ChangeDue.IsPositive() {
		pad(&b, "Kembali", money(order.ChangeDue))
	}
	if order.PaymentStatus == model.PaymentUnpaid {
		center(&b, "* BELUM LUNAS *")
	}
	rule(&b)
	center(&b, "Terima kasih")

	return b.String()
}

func money(d decimal.Decimal) string {
	return "Rp" + d.StringFixed(0)
}

func trimQty(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", q), "0"), ".")
}

// pad writes left and right text on one line separated by spaces.
func pad(b *strings.Builder, left, right string) {
	gap := lineWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
}

func center(b *strings.Builder, s string) {
	if len(s) >= lineWidth {
		b.WriteString(s + "\n")
		return
	}
	b.WriteString(strings.Repeat(" ", (lineWidth-len(s))/2) + s + "\n")
}

func rule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
}
