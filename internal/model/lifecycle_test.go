package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPOTransitions(t *testing.T) {
	allowed := []struct {
		from, to POStatus
	}{
		{POStatusDraft, POStatusPendingApproval},
		{POStatusDraft, POStatusOrdered},
		{POStatusDraft, POStatusPending},
		{POStatusDraft, POStatusCancelled},
		{POStatusPendingApproval, POStatusOrdered},
		{POStatusPendingApproval, POStatusRejected},
		{POStatusOrdered, POStatusReceived},
		{POStatusPending, POStatusProcessed},
		{POStatusProcessed, POStatusShipped},
		{POStatusShipped, POStatusReceived},
	}
	for _, c := range allowed {
		po := PurchaseOrder{Status: c.from}
		assert.True(t, po.CanTransition(c.to), "%s -> %s should be legal", c.from, c.to)
	}

	denied := []struct {
		from, to POStatus
	}{
		{POStatusDraft, POStatusReceived}, // receiving a draft is the classic corruption path
		{POStatusDraft, POStatusShipped},
		{POStatusPending, POStatusReceived},
		{POStatusReceived, POStatusCancelled}, // terminal
		{POStatusCancelled, POStatusOrdered},
		{POStatusRejected, POStatusDraft},
		{POStatusOrdered, POStatusProcessed},
	}
	for _, c := range denied {
		po := PurchaseOrder{Status: c.from}
		assert.False(t, po.CanTransition(c.to), "%s -> %s must be rejected", c.from, c.to)
	}
}

func TestPOReceivable(t *testing.T) {
	assert.True(t, (&PurchaseOrder{Status: POStatusOrdered}).Receivable())
	assert.True(t, (&PurchaseOrder{Status: POStatusShipped}).Receivable())
	assert.False(t, (&PurchaseOrder{Status: POStatusDraft}).Receivable())
	assert.False(t, (&PurchaseOrder{Status: POStatusPending}).Receivable())
	assert.False(t, (&PurchaseOrder{Status: POStatusReceived}).Receivable())
}

func TestPORecalcTotal(t *testing.T) {
	po := PurchaseOrder{Items: []PurchaseOrderItem{
		{Quantity: 50, Cost: decimal.NewFromInt(12500)},
		{Quantity: 10, Cost: decimal.NewFromInt(34000)},
	}}
	po.RecalcTotal()
	assert.True(t, decimal.NewFromInt(965000).Equal(po.TotalEstimated), "got %s", po.TotalEstimated)

	// After receipt, received quantity and final cost win.
	po.Items[0].ReceivedQuantity = 45
	po.Items[0].FinalCost = decimal.NewFromInt(13000)
	po.RecalcTotal()
	want := decimal.NewFromInt(45*13000 + 10*34000)
	assert.True(t, want.Equal(po.TotalEstimated), "got %s", po.TotalEstimated)
}

func TestB2BTransitions(t *testing.T) {
	r := B2BRequest{Status: B2BPending}
	assert.True(t, r.CanTransition(B2BProcessed))
	assert.True(t, r.CanTransition(B2BRejected))
	assert.False(t, r.CanTransition(B2BShipped), "must be processed before shipping")

	r.Status = B2BProcessed
	assert.True(t, r.CanTransition(B2BShipped))
	assert.True(t, r.CanTransition(B2BRejected))

	r.Status = B2BShipped
	assert.True(t, r.CanTransition(B2BCompleted))
	assert.False(t, r.CanTransition(B2BRejected), "shipped stock cannot be un-shipped by a reject")

	r.Status = B2BCompleted
	assert.False(t, r.CanTransition(B2BShipped))
}

func TestCanApprovePO(t *testing.T) {
	assert.True(t, CanApprovePO(RoleOwner))
	assert.True(t, CanApprovePO(RoleManager))
	assert.False(t, CanApprovePO(RoleCashier))
	assert.False(t, CanApprovePO(""))
}

func TestShiftAddSale(t *testing.T) {
	s := Shift{}
	s.AddSale(PayCash, decimal.NewFromInt(15000))
	s.AddSale(PayQris, decimal.NewFromInt(20000))
	s.AddSale(PayCash, decimal.NewFromInt(5000))
	assert.True(t, decimal.NewFromInt(20000).Equal(s.TotalCash))
	assert.True(t, decimal.NewFromInt(20000).Equal(s.TotalQris))
	assert.True(t, s.TotalTransfer.IsZero())
	assert.Equal(t, 3, s.TotalOrders)
}
