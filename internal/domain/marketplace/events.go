package marketplace

import (
	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// Event types published by the marketplace domain
const (
	EventOrderCompleted  = "marketplace.order.completed"
	EventOrderRefunded   = "marketplace.order.refunded"
	EventDisputeResolved = "marketplace.dispute.resolved"
)

// OrderCompletedEvent is published when an order completes; the billing
// handler credits the seller's ledger.
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	SellerID      uuid.UUID `json:"seller_id"`
	ListingID     uuid.UUID `json:"listing_id"`
	PaymentMethod string    `json:"payment_method"`
	AmountUSD     string    `json:"amount_usd,omitempty"`
	AmountCredits *int64    `json:"amount_credits,omitempty"`
}

// NewOrderCompletedEvent builds the event from an order
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	e := &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCompleted, "Order", o.ID, o.TenantID),
		OrderID:         o.ID,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		ListingID:       o.ListingID,
		PaymentMethod:   string(o.PaymentMethod),
		AmountCredits:   o.AmountCredits,
	}
	if o.AmountUSD != nil {
		e.AmountUSD = o.AmountUSD.Amount().String()
	}
	return e
}

// OrderRefundedEvent is published when an order is refunded; the billing
// handler writes the reversing ledger entries.
type OrderRefundedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	SellerID      uuid.UUID `json:"seller_id"`
	PaymentMethod string    `json:"payment_method"`
	AmountUSD     string    `json:"amount_usd,omitempty"`
	AmountCredits *int64    `json:"amount_credits,omitempty"`
}

// NewOrderRefundedEvent builds the event from an order
func NewOrderRefundedEvent(o *Order) *OrderRefundedEvent {
	e := &OrderRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderRefunded, "Order", o.ID, o.TenantID),
		OrderID:         o.ID,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		PaymentMethod:   string(o.PaymentMethod),
		AmountCredits:   o.AmountCredits,
	}
	if o.AmountUSD != nil {
		e.AmountUSD = o.AmountUSD.Amount().String()
	}
	return e
}

// DisputeResolvedEvent is published when a dispute resolves. RefundIssued
// tells the billing handler whether to write refund entries.
type DisputeResolvedEvent struct {
	shared.BaseDomainEvent
	DisputeID    uuid.UUID `json:"dispute_id"`
	OrderID      uuid.UUID `json:"order_id"`
	RefundIssued bool      `json:"refund_issued"`
}

// NewDisputeResolvedEvent builds the event from a dispute
func NewDisputeResolvedEvent(d *Dispute) *DisputeResolvedEvent {
	return &DisputeResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDisputeResolved, "Dispute", d.ID, d.TenantID),
		DisputeID:       d.ID,
		OrderID:         d.OrderID,
		RefundIssued:    d.RefundIssued,
	}
}
