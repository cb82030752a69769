package marketplace

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCompleted OrderStatus = "completed"
	OrderRefunded  OrderStatus = "refunded"
	OrderCancelled OrderStatus = "cancelled"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderCompleted, OrderRefunded, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if transition to the target status is allowed
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderPending:
		return target == OrderPaid || target == OrderCancelled
	case OrderPaid:
		return target == OrderCompleted || target == OrderRefunded || target == OrderCancelled
	case OrderCompleted:
		return target == OrderRefunded
	case OrderRefunded, OrderCancelled:
		return false
	}
	return false
}

// PaymentMethod is how the buyer pays for an order
type PaymentMethod string

const (
	PayWithCredits PaymentMethod = "credits"
	PayWithUSD     PaymentMethod = "usd" // Charged against the buyer's USD ledger balance
)

// Order records a purchase of a listing. The listing's title and prices are
// snapshotted at order time so later listing edits do not change the order.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber   string
	BuyerID       uuid.UUID
	SellerID      uuid.UUID
	ListingID     uuid.UUID
	ListingTitle  string
	PaymentMethod PaymentMethod
	AmountUSD     *valueobject.Money
	AmountCredits *int64
	Status        OrderStatus
	CancelReason  string
	PaidAt        *time.Time
	CompletedAt   *time.Time
	RefundedAt    *time.Time
}

// NewOrder creates a pending order against an active listing
func NewOrder(tenantID, buyerID uuid.UUID, listing *Listing, method PaymentMethod) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if listing == nil {
		return nil, shared.NewDomainError("INVALID_LISTING", "Listing is required")
	}
	if buyerID == listing.SellerID {
		return nil, shared.NewDomainError("SELF_PURCHASE", "A seller cannot buy their own listing")
	}
	if !listing.IsPurchasable() {
		return nil, shared.NewDomainError("LISTING_NOT_ACTIVE", "Listing is not available for purchase")
	}

	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, buyerID),
		OrderNumber:         generateOrderNumber(),
		BuyerID:             buyerID,
		SellerID:            listing.SellerID,
		ListingID:           listing.ID,
		ListingTitle:        listing.Title,
		PaymentMethod:       method,
		Status:              OrderPending,
	}

	switch method {
	case PayWithCredits:
		if !listing.SupportsCredits() {
			return nil, shared.NewDomainError("PAYMENT_METHOD_UNAVAILABLE", "Listing has no credit price")
		}
		credits := *listing.PriceCredits
		order.AmountCredits = &credits
	case PayWithUSD:
		if !listing.SupportsUSD() {
			return nil, shared.NewDomainError("PAYMENT_METHOD_UNAVAILABLE", "Listing has no USD price")
		}
		usd := *listing.PriceUSD
		order.AmountUSD = &usd
	default:
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	return order, nil
}

func generateOrderNumber() string {
	return "ORD-" + time.Now().UTC().Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}

// MarkPaid records that the buyer was charged
func (o *Order) MarkPaid() error {
	if !o.Status.CanTransitionTo(OrderPaid) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only pending orders can be paid")
	}
	now := time.Now()
	o.Status = OrderPaid
	o.PaidAt = &now
	o.touch()
	return nil
}

// Complete finalizes the order and releases the seller's earnings.
// Emits OrderCompletedEvent for the ledger to pick up.
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(OrderCompleted) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only paid orders can be completed")
	}
	now := time.Now()
	o.Status = OrderCompleted
	o.CompletedAt = &now
	o.touch()
	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return nil
}

// Cancel cancels the order before or after payment; a paid cancel refunds
// the buyer through the normal refund flow on the service side.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderCancelled) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Order cannot be cancelled from its current status")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("CANCEL_REASON_REQUIRED", "Cancellation requires a reason")
	}
	o.Status = OrderCancelled
	o.CancelReason = reason
	o.touch()
	return nil
}

// Refund reverses a paid or completed order.
// Emits OrderRefundedEvent for the ledger to pick up.
func (o *Order) Refund() error {
	if !o.Status.CanTransitionTo(OrderRefunded) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only paid or completed orders can be refunded")
	}
	now := time.Now()
	o.Status = OrderRefunded
	o.RefundedAt = &now
	o.touch()
	o.AddDomainEvent(NewOrderRefundedEvent(o))
	return nil
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
