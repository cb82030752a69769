package marketplace

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// ledgerAppendAttempts bounds retries when concurrent appends race on the
// same user's balance chain
const ledgerAppendAttempts = 3

// OrderService handles marketplace order use cases. Orders are paid out of
// the buyer's credit ledger; USD-priced listings are charged at the platform
// conversion rate.
type OrderService struct {
	orderRepo   marketplace.OrderRepository
	listingRepo marketplace.ListingRepository
	ledgerRepo  billing.LedgerRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo marketplace.OrderRepository,
	listingRepo marketplace.ListingRepository,
	ledgerRepo billing.LedgerRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		ledgerRepo:  ledgerRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateOrder places a pending order against an active listing
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*marketplace.Order, error) {
	listing, err := s.listingRepo.FindByIDForTenant(ctx, input.TenantID, input.ListingID)
	if err != nil {
		return nil, err
	}

	order, err := marketplace.NewOrder(input.TenantID, input.BuyerID, listing, input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("listing_id", listing.ID.String()),
		zap.String("payment_method", string(input.PaymentMethod)))
	return order, nil
}

// PayOrder charges the buyer's credit ledger and marks the order paid.
// Insufficient credits leave the order pending.
func (s *OrderService) PayOrder(ctx context.Context, tenantID, orderID, buyerID uuid.UUID) (*marketplace.Order, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, shared.ErrForbidden
	}
	if order.Status != marketplace.OrderPending {
		return nil, shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only pending orders can be paid")
	}

	charge := chargeCredits(order)
	err = appendEntry(ctx, s.ledgerRepo, tenantID, order.BuyerID, func(prior int64) (*billing.LedgerEntry, error) {
		entry, err := billing.NewLedgerEntry(tenantID, order.BuyerID, billing.EntryPurchaseDebit,
			-charge, prior, "Purchase: "+order.ListingTitle)
		if err != nil {
			return nil, err
		}
		return entry.WithOrder(order.ID), nil
	})
	if err != nil {
		return nil, err
	}

	if err := order.MarkPaid(); err != nil {
		s.reverseCharge(ctx, order)
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		s.reverseCharge(ctx, order)
		return nil, err
	}

	s.recordSale(ctx, tenantID, order.ListingID)

	s.logger.Info("Order paid",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("credits", charge))
	return order, nil
}

// GetOrder returns an order to one of its parties
func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID, viewerID uuid.UUID) (*marketplace.Order, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != viewerID && order.SellerID != viewerID {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

// ListOrders returns a page of orders matching the filter
func (s *OrderService) ListOrders(ctx context.Context, input ListOrdersInput) (*shared.Paginated[marketplace.Order], error) {
	filter := marketplace.OrderFilter{Filter: shared.DefaultFilter()}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.BuyerID = input.BuyerID
	filter.SellerID = input.SellerID
	filter.Status = input.Status

	orders, err := s.orderRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// CompleteOrder finalizes a paid order, releasing the seller's earnings
// through the order completed event
func (s *OrderService) CompleteOrder(ctx context.Context, tenantID, orderID, buyerID uuid.UUID) (*marketplace.Order, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, shared.ErrForbidden
	}
	if err := order.Complete(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	s.logger.Info("Order completed", zap.String("order_number", order.OrderNumber))
	return order, nil
}

// CancelOrder cancels an order. A paid cancel refunds the buyer's credits
// directly; completed orders go through RefundOrder instead.
func (s *OrderService) CancelOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID, reason string) (*marketplace.Order, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, shared.ErrForbidden
	}

	wasPaid := order.Status == marketplace.OrderPaid
	if err := order.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	if wasPaid {
		if err := s.refundBuyer(ctx, order); err != nil {
			s.logger.Error("Failed to refund cancelled order",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("Order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", reason))
	return order, nil
}

// RefundOrder reverses a paid or completed order. The refunded event drives
// the ledger reversal for both parties.
func (s *OrderService) RefundOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*marketplace.Order, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Refund(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	s.logger.Info("Order refunded", zap.String("order_number", order.OrderNumber))
	return order, nil
}

func (s *OrderService) refundBuyer(ctx context.Context, order *marketplace.Order) error {
	return s.creditBuyer(ctx, order, "Refund: "+order.ListingTitle)
}

// reverseCharge returns the buyer's credits when the debit landed but the
// order could not be marked paid. Without it a lost optimistic-lock race
// would leave the buyer charged for a still-pending order.
func (s *OrderService) reverseCharge(ctx context.Context, order *marketplace.Order) {
	if err := s.creditBuyer(ctx, order, "Payment reversed: "+order.ListingTitle); err != nil {
		s.logger.Error("Failed to reverse charge for unpaid order",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
}

func (s *OrderService) creditBuyer(ctx context.Context, order *marketplace.Order, description string) error {
	charge := chargeCredits(order)
	return appendEntry(ctx, s.ledgerRepo, order.TenantID, order.BuyerID, func(prior int64) (*billing.LedgerEntry, error) {
		entry, err := billing.NewLedgerEntry(order.TenantID, order.BuyerID, billing.EntryRefundCredit,
			charge, prior, description)
		if err != nil {
			return nil, err
		}
		return entry.WithOrder(order.ID), nil
	})
}

func (s *OrderService) recordSale(ctx context.Context, tenantID, listingID uuid.UUID) {
	listing, err := s.listingRepo.FindByIDForTenant(ctx, tenantID, listingID)
	if err != nil {
		s.logger.Warn("Failed to load listing for sale count", zap.Error(err))
		return
	}
	listing.RecordSale()
	if err := s.listingRepo.SaveWithLock(ctx, listing); err != nil {
		s.logger.Warn("Failed to update sale count", zap.Error(err))
	}
}

func (s *OrderService) publishEvents(ctx context.Context, order *marketplace.Order) {
	if s.publisher == nil {
		order.ClearDomainEvents()
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish order event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}

// chargeCredits is the credit amount an order moves through the ledger
func chargeCredits(order *marketplace.Order) int64 {
	if order.AmountCredits != nil {
		return *order.AmountCredits
	}
	if order.AmountUSD != nil {
		return order.AmountUSD.Amount().Mul(decimal.NewFromInt(billing.CreditsPerUSD)).IntPart()
	}
	return 0
}

// appendEntry appends a ledger entry built on the user's current balance,
// retrying when a concurrent append wins the balance chain
func appendEntry(ctx context.Context, repo billing.LedgerRepository, tenantID, userID uuid.UUID, build func(prior int64) (*billing.LedgerEntry, error)) error {
	var lastErr error
	for attempt := 0; attempt < ledgerAppendAttempts; attempt++ {
		prior, err := repo.BalanceFor(ctx, tenantID, userID)
		if err != nil {
			return err
		}
		entry, err := build(prior)
		if err != nil {
			return err
		}
		lastErr = repo.Append(ctx, entry)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, shared.ErrConcurrencyConflict) {
			return lastErr
		}
	}
	return lastErr
}
