package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// OrderLedgerHandler writes the ledger entries behind marketplace order
// events: seller earnings on completion, reversals on refund.
type OrderLedgerHandler struct {
	ledgerRepo billing.LedgerRepository
	logger     *zap.Logger
}

// NewOrderLedgerHandler creates a new order ledger handler
func NewOrderLedgerHandler(ledgerRepo billing.LedgerRepository, logger *zap.Logger) *OrderLedgerHandler {
	return &OrderLedgerHandler{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderLedgerHandler) EventTypes() []string {
	return []string{marketplace.EventOrderCompleted, marketplace.EventOrderRefunded}
}

// Handle processes an order event
func (h *OrderLedgerHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *marketplace.OrderCompletedEvent:
		return h.handleCompleted(ctx, e)
	case *marketplace.OrderRefundedEvent:
		return h.handleRefunded(ctx, e)
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// handleCompleted credits the seller's earnings
func (h *OrderLedgerHandler) handleCompleted(ctx context.Context, event *marketplace.OrderCompletedEvent) error {
	credits, err := eventCredits(event.AmountCredits, event.AmountUSD)
	if err != nil {
		return err
	}

	// Dedup on the order: each order credits the seller at most once
	existing, err := h.entriesForOrder(ctx, event.TenantID(), event.OrderID, billing.EntrySaleCredit)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		h.logger.Info("Sale already credited, skipping",
			zap.String("order_id", event.OrderID.String()))
		return nil
	}

	_, err = appendEntry(ctx, h.ledgerRepo, event.TenantID(), event.SellerID, func(prior int64) (*billing.LedgerEntry, error) {
		entry, err := billing.NewLedgerEntry(event.TenantID(), event.SellerID, billing.EntrySaleCredit,
			credits, prior, "Sale earnings")
		if err != nil {
			return nil, err
		}
		return entry.WithOrder(event.OrderID), nil
	})
	if err != nil {
		return err
	}

	h.logger.Info("Seller credited for sale",
		zap.String("order_id", event.OrderID.String()),
		zap.String("seller_id", event.SellerID.String()),
		zap.Int64("credits", credits))
	return nil
}

// handleRefunded gives the buyer their credits back and, when the seller was
// already credited for the sale, debits the seller
func (h *OrderLedgerHandler) handleRefunded(ctx context.Context, event *marketplace.OrderRefundedEvent) error {
	credits, err := eventCredits(event.AmountCredits, event.AmountUSD)
	if err != nil {
		return err
	}

	refunds, err := h.entriesForOrder(ctx, event.TenantID(), event.OrderID, billing.EntryRefundCredit)
	if err != nil {
		return err
	}
	if len(refunds) > 0 {
		h.logger.Info("Order already refunded, skipping",
			zap.String("order_id", event.OrderID.String()))
		return nil
	}

	_, err = appendEntry(ctx, h.ledgerRepo, event.TenantID(), event.BuyerID, func(prior int64) (*billing.LedgerEntry, error) {
		entry, err := billing.NewLedgerEntry(event.TenantID(), event.BuyerID, billing.EntryRefundCredit,
			credits, prior, "Order refund")
		if err != nil {
			return nil, err
		}
		return entry.WithOrder(event.OrderID), nil
	})
	if err != nil {
		return err
	}

	saleCredits, err := h.entriesForOrder(ctx, event.TenantID(), event.OrderID, billing.EntrySaleCredit)
	if err != nil {
		return err
	}
	if len(saleCredits) == 0 {
		// Order was refunded before completion; the seller was never paid
		return nil
	}

	debit, err := appendEntry(ctx, h.ledgerRepo, event.TenantID(), event.SellerID, func(prior int64) (*billing.LedgerEntry, error) {
		entry, err := billing.NewLedgerEntry(event.TenantID(), event.SellerID, billing.EntryRefundDebit,
			-credits, prior, "Sale reversed by refund")
		if err != nil {
			return nil, err
		}
		return entry.WithOrder(event.OrderID), nil
	})
	if err != nil {
		return err
	}
	if debit.BalanceAfter < 0 {
		h.logger.Warn("Refund debit left the seller with a negative balance",
			zap.String("order_id", event.OrderID.String()),
			zap.String("seller_id", event.SellerID.String()),
			zap.Int64("balance", debit.BalanceAfter))
	}

	h.logger.Info("Refund ledger entries written",
		zap.String("order_id", event.OrderID.String()),
		zap.Int64("credits", credits))
	return nil
}

func (h *OrderLedgerHandler) entriesForOrder(ctx context.Context, tenantID uuid.UUID, orderID uuid.UUID, entryType billing.EntryType) ([]billing.LedgerEntry, error) {
	filter := billing.LedgerFilter{Filter: shared.DefaultFilter()}
	filter.OrderID = &orderID
	filter.Type = entryType
	return h.ledgerRepo.FindAllForTenant(ctx, tenantID, filter)
}

// eventCredits is the credit amount an order event moves through the ledger
func eventCredits(amountCredits *int64, amountUSD string) (int64, error) {
	if amountCredits != nil {
		return *amountCredits, nil
	}
	if amountUSD != "" {
		usd, err := decimal.NewFromString(amountUSD)
		if err != nil {
			return 0, fmt.Errorf("parse event amount %q: %w", amountUSD, err)
		}
		return usd.Mul(decimal.NewFromInt(billing.CreditsPerUSD)).IntPart(), nil
	}
	return 0, fmt.Errorf("order event carries no amount")
}

// PayoutLedgerHandler debits sellers' ledgers when a payout batch completes
type PayoutLedgerHandler struct {
	ledgerRepo billing.LedgerRepository
	payoutRepo billing.PayoutRepository
	logger     *zap.Logger
}

// NewPayoutLedgerHandler creates a new payout ledger handler
func NewPayoutLedgerHandler(
	ledgerRepo billing.LedgerRepository,
	payoutRepo billing.PayoutRepository,
	logger *zap.Logger,
) *PayoutLedgerHandler {
	return &PayoutLedgerHandler{
		ledgerRepo: ledgerRepo,
		payoutRepo: payoutRepo,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PayoutLedgerHandler) EventTypes() []string {
	return []string{billing.EventPayoutCompleted}
}

// Handle debits every successfully paid item of the completed batch
func (h *PayoutLedgerHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*billing.PayoutCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", billing.EventPayoutCompleted),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	batch, err := h.payoutRepo.FindByID(ctx, completed.BatchID)
	if err != nil {
		return err
	}

	var lastErr error
	for _, item := range batch.Items {
		if item.Status != billing.ItemSuccess {
			continue
		}
		if err := h.debitSeller(ctx, batch, item); err != nil {
			h.logger.Error("Failed to debit seller for payout",
				zap.String("batch_id", batch.ID.String()),
				zap.String("seller_id", item.SellerID.String()),
				zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

func (h *PayoutLedgerHandler) debitSeller(ctx context.Context, batch *billing.PayoutBatch, item billing.PayoutItem) error {
	// Dedup on the payout: each batch debits a seller at most once
	filter := billing.LedgerFilter{Filter: shared.DefaultFilter()}
	filter.UserID = &item.SellerID
	filter.Type = billing.EntryPayoutDebit
	existing, err := h.ledgerRepo.FindAllForTenant(ctx, batch.TenantID, filter)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.PayoutID != nil && *e.PayoutID == batch.ID {
			return nil
		}
	}

	_, err = appendEntry(ctx, h.ledgerRepo, batch.TenantID, item.SellerID, func(prior int64) (*billing.LedgerEntry, error) {
		entry, err := billing.NewLedgerEntry(batch.TenantID, item.SellerID, billing.EntryPayoutDebit,
			-item.Credits, prior, "PayPal payout "+batch.SenderBatchID)
		if err != nil {
			return nil, err
		}
		return entry.WithPayout(batch.ID), nil
	})
	return err
}

var (
	_ shared.EventHandler = (*OrderLedgerHandler)(nil)
	_ shared.EventHandler = (*PayoutLedgerHandler)(nil)
)
