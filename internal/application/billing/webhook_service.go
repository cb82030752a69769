package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// webhookDedupTTL is how long processed transmission IDs are remembered.
// PayPal retries failed deliveries for up to three days.
const webhookDedupTTL = 72 * time.Hour

// PayPal webhook event types for the Payouts product
const (
	eventPayoutsBatchProcessing = "PAYMENT.PAYOUTSBATCH.PROCESSING"
	eventPayoutsBatchSuccess    = "PAYMENT.PAYOUTSBATCH.SUCCESS"
	eventPayoutsBatchDenied     = "PAYMENT.PAYOUTSBATCH.DENIED"
	eventPayoutsItemSucceeded   = "PAYMENT.PAYOUTS-ITEM.SUCCEEDED"
	eventPayoutsItemFailed      = "PAYMENT.PAYOUTS-ITEM.FAILED"
	eventPayoutsItemDenied      = "PAYMENT.PAYOUTS-ITEM.DENIED"
	eventPayoutsItemBlocked     = "PAYMENT.PAYOUTS-ITEM.BLOCKED"
	eventPayoutsItemReturned    = "PAYMENT.PAYOUTS-ITEM.RETURNED"
	eventPayoutsItemCanceled    = "PAYMENT.PAYOUTS-ITEM.CANCELED"
	eventPayoutsItemUnclaimed   = "PAYMENT.PAYOUTS-ITEM.UNCLAIMED"
)

// PayPalWebhookService reconciles payout batches with PayPal webhook
// deliveries. Every delivery is signature-verified and deduplicated by its
// transmission ID; a transmission only counts as processed once its batch
// changes are persisted.
type PayPalWebhookService struct {
	payoutRepo  billing.PayoutRepository
	gateway     billing.PayoutGateway
	idempotency shared.IdempotencyStore
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewPayPalWebhookService creates a new PayPal webhook service
func NewPayPalWebhookService(
	payoutRepo billing.PayoutRepository,
	gateway billing.PayoutGateway,
	idempotency shared.IdempotencyStore,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PayPalWebhookService {
	return &PayPalWebhookService{
		payoutRepo:  payoutRepo,
		gateway:     gateway,
		idempotency: idempotency,
		publisher:   publisher,
		logger:      logger,
	}
}

type paypalWebhookEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

type payoutBatchResource struct {
	BatchHeader struct {
		PayoutBatchID     string `json:"payout_batch_id"`
		BatchStatus       string `json:"batch_status"`
		SenderBatchHeader struct {
			SenderBatchID string `json:"sender_batch_id"`
		} `json:"sender_batch_header"`
	} `json:"batch_header"`
}

type payoutItemResource struct {
	PayoutItemID      string `json:"payout_item_id"`
	PayoutBatchID     string `json:"payout_batch_id"`
	TransactionStatus string `json:"transaction_status"`
	PayoutItem        struct {
		SenderItemID string `json:"sender_item_id"`
	} `json:"payout_item"`
	Errors *struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ProcessWebhook verifies, deduplicates and applies one webhook delivery
func (s *PayPalWebhookService) ProcessWebhook(ctx context.Context, verification billing.WebhookVerification) (*WebhookResult, error) {
	valid, err := s.gateway.VerifyWebhookSignature(ctx, verification)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification: %w", err)
	}
	if !valid {
		s.logger.Warn("Rejected webhook with invalid signature",
			zap.String("transmission_id", verification.TransmissionID))
		return nil, shared.NewDomainError("SIGNATURE_INVALID", "Webhook signature verification failed")
	}

	var event paypalWebhookEvent
	if err := json.Unmarshal(verification.Event, &event); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}

	result := &WebhookResult{
		TransmissionID: verification.TransmissionID,
		EventType:      event.EventType,
		Processed:      true,
	}

	dedupKey := "paypal:webhook:" + verification.TransmissionID
	seen, err := s.idempotency.IsProcessed(ctx, dedupKey)
	if err != nil {
		return nil, fmt.Errorf("webhook dedup: %w", err)
	}
	if seen {
		s.logger.Info("Ignoring duplicate webhook delivery",
			zap.String("transmission_id", verification.TransmissionID),
			zap.String("event_type", event.EventType))
		result.Processed = false
		result.Message = "Duplicate delivery"
		return result, nil
	}

	s.logger.Info("Processing PayPal webhook",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.EventType))

	switch event.EventType {
	case eventPayoutsBatchProcessing:
		err = s.handleBatchEvent(ctx, event.Resource, (*billing.PayoutBatch).MarkProcessing)
	case eventPayoutsBatchSuccess:
		err = s.handleBatchSuccess(ctx, event.Resource)
	case eventPayoutsBatchDenied:
		err = s.handleBatchEvent(ctx, event.Resource, func(b *billing.PayoutBatch) error {
			return b.MarkFailed("Denied by PayPal")
		})
	case eventPayoutsItemSucceeded:
		err = s.handleItemEvent(ctx, event.Resource, billing.ItemSuccess)
	case eventPayoutsItemFailed, eventPayoutsItemDenied, eventPayoutsItemBlocked,
		eventPayoutsItemReturned, eventPayoutsItemCanceled:
		err = s.handleItemEvent(ctx, event.Resource, billing.ItemFailed)
	case eventPayoutsItemUnclaimed:
		err = s.handleItemEvent(ctx, event.Resource, billing.ItemUnclaimed)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", event.EventType))
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	// Remember the delivery only after its changes are persisted: a failed
	// apply must stay unmarked so PayPal's retry is not dropped as a
	// duplicate.
	if _, err := s.idempotency.MarkProcessed(ctx, dedupKey, webhookDedupTTL); err != nil {
		s.logger.Warn("Failed to record processed webhook delivery",
			zap.String("transmission_id", verification.TransmissionID),
			zap.Error(err))
	}
	return result, nil
}

func (s *PayPalWebhookService) handleBatchSuccess(ctx context.Context, resource json.RawMessage) error {
	return s.withBatch(ctx, resource, func(batch *billing.PayoutBatch) error {
		// A success may arrive without an intermediate processing event
		if batch.Status == billing.PayoutSubmitted {
			if err := batch.MarkProcessing(); err != nil {
				return err
			}
		}
		return batch.MarkCompleted()
	})
}

func (s *PayPalWebhookService) handleBatchEvent(ctx context.Context, resource json.RawMessage, change func(*billing.PayoutBatch) error) error {
	return s.withBatch(ctx, resource, change)
}

// withBatch locates the batch the resource refers to, applies the change and
// saves. Batches we do not know are acknowledged so PayPal stops retrying.
func (s *PayPalWebhookService) withBatch(ctx context.Context, resource json.RawMessage, change func(*billing.PayoutBatch) error) error {
	var payload payoutBatchResource
	if err := json.Unmarshal(resource, &payload); err != nil {
		return fmt.Errorf("decode batch resource: %w", err)
	}

	batch, err := s.findBatch(ctx, payload.BatchHeader.PayoutBatchID, payload.BatchHeader.SenderBatchHeader.SenderBatchID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Webhook for unknown payout batch",
				zap.String("paypal_batch_id", payload.BatchHeader.PayoutBatchID),
				zap.String("sender_batch_id", payload.BatchHeader.SenderBatchHeader.SenderBatchID))
			return nil
		}
		return err
	}

	if err := change(batch); err != nil {
		return err
	}
	if err := s.payoutRepo.SaveWithLock(ctx, batch); err != nil {
		return err
	}
	s.publishEvents(ctx, batch)
	return nil
}

func (s *PayPalWebhookService) handleItemEvent(ctx context.Context, resource json.RawMessage, status billing.PayoutItemStatus) error {
	var payload payoutItemResource
	if err := json.Unmarshal(resource, &payload); err != nil {
		return fmt.Errorf("decode item resource: %w", err)
	}

	batch, err := s.findBatch(ctx, payload.PayoutBatchID, "")
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Webhook for unknown payout batch",
				zap.String("paypal_batch_id", payload.PayoutBatchID))
			return nil
		}
		return err
	}

	failureReason := ""
	if payload.Errors != nil {
		failureReason = payload.Errors.Message
	}
	applyItemReport(batch, billing.PayoutItemReport{
		PayPalItemID:  payload.PayoutItemID,
		SenderItemID:  payload.PayoutItem.SenderItemID,
		Status:        status,
		FailureReason: failureReason,
	})

	return s.payoutRepo.SaveWithLock(ctx, batch)
}

func (s *PayPalWebhookService) findBatch(ctx context.Context, paypalBatchID, senderBatchID string) (*billing.PayoutBatch, error) {
	if paypalBatchID != "" {
		batch, err := s.payoutRepo.FindByPayPalBatchID(ctx, paypalBatchID)
		if err == nil {
			return batch, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	if senderBatchID != "" {
		return s.payoutRepo.FindBySenderBatchID(ctx, senderBatchID)
	}
	return nil, shared.ErrNotFound
}

func (s *PayPalWebhookService) publishEvents(ctx context.Context, batch *billing.PayoutBatch) {
	if s.publisher == nil {
		batch.ClearDomainEvents()
		return
	}
	for _, event := range batch.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish payout event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	batch.ClearDomainEvents()
}
