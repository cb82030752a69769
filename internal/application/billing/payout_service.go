package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// PayoutService handles PayPal payout batches for seller earnings
type PayoutService struct {
	payoutRepo billing.PayoutRepository
	ledgerRepo billing.LedgerRepository
	userRepo   identity.UserRepository
	gateway    billing.PayoutGateway
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewPayoutService creates a new payout service
func NewPayoutService(
	payoutRepo billing.PayoutRepository,
	ledgerRepo billing.LedgerRepository,
	userRepo identity.UserRepository,
	gateway billing.PayoutGateway,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PayoutService {
	return &PayoutService{
		payoutRepo: payoutRepo,
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		gateway:    gateway,
		publisher:  publisher,
		logger:     logger,
	}
}

// BuildBatch collects every seller whose payable earnings meet the payout
// minimum into a draft batch. Only earnings convert to cash: topped-up or
// refunded credits count toward spending, not payouts. Sellers without a
// PayPal email are skipped.
func (s *PayoutService) BuildBatch(ctx context.Context, input BuildPayoutInput) (*billing.PayoutBatch, error) {
	sellers, err := s.ledgerRepo.EarningsAtLeast(ctx, input.TenantID, billing.MinimumPayoutCredits)
	if err != nil {
		return nil, err
	}

	batch := billing.NewPayoutBatch(input.TenantID, input.CreatedBy)
	for _, seller := range sellers {
		user, err := s.userRepo.FindByIDForTenant(ctx, input.TenantID, seller.UserID)
		if err != nil {
			s.logger.Warn("Skipping seller without user record",
				zap.String("user_id", seller.UserID.String()),
				zap.Error(err))
			continue
		}
		if user.PayPalEmail == "" {
			s.logger.Info("Skipping seller without PayPal email",
				zap.String("user_id", user.ID.String()),
				zap.Int64("payable", seller.Payable))
			continue
		}
		if err := batch.AddItem(user.ID, user.PayPalEmail, seller.Payable); err != nil {
			return nil, err
		}
	}

	if batch.ItemCount == 0 {
		return nil, shared.NewDomainError("NO_ELIGIBLE_SELLERS", "No seller earnings meet the payout minimum")
	}

	if err := s.payoutRepo.Save(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("Payout batch built",
		zap.String("batch_id", batch.ID.String()),
		zap.String("sender_batch_id", batch.SenderBatchID),
		zap.Int("items", batch.ItemCount),
		zap.Int64("total_credits", batch.TotalCredits))
	return batch, nil
}

// SubmitBatch sends a draft batch to PayPal. A gateway failure marks the
// batch failed so its sellers re-enter the next build.
func (s *PayoutService) SubmitBatch(ctx context.Context, tenantID, batchID uuid.UUID) (*billing.PayoutBatch, error) {
	batch, err := s.payoutRepo.FindByIDForTenant(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}

	submission, err := s.gateway.SubmitPayout(ctx, batch)
	if err != nil {
		s.logger.Error("PayPal payout submission failed",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err))
		if markErr := batch.MarkFailed(err.Error()); markErr == nil {
			if saveErr := s.payoutRepo.SaveWithLock(ctx, batch); saveErr != nil {
				s.logger.Error("Failed to persist batch failure", zap.Error(saveErr))
			}
		}
		return nil, err
	}

	if err := batch.MarkSubmitted(submission.PayPalBatchID); err != nil {
		return nil, err
	}
	if submission.Status == billing.PayoutProcessing {
		if err := batch.MarkProcessing(); err != nil {
			return nil, err
		}
	}
	if err := s.payoutRepo.SaveWithLock(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("Payout batch submitted",
		zap.String("batch_id", batch.ID.String()),
		zap.String("paypal_batch_id", submission.PayPalBatchID))
	return batch, nil
}

// GetBatch returns a payout batch with its items
func (s *PayoutService) GetBatch(ctx context.Context, tenantID, batchID uuid.UUID) (*billing.PayoutBatch, error) {
	return s.payoutRepo.FindByIDForTenant(ctx, tenantID, batchID)
}

// ListBatches returns a page of payout batches
func (s *PayoutService) ListBatches(ctx context.Context, input ListPayoutsInput) (*shared.Paginated[billing.PayoutBatch], error) {
	filter := billing.PayoutFilter{Filter: shared.DefaultFilter()}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.Status = input.Status

	batches, err := s.payoutRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.payoutRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(batches, total, filter.Page, filter.PageSize)
	return &result, nil
}

// SyncBatchStatus polls PayPal for the batch's current state. Used as a
// fallback when webhook deliveries are missed.
func (s *PayoutService) SyncBatchStatus(ctx context.Context, tenantID, batchID uuid.UUID) (*billing.PayoutBatch, error) {
	batch, err := s.payoutRepo.FindByIDForTenant(ctx, tenantID, batchID)
	if err != nil {
		return nil, err
	}
	if batch.PayPalBatchID == "" {
		return nil, shared.NewDomainError("BATCH_NOT_SUBMITTED", "Batch has not been submitted yet")
	}

	report, err := s.gateway.GetPayoutStatus(ctx, batch.PayPalBatchID)
	if err != nil {
		return nil, err
	}
	if err := applyReport(batch, report); err != nil {
		return nil, err
	}

	if err := s.payoutRepo.SaveWithLock(ctx, batch); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, batch)
	return batch, nil
}

// applyReport folds a gateway status report into the batch
func applyReport(batch *billing.PayoutBatch, report *billing.PayoutStatusReport) error {
	for _, item := range report.Items {
		applyItemReport(batch, item)
	}

	switch report.Status {
	case billing.PayoutProcessing:
		if batch.Status == billing.PayoutSubmitted {
			return batch.MarkProcessing()
		}
	case billing.PayoutCompleted:
		if batch.Status != billing.PayoutCompleted {
			return batch.MarkCompleted()
		}
	case billing.PayoutFailed:
		if batch.Status != billing.PayoutFailed {
			return batch.MarkFailed("Reported failed by PayPal")
		}
	}
	return nil
}

// applyItemReport matches a report item to a batch item. PayPal item IDs are
// learned here on first sight; before that items match on the seller ID we
// sent as sender_item_id.
func applyItemReport(batch *billing.PayoutBatch, report billing.PayoutItemReport) {
	for i := range batch.Items {
		item := &batch.Items[i]
		matched := item.PayPalItemID != "" && item.PayPalItemID == report.PayPalItemID
		if !matched && report.SenderItemID != "" {
			matched = item.SellerID.String() == report.SenderItemID
		}
		if !matched {
			continue
		}
		item.PayPalItemID = report.PayPalItemID
		item.Status = report.Status
		item.FailureReason = report.FailureReason
		return
	}
}

func (s *PayoutService) publishEvents(ctx context.Context, batch *billing.PayoutBatch) {
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
