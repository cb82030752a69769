package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// ledgerAppendAttempts bounds retries when concurrent appends race on the
// same user's balance chain
const ledgerAppendAttempts = 3

// LedgerService handles credit ledger use cases. The ledger is append-only;
// every balance change is a new entry.
type LedgerService struct {
	ledgerRepo billing.LedgerRepository
	logger     *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(ledgerRepo billing.LedgerRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// ListEntries returns a page of ledger entries
func (s *LedgerService) ListEntries(ctx context.Context, input ListLedgerInput) (*shared.Paginated[billing.LedgerEntry], error) {
	filter := billing.LedgerFilter{Filter: shared.DefaultFilter()}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.UserID = input.UserID
	filter.Type = input.Type
	filter.OrderID = input.OrderID

	entries, err := s.ledgerRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.ledgerRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetBalance returns the user's current credit balance
func (s *LedgerService) GetBalance(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	return s.ledgerRepo.BalanceFor(ctx, tenantID, userID)
}

// GetSummary aggregates the user's ledger activity
func (s *LedgerService) GetSummary(ctx context.Context, tenantID, userID uuid.UUID) (*billing.LedgerSummary, error) {
	return s.ledgerRepo.SummaryFor(ctx, tenantID, userID)
}

// Adjust writes a manual admin correction. The reason is mandatory and lands
// in the entry description.
func (s *LedgerService) Adjust(ctx context.Context, input AdjustmentInput) (*billing.LedgerEntry, error) {
	if input.Reason == "" {
		return nil, shared.NewDomainError("REASON_REQUIRED", "Adjustments require a reason")
	}

	entry, err := s.append(ctx, input.TenantID, input.UserID, func(prior int64) (*billing.LedgerEntry, error) {
		return billing.NewLedgerEntry(input.TenantID, input.UserID, billing.EntryAdjustment,
			input.Amount, prior, input.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ledger adjusted",
		zap.String("user_id", input.UserID.String()),
		zap.Int64("amount", input.Amount),
		zap.String("reason", input.Reason))
	return entry, nil
}

// Topup credits purchased credits to the user
func (s *LedgerService) Topup(ctx context.Context, input TopupInput) (*billing.LedgerEntry, error) {
	description := "Credit purchase"
	if input.Reference != "" {
		description += ": " + input.Reference
	}

	entry, err := s.append(ctx, input.TenantID, input.UserID, func(prior int64) (*billing.LedgerEntry, error) {
		return billing.NewLedgerEntry(input.TenantID, input.UserID, billing.EntryTopup,
			input.Credits, prior, description)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credits topped up",
		zap.String("user_id", input.UserID.String()),
		zap.Int64("credits", input.Credits))
	return entry, nil
}

func (s *LedgerService) append(ctx context.Context, tenantID, userID uuid.UUID, build func(prior int64) (*billing.LedgerEntry, error)) (*billing.LedgerEntry, error) {
	entry, err := appendEntry(ctx, s.ledgerRepo, tenantID, userID, build)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// appendEntry appends a ledger entry built on the user's current balance,
// retrying when a concurrent append wins the balance chain
func appendEntry(ctx context.Context, repo billing.LedgerRepository, tenantID, userID uuid.UUID, build func(prior int64) (*billing.LedgerEntry, error)) (*billing.LedgerEntry, error) {
	var lastErr error
	for attempt := 0; attempt < ledgerAppendAttempts; attempt++ {
		prior, err := repo.BalanceFor(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		entry, err := build(prior)
		if err != nil {
			return nil, err
		}
		lastErr = repo.Append(ctx, entry)
		if lastErr == nil {
			return entry, nil
		}
		if !errors.Is(lastErr, shared.ErrConcurrencyConflict) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}
