package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// LedgerFilter narrows ledger queries
type LedgerFilter struct {
	shared.Filter
	UserID  *uuid.UUID
	Type    EntryType
	OrderID *uuid.UUID
}

// SellerEarnings pairs a seller with their payable earnings
type SellerEarnings struct {
	UserID  uuid.UUID
	Payable int64
}

// LedgerRepository defines persistence operations for the credit ledger.
// Entries are append-only: there is no update or delete.
type LedgerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerFilter) ([]LedgerEntry, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerFilter) (int64, error)
	// BalanceFor returns the latest balance-after for the user, 0 with no rows
	BalanceFor(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
	// EarningsAtLeast returns every seller whose payable earnings meet the
	// minimum, for payout batch building. Payable earnings are sale credits
	// net of refund and payout debits, capped at the seller's current
	// balance; topped-up or refunded credits are never paid out as cash.
	EarningsAtLeast(ctx context.Context, tenantID uuid.UUID, minimum int64) ([]SellerEarnings, error)
	SummaryFor(ctx context.Context, tenantID, userID uuid.UUID) (*LedgerSummary, error)
	Append(ctx context.Context, entry *LedgerEntry) error
}

// PayoutFilter narrows payout batch queries
type PayoutFilter struct {
	shared.Filter
	Status PayoutStatus
}

// PayoutRepository defines persistence operations for payout batches
type PayoutRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PayoutBatch, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PayoutBatch, error)
	FindBySenderBatchID(ctx context.Context, senderBatchID string) (*PayoutBatch, error)
	FindByPayPalBatchID(ctx context.Context, paypalBatchID string) (*PayoutBatch, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PayoutFilter) ([]PayoutBatch, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PayoutFilter) (int64, error)
	// FindAllByStatus returns batches in the given state across all
	// tenants, oldest first, for the reconciliation poller
	FindAllByStatus(ctx context.Context, status PayoutStatus, limit int) ([]PayoutBatch, error)
	Save(ctx context.Context, batch *PayoutBatch) error
	SaveWithLock(ctx context.Context, batch *PayoutBatch) error
}
