package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerRepository implements billing.LedgerRepository using GORM.
// The ledger is append-only; rows are never updated or deleted.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a ledger entry by ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds ledger entries for a tenant matching the filter
func (r *GormLedgerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.LedgerFilter) ([]billing.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]billing.LedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// CountForTenant counts ledger entries for a tenant matching the filter
func (r *GormLedgerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.LedgerFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// BalanceFor returns the user's current balance, 0 with no rows.
// Summing the signed amounts is order-independent and, under the
// append-only chain, always equals the latest balance-after.
func (r *GormLedgerRepository) BalanceFor(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	return r.balanceFor(r.db.WithContext(ctx), tenantID, userID)
}

func (r *GormLedgerRepository) balanceFor(tx *gorm.DB, tenantID, userID uuid.UUID) (int64, error) {
	var balance int64
	err := tx.
		Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// earningsExpr sums the entry types that represent seller earnings: sale
// credits less refund and payout debits. Top-ups and buyer-side refund
// credits are spendable but never payable.
const earningsExpr = "COALESCE(SUM(CASE WHEN type IN (?, ?, ?) THEN amount ELSE 0 END), 0)"

// EarningsAtLeast returns every seller whose payable earnings meet the
// minimum. Payable is net earnings capped at the current balance, so a
// seller who already spent part of their earnings cannot overdraw.
func (r *GormLedgerRepository) EarningsAtLeast(ctx context.Context, tenantID uuid.UUID, minimum int64) ([]billing.SellerEarnings, error) {
	earningTypes := []any{billing.EntrySaleCredit, billing.EntryRefundDebit, billing.EntryPayoutDebit}

	var rows []struct {
		UserID   uuid.UUID
		Earnings int64
		Balance  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Select("user_id, "+earningsExpr+" AS earnings, COALESCE(SUM(amount), 0) AS balance", earningTypes...).
		Where("tenant_id = ?", tenantID).
		Group("user_id").
		Having(earningsExpr+" >= ?", append(earningTypes, minimum)...).
		Order("earnings DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	earnings := make([]billing.SellerEarnings, 0, len(rows))
	for _, row := range rows {
		payable := min(row.Earnings, row.Balance)
		if payable < minimum {
			continue
		}
		earnings = append(earnings, billing.SellerEarnings{UserID: row.UserID, Payable: payable})
	}
	return earnings, nil
}

// SummaryFor aggregates a user's ledger activity
func (r *GormLedgerRepository) SummaryFor(ctx context.Context, tenantID, userID uuid.UUID) (*billing.LedgerSummary, error) {
	var row struct {
		EntryCount   int64
		TotalEarned  int64
		TotalSpent   int64
		LastActivity *time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Select(`COUNT(*) AS entry_count,
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS total_earned,
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0) AS total_spent,
			MAX(created_at) AS last_activity`).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	balance, err := r.BalanceFor(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	return &billing.LedgerSummary{
		UserID:       userID,
		Balance:      balance,
		TotalEarned:  row.TotalEarned,
		TotalSpent:   row.TotalSpent,
		EntryCount:   row.EntryCount,
		LastActivity: row.LastActivity,
	}, nil
}

// Append inserts a new ledger entry. The entry's balance chain is verified
// inside the transaction: its balance-before must equal the user's current
// balance, otherwise a concurrent append won and the caller must retry.
// On Postgres the user's chain is serialized with an advisory lock; under
// read committed two concurrent transactions would otherwise both read the
// same prior balance and both pass the check.
func (r *GormLedgerRepository) Append(ctx context.Context, entry *billing.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			lockKey := entry.TenantID.String() + ":" + entry.UserID.String()
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", lockKey).Error; err != nil {
				return err
			}
		}

		current, err := r.balanceFor(tx, entry.TenantID, entry.UserID)
		if err != nil {
			return err
		}
		if entry.BalanceAfter-entry.Amount != current {
			return shared.ErrConcurrencyConflict
		}
		model := models.LedgerEntryModelFromDomain(entry)
		return tx.Create(model).Error
	})
}

// applyFilter applies filter options to the query
func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter billing.LedgerFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, LedgerSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLedgerRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.LedgerFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}

	return query
}

// Ensure GormLedgerRepository implements billing.LedgerRepository
var _ billing.LedgerRepository = (*GormLedgerRepository)(nil)
