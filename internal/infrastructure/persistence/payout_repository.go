package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPayoutRepository implements billing.PayoutRepository using GORM.
// Batches and their items are saved together; items are replaced on save
// because the whole batch is one aggregate.
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// FindByID finds a payout batch by ID with its items
func (r *GormPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PayoutBatch, error) {
	var model models.PayoutBatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.withItems(ctx, &model)
}

// FindByIDForTenant finds a payout batch by ID within a tenant
func (r *GormPayoutRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.PayoutBatch, error) {
	var model models.PayoutBatchModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.withItems(ctx, &model)
}

// FindBySenderBatchID finds a batch by the idempotency key sent to PayPal.
// Webhooks identify batches by this key, so no tenant scope applies.
func (r *GormPayoutRepository) FindBySenderBatchID(ctx context.Context, senderBatchID string) (*billing.PayoutBatch, error) {
	if senderBatchID == "" {
		return nil, shared.ErrNotFound
	}
	var model models.PayoutBatchModel
	if err := r.db.WithContext(ctx).
		Where("sender_batch_id = ?", senderBatchID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.withItems(ctx, &model)
}

// FindByPayPalBatchID finds a batch by the ID PayPal assigned on submission
func (r *GormPayoutRepository) FindByPayPalBatchID(ctx context.Context, paypalBatchID string) (*billing.PayoutBatch, error) {
	if paypalBatchID == "" {
		return nil, shared.ErrNotFound
	}
	var model models.PayoutBatchModel
	if err := r.db.WithContext(ctx).
		Where("paypal_batch_id = ?", paypalBatchID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.withItems(ctx, &model)
}

// FindAllForTenant finds payout batches for a tenant matching the filter.
// Items are not loaded for listings.
func (r *GormPayoutRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PayoutFilter) ([]billing.PayoutBatch, error) {
	var batchModels []models.PayoutBatchModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.PayoutBatchModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&batchModels).Error; err != nil {
		return nil, err
	}

	batches := make([]billing.PayoutBatch, len(batchModels))
	for i, model := range batchModels {
		batches[i] = *model.ToDomain()
	}
	return batches, nil
}

// FindAllByStatus finds batches in the given state across all tenants,
// oldest first. Used by the payout reconciliation poller.
func (r *GormPayoutRepository) FindAllByStatus(ctx context.Context, status billing.PayoutStatus, limit int) ([]billing.PayoutBatch, error) {
	var batchModels []models.PayoutBatchModel
	query := r.db.WithContext(ctx).
		Model(&models.PayoutBatchModel{}).
		Where("status = ?", status).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&batchModels).Error; err != nil {
		return nil, err
	}

	batches := make([]billing.PayoutBatch, len(batchModels))
	for i, model := range batchModels {
		batches[i] = *model.ToDomain()
	}
	return batches, nil
}

// CountForTenant counts payout batches for a tenant matching the filter
func (r *GormPayoutRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PayoutFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.PayoutBatchModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a batch together with its items
func (r *GormPayoutRepository) Save(ctx context.Context, batch *billing.PayoutBatch) error {
	model := models.PayoutBatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return r.saveItems(tx, batch)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormPayoutRepository) SaveWithLock(ctx context.Context, batch *billing.PayoutBatch) error {
	model := models.PayoutBatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PayoutBatchModel{}).
			Where("id = ? AND version = ?", batch.ID, batch.Version-1).
			Updates(map[string]interface{}{
				"paypal_batch_id": model.PayPalBatchID,
				"status":          model.Status,
				"item_count":      model.ItemCount,
				"total_credits":   model.TotalCredits,
				"total_usd":       model.TotalUSD,
				"submitted_at":    model.SubmittedAt,
				"completed_at":    model.CompletedAt,
				"failure_reason":  model.FailureReason,
				"version":         model.Version,
				"updated_at":      model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveItems(tx, batch)
	})
}

// saveItems replaces the batch's items
func (r *GormPayoutRepository) saveItems(tx *gorm.DB, batch *billing.PayoutBatch) error {
	if err := tx.Where("batch_id = ?", batch.ID).Delete(&models.PayoutItemModel{}).Error; err != nil {
		return err
	}
	if len(batch.Items) == 0 {
		return nil
	}
	itemModels := make([]models.PayoutItemModel, len(batch.Items))
	for i, item := range batch.Items {
		itemModels[i].FromDomain(item)
	}
	return tx.Create(&itemModels).Error
}

// withItems loads the batch's items and converts to the domain aggregate
func (r *GormPayoutRepository) withItems(ctx context.Context, model *models.PayoutBatchModel) (*billing.PayoutBatch, error) {
	batch := model.ToDomain()

	var itemModels []models.PayoutItemModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", model.ID).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]billing.PayoutItem, len(itemModels))
	for i, itemModel := range itemModels {
		items[i] = itemModel.ToDomain()
	}
	batch.Items = items
	return batch, nil
}

// applyFilter applies filter options to the query
func (r *GormPayoutRepository) applyFilter(query *gorm.DB, filter billing.PayoutFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PayoutSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPayoutRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.PayoutFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	return query
}

// Ensure GormPayoutRepository implements billing.PayoutRepository
var _ billing.PayoutRepository = (*GormPayoutRepository)(nil)
