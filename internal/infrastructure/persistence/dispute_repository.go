package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDisputeRepository implements marketplace.DisputeRepository using GORM
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GormDisputeRepository
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// FindByID finds a dispute by ID
func (r *GormDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Dispute, error) {
	var model models.DisputeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a dispute by ID within a tenant
func (r *GormDisputeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*marketplace.Dispute, error) {
	var model models.DisputeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByOrder finds the unresolved dispute of an order, if any.
// An order can carry at most one open or in-progress dispute.
func (r *GormDisputeRepository) FindOpenByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*marketplace.Dispute, error) {
	var model models.DisputeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ? AND status IN ?",
			tenantID, orderID, []marketplace.DisputeStatus{marketplace.DisputeOpen, marketplace.DisputeInProgress}).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all disputes for a tenant matching the filter
func (r *GormDisputeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.DisputeFilter) ([]marketplace.Dispute, error) {
	var disputeModels []models.DisputeModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.DisputeModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&disputeModels).Error; err != nil {
		return nil, err
	}

	disputes := make([]marketplace.Dispute, len(disputeModels))
	for i, model := range disputeModels {
		disputes[i] = *model.ToDomain()
	}
	return disputes, nil
}

// CountForTenant counts disputes for a tenant matching the filter
func (r *GormDisputeRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.DisputeFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.DisputeModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a dispute
func (r *GormDisputeRepository) Save(ctx context.Context, dispute *marketplace.Dispute) error {
	model := models.DisputeModelFromDomain(dispute)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormDisputeRepository) SaveWithLock(ctx context.Context, dispute *marketplace.Dispute) error {
	model := models.DisputeModelFromDomain(dispute)
	result := r.db.WithContext(ctx).
		Model(&models.DisputeModel{}).
		Where("id = ? AND version = ?", dispute.ID, dispute.Version-1).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"assignee_id":     model.AssigneeID,
			"resolution_note": model.ResolutionNote,
			"refund_issued":   model.RefundIssued,
			"resolved_at":     model.ResolvedAt,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormDisputeRepository) applyFilter(query *gorm.DB, filter marketplace.DisputeFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, DisputeSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDisputeRepository) applyFilterWithoutPagination(query *gorm.DB, filter marketplace.DisputeFilter) *gorm.DB {
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OpenOnly {
		query = query.Where("status IN ?",
			[]marketplace.DisputeStatus{marketplace.DisputeOpen, marketplace.DisputeInProgress})
	}

	return query
}

// Ensure GormDisputeRepository implements marketplace.DisputeRepository
var _ marketplace.DisputeRepository = (*GormDisputeRepository)(nil)
