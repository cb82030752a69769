package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormListingRepository implements marketplace.ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForTenant finds a listing by ID within a tenant
func (r *GormListingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*marketplace.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant finds all listings for a tenant matching the filter
func (r *GormListingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.ListingFilter) ([]marketplace.Listing, error) {
	var listingModels []models.ListingModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ListingModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&listingModels).Error; err != nil {
		return nil, err
	}

	listings := make([]marketplace.Listing, len(listingModels))
	for i, model := range listingModels {
		listing, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		listings[i] = *listing
	}
	return listings, nil
}

// CountForTenant counts listings for a tenant matching the filter
func (r *GormListingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.ListingFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ListingModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a listing
func (r *GormListingRepository) Save(ctx context.Context, listing *marketplace.Listing) error {
	model, err := models.ListingModelFromDomain(listing)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormListingRepository) SaveWithLock(ctx context.Context, listing *marketplace.Listing) error {
	model, err := models.ListingModelFromDomain(listing)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.ListingModel{}).
		Where("id = ? AND version = ?", listing.ID, listing.Version-1).
		Updates(map[string]interface{}{
			"title":         model.Title,
			"description":   model.Description,
			"prompt_ids":    model.PromptIDsJSON,
			"price_usd":     model.PriceUSD,
			"price_credits": model.PriceCredits,
			"status":        model.Status,
			"sales_count":   model.SalesCount,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a listing within a tenant
func (r *GormListingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ListingModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormListingRepository) applyFilter(query *gorm.DB, filter marketplace.ListingFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ListingSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormListingRepository) applyFilterWithoutPagination(query *gorm.DB, filter marketplace.ListingFilter) *gorm.DB {
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}

	return query
}

// Ensure GormListingRepository implements marketplace.ListingRepository
var _ marketplace.ListingRepository = (*GormListingRepository)(nil)
