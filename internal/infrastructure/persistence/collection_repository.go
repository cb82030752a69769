package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCollectionRepository implements prompt.CollectionRepository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// FindByID finds a collection by ID
func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*prompt.Collection, error) {
	var model models.CollectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForTenant finds a collection by ID within a tenant
func (r *GormCollectionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*prompt.Collection, error) {
	var model models.CollectionModel
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

// FindByOwner finds a user's collections
func (r *GormCollectionRepository) FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]prompt.Collection, error) {
	var collectionModels []models.CollectionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CollectionModel{}).
			Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID),
		filter,
	)

	if err := query.Find(&collectionModels).Error; err != nil {
		return nil, err
	}

	return r.toDomainSlice(collectionModels)
}

// FindPublicForTenant finds public collections within a tenant
func (r *GormCollectionRepository) FindPublicForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]prompt.Collection, error) {
	var collectionModels []models.CollectionModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CollectionModel{}).
			Where("tenant_id = ? AND visibility = ?", tenantID, prompt.CollectionPublic),
		filter,
	)

	if err := query.Find(&collectionModels).Error; err != nil {
		return nil, err
	}

	return r.toDomainSlice(collectionModels)
}

// Save creates or updates a collection
func (r *GormCollectionRepository) Save(ctx context.Context, collection *prompt.Collection) error {
	model, err := models.CollectionModelFromDomain(collection)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCollectionRepository) SaveWithLock(ctx context.Context, collection *prompt.Collection) error {
	model, err := models.CollectionModelFromDomain(collection)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.CollectionModel{}).
		Where("id = ? AND version = ?", collection.ID, collection.Version-1).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"description": model.Description,
			"visibility":  model.Visibility,
			"prompt_ids":  model.PromptIDsJSON,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a collection within a tenant
func (r *GormCollectionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CollectionModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCollectionRepository) toDomainSlice(collectionModels []models.CollectionModel) ([]prompt.Collection, error) {
	collections := make([]prompt.Collection, len(collectionModels))
	for i, model := range collectionModels {
		c, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		collections[i] = *c
	}
	return collections, nil
}

// applyFilter applies filter options to the query
func (r *GormCollectionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchPattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CollectionSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// Ensure GormCollectionRepository implements prompt.CollectionRepository
var _ prompt.CollectionRepository = (*GormCollectionRepository)(nil)
