package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCommunityRepository implements community.Repository using GORM
type GormCommunityRepository struct {
	db *gorm.DB
}

// NewGormCommunityRepository creates a new GormCommunityRepository
func NewGormCommunityRepository(db *gorm.DB) *GormCommunityRepository {
	return &GormCommunityRepository{db: db}
}

// FindByID finds a community by ID
func (r *GormCommunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Community, error) {
	var model models.CommunityModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a community by ID within a tenant
func (r *GormCommunityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*community.Community, error) {
	var model models.CommunityModel
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

// FindBySlug finds a community by its slug within a tenant
func (r *GormCommunityRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*community.Community, error) {
	var model models.CommunityModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, strings.ToLower(slug)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all communities for a tenant matching the filter
func (r *GormCommunityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter community.Filter) ([]community.Community, error) {
	var communityModels []models.CommunityModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CommunityModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&communityModels).Error; err != nil {
		return nil, err
	}

	return toDomainCommunities(communityModels), nil
}

// CountForTenant counts communities for a tenant matching the filter
func (r *GormCommunityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter community.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.CommunityModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindChildren finds the sub-communities of a parent
func (r *GormCommunityRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]community.Community, error) {
	var communityModels []models.CommunityModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id = ?", tenantID, parentID).
		Order("name ASC").
		Find(&communityModels).Error; err != nil {
		return nil, err
	}
	return toDomainCommunities(communityModels), nil
}

// Save creates or updates a community
func (r *GormCommunityRepository) Save(ctx context.Context, c *community.Community) error {
	model := models.CommunityModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCommunityRepository) SaveWithLock(ctx context.Context, c *community.Community) error {
	model := models.CommunityModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(&models.CommunityModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(map[string]interface{}{
			"name":         model.Name,
			"slug":         model.Slug,
			"description":  model.Description,
			"owner_id":     model.OwnerID,
			"visibility":   model.Visibility,
			"member_count": model.MemberCount,
			"icon_key":     model.IconKey,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a community with its memberships and invites within a tenant
func (r *GormCommunityRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", id).Delete(&models.MembershipModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&models.InviteModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CommunityModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func toDomainCommunities(communityModels []models.CommunityModel) []community.Community {
	communities := make([]community.Community, len(communityModels))
	for i, model := range communityModels {
		communities[i] = *model.ToDomain()
	}
	return communities
}

// applyFilter applies filter options to the query
func (r *GormCommunityRepository) applyFilter(query *gorm.DB, filter community.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CommunitySortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCommunityRepository) applyFilterWithoutPagination(query *gorm.DB, filter community.Filter) *gorm.DB {
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.TopLevel {
		query = query.Where("parent_id IS NULL")
	}
	if filter.Visibility != "" {
		query = query.Where("visibility = ?", filter.Visibility)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}

	return query
}

// Ensure GormCommunityRepository implements community.Repository
var _ community.Repository = (*GormCommunityRepository)(nil)
