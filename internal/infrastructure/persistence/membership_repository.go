package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMembershipRepository implements community.MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindByID finds a membership by ID
func (r *GormMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Membership, error) {
	var model models.MembershipModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCommunityAndUser finds a user's membership in a community
func (r *GormMembershipRepository) FindByCommunityAndUser(ctx context.Context, tenantID, communityID, userID uuid.UUID) (*community.Membership, error) {
	var model models.MembershipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND community_id = ? AND user_id = ?", tenantID, communityID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCommunity finds the members of a community
func (r *GormMembershipRepository) FindByCommunity(ctx context.Context, tenantID, communityID uuid.UUID, filter shared.Filter) ([]community.Membership, error) {
	var membershipModels []models.MembershipModel
	query := r.db.WithContext(ctx).Model(&models.MembershipModel{}).
		Where("tenant_id = ? AND community_id = ?", tenantID, communityID)

	for key, value := range filter.Filters {
		switch key {
		case "role":
			query = query.Where("role = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&membershipModels).Error; err != nil {
		return nil, err
	}

	memberships := make([]community.Membership, len(membershipModels))
	for i, model := range membershipModels {
		memberships[i] = *model.ToDomain()
	}
	return memberships, nil
}

// FindByUser finds all of a user's memberships within a tenant
func (r *GormMembershipRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]community.Membership, error) {
	var membershipModels []models.MembershipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("created_at ASC").
		Find(&membershipModels).Error; err != nil {
		return nil, err
	}

	memberships := make([]community.Membership, len(membershipModels))
	for i, model := range membershipModels {
		memberships[i] = *model.ToDomain()
	}
	return memberships, nil
}

// CountByCommunity counts the active members of a community
func (r *GormMembershipRepository) CountByCommunity(ctx context.Context, tenantID, communityID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MembershipModel{}).
		Where("tenant_id = ? AND community_id = ? AND status = ?", tenantID, communityID, community.MemberActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a membership
func (r *GormMembershipRepository) Save(ctx context.Context, membership *community.Membership) error {
	model := models.MembershipModelFromDomain(membership)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a membership within a tenant
func (r *GormMembershipRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MembershipModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormMembershipRepository implements community.MembershipRepository
var _ community.MembershipRepository = (*GormMembershipRepository)(nil)
