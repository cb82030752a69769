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

// GormInviteRepository implements community.InviteRepository using GORM
type GormInviteRepository struct {
	db *gorm.DB
}

// NewGormInviteRepository creates a new GormInviteRepository
func NewGormInviteRepository(db *gorm.DB) *GormInviteRepository {
	return &GormInviteRepository{db: db}
}

// FindByID finds an invite by ID
func (r *GormInviteRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Invite, error) {
	var model models.InviteModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByToken finds an invite by its token. Tokens are globally unique so
// no tenant scope is needed; the token itself is the secret.
func (r *GormInviteRepository) FindByToken(ctx context.Context, token string) (*community.Invite, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var model models.InviteModel
	if err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCommunity finds the invites of a community
func (r *GormInviteRepository) FindByCommunity(ctx context.Context, tenantID, communityID uuid.UUID, filter shared.Filter) ([]community.Invite, error) {
	var inviteModels []models.InviteModel
	query := r.db.WithContext(ctx).Model(&models.InviteModel{}).
		Where("tenant_id = ? AND community_id = ?", tenantID, communityID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&inviteModels).Error; err != nil {
		return nil, err
	}

	invites := make([]community.Invite, len(inviteModels))
	for i, model := range inviteModels {
		invites[i] = *model.ToDomain()
	}
	return invites, nil
}

// Save creates or updates an invite
func (r *GormInviteRepository) Save(ctx context.Context, invite *community.Invite) error {
	model := models.InviteModelFromDomain(invite)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an invite within a tenant
func (r *GormInviteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InviteModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormInviteRepository implements community.InviteRepository
var _ community.InviteRepository = (*GormInviteRepository)(nil)
