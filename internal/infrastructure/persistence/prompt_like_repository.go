package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPromptLikeRepository implements prompt.LikeRepository using GORM
type GormPromptLikeRepository struct {
	db *gorm.DB
}

// NewGormPromptLikeRepository creates a new GormPromptLikeRepository
func NewGormPromptLikeRepository(db *gorm.DB) *GormPromptLikeRepository {
	return &GormPromptLikeRepository{db: db}
}

// Exists checks whether the user has liked the prompt
func (r *GormPromptLikeRepository) Exists(ctx context.Context, tenantID, promptID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PromptLikeModel{}).
		Where("tenant_id = ? AND prompt_id = ? AND user_id = ?", tenantID, promptID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save records a like. Saving an existing like is a no-op so double taps
// do not fail.
func (r *GormPromptLikeRepository) Save(ctx context.Context, like prompt.PromptLike) error {
	model := &models.PromptLikeModel{}
	model.FromDomain(like)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// Delete removes a like
func (r *GormPromptLikeRepository) Delete(ctx context.Context, tenantID, promptID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND prompt_id = ? AND user_id = ?", tenantID, promptID, userID).
		Delete(&models.PromptLikeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPromptLikeRepository implements prompt.LikeRepository
var _ prompt.LikeRepository = (*GormPromptLikeRepository)(nil)
