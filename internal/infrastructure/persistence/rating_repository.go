package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRatingRepository implements prompt.RatingRepository using GORM
type GormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new GormRatingRepository
func NewGormRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

// FindByPromptAndUser finds a user's rating of a prompt
func (r *GormRatingRepository) FindByPromptAndUser(ctx context.Context, tenantID, promptID, userID uuid.UUID) (*prompt.Rating, error) {
	var model models.RatingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND prompt_id = ? AND user_id = ?", tenantID, promptID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPrompt finds all ratings of a prompt
func (r *GormRatingRepository) FindByPrompt(ctx context.Context, tenantID, promptID uuid.UUID, filter shared.Filter) ([]prompt.Rating, error) {
	var ratingModels []models.RatingModel
	query := r.db.WithContext(ctx).Model(&models.RatingModel{}).
		Where("tenant_id = ? AND prompt_id = ?", tenantID, promptID)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&ratingModels).Error; err != nil {
		return nil, err
	}

	ratings := make([]prompt.Rating, len(ratingModels))
	for i, model := range ratingModels {
		ratings[i] = *model.ToDomain()
	}
	return ratings, nil
}

// CountByPrompt counts the ratings of a prompt
func (r *GormRatingRepository) CountByPrompt(ctx context.Context, tenantID, promptID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RatingModel{}).
		Where("tenant_id = ? AND prompt_id = ?", tenantID, promptID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a rating
func (r *GormRatingRepository) Save(ctx context.Context, rating *prompt.Rating) error {
	model := models.RatingModelFromDomain(rating)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a rating within a tenant
func (r *GormRatingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RatingModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormRatingRepository implements prompt.RatingRepository
var _ prompt.RatingRepository = (*GormRatingRepository)(nil)
