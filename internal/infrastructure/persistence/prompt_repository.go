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

// trendingScoreExpr weights engagement counters into a single ranking score.
// It mirrors the weights used by the Redis trending cache and serves as the
// fallback ranking when the cache is cold.
const trendingScoreExpr = "(view_count + like_count * 3 + save_count * 5 + use_count * 8)"

// GormPromptRepository implements prompt.Repository using GORM
type GormPromptRepository struct {
	db *gorm.DB
}

// NewGormPromptRepository creates a new GormPromptRepository
func NewGormPromptRepository(db *gorm.DB) *GormPromptRepository {
	return &GormPromptRepository{db: db}
}

// FindByID finds a prompt by ID
func (r *GormPromptRepository) FindByID(ctx context.Context, id uuid.UUID) (*prompt.Prompt, error) {
	var model models.PromptModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForTenant finds a prompt by ID within a tenant
func (r *GormPromptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*prompt.Prompt, error) {
	var model models.PromptModel
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

// FindBySlug finds a prompt by its slug within a tenant
func (r *GormPromptRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*prompt.Prompt, error) {
	var model models.PromptModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, strings.ToLower(slug)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant finds all prompts for a tenant matching the filter
func (r *GormPromptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter prompt.Filter) ([]prompt.Prompt, error) {
	var promptModels []models.PromptModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.PromptModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&promptModels).Error; err != nil {
		return nil, err
	}

	return r.toDomainSlice(promptModels)
}

// CountForTenant counts prompts for a tenant matching the filter
func (r *GormPromptRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter prompt.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.PromptModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindTrending returns the highest-scoring public approved prompts.
// Used when the Redis trending cache has no data for the tenant.
func (r *GormPromptRepository) FindTrending(ctx context.Context, tenantID uuid.UUID, limit int) ([]prompt.Prompt, error) {
	if limit <= 0 {
		return []prompt.Prompt{}, nil
	}

	var promptModels []models.PromptModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND visibility = ? AND moderation_status = ?",
			tenantID, prompt.VisibilityPublic, prompt.ModerationApproved).
		Order(trendingScoreExpr + " DESC").
		Limit(limit).
		Find(&promptModels).Error; err != nil {
		return nil, err
	}

	return r.toDomainSlice(promptModels)
}

// Save creates or updates a prompt
func (r *GormPromptRepository) Save(ctx context.Context, p *prompt.Prompt) error {
	model, err := models.PromptModelFromDomain(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormPromptRepository) SaveWithLock(ctx context.Context, p *prompt.Prompt) error {
	model, err := models.PromptModelFromDomain(p)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.PromptModel{}).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(map[string]interface{}{
			"title":             model.Title,
			"slug":              model.Slug,
			"content":           model.Content,
			"negative_content":  model.NegativeContent,
			"target_model":      model.TargetModel,
			"category":          model.Category,
			"tags":              model.TagsJSON,
			"preview_image_key": model.PreviewImageKey,
			"visibility":        model.Visibility,
			"community_id":      model.CommunityID,
			"moderation_status": model.ModerationStatus,
			"view_count":        model.ViewCount,
			"like_count":        model.LikeCount,
			"save_count":        model.SaveCount,
			"use_count":         model.UseCount,
			"rating_average":    model.RatingAverage,
			"rating_count":      model.RatingCount,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a prompt and its ratings and likes within a tenant
func (r *GormPromptRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&models.RatingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&models.PromptLikeModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PromptModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormPromptRepository) toDomainSlice(promptModels []models.PromptModel) ([]prompt.Prompt, error) {
	prompts := make([]prompt.Prompt, len(promptModels))
	for i, model := range promptModels {
		p, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		prompts[i] = *p
	}
	return prompts, nil
}

// applyFilter applies filter options to the query
func (r *GormPromptRepository) applyFilter(query *gorm.DB, filter prompt.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PromptSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPromptRepository) applyFilterWithoutPagination(query *gorm.DB, filter prompt.Filter) *gorm.DB {
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.CommunityID != nil {
		query = query.Where("community_id = ?", *filter.CommunityID)
	}
	if filter.TargetModel != "" {
		query = query.Where("target_model = ?", filter.TargetModel)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Visibility != "" {
		query = query.Where("visibility = ?", filter.Visibility)
	}
	if filter.ModerationStatus != "" {
		query = query.Where("moderation_status = ?", filter.ModerationStatus)
	}
	if filter.Tag != "" {
		// Tags are a JSON array; match the quoted element
		query = query.Where("tags LIKE ?", "%\""+strings.ToLower(filter.Tag)+"\"%")
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", searchPattern, searchPattern)
	}

	return query
}

// Ensure GormPromptRepository implements prompt.Repository
var _ prompt.Repository = (*GormPromptRepository)(nil)
