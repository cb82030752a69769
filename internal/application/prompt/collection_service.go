package prompt

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/cache"
)

// CollectionService handles prompt collections
type CollectionService struct {
	collectionRepo prompt.CollectionRepository
	promptRepo     prompt.Repository
	trending       cache.TrendingCache // Optional
	logger         *zap.Logger
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	collectionRepo prompt.CollectionRepository,
	promptRepo prompt.Repository,
	trending cache.TrendingCache,
	logger *zap.Logger,
) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		promptRepo:     promptRepo,
		trending:       trending,
		logger:         logger,
	}
}

// CreateCollection creates a collection for the owner
func (s *CollectionService) CreateCollection(ctx context.Context, input CreateCollectionInput) (*prompt.Collection, error) {
	c, err := prompt.NewCollection(input.TenantID, input.OwnerID, input.Name)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		c.SetDescription(input.Description)
	}
	if input.Visibility != "" {
		if err := c.SetVisibility(input.Visibility); err != nil {
			return nil, err
		}
	}

	if err := s.collectionRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Collection created", zap.String("collection_id", c.ID.String()))
	return c, nil
}

// GetCollection returns a collection the viewer may see
func (s *CollectionService) GetCollection(ctx context.Context, tenantID, collectionID, viewerID uuid.UUID) (*prompt.Collection, error) {
	c, err := s.collectionRepo.FindByIDForTenant(ctx, tenantID, collectionID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != viewerID && c.Visibility != prompt.CollectionPublic {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

// ListOwnCollections returns the owner's collections
func (s *CollectionService) ListOwnCollections(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]prompt.Collection, error) {
	return s.collectionRepo.FindByOwner(ctx, tenantID, ownerID, filter)
}

// ListPublicCollections returns public collections in the tenant
func (s *CollectionService) ListPublicCollections(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]prompt.Collection, error) {
	return s.collectionRepo.FindPublicForTenant(ctx, tenantID, filter)
}

// UpdateCollection updates name, description or visibility
func (s *CollectionService) UpdateCollection(ctx context.Context, input UpdateCollectionInput) (*prompt.Collection, error) {
	c, err := s.ownedCollection(ctx, input.TenantID, input.CollectionID, input.OwnerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := c.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		c.SetDescription(*input.Description)
	}
	if input.Visibility != nil {
		if err := c.SetVisibility(*input.Visibility); err != nil {
			return nil, err
		}
	}

	if err := s.collectionRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SavePromptToCollection adds a prompt to a collection and counts the save
func (s *CollectionService) SavePromptToCollection(ctx context.Context, tenantID, collectionID, ownerID, promptID uuid.UUID) error {
	c, err := s.ownedCollection(ctx, tenantID, collectionID, ownerID)
	if err != nil {
		return err
	}

	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return err
	}

	if err := c.AddPrompt(promptID); err != nil {
		return err
	}
	if err := s.collectionRepo.SaveWithLock(ctx, c); err != nil {
		return err
	}

	p.AddSave()
	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		// The save count drifted by one; the collection entry itself stuck.
		s.logger.Warn("Failed to update save counter", zap.Error(err))
	}
	if s.trending != nil && p.Visibility == prompt.VisibilityPublic && p.ModerationStatus == prompt.ModerationApproved {
		if err := s.trending.RecordActivity(ctx, tenantID, promptID, cache.WeightSave); err != nil {
			s.logger.Warn("Failed to record trending activity", zap.Error(err))
		}
	}
	return nil
}

// RemovePromptFromCollection removes a prompt from a collection
func (s *CollectionService) RemovePromptFromCollection(ctx context.Context, tenantID, collectionID, ownerID, promptID uuid.UUID) error {
	c, err := s.ownedCollection(ctx, tenantID, collectionID, ownerID)
	if err != nil {
		return err
	}

	if err := c.RemovePrompt(promptID); err != nil {
		return err
	}
	if err := s.collectionRepo.SaveWithLock(ctx, c); err != nil {
		return err
	}

	if p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID); err == nil {
		p.RemoveSave()
		if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
			s.logger.Warn("Failed to update save counter", zap.Error(err))
		}
	}
	return nil
}

// ReorderCollection moves a prompt to a new position
func (s *CollectionService) ReorderCollection(ctx context.Context, input ReorderCollectionInput) (*prompt.Collection, error) {
	c, err := s.ownedCollection(ctx, input.TenantID, input.CollectionID, input.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := c.Reorder(input.PromptID, input.Position); err != nil {
		return nil, err
	}
	if err := s.collectionRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCollection deletes a collection; the prompts themselves stay
func (s *CollectionService) DeleteCollection(ctx context.Context, tenantID, collectionID, ownerID uuid.UUID) error {
	if _, err := s.ownedCollection(ctx, tenantID, collectionID, ownerID); err != nil {
		return err
	}
	return s.collectionRepo.Delete(ctx, tenantID, collectionID)
}

func (s *CollectionService) ownedCollection(ctx context.Context, tenantID, collectionID, ownerID uuid.UUID) (*prompt.Collection, error) {
	c, err := s.collectionRepo.FindByIDForTenant(ctx, tenantID, collectionID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, shared.ErrForbidden
	}
	return c, nil
}
