package prompt

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/cache"
)

// PromptService handles prompt lifecycle, engagement and moderation
type PromptService struct {
	promptRepo     prompt.Repository
	ratingRepo     prompt.RatingRepository
	likeRepo       prompt.LikeRepository
	membershipRepo community.MembershipRepository
	trending       cache.TrendingCache // Optional; nil disables the cached feed
	publisher      shared.EventPublisher
	logger         *zap.Logger
}

// NewPromptService creates a new prompt service
func NewPromptService(
	promptRepo prompt.Repository,
	ratingRepo prompt.RatingRepository,
	likeRepo prompt.LikeRepository,
	membershipRepo community.MembershipRepository,
	trending cache.TrendingCache,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PromptService {
	return &PromptService{
		promptRepo:     promptRepo,
		ratingRepo:     ratingRepo,
		likeRepo:       likeRepo,
		membershipRepo: membershipRepo,
		trending:       trending,
		publisher:      publisher,
		logger:         logger,
	}
}

// CreatePrompt creates a private prompt for the author
func (s *PromptService) CreatePrompt(ctx context.Context, input CreatePromptInput) (*prompt.Prompt, error) {
	p, err := prompt.NewPrompt(input.TenantID, input.AuthorID, input.Title, input.Content, input.TargetModel)
	if err != nil {
		return nil, err
	}
	if input.NegativeContent != "" || input.Category != "" {
		if err := p.Update(input.Title, input.Content, input.NegativeContent, input.TargetModel, input.Category); err != nil {
			return nil, err
		}
	}
	if len(input.Tags) > 0 {
		if err := p.SetTags(input.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.promptRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Prompt created",
		zap.String("prompt_id", p.ID.String()),
		zap.String("author_id", input.AuthorID.String()))
	return p, nil
}

// GetPrompt returns a prompt the viewer is allowed to see and counts the view
func (s *PromptService) GetPrompt(ctx context.Context, tenantID, promptID, viewerID uuid.UUID) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return nil, err
	}
	if err := s.checkViewAccess(ctx, p, viewerID); err != nil {
		return nil, err
	}

	if p.AuthorID != viewerID {
		p.RecordView()
		if err := s.promptRepo.Save(ctx, p); err != nil {
			// The view counter is best effort.
			s.logger.Warn("Failed to record view", zap.Error(err))
		}
		s.recordActivity(ctx, p, cache.WeightView)
	}
	return p, nil
}

// GetPromptBySlug returns a prompt by its slug
func (s *PromptService) GetPromptBySlug(ctx context.Context, tenantID uuid.UUID, slug string, viewerID uuid.UUID) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	return s.GetPrompt(ctx, tenantID, p.ID, viewerID)
}

// UpdatePrompt updates a prompt's content; only its author may do this
func (s *PromptService) UpdatePrompt(ctx context.Context, input UpdatePromptInput) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, input.TenantID, input.PromptID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != input.UserID {
		return nil, shared.ErrForbidden
	}

	if err := p.Update(input.Title, input.Content, input.NegativeContent, input.TargetModel, input.Category); err != nil {
		return nil, err
	}
	if input.Tags != nil {
		if err := p.SetTags(input.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePrompt deletes a prompt together with its ratings and likes
func (s *PromptService) DeletePrompt(ctx context.Context, tenantID, promptID, userID uuid.UUID) error {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return err
	}
	if p.AuthorID != userID {
		return shared.ErrForbidden
	}

	if err := s.promptRepo.Delete(ctx, tenantID, promptID); err != nil {
		return err
	}
	s.publishEvent(ctx, prompt.NewPromptRemovedEvent(p, prompt.RemovalReasonUnpublished))
	s.logger.Info("Prompt deleted", zap.String("prompt_id", promptID.String()))
	return nil
}

// PublishPrompt makes a prompt visible to a community or publicly
func (s *PromptService) PublishPrompt(ctx context.Context, input PublishPromptInput) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, input.TenantID, input.PromptID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != input.UserID {
		return nil, shared.ErrForbidden
	}

	if input.Visibility == prompt.VisibilityCommunity {
		if input.CommunityID == nil {
			return nil, shared.NewDomainError("COMMUNITY_REQUIRED", "Community prompts need a community")
		}
		if err := s.requireActiveMember(ctx, input.TenantID, *input.CommunityID, input.UserID); err != nil {
			return nil, err
		}
	}

	if err := p.Publish(input.Visibility, input.CommunityID); err != nil {
		return nil, err
	}
	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, prompt.NewPromptPublishedEvent(p))
	s.logger.Info("Prompt published",
		zap.String("prompt_id", p.ID.String()),
		zap.String("visibility", string(input.Visibility)))
	return p, nil
}

// UnpublishPrompt takes a prompt back to private
func (s *PromptService) UnpublishPrompt(ctx context.Context, tenantID, promptID, userID uuid.UUID) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, shared.ErrForbidden
	}

	p.Unpublish()
	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, prompt.NewPromptRemovedEvent(p, prompt.RemovalReasonUnpublished))
	return p, nil
}

// ApprovePrompt approves a pending or flagged prompt (moderator operation)
func (s *PromptService) ApprovePrompt(ctx context.Context, tenantID, promptID uuid.UUID) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return nil, err
	}
	if err := p.Approve(); err != nil {
		return nil, err
	}
	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Prompt approved", zap.String("prompt_id", promptID.String()))
	return p, nil
}

// FlagPrompt marks a prompt for moderator review
func (s *PromptService) FlagPrompt(ctx context.Context, tenantID, promptID uuid.UUID) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return nil, err
	}
	if err := p.Flag(); err != nil {
		return nil, err
	}
	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemovePrompt takes a prompt down by moderation
func (s *PromptService) RemovePrompt(ctx context.Context, tenantID, promptID uuid.UUID) (*prompt.Prompt, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return nil, err
	}
	p.Remove()
	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, prompt.NewPromptRemovedEvent(p, prompt.RemovalReasonModeration))
	s.logger.Warn("Prompt removed by moderation", zap.String("prompt_id", promptID.String()))
	return p, nil
}

// LikePrompt records a like from a user; liking twice is a no-op
func (s *PromptService) LikePrompt(ctx context.Context, tenantID, promptID, userID uuid.UUID) error {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return err
	}
	if err := s.checkViewAccess(ctx, p, userID); err != nil {
		return err
	}

	exists, err := s.likeRepo.Exists(ctx, tenantID, promptID, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.likeRepo.Save(ctx, prompt.NewPromptLike(tenantID, promptID, userID)); err != nil {
		return err
	}
	p.AddLike()
	if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
		return err
	}
	s.recordActivity(ctx, p, cache.WeightLike)
	return nil
}

// UnlikePrompt removes a user's like
func (s *PromptService) UnlikePrompt(ctx context.Context, tenantID, promptID, userID uuid.UUID) error {
	if err := s.likeRepo.Delete(ctx, tenantID, promptID, userID); err != nil {
		if err == shared.ErrNotFound {
			return nil
		}
		return err
	}

	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return err
	}
	p.RemoveLike()
	return s.promptRepo.SaveWithLock(ctx, p)
}

// RecordUse counts a use of the prompt (copied or sent to a generator)
func (s *PromptService) RecordUse(ctx context.Context, tenantID, promptID, userID uuid.UUID) error {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return err
	}
	if err := s.checkViewAccess(ctx, p, userID); err != nil {
		return err
	}

	p.RecordUse()
	if err := s.promptRepo.Save(ctx, p); err != nil {
		return err
	}
	s.recordActivity(ctx, p, cache.WeightUse)
	return nil
}

// RatePrompt creates or replaces the user's rating for a prompt
func (s *PromptService) RatePrompt(ctx context.Context, input RatePromptInput) (*prompt.Rating, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, input.TenantID, input.PromptID)
	if err != nil {
		return nil, err
	}
	if err := s.checkViewAccess(ctx, p, input.UserID); err != nil {
		return nil, err
	}
	if p.AuthorID == input.UserID {
		return nil, shared.NewDomainError("SELF_RATING", "Authors cannot rate their own prompts")
	}

	existing, err := s.ratingRepo.FindByPromptAndUser(ctx, input.TenantID, input.PromptID, input.UserID)
	switch {
	case err == nil:
		oldStars := existing.Stars
		if err := existing.Update(input.Stars, input.Comment); err != nil {
			return nil, err
		}
		if err := s.ratingRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		if err := p.ReplaceRating(oldStars, input.Stars); err != nil {
			return nil, err
		}
		if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
			return nil, err
		}
		return existing, nil

	case err == shared.ErrNotFound:
		rating, err := prompt.NewRating(input.TenantID, input.PromptID, input.UserID, input.Stars, input.Comment)
		if err != nil {
			return nil, err
		}
		if err := s.ratingRepo.Save(ctx, rating); err != nil {
			return nil, err
		}
		if err := p.ApplyRating(input.Stars); err != nil {
			return nil, err
		}
		if err := s.promptRepo.SaveWithLock(ctx, p); err != nil {
			return nil, err
		}
		return rating, nil

	default:
		return nil, err
	}
}

// ListRatings returns ratings for a prompt
func (s *PromptService) ListRatings(ctx context.Context, tenantID, promptID uuid.UUID, filter shared.Filter) ([]prompt.Rating, error) {
	return s.ratingRepo.FindByPrompt(ctx, tenantID, promptID, filter)
}

// ListPrompts returns a page of prompts matching the filter. Listings never
// include other users' private or unapproved prompts.
func (s *PromptService) ListPrompts(ctx context.Context, input ListPromptsInput) (*shared.Paginated[prompt.Prompt], error) {
	filter := prompt.Filter{Filter: shared.DefaultFilter()}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.AuthorID = input.AuthorID
	filter.CommunityID = input.CommunityID
	filter.Tag = input.Tag
	filter.TargetModel = input.TargetModel
	filter.Category = input.Category
	filter.Search = input.Search

	ownListing := input.AuthorID != nil && *input.AuthorID == input.ViewerID && input.ViewerID != uuid.Nil
	if !ownListing {
		filter.ModerationStatus = prompt.ModerationApproved
		if input.CommunityID != nil {
			if err := s.requireActiveMember(ctx, input.TenantID, *input.CommunityID, input.ViewerID); err != nil {
				return nil, err
			}
			filter.Visibility = prompt.VisibilityCommunity
		} else {
			filter.Visibility = prompt.VisibilityPublic
		}
	}

	prompts, err := s.promptRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.promptRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(prompts, total, filter.Page, filter.PageSize)
	return &result, nil
}

// TrendingPrompts returns the trending feed. The ranking comes from the
// activity cache when available and falls back to counter-based ordering.
func (s *PromptService) TrendingPrompts(ctx context.Context, tenantID uuid.UUID, limit int) ([]prompt.Prompt, error) {
	if limit <= 0 {
		limit = 20
	}

	if s.trending != nil {
		ids, err := s.trending.TopPrompts(ctx, tenantID, limit)
		if err != nil {
			s.logger.Warn("Trending cache unavailable, falling back to counters", zap.Error(err))
		} else if len(ids) > 0 {
			prompts := make([]prompt.Prompt, 0, len(ids))
			for _, id := range ids {
				p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, id)
				if err != nil {
					continue
				}
				if p.Visibility == prompt.VisibilityPublic && p.ModerationStatus == prompt.ModerationApproved {
					prompts = append(prompts, *p)
				}
			}
			if len(prompts) > 0 {
				return prompts, nil
			}
		}
	}

	return s.promptRepo.FindTrending(ctx, tenantID, limit)
}

func (s *PromptService) checkViewAccess(ctx context.Context, p *prompt.Prompt, viewerID uuid.UUID) error {
	if p.AuthorID == viewerID {
		return nil
	}
	if !p.IsVisible() {
		return shared.ErrNotFound
	}

	switch p.Visibility {
	case prompt.VisibilityPublic:
		return nil
	case prompt.VisibilityCommunity:
		if p.CommunityID == nil {
			return shared.ErrNotFound
		}
		return s.requireActiveMember(ctx, p.TenantID, *p.CommunityID, viewerID)
	default:
		return shared.ErrNotFound
	}
}

func (s *PromptService) requireActiveMember(ctx context.Context, tenantID, communityID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.ErrForbidden
	}
	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, communityID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrForbidden
		}
		return err
	}
	if !membership.IsActive() {
		return shared.ErrForbidden
	}
	return nil
}

func (s *PromptService) recordActivity(ctx context.Context, p *prompt.Prompt, weight float64) {
	if s.trending == nil {
		return
	}
	if p.Visibility != prompt.VisibilityPublic || p.ModerationStatus != prompt.ModerationApproved {
		return
	}
	if err := s.trending.RecordActivity(ctx, p.TenantID, p.ID, weight); err != nil {
		s.logger.Warn("Failed to record trending activity", zap.Error(err))
	}
}

func (s *PromptService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
