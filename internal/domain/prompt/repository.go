package prompt

import (
	"context"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// Filter narrows prompt listings
type Filter struct {
	shared.Filter
	AuthorID         *uuid.UUID
	CommunityID      *uuid.UUID
	Tag              string
	TargetModel      string
	Category         string
	Visibility       Visibility
	ModerationStatus ModerationStatus
	Search           string // Matches title and content
}

// Repository defines persistence operations for prompts
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Prompt, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Prompt, error)
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Prompt, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Prompt, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	FindTrending(ctx context.Context, tenantID uuid.UUID, limit int) ([]Prompt, error)
	Save(ctx context.Context, prompt *Prompt) error
	SaveWithLock(ctx context.Context, prompt *Prompt) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CollectionRepository defines persistence operations for collections
type CollectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Collection, error)
	FindByOwner(ctx context.Context, tenantID, ownerID uuid.UUID, filter shared.Filter) ([]Collection, error)
	FindPublicForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Collection, error)
	Save(ctx context.Context, collection *Collection) error
	SaveWithLock(ctx context.Context, collection *Collection) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// RatingRepository defines persistence operations for ratings
type RatingRepository interface {
	FindByPromptAndUser(ctx context.Context, tenantID, promptID, userID uuid.UUID) (*Rating, error)
	FindByPrompt(ctx context.Context, tenantID, promptID uuid.UUID, filter shared.Filter) ([]Rating, error)
	CountByPrompt(ctx context.Context, tenantID, promptID uuid.UUID) (int64, error)
	Save(ctx context.Context, rating *Rating) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LikeRepository defines persistence operations for prompt likes
type LikeRepository interface {
	Exists(ctx context.Context, tenantID, promptID, userID uuid.UUID) (bool, error)
	Save(ctx context.Context, like PromptLike) error
	Delete(ctx context.Context, tenantID, promptID, userID uuid.UUID) error
}
