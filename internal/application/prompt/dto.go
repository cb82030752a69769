package prompt

import (
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/domain/prompt"
)

// CreatePromptInput contains the input for prompt creation
type CreatePromptInput struct {
	TenantID        uuid.UUID
	AuthorID        uuid.UUID
	Title           string
	Content         string
	NegativeContent string
	TargetModel     string
	Category        string
	Tags            []string
}

// UpdatePromptInput contains the mutable prompt fields
type UpdatePromptInput struct {
	TenantID        uuid.UUID
	PromptID        uuid.UUID
	UserID          uuid.UUID
	Title           string
	Content         string
	NegativeContent string
	TargetModel     string
	Category        string
	Tags            []string
}

// PublishPromptInput contains the input for publishing a prompt
type PublishPromptInput struct {
	TenantID    uuid.UUID
	PromptID    uuid.UUID
	UserID      uuid.UUID
	Visibility  prompt.Visibility
	CommunityID *uuid.UUID
}

// RatePromptInput contains the input for rating a prompt
type RatePromptInput struct {
	TenantID uuid.UUID
	PromptID uuid.UUID
	UserID   uuid.UUID
	Stars    int
	Comment  string
}

// ListPromptsInput contains filters for listing prompts
type ListPromptsInput struct {
	TenantID    uuid.UUID
	ViewerID    uuid.UUID // Zero for anonymous listings
	AuthorID    *uuid.UUID
	CommunityID *uuid.UUID
	Tag         string
	TargetModel string
	Category    string
	Search      string
	Page        int
	PageSize    int
}

// CreateCollectionInput contains the input for collection creation
type CreateCollectionInput struct {
	TenantID    uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Visibility  prompt.CollectionVisibility
}

// UpdateCollectionInput contains the mutable collection fields
type UpdateCollectionInput struct {
	TenantID     uuid.UUID
	CollectionID uuid.UUID
	OwnerID      uuid.UUID
	Name         *string
	Description  *string
	Visibility   *prompt.CollectionVisibility
}

// ReorderCollectionInput moves a prompt to a new position in a collection
type ReorderCollectionInput struct {
	TenantID     uuid.UUID
	CollectionID uuid.UUID
	OwnerID      uuid.UUID
	PromptID     uuid.UUID
	Position     int
}

// EnhanceInput contains the input for the prompt enhancement pipeline
type EnhanceInput struct {
	Text        string
	TargetModel string
}

// EnhanceResult contains the enhanced text and the provider that produced it
type EnhanceResult struct {
	Text     string
	Provider string
}
