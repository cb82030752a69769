package prompt

import (
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/domain/shared"
)

// Event types published by the prompt domain
const (
	EventPromptPublished = "prompt.published"
	EventPromptRemoved   = "prompt.removed"
)

// Removal reasons carried on PromptRemovedEvent
const (
	RemovalReasonUnpublished = "unpublished"
	RemovalReasonModeration  = "moderation"
)

// PromptPublishedEvent is published when a prompt becomes visible
// beyond its author
type PromptPublishedEvent struct {
	shared.BaseDomainEvent
	PromptID    uuid.UUID  `json:"prompt_id"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Visibility  string     `json:"visibility"`
	CommunityID *uuid.UUID `json:"community_id,omitempty"`
}

// NewPromptPublishedEvent builds the event from a prompt
func NewPromptPublishedEvent(p *Prompt) *PromptPublishedEvent {
	return &PromptPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPromptPublished, "Prompt", p.ID, p.TenantID),
		PromptID:        p.ID,
		AuthorID:        p.AuthorID,
		Visibility:      string(p.Visibility),
		CommunityID:     p.CommunityID,
	}
}

// PromptRemovedEvent is published when a prompt stops being visible,
// either by the author unpublishing it or by moderation take-down.
// The trending feed drops the prompt when it sees this event.
type PromptRemovedEvent struct {
	shared.BaseDomainEvent
	PromptID uuid.UUID `json:"prompt_id"`
	AuthorID uuid.UUID `json:"author_id"`
	Reason   string    `json:"reason"`
}

// NewPromptRemovedEvent builds the event from a prompt
func NewPromptRemovedEvent(p *Prompt, reason string) *PromptRemovedEvent {
	return &PromptRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPromptRemoved, "Prompt", p.ID, p.TenantID),
		PromptID:        p.ID,
		AuthorID:        p.AuthorID,
		Reason:          reason,
	}
}
