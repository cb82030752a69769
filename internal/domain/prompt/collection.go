package prompt

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// CollectionVisibility controls who can see a collection
type CollectionVisibility string

const (
	CollectionPrivate CollectionVisibility = "private"
	CollectionPublic  CollectionVisibility = "public"
)

const maxCollectionItems = 500

// Collection is an ordered, named set of prompt references owned by a user
type Collection struct {
	shared.TenantAggregateRoot
	OwnerID     uuid.UUID
	Name        string
	Description string
	Visibility  CollectionVisibility
	PromptIDs   []uuid.UUID // Ordered; position is the slice index
}

// NewCollection creates an empty private collection
func NewCollection(tenantID, ownerID uuid.UUID, name string) (*Collection, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COLLECTION_NAME", "Collection name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_COLLECTION_NAME", "Collection name cannot exceed 200 characters")
	}

	return &Collection{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, ownerID),
		OwnerID:             ownerID,
		Name:                name,
		Visibility:          CollectionPrivate,
		PromptIDs:           make([]uuid.UUID, 0),
	}, nil
}

// Rename changes the collection name
func (c *Collection) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_COLLECTION_NAME", "Collection name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_COLLECTION_NAME", "Collection name cannot exceed 200 characters")
	}
	c.Name = name
	c.touch()
	return nil
}

// SetDescription sets the collection description
func (c *Collection) SetDescription(description string) {
	c.Description = description
	c.touch()
}

// SetVisibility changes who can see the collection
func (c *Collection) SetVisibility(visibility CollectionVisibility) error {
	if visibility != CollectionPrivate && visibility != CollectionPublic {
		return shared.NewDomainError("INVALID_VISIBILITY", "Collection visibility must be private or public")
	}
	c.Visibility = visibility
	c.touch()
	return nil
}

// AddPrompt appends a prompt to the collection
func (c *Collection) AddPrompt(promptID uuid.UUID) error {
	if promptID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROMPT_ID", "Prompt ID cannot be empty")
	}
	if c.Contains(promptID) {
		return shared.NewDomainError("PROMPT_ALREADY_IN_COLLECTION", "Prompt is already in this collection")
	}
	if len(c.PromptIDs) >= maxCollectionItems {
		return shared.NewDomainError("COLLECTION_FULL", "Collection cannot hold more than 500 prompts")
	}
	c.PromptIDs = append(c.PromptIDs, promptID)
	c.touch()
	return nil
}

// RemovePrompt removes a prompt from the collection, preserving order
func (c *Collection) RemovePrompt(promptID uuid.UUID) error {
	for i, id := range c.PromptIDs {
		if id == promptID {
			c.PromptIDs = append(c.PromptIDs[:i], c.PromptIDs[i+1:]...)
			c.touch()
			return nil
		}
	}
	return shared.NewDomainError("PROMPT_NOT_IN_COLLECTION", "Prompt is not in this collection")
}

// Reorder moves a prompt to a new position
func (c *Collection) Reorder(promptID uuid.UUID, position int) error {
	if position < 0 || position >= len(c.PromptIDs) {
		return shared.NewDomainError("INVALID_POSITION", "Position is out of range")
	}
	current := -1
	for i, id := range c.PromptIDs {
		if id == promptID {
			current = i
			break
		}
	}
	if current == -1 {
		return shared.NewDomainError("PROMPT_NOT_IN_COLLECTION", "Prompt is not in this collection")
	}
	ids := append(c.PromptIDs[:current:current], c.PromptIDs[current+1:]...)
	ids = append(ids[:position], append([]uuid.UUID{promptID}, ids[position:]...)...)
	c.PromptIDs = ids
	c.touch()
	return nil
}

// Contains reports whether the collection holds the prompt
func (c *Collection) Contains(promptID uuid.UUID) bool {
	for _, id := range c.PromptIDs {
		if id == promptID {
			return true
		}
	}
	return false
}

func (c *Collection) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
