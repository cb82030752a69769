package community

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// Visibility controls who can discover and join a community
type Visibility string

const (
	VisibilityPublic  Visibility = "public"  // Anyone in the tenant can join
	VisibilityPrivate Visibility = "private" // Invite only
)

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Community is a grouping of users around shared prompts. A community may
// have sub-communities; nesting is one level deep via ParentID.
type Community struct {
	shared.TenantAggregateRoot
	Name        string
	Slug        string
	Description string
	ParentID    *uuid.UUID // Nil for top-level communities
	OwnerID     uuid.UUID
	Visibility  Visibility
	MemberCount int64
	IconKey     string // Object-storage key, optional
}

// NewCommunity creates a top-level public community owned by ownerID
func NewCommunity(tenantID, ownerID uuid.UUID, name string) (*Community, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Community{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, ownerID),
		Name:                strings.TrimSpace(name),
		Slug:                slugify(name),
		OwnerID:             ownerID,
		Visibility:          VisibilityPublic,
		MemberCount:         1, // The owner
	}, nil
}

// NewSubCommunity creates a community nested under a top-level parent.
// The parent must itself be top-level; deeper nesting is rejected.
func NewSubCommunity(parent *Community, ownerID uuid.UUID, name string) (*Community, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent community is required")
	}
	if parent.ParentID != nil {
		return nil, shared.NewDomainError("NESTING_TOO_DEEP", "Sub-communities cannot have their own sub-communities")
	}
	c, err := NewCommunity(parent.TenantID, ownerID, name)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	c.ParentID = &parentID
	c.Visibility = parent.Visibility
	return c, nil
}

// Update changes name and description
func (c *Community) Update(name, description string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if len(description) > 5000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 5000 characters")
	}
	c.Name = strings.TrimSpace(name)
	c.Slug = slugify(name)
	c.Description = description
	c.touch()
	return nil
}

// SetVisibility changes whether the community is public or invite-only
func (c *Community) SetVisibility(visibility Visibility) error {
	if visibility != VisibilityPublic && visibility != VisibilityPrivate {
		return shared.NewDomainError("INVALID_VISIBILITY", "Community visibility must be public or private")
	}
	c.Visibility = visibility
	c.touch()
	return nil
}

// SetIcon sets the object-storage key of the community icon
func (c *Community) SetIcon(key string) {
	c.IconKey = key
	c.touch()
}

// TransferOwnership hands the community to a new owner
func (c *Community) TransferOwnership(newOwnerID uuid.UUID) error {
	if newOwnerID == uuid.Nil {
		return shared.NewDomainError("INVALID_OWNER", "New owner ID cannot be empty")
	}
	if newOwnerID == c.OwnerID {
		return shared.NewDomainError("SAME_OWNER", "User already owns this community")
	}
	c.OwnerID = newOwnerID
	c.touch()
	return nil
}

// MemberJoined increments the member counter
func (c *Community) MemberJoined() {
	c.MemberCount++
	c.touch()
}

// MemberLeft decrements the member counter
func (c *Community) MemberLeft() {
	if c.MemberCount > 0 {
		c.MemberCount--
	}
	c.touch()
}

// IsTopLevel reports whether the community has no parent
func (c *Community) IsTopLevel() bool {
	return c.ParentID == nil
}

func (c *Community) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_COMMUNITY_NAME", "Community name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_COMMUNITY_NAME", "Community name cannot exceed 100 characters")
	}
	return nil
}
