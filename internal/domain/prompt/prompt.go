package prompt

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// Visibility controls who can see a prompt
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"   // Only the author
	VisibilityCommunity Visibility = "community" // Members of the linked community
	VisibilityPublic    Visibility = "public"    // Everyone in the tenant
)

// ModerationStatus represents the moderation state of a prompt
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationFlagged  ModerationStatus = "flagged"
	ModerationRemoved  ModerationStatus = "removed"
)

// IsValid checks if the moderation status is valid
func (s ModerationStatus) IsValid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationFlagged, ModerationRemoved:
		return true
	}
	return false
}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

const (
	maxTitleLength   = 200
	maxContentLength = 20000
	maxTags          = 20
)

// Prompt is the aggregate root for a stored image-generation prompt.
// Counters are denormalized; likes and saves are tracked in their own
// tables and the counts updated through the aggregate.
type Prompt struct {
	shared.TenantAggregateRoot
	AuthorID         uuid.UUID
	Title            string
	Slug             string
	Content          string
	NegativeContent  string // Negative prompt, optional
	TargetModel      string // e.g. "sdxl", "midjourney", "dall-e-3"
	Category         string
	Tags             []string
	PreviewImageKey  string // Object-storage key, optional
	Visibility       Visibility
	CommunityID      *uuid.UUID // Set when visibility is community
	ModerationStatus ModerationStatus
	ViewCount        int64
	LikeCount        int64
	SaveCount        int64
	UseCount         int64
	RatingAverage    float64
	RatingCount      int64
}

// NewPrompt creates a private prompt pending moderation
func NewPrompt(tenantID, authorID uuid.UUID, title, content, targetModel string) (*Prompt, error) {
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author ID cannot be empty")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	p := &Prompt{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, authorID),
		AuthorID:            authorID,
		Title:               strings.TrimSpace(title),
		Slug:                Slugify(title),
		Content:             content,
		TargetModel:         strings.TrimSpace(targetModel),
		Tags:                make([]string, 0),
		Visibility:          VisibilityPrivate,
		ModerationStatus:    ModerationPending,
	}
	return p, nil
}

// Slugify converts a title into a URL-safe slug
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	return s
}

// Update changes the editable content fields
func (p *Prompt) Update(title, content, negativeContent, targetModel, category string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateContent(content); err != nil {
		return err
	}
	p.Title = strings.TrimSpace(title)
	p.Slug = Slugify(title)
	p.Content = content
	p.NegativeContent = negativeContent
	p.TargetModel = strings.TrimSpace(targetModel)
	p.Category = strings.TrimSpace(category)
	p.touch()
	return nil
}

// SetTags replaces the tag set, normalized to lowercase and deduplicated
func (p *Prompt) SetTags(tags []string) error {
	seen := make(map[string]bool)
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		if len(tag) > 50 {
			return shared.NewDomainError("INVALID_TAG", "Tags cannot exceed 50 characters")
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	if len(normalized) > maxTags {
		return shared.NewDomainError("TOO_MANY_TAGS", "A prompt cannot have more than 20 tags")
	}
	p.Tags = normalized
	p.touch()
	return nil
}

// SetPreviewImage sets the object-storage key of the preview image
func (p *Prompt) SetPreviewImage(key string) {
	p.PreviewImageKey = key
	p.touch()
}

// Publish makes the prompt visible to the tenant or a community.
// Removed prompts cannot be published.
func (p *Prompt) Publish(visibility Visibility, communityID *uuid.UUID) error {
	if p.ModerationStatus == ModerationRemoved {
		return shared.NewDomainError("PROMPT_REMOVED", "Removed prompts cannot be published")
	}
	switch visibility {
	case VisibilityPublic:
		p.CommunityID = nil
	case VisibilityCommunity:
		if communityID == nil || *communityID == uuid.Nil {
			return shared.NewDomainError("COMMUNITY_REQUIRED", "Community visibility requires a community")
		}
		p.CommunityID = communityID
	default:
		return shared.NewDomainError("INVALID_VISIBILITY", "Publish requires public or community visibility")
	}
	p.Visibility = visibility
	p.touch()
	p.AddDomainEvent(NewPromptPublishedEvent(p))
	return nil
}

// Unpublish makes the prompt private again
func (p *Prompt) Unpublish() {
	wasVisible := p.Visibility != VisibilityPrivate
	p.Visibility = VisibilityPrivate
	p.CommunityID = nil
	p.touch()
	if wasVisible {
		p.AddDomainEvent(NewPromptRemovedEvent(p, RemovalReasonUnpublished))
	}
}

// Approve marks the prompt as approved by moderation
func (p *Prompt) Approve() error {
	if p.ModerationStatus == ModerationRemoved {
		return shared.NewDomainError("PROMPT_REMOVED", "Removed prompts cannot be approved")
	}
	p.ModerationStatus = ModerationApproved
	p.touch()
	return nil
}

// Flag marks the prompt for moderator review
func (p *Prompt) Flag() error {
	if p.ModerationStatus == ModerationRemoved {
		return shared.NewDomainError("PROMPT_REMOVED", "Removed prompts cannot be flagged")
	}
	p.ModerationStatus = ModerationFlagged
	p.touch()
	return nil
}

// Remove takes the prompt down; it also becomes private
func (p *Prompt) Remove() {
	p.ModerationStatus = ModerationRemoved
	p.Visibility = VisibilityPrivate
	p.CommunityID = nil
	p.touch()
	p.AddDomainEvent(NewPromptRemovedEvent(p, RemovalReasonModeration))
}

// IsVisible reports whether the prompt can be shown outside moderation views
func (p *Prompt) IsVisible() bool {
	return p.ModerationStatus == ModerationApproved || p.ModerationStatus == ModerationPending
}

// RecordView increments the view counter
func (p *Prompt) RecordView() {
	p.ViewCount++
	p.touch()
}

// RecordUse increments the use counter
func (p *Prompt) RecordUse() {
	p.UseCount++
	p.touch()
}

// AddLike increments the like counter
func (p *Prompt) AddLike() {
	p.LikeCount++
	p.touch()
}

// RemoveLike decrements the like counter
func (p *Prompt) RemoveLike() {
	if p.LikeCount > 0 {
		p.LikeCount--
	}
	p.touch()
}

// AddSave increments the save counter
func (p *Prompt) AddSave() {
	p.SaveCount++
	p.touch()
}

// RemoveSave decrements the save counter
func (p *Prompt) RemoveSave() {
	if p.SaveCount > 0 {
		p.SaveCount--
	}
	p.touch()
}

// ApplyRating folds a new rating into the denormalized average
func (p *Prompt) ApplyRating(stars int) error {
	if stars < 1 || stars > 5 {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	total := p.RatingAverage*float64(p.RatingCount) + float64(stars)
	p.RatingCount++
	p.RatingAverage = total / float64(p.RatingCount)
	p.touch()
	return nil
}

// ReplaceRating swaps a previous rating value for a new one
func (p *Prompt) ReplaceRating(oldStars, newStars int) error {
	if newStars < 1 || newStars > 5 {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	if p.RatingCount == 0 {
		return shared.NewDomainError("INVALID_RATING", "Prompt has no ratings to replace")
	}
	total := p.RatingAverage*float64(p.RatingCount) - float64(oldStars) + float64(newStars)
	p.RatingAverage = total / float64(p.RatingCount)
	p.touch()
	return nil
}

func (p *Prompt) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > maxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Prompt content cannot be empty")
	}
	if len(content) > maxContentLength {
		return shared.NewDomainError("INVALID_CONTENT", "Prompt content cannot exceed 20000 characters")
	}
	return nil
}
