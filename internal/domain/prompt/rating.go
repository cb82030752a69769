package prompt

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// Rating is a single user's star rating of a prompt.
// A user can rate a prompt once; re-rating updates the existing row.
type Rating struct {
	shared.BaseEntity
	TenantID uuid.UUID
	PromptID uuid.UUID
	UserID   uuid.UUID
	Stars    int
	Comment  string
}

// NewRating creates a rating
func NewRating(tenantID, promptID, userID uuid.UUID, stars int, comment string) (*Rating, error) {
	if promptID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RATING", "Prompt and user are required")
	}
	if stars < 1 || stars > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	if len(comment) > 2000 {
		return nil, shared.NewDomainError("INVALID_RATING", "Comment cannot exceed 2000 characters")
	}

	return &Rating{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		PromptID:   promptID,
		UserID:     userID,
		Stars:      stars,
		Comment:    strings.TrimSpace(comment),
	}, nil
}

// Update changes the stars and comment of an existing rating
func (r *Rating) Update(stars int, comment string) error {
	if stars < 1 || stars > 5 {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	if len(comment) > 2000 {
		return shared.NewDomainError("INVALID_RATING", "Comment cannot exceed 2000 characters")
	}
	r.Stars = stars
	r.Comment = strings.TrimSpace(comment)
	r.UpdatedAt = time.Now()
	return nil
}

// PromptLike records that a user liked a prompt
type PromptLike struct {
	TenantID  uuid.UUID
	PromptID  uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// NewPromptLike creates a like record
func NewPromptLike(tenantID, promptID, userID uuid.UUID) PromptLike {
	return PromptLike{
		TenantID:  tenantID,
		PromptID:  promptID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}
