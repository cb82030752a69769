package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// PromptModel is the persistence model for the Prompt domain entity.
type PromptModel struct {
	TenantAggregateModel
	AuthorID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	Title            string                  `gorm:"type:varchar(200);not null"`
	Slug             string                  `gorm:"type:varchar(250);not null;index:idx_prompts_tenant_slug,unique"`
	Content          string                  `gorm:"type:text;not null"`
	NegativeContent  string                  `gorm:"type:text"`
	TargetModel      string                  `gorm:"type:varchar(100);index"`
	Category         string                  `gorm:"type:varchar(100);index"`
	TagsJSON         string                  `gorm:"column:tags;type:jsonb;default:'[]'"`
	PreviewImageKey  string                  `gorm:"type:varchar(500)"`
	Visibility       prompt.Visibility       `gorm:"type:varchar(20);not null;default:'private';index"`
	CommunityID      *uuid.UUID              `gorm:"type:uuid;index"`
	ModerationStatus prompt.ModerationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ViewCount        int64                   `gorm:"not null;default:0"`
	LikeCount        int64                   `gorm:"not null;default:0"`
	SaveCount        int64                   `gorm:"not null;default:0"`
	UseCount         int64                   `gorm:"not null;default:0"`
	RatingAverage    float64                 `gorm:"not null;default:0"`
	RatingCount      int64                   `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PromptModel) TableName() string {
	return "prompts"
}

// ToDomain converts the persistence model to a domain Prompt entity.
func (m *PromptModel) ToDomain() (*prompt.Prompt, error) {
	tags := make([]string, 0)
	if m.TagsJSON != "" {
		if err := json.Unmarshal([]byte(m.TagsJSON), &tags); err != nil {
			return nil, err
		}
	}

	p := &prompt.Prompt{
		AuthorID:         m.AuthorID,
		Title:            m.Title,
		Slug:             m.Slug,
		Content:          m.Content,
		NegativeContent:  m.NegativeContent,
		TargetModel:      m.TargetModel,
		Category:         m.Category,
		Tags:             tags,
		PreviewImageKey:  m.PreviewImageKey,
		Visibility:       m.Visibility,
		CommunityID:      m.CommunityID,
		ModerationStatus: m.ModerationStatus,
		ViewCount:        m.ViewCount,
		LikeCount:        m.LikeCount,
		SaveCount:        m.SaveCount,
		UseCount:         m.UseCount,
		RatingAverage:    m.RatingAverage,
		RatingCount:      m.RatingCount,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p, nil
}

// FromDomain populates the persistence model from a domain Prompt entity.
func (m *PromptModel) FromDomain(p *prompt.Prompt) error {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.AuthorID = p.AuthorID
	m.Title = p.Title
	m.Slug = p.Slug
	m.Content = p.Content
	m.NegativeContent = p.NegativeContent
	m.TargetModel = p.TargetModel
	m.Category = p.Category
	m.PreviewImageKey = p.PreviewImageKey
	m.Visibility = p.Visibility
	m.CommunityID = p.CommunityID
	m.ModerationStatus = p.ModerationStatus
	m.ViewCount = p.ViewCount
	m.LikeCount = p.LikeCount
	m.SaveCount = p.SaveCount
	m.UseCount = p.UseCount
	m.RatingAverage = p.RatingAverage
	m.RatingCount = p.RatingCount

	tags := p.Tags
	if tags == nil {
		tags = make([]string, 0)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	m.TagsJSON = string(tagsJSON)
	return nil
}

// PromptModelFromDomain creates a new persistence model from a domain Prompt entity.
func PromptModelFromDomain(p *prompt.Prompt) (*PromptModel, error) {
	m := &PromptModel{}
	if err := m.FromDomain(p); err != nil {
		return nil, err
	}
	return m, nil
}

// CollectionModel is the persistence model for the Collection domain entity.
// The ordered prompt list is stored as a JSON array; position is the index.
type CollectionModel struct {
	TenantAggregateModel
	OwnerID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Name          string                      `gorm:"type:varchar(200);not null"`
	Description   string                      `gorm:"type:text"`
	Visibility    prompt.CollectionVisibility `gorm:"type:varchar(20);not null;default:'private';index"`
	PromptIDsJSON string                      `gorm:"column:prompt_ids;type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (CollectionModel) TableName() string {
	return "collections"
}

// ToDomain converts the persistence model to a domain Collection entity.
func (m *CollectionModel) ToDomain() (*prompt.Collection, error) {
	promptIDs := make([]uuid.UUID, 0)
	if m.PromptIDsJSON != "" {
		if err := json.Unmarshal([]byte(m.PromptIDsJSON), &promptIDs); err != nil {
			return nil, err
		}
	}

	c := &prompt.Collection{
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Visibility:  m.Visibility,
		PromptIDs:   promptIDs,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c, nil
}

// FromDomain populates the persistence model from a domain Collection entity.
func (m *CollectionModel) FromDomain(c *prompt.Collection) error {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.OwnerID = c.OwnerID
	m.Name = c.Name
	m.Description = c.Description
	m.Visibility = c.Visibility

	promptIDs := c.PromptIDs
	if promptIDs == nil {
		promptIDs = make([]uuid.UUID, 0)
	}
	promptIDsJSON, err := json.Marshal(promptIDs)
	if err != nil {
		return err
	}
	m.PromptIDsJSON = string(promptIDsJSON)
	return nil
}

// CollectionModelFromDomain creates a new persistence model from a domain Collection entity.
func CollectionModelFromDomain(c *prompt.Collection) (*CollectionModel, error) {
	m := &CollectionModel{}
	if err := m.FromDomain(c); err != nil {
		return nil, err
	}
	return m, nil
}

// RatingModel is the persistence model for the Rating domain entity.
type RatingModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	PromptID uuid.UUID `gorm:"type:uuid;not null;index:idx_ratings_prompt_user,unique"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_ratings_prompt_user,unique"`
	Stars    int       `gorm:"not null"`
	Comment  string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RatingModel) TableName() string {
	return "prompt_ratings"
}

// ToDomain converts the persistence model to a domain Rating entity.
func (m *RatingModel) ToDomain() *prompt.Rating {
	return &prompt.Rating{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID: m.TenantID,
		PromptID: m.PromptID,
		UserID:   m.UserID,
		Stars:    m.Stars,
		Comment:  m.Comment,
	}
}

// FromDomain populates the persistence model from a domain Rating entity.
func (m *RatingModel) FromDomain(r *prompt.Rating) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.PromptID = r.PromptID
	m.UserID = r.UserID
	m.Stars = r.Stars
	m.Comment = r.Comment
}

// RatingModelFromDomain creates a new persistence model from a domain Rating entity.
func RatingModelFromDomain(r *prompt.Rating) *RatingModel {
	m := &RatingModel{}
	m.FromDomain(r)
	return m
}

// PromptLikeModel is the persistence model for the PromptLike relationship.
type PromptLikeModel struct {
	PromptID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PromptLikeModel) TableName() string {
	return "prompt_likes"
}

// ToDomain converts the persistence model to a domain PromptLike.
func (m *PromptLikeModel) ToDomain() prompt.PromptLike {
	return prompt.PromptLike{
		TenantID:  m.TenantID,
		PromptID:  m.PromptID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain PromptLike.
func (m *PromptLikeModel) FromDomain(l prompt.PromptLike) {
	m.PromptID = l.PromptID
	m.UserID = l.UserID
	m.TenantID = l.TenantID
	m.CreatedAt = l.CreatedAt
}
