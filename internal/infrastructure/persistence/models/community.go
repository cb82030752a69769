package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// CommunityModel is the persistence model for the Community domain entity.
type CommunityModel struct {
	TenantAggregateModel
	Name        string               `gorm:"type:varchar(200);not null"`
	Slug        string               `gorm:"type:varchar(250);not null;index:idx_communities_tenant_slug,unique"`
	Description string               `gorm:"type:text"`
	ParentID    *uuid.UUID           `gorm:"type:uuid;index"`
	OwnerID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Visibility  community.Visibility `gorm:"type:varchar(20);not null;default:'public';index"`
	MemberCount int64                `gorm:"not null;default:0"`
	IconKey     string               `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CommunityModel) TableName() string {
	return "communities"
}

// ToDomain converts the persistence model to a domain Community entity.
func (m *CommunityModel) ToDomain() *community.Community {
	c := &community.Community{
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		ParentID:    m.ParentID,
		OwnerID:     m.OwnerID,
		Visibility:  m.Visibility,
		MemberCount: m.MemberCount,
		IconKey:     m.IconKey,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Community entity.
func (m *CommunityModel) FromDomain(c *community.Community) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Slug = c.Slug
	m.Description = c.Description
	m.ParentID = c.ParentID
	m.OwnerID = c.OwnerID
	m.Visibility = c.Visibility
	m.MemberCount = c.MemberCount
	m.IconKey = c.IconKey
}

// CommunityModelFromDomain creates a new persistence model from a domain Community entity.
func CommunityModelFromDomain(c *community.Community) *CommunityModel {
	m := &CommunityModel{}
	m.FromDomain(c)
	return m
}

// MembershipModel is the persistence model for the Membership domain entity.
type MembershipModel struct {
	BaseModel
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	CommunityID uuid.UUID              `gorm:"type:uuid;not null;index:idx_memberships_community_user,unique"`
	UserID      uuid.UUID              `gorm:"type:uuid;not null;index:idx_memberships_community_user,unique"`
	Role        community.MemberRole   `gorm:"type:varchar(20);not null;default:'member'"`
	Status      community.MemberStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	BannedAt    *time.Time
	BanReason   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MembershipModel) TableName() string {
	return "community_memberships"
}

// ToDomain converts the persistence model to a domain Membership entity.
func (m *MembershipModel) ToDomain() *community.Membership {
	return &community.Membership{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:    m.TenantID,
		CommunityID: m.CommunityID,
		UserID:      m.UserID,
		Role:        m.Role,
		Status:      m.Status,
		BannedAt:    m.BannedAt,
		BanReason:   m.BanReason,
	}
}

// FromDomain populates the persistence model from a domain Membership entity.
func (m *MembershipModel) FromDomain(mb *community.Membership) {
	m.FromDomainBaseEntity(mb.BaseEntity)
	m.TenantID = mb.TenantID
	m.CommunityID = mb.CommunityID
	m.UserID = mb.UserID
	m.Role = mb.Role
	m.Status = mb.Status
	m.BannedAt = mb.BannedAt
	m.BanReason = mb.BanReason
}

// MembershipModelFromDomain creates a new persistence model from a domain Membership entity.
func MembershipModelFromDomain(mb *community.Membership) *MembershipModel {
	m := &MembershipModel{}
	m.FromDomain(mb)
	return m
}

// InviteModel is the persistence model for the Invite domain entity.
type InviteModel struct {
	BaseModel
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	CommunityID uuid.UUID              `gorm:"type:uuid;not null;index"`
	InviterID   uuid.UUID              `gorm:"type:uuid;not null"`
	Email       string                 `gorm:"type:varchar(200)"`
	Token       string                 `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status      community.InviteStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpiresAt   time.Time              `gorm:"not null;index"`
	AcceptedBy  *uuid.UUID             `gorm:"type:uuid"`
	AcceptedAt  *time.Time
}

// TableName returns the table name for GORM
func (InviteModel) TableName() string {
	return "community_invites"
}

// ToDomain converts the persistence model to a domain Invite entity.
func (m *InviteModel) ToDomain() *community.Invite {
	return &community.Invite{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:    m.TenantID,
		CommunityID: m.CommunityID,
		InviterID:   m.InviterID,
		Email:       m.Email,
		Token:       m.Token,
		Status:      m.Status,
		ExpiresAt:   m.ExpiresAt,
		AcceptedBy:  m.AcceptedBy,
		AcceptedAt:  m.AcceptedAt,
	}
}

// FromDomain populates the persistence model from a domain Invite entity.
func (m *InviteModel) FromDomain(i *community.Invite) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.TenantID = i.TenantID
	m.CommunityID = i.CommunityID
	m.InviterID = i.InviterID
	m.Email = i.Email
	m.Token = i.Token
	m.Status = i.Status
	m.ExpiresAt = i.ExpiresAt
	m.AcceptedBy = i.AcceptedBy
	m.AcceptedAt = i.AcceptedAt
}

// InviteModelFromDomain creates a new persistence model from a domain Invite entity.
func InviteModelFromDomain(i *community.Invite) *InviteModel {
	m := &InviteModel{}
	m.FromDomain(i)
	return m
}
