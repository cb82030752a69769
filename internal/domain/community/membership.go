package community

import (
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// MemberRole is a user's role within a community
type MemberRole string

const (
	RoleOwner     MemberRole = "owner"
	RoleModerator MemberRole = "moderator"
	RoleMember    MemberRole = "member"
)

// IsValid checks if the member role is valid
func (r MemberRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleModerator, RoleMember:
		return true
	}
	return false
}

// CanModerate reports whether the role grants moderation rights
func (r MemberRole) CanModerate() bool {
	return r == RoleOwner || r == RoleModerator
}

// MemberStatus is the standing of a member within a community
type MemberStatus string

const (
	MemberActive MemberStatus = "active"
	MemberBanned MemberStatus = "banned"
)

// Membership links a user to a community with a role
type Membership struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	CommunityID uuid.UUID
	UserID      uuid.UUID
	Role        MemberRole
	Status      MemberStatus
	BannedAt    *time.Time
	BanReason   string
}

// NewMembership creates an active membership
func NewMembership(tenantID, communityID, userID uuid.UUID, role MemberRole) (*Membership, error) {
	if communityID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBERSHIP", "Community and user are required")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_MEMBER_ROLE", "Unknown member role")
	}

	return &Membership{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
		Status:      MemberActive,
	}, nil
}

// ChangeRole changes the member's role. The owner role is granted through
// Community.TransferOwnership, not here.
func (m *Membership) ChangeRole(role MemberRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_MEMBER_ROLE", "Unknown member role")
	}
	if role == RoleOwner {
		return shared.NewDomainError("OWNER_VIA_TRANSFER", "Ownership changes go through ownership transfer")
	}
	if m.Role == RoleOwner {
		return shared.NewDomainError("OWNER_VIA_TRANSFER", "The owner's role changes through ownership transfer")
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

// Ban bans the member from the community
func (m *Membership) Ban(reason string) error {
	if m.Role == RoleOwner {
		return shared.NewDomainError("CANNOT_BAN_OWNER", "The community owner cannot be banned")
	}
	if m.Status == MemberBanned {
		return shared.NewDomainError("ALREADY_BANNED", "Member is already banned")
	}
	now := time.Now()
	m.Status = MemberBanned
	m.BannedAt = &now
	m.BanReason = reason
	m.UpdatedAt = now
	return nil
}

// Unban restores a banned member
func (m *Membership) Unban() error {
	if m.Status != MemberBanned {
		return shared.NewDomainError("NOT_BANNED", "Member is not banned")
	}
	m.Status = MemberActive
	m.BannedAt = nil
	m.BanReason = ""
	m.UpdatedAt = time.Now()
	return nil
}

// IsActive reports whether the member is in good standing
func (m *Membership) IsActive() bool {
	return m.Status == MemberActive
}
