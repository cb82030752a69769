package community

import (
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/domain/community"
)

// CreateCommunityInput contains the input for community creation
type CreateCommunityInput struct {
	TenantID    uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Visibility  community.Visibility
	ParentID    *uuid.UUID // Non-nil creates a sub-community
}

// UpdateCommunityInput contains the mutable community fields
type UpdateCommunityInput struct {
	TenantID    uuid.UUID
	CommunityID uuid.UUID
	UserID      uuid.UUID
	Name        *string
	Description *string
	Visibility  *community.Visibility
}

// ListCommunitiesInput contains filters for listing communities
type ListCommunitiesInput struct {
	TenantID uuid.UUID
	ParentID *uuid.UUID
	TopLevel bool
	Search   string
	Page     int
	PageSize int
}

// CreateInviteInput contains the input for invite creation
type CreateInviteInput struct {
	TenantID    uuid.UUID
	CommunityID uuid.UUID
	InviterID   uuid.UUID
	Email       string // Optional; empty invites anyone holding the token
}

// ChangeMemberRoleInput changes a member's role
type ChangeMemberRoleInput struct {
	TenantID    uuid.UUID
	CommunityID uuid.UUID
	ActorID     uuid.UUID
	MemberID    uuid.UUID // User whose role changes
	Role        community.MemberRole
}

// BanMemberInput bans a member from a community
type BanMemberInput struct {
	TenantID    uuid.UUID
	CommunityID uuid.UUID
	ActorID     uuid.UUID
	MemberID    uuid.UUID
	Reason      string
}
