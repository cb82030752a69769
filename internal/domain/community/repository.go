package community

import (
	"context"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// Filter narrows community listings
type Filter struct {
	shared.Filter
	ParentID   *uuid.UUID
	Visibility Visibility
	Search     string
	TopLevel   bool // When true, only communities without a parent
}

// Repository defines persistence operations for communities
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Community, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Community, error)
	FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Community, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Community, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]Community, error)
	Save(ctx context.Context, community *Community) error
	SaveWithLock(ctx context.Context, community *Community) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// MembershipRepository defines persistence operations for memberships
type MembershipRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Membership, error)
	FindByCommunityAndUser(ctx context.Context, tenantID, communityID, userID uuid.UUID) (*Membership, error)
	FindByCommunity(ctx context.Context, tenantID, communityID uuid.UUID, filter shared.Filter) ([]Membership, error)
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]Membership, error)
	CountByCommunity(ctx context.Context, tenantID, communityID uuid.UUID) (int64, error)
	Save(ctx context.Context, membership *Membership) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// InviteRepository defines persistence operations for invites
type InviteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invite, error)
	FindByToken(ctx context.Context, token string) (*Invite, error)
	FindByCommunity(ctx context.Context, tenantID, communityID uuid.UUID, filter shared.Filter) ([]Invite, error)
	Save(ctx context.Context, invite *Invite) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
