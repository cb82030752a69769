package community

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// Service handles communities, memberships and invites
type Service struct {
	communityRepo  community.Repository
	membershipRepo community.MembershipRepository
	inviteRepo     community.InviteRepository
	logger         *zap.Logger
}

// NewService creates a new community service
func NewService(
	communityRepo community.Repository,
	membershipRepo community.MembershipRepository,
	inviteRepo community.InviteRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		inviteRepo:     inviteRepo,
		logger:         logger,
	}
}

// CreateCommunity creates a community, or a sub-community when ParentID is
// set, and makes the creator its owner.
func (s *Service) CreateCommunity(ctx context.Context, input CreateCommunityInput) (*community.Community, error) {
	var c *community.Community
	var err error

	if input.ParentID != nil {
		parent, perr := s.communityRepo.FindByIDForTenant(ctx, input.TenantID, *input.ParentID)
		if perr != nil {
			return nil, perr
		}
		if merr := s.requireModerator(ctx, input.TenantID, parent.ID, input.OwnerID); merr != nil {
			return nil, merr
		}
		c, err = community.NewSubCommunity(parent, input.OwnerID, input.Name)
	} else {
		c, err = community.NewCommunity(input.TenantID, input.OwnerID, input.Name)
	}
	if err != nil {
		return nil, err
	}

	if input.Description != "" {
		if err := c.Update(c.Name, input.Description); err != nil {
			return nil, err
		}
	}
	if input.Visibility != "" {
		if err := c.SetVisibility(input.Visibility); err != nil {
			return nil, err
		}
	}

	if err := s.communityRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	owner, err := community.NewMembership(input.TenantID, c.ID, input.OwnerID, community.RoleOwner)
	if err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Save(ctx, owner); err != nil {
		return nil, err
	}

	s.logger.Info("Community created",
		zap.String("community_id", c.ID.String()),
		zap.String("slug", c.Slug))
	return c, nil
}

// GetCommunity returns a community the viewer may see
func (s *Service) GetCommunity(ctx context.Context, tenantID, communityID, viewerID uuid.UUID) (*community.Community, error) {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, communityID)
	if err != nil {
		return nil, err
	}
	if err := s.checkViewAccess(ctx, c, viewerID); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCommunityBySlug returns a community by slug
func (s *Service) GetCommunityBySlug(ctx context.Context, tenantID uuid.UUID, slug string, viewerID uuid.UUID) (*community.Community, error) {
	c, err := s.communityRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkViewAccess(ctx, c, viewerID); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCommunities returns a page of communities. Private communities are
// listed but joinable only by invite.
func (s *Service) ListCommunities(ctx context.Context, input ListCommunitiesInput) (*shared.Paginated[community.Community], error) {
	filter := community.Filter{Filter: shared.DefaultFilter()}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.ParentID = input.ParentID
	filter.TopLevel = input.TopLevel
	filter.Search = input.Search

	communities, err := s.communityRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.communityRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(communities, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListSubCommunities returns the children of a community
func (s *Service) ListSubCommunities(ctx context.Context, tenantID, parentID uuid.UUID) ([]community.Community, error) {
	return s.communityRepo.FindChildren(ctx, tenantID, parentID)
}

// UpdateCommunity updates name, description or visibility (moderators)
func (s *Service) UpdateCommunity(ctx context.Context, input UpdateCommunityInput) (*community.Community, error) {
	c, err := s.communityRepo.FindByIDForTenant(ctx, input.TenantID, input.CommunityID)
	if err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, input.TenantID, c.ID, input.UserID); err != nil {
		return nil, err
	}

	name := c.Name
	description := c.Description
	if input.Name != nil {
		name = *input.Name
	}
	if input.Description != nil {
		description = *input.Description
	}
	if err := c.Update(name, description); err != nil {
		return nil, err
	}
	if input.Visibility != nil {
		if err := c.SetVisibility(*input.Visibility); err != nil {
			return nil, err
		}
	}

	if err := s.communityRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCommunity deletes a community with its memberships and invites
func (s *Service) DeleteCommunity(ctx context.Context, tenantID, communityID, userID uuid.UUID) error {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, communityID)
	if err != nil {
		return err
	}
	if c.OwnerID != userID {
		return shared.ErrForbidden
	}

	children, err := s.communityRepo.FindChildren(ctx, tenantID, communityID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return shared.NewDomainError("HAS_SUB_COMMUNITIES", "Delete or move the sub-communities first")
	}

	if err := s.communityRepo.Delete(ctx, tenantID, communityID); err != nil {
		return err
	}
	s.logger.Info("Community deleted", zap.String("community_id", communityID.String()))
	return nil
}

// Join adds the user to a public community
func (s *Service) Join(ctx context.Context, tenantID, communityID, userID uuid.UUID) (*community.Membership, error) {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, communityID)
	if err != nil {
		return nil, err
	}
	if c.Visibility != community.VisibilityPublic {
		return nil, shared.NewDomainError("INVITE_REQUIRED", "This community is private; join with an invite")
	}

	existing, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, communityID, userID)
	if err == nil {
		if existing.Status == community.MemberBanned {
			return nil, shared.NewDomainError("MEMBER_BANNED", "You are banned from this community")
		}
		return existing, nil
	}
	if err != shared.ErrNotFound {
		return nil, err
	}

	return s.addMember(ctx, c, userID)
}

// Leave removes the user from a community. The owner must transfer
// ownership first.
func (s *Service) Leave(ctx context.Context, tenantID, communityID, userID uuid.UUID) error {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, communityID)
	if err != nil {
		return err
	}
	if c.OwnerID == userID {
		return shared.NewDomainError("OWNER_CANNOT_LEAVE", "Transfer ownership before leaving")
	}

	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, communityID, userID)
	if err != nil {
		return err
	}
	if err := s.membershipRepo.Delete(ctx, tenantID, membership.ID); err != nil {
		return err
	}

	c.MemberLeft()
	if err := s.communityRepo.SaveWithLock(ctx, c); err != nil {
		s.logger.Warn("Failed to update member count", zap.Error(err))
	}
	return nil
}

// ListMembers returns the memberships of a community
func (s *Service) ListMembers(ctx context.Context, tenantID, communityID uuid.UUID, filter shared.Filter) ([]community.Membership, error) {
	return s.membershipRepo.FindByCommunity(ctx, tenantID, communityID, filter)
}

// ListUserMemberships returns all communities the user belongs to
func (s *Service) ListUserMemberships(ctx context.Context, tenantID, userID uuid.UUID) ([]community.Membership, error) {
	return s.membershipRepo.FindByUser(ctx, tenantID, userID)
}

// CreateInvite creates a single-use invite token (moderators)
func (s *Service) CreateInvite(ctx context.Context, input CreateInviteInput) (*community.Invite, error) {
	if _, err := s.communityRepo.FindByIDForTenant(ctx, input.TenantID, input.CommunityID); err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, input.TenantID, input.CommunityID, input.InviterID); err != nil {
		return nil, err
	}

	invite, err := community.NewInvite(input.TenantID, input.CommunityID, input.InviterID, input.Email, community.DefaultInviteTTL)
	if err != nil {
		return nil, err
	}
	if err := s.inviteRepo.Save(ctx, invite); err != nil {
		return nil, err
	}

	s.logger.Info("Invite created",
		zap.String("community_id", input.CommunityID.String()),
		zap.String("invite_id", invite.ID.String()))
	return invite, nil
}

// AcceptInvite redeems an invite token and joins the user
func (s *Service) AcceptInvite(ctx context.Context, tenantID uuid.UUID, token string, userID uuid.UUID) (*community.Membership, error) {
	invite, err := s.inviteRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INVITE", "Invite not found")
	}
	if invite.TenantID != tenantID {
		return nil, shared.NewDomainError("INVALID_INVITE", "Invite not found")
	}

	if err := invite.Accept(userID); err != nil {
		return nil, err
	}

	existing, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, invite.CommunityID, userID)
	if err == nil {
		if existing.Status == community.MemberBanned {
			return nil, shared.NewDomainError("MEMBER_BANNED", "You are banned from this community")
		}
		// Already a member; still burn the invite.
		if err := s.inviteRepo.Save(ctx, invite); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err != shared.ErrNotFound {
		return nil, err
	}

	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, invite.CommunityID)
	if err != nil {
		return nil, err
	}

	membership, err := s.addMember(ctx, c, userID)
	if err != nil {
		return nil, err
	}
	if err := s.inviteRepo.Save(ctx, invite); err != nil {
		return nil, err
	}
	return membership, nil
}

// RevokeInvite cancels a pending invite (moderators)
func (s *Service) RevokeInvite(ctx context.Context, tenantID, inviteID, userID uuid.UUID) error {
	invite, err := s.inviteRepo.FindByID(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.TenantID != tenantID {
		return shared.ErrNotFound
	}
	if err := s.requireModerator(ctx, tenantID, invite.CommunityID, userID); err != nil {
		return err
	}

	if err := invite.Revoke(); err != nil {
		return err
	}
	return s.inviteRepo.Save(ctx, invite)
}

// ListInvites returns the invites of a community (moderators)
func (s *Service) ListInvites(ctx context.Context, tenantID, communityID, userID uuid.UUID, filter shared.Filter) ([]community.Invite, error) {
	if err := s.requireModerator(ctx, tenantID, communityID, userID); err != nil {
		return nil, err
	}
	return s.inviteRepo.FindByCommunity(ctx, tenantID, communityID, filter)
}

// ChangeMemberRole changes a member's role between member and moderator.
// Only the owner may do this; ownership moves via TransferOwnership.
func (s *Service) ChangeMemberRole(ctx context.Context, input ChangeMemberRoleInput) error {
	c, err := s.communityRepo.FindByIDForTenant(ctx, input.TenantID, input.CommunityID)
	if err != nil {
		return err
	}
	if c.OwnerID != input.ActorID {
		return shared.ErrForbidden
	}
	if input.Role == community.RoleOwner {
		return shared.NewDomainError("USE_TRANSFER", "Ownership changes via transfer")
	}
	if input.MemberID == c.OwnerID {
		return shared.NewDomainError("OWNER_ROLE_FIXED", "The owner's role cannot be changed")
	}

	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, input.TenantID, input.CommunityID, input.MemberID)
	if err != nil {
		return err
	}
	if err := membership.ChangeRole(input.Role); err != nil {
		return err
	}
	return s.membershipRepo.Save(ctx, membership)
}

// TransferOwnership makes another active member the owner
func (s *Service) TransferOwnership(ctx context.Context, tenantID, communityID, ownerID, newOwnerID uuid.UUID) error {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, communityID)
	if err != nil {
		return err
	}
	if c.OwnerID != ownerID {
		return shared.ErrForbidden
	}

	successor, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, communityID, newOwnerID)
	if err != nil {
		return err
	}
	if !successor.IsActive() {
		return shared.NewDomainError("MEMBER_INACTIVE", "The new owner must be an active member")
	}

	if err := c.TransferOwnership(newOwnerID); err != nil {
		return err
	}
	if err := successor.ChangeRole(community.RoleOwner); err != nil {
		return err
	}

	previous, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, communityID, ownerID)
	if err != nil {
		return err
	}
	if err := previous.ChangeRole(community.RoleModerator); err != nil {
		return err
	}

	if err := s.communityRepo.SaveWithLock(ctx, c); err != nil {
		return err
	}
	if err := s.membershipRepo.Save(ctx, successor); err != nil {
		return err
	}
	if err := s.membershipRepo.Save(ctx, previous); err != nil {
		return err
	}

	s.logger.Info("Ownership transferred",
		zap.String("community_id", communityID.String()),
		zap.String("new_owner_id", newOwnerID.String()))
	return nil
}

// BanMember bans a member (moderators; the owner cannot be banned)
func (s *Service) BanMember(ctx context.Context, input BanMemberInput) error {
	c, err := s.communityRepo.FindByIDForTenant(ctx, input.TenantID, input.CommunityID)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, input.TenantID, input.CommunityID, input.ActorID); err != nil {
		return err
	}
	if input.MemberID == c.OwnerID {
		return shared.NewDomainError("CANNOT_BAN_OWNER", "The owner cannot be banned")
	}

	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, input.TenantID, input.CommunityID, input.MemberID)
	if err != nil {
		return err
	}
	if err := membership.Ban(input.Reason); err != nil {
		return err
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return err
	}

	c.MemberLeft()
	if err := s.communityRepo.SaveWithLock(ctx, c); err != nil {
		s.logger.Warn("Failed to update member count", zap.Error(err))
	}

	s.logger.Info("Member banned",
		zap.String("community_id", input.CommunityID.String()),
		zap.String("user_id", input.MemberID.String()))
	return nil
}

// UnbanMember lifts a ban (moderators)
func (s *Service) UnbanMember(ctx context.Context, tenantID, communityID, actorID, memberID uuid.UUID) error {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, communityID)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, tenantID, communityID, actorID); err != nil {
		return err
	}

	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, communityID, memberID)
	if err != nil {
		return err
	}
	if err := membership.Unban(); err != nil {
		return err
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return err
	}

	c.MemberJoined()
	if err := s.communityRepo.SaveWithLock(ctx, c); err != nil {
		s.logger.Warn("Failed to update member count", zap.Error(err))
	}
	return nil
}

func (s *Service) addMember(ctx context.Context, c *community.Community, userID uuid.UUID) (*community.Membership, error) {
	membership, err := community.NewMembership(c.TenantID, c.ID, userID, community.RoleMember)
	if err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return nil, err
	}

	c.MemberJoined()
	if err := s.communityRepo.SaveWithLock(ctx, c); err != nil {
		s.logger.Warn("Failed to update member count", zap.Error(err))
	}
	return membership, nil
}

func (s *Service) checkViewAccess(ctx context.Context, c *community.Community, viewerID uuid.UUID) error {
	if c.Visibility == community.VisibilityPublic {
		return nil
	}
	if viewerID == uuid.Nil {
		return shared.ErrNotFound
	}
	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, c.TenantID, c.ID, viewerID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrNotFound
		}
		return err
	}
	if !membership.IsActive() {
		return shared.ErrNotFound
	}
	return nil
}

func (s *Service) requireModerator(ctx context.Context, tenantID, communityID, userID uuid.UUID) error {
	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, communityID, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrForbidden
		}
		return err
	}
	if !membership.IsActive() || !membership.Role.CanModerate() {
		return shared.ErrForbidden
	}
	return nil
}
