package community

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommunity(t *testing.T) {
	c, err := NewCommunity(uuid.New(), uuid.New(), "Stable Diffusion Artists")
	require.NoError(t, err)
	assert.Equal(t, "stable-diffusion-artists", c.Slug)
	assert.Equal(t, VisibilityPublic, c.Visibility)
	assert.Equal(t, int64(1), c.MemberCount)
	assert.True(t, c.IsTopLevel())

	_, err = NewCommunity(uuid.New(), uuid.Nil, "Name")
	assert.Error(t, err)

	_, err = NewCommunity(uuid.New(), uuid.New(), "")
	assert.Error(t, err)
}

func TestNewSubCommunity(t *testing.T) {
	tenantID := uuid.New()
	parent, err := NewCommunity(tenantID, uuid.New(), "Parent")
	require.NoError(t, err)
	require.NoError(t, parent.SetVisibility(VisibilityPrivate))

	sub, err := NewSubCommunity(parent, uuid.New(), "Child")
	require.NoError(t, err)
	require.NotNil(t, sub.ParentID)
	assert.Equal(t, parent.ID, *sub.ParentID)
	assert.Equal(t, tenantID, sub.TenantID)
	assert.Equal(t, VisibilityPrivate, sub.Visibility)
	assert.False(t, sub.IsTopLevel())

	// one level of nesting only
	_, err = NewSubCommunity(sub, uuid.New(), "Grandchild")
	assert.Error(t, err)

	_, err = NewSubCommunity(nil, uuid.New(), "Orphan")
	assert.Error(t, err)
}

func TestCommunityOwnershipTransfer(t *testing.T) {
	owner := uuid.New()
	c, err := NewCommunity(uuid.New(), owner, "Name")
	require.NoError(t, err)

	assert.Error(t, c.TransferOwnership(owner))
	assert.Error(t, c.TransferOwnership(uuid.Nil))

	newOwner := uuid.New()
	require.NoError(t, c.TransferOwnership(newOwner))
	assert.Equal(t, newOwner, c.OwnerID)
}

func TestCommunityMemberCount(t *testing.T) {
	c, err := NewCommunity(uuid.New(), uuid.New(), "Name")
	require.NoError(t, err)

	c.MemberJoined()
	assert.Equal(t, int64(2), c.MemberCount)
	c.MemberLeft()
	c.MemberLeft()
	c.MemberLeft() // does not go negative
	assert.Equal(t, int64(0), c.MemberCount)
}

func TestMembershipRoleChange(t *testing.T) {
	m, err := NewMembership(uuid.New(), uuid.New(), uuid.New(), RoleMember)
	require.NoError(t, err)
	assert.False(t, m.Role.CanModerate())

	require.NoError(t, m.ChangeRole(RoleModerator))
	assert.True(t, m.Role.CanModerate())

	assert.Error(t, m.ChangeRole(RoleOwner))
	assert.Error(t, m.ChangeRole(MemberRole("vip")))

	owner, err := NewMembership(uuid.New(), uuid.New(), uuid.New(), RoleOwner)
	require.NoError(t, err)
	assert.Error(t, owner.ChangeRole(RoleMember))
}

func TestMembershipBan(t *testing.T) {
	m, err := NewMembership(uuid.New(), uuid.New(), uuid.New(), RoleMember)
	require.NoError(t, err)

	require.NoError(t, m.Ban("spam"))
	assert.Equal(t, MemberBanned, m.Status)
	assert.False(t, m.IsActive())
	assert.Error(t, m.Ban("again"))

	require.NoError(t, m.Unban())
	assert.True(t, m.IsActive())
	assert.Empty(t, m.BanReason)
	assert.Error(t, m.Unban())

	owner, err := NewMembership(uuid.New(), uuid.New(), uuid.New(), RoleOwner)
	require.NoError(t, err)
	assert.Error(t, owner.Ban("nope"))
}

func TestInviteLifecycle(t *testing.T) {
	inv, err := NewInvite(uuid.New(), uuid.New(), uuid.New(), "friend@example.com", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, InvitePending, inv.Status)
	assert.Len(t, inv.Token, 64)
	assert.False(t, inv.IsExpired())

	userID := uuid.New()
	require.NoError(t, inv.Accept(userID))
	assert.Equal(t, InviteAccepted, inv.Status)
	require.NotNil(t, inv.AcceptedBy)
	assert.Equal(t, userID, *inv.AcceptedBy)

	// single use
	assert.Error(t, inv.Accept(uuid.New()))
	assert.Error(t, inv.Revoke())
}

func TestInviteExpiry(t *testing.T) {
	inv, err := NewInvite(uuid.New(), uuid.New(), uuid.New(), "", time.Hour)
	require.NoError(t, err)

	inv.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, inv.IsExpired())
	assert.Error(t, inv.Accept(uuid.New()))
}

func TestInviteRevoke(t *testing.T) {
	inv, err := NewInvite(uuid.New(), uuid.New(), uuid.New(), "", 0)
	require.NoError(t, err)

	require.NoError(t, inv.Revoke())
	assert.Equal(t, InviteRevoked, inv.Status)
	assert.Error(t, inv.Accept(uuid.New()))
}
