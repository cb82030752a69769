package community

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// InviteStatus is the lifecycle state of an invite
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRevoked  InviteStatus = "revoked"
)

// DefaultInviteTTL is how long a new invite stays valid
const DefaultInviteTTL = 7 * 24 * time.Hour

// Invite is a single-use token granting membership in a community
type Invite struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	CommunityID uuid.UUID
	InviterID   uuid.UUID
	Email       string // Optional; empty means anyone with the token
	Token       string
	Status      InviteStatus
	ExpiresAt   time.Time
	AcceptedBy  *uuid.UUID
	AcceptedAt  *time.Time
}

// NewInvite creates a pending invite with a random token
func NewInvite(tenantID, communityID, inviterID uuid.UUID, email string, ttl time.Duration) (*Invite, error) {
	if communityID == uuid.Nil || inviterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVITE", "Community and inviter are required")
	}
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	token, err := generateToken()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_GENERATION_FAILED", "Failed to generate invite token")
	}

	return &Invite{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		CommunityID: communityID,
		InviterID:   inviterID,
		Email:       email,
		Token:       token,
		Status:      InvitePending,
		ExpiresAt:   time.Now().Add(ttl),
	}, nil
}

// Accept consumes the invite for the given user. Invites are single-use.
func (i *Invite) Accept(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if i.Status != InvitePending {
		return shared.NewDomainError("INVITE_NOT_PENDING", "Invite has already been used or revoked")
	}
	if i.IsExpired() {
		return shared.NewDomainError("INVITE_EXPIRED", "Invite has expired")
	}
	now := time.Now()
	i.Status = InviteAccepted
	i.AcceptedBy = &userID
	i.AcceptedAt = &now
	i.UpdatedAt = now
	return nil
}

// Revoke invalidates a pending invite
func (i *Invite) Revoke() error {
	if i.Status != InvitePending {
		return shared.NewDomainError("INVITE_NOT_PENDING", "Only pending invites can be revoked")
	}
	i.Status = InviteRevoked
	i.UpdatedAt = time.Now()
	return nil
}

// IsExpired reports whether the invite is past its expiry
func (i *Invite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
