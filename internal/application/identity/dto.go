package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	TenantID uuid.UUID
	Username string
	Password string
}

// OIDCLoginInput contains the claims extracted from a verified OIDC ID token.
// Accounts are provisioned on first login.
type OIDCLoginInput struct {
	TenantID uuid.UUID
	Subject  string
	Username string
	Email    string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned by auth operations
type UserInfo struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Username    string
	Email       string
	DisplayName string
	Bio         string
	AvatarKey   string
	PayPalEmail string
	Status      string
	Roles       []string
	RoleIDs     []uuid.UUID
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenJTI string
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// RegisterInput contains the input for account registration
type RegisterInput struct {
	TenantID uuid.UUID
	Username string
	Email    string
	Password string
}

// CreateUserInput contains the input for admin user creation
type CreateUserInput struct {
	TenantID    uuid.UUID
	Username    string
	Email       string
	Password    string
	DisplayName string
	RoleCodes   []string
}

// UpdateUserInput contains the mutable profile fields. Nil fields are left
// unchanged.
type UpdateUserInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	DisplayName *string
	Bio         *string
	AvatarKey   *string
	PayPalEmail *string
}

// AssignRolesInput replaces a user's role set
type AssignRolesInput struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	RoleCodes []string
}

// ListUsersInput contains filters for listing users
type ListUsersInput struct {
	TenantID uuid.UUID
	Page     int
	PageSize int
	Search   string
	Status   string
}

// CreateTenantInput contains the input for tenant creation
type CreateTenantInput struct {
	Code          string
	Name          string
	Plan          string
	ContactMail   string
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// CreateTenantResult contains the created tenant and its initial admin
type CreateTenantResult struct {
	Tenant *identity.Tenant
	Admin  UserInfo
}

// UpdateTenantInput contains the mutable tenant fields
type UpdateTenantInput struct {
	TenantID    uuid.UUID
	Name        *string
	Plan        *string
	ContactMail *string
}

// ListTenantsInput contains filters for listing tenants
type ListTenantsInput struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Plan     string
}

func userInfoFrom(user *identity.User, roleCodes []string) UserInfo {
	return UserInfo{
		ID:          user.ID,
		TenantID:    user.TenantID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		AvatarKey:   user.AvatarKey,
		PayPalEmail: user.PayPalEmail,
		Status:      string(user.Status),
		Roles:       roleCodes,
		RoleIDs:     user.RoleIDs,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
