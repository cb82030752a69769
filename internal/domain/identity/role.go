package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// RoleStatus represents the status of a role
type RoleStatus string

const (
	RoleStatusEnabled  RoleStatus = "enabled"
	RoleStatusDisabled RoleStatus = "disabled"
)

// Well-known role codes seeded for every tenant
const (
	RoleCodeAdmin     = "ADMIN"
	RoleCodeModerator = "MODERATOR"
	RoleCodeMember    = "MEMBER"
)

// Permission codes checked by the application layer
const (
	PermissionPromptModerate   = "prompt:moderate"
	PermissionMarketplaceAdmin = "marketplace:admin"
	PermissionPayoutManage     = "payout:manage"
	PermissionUserManage       = "user:manage"
	PermissionTenantManage     = "tenant:manage"
)

// Role represents a named set of permissions within a tenant
type Role struct {
	shared.TenantAggregateRoot
	Code        string
	Name        string
	Description string
	Status      RoleStatus
	IsSystem    bool // System roles cannot be deleted
	Permissions []string
}

// NewRole creates a new role
func NewRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}

	return &Role{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		Status:              RoleStatusEnabled,
		Permissions:         make([]string, 0),
	}, nil
}

// NewSystemRole creates a built-in role that cannot be deleted
func NewSystemRole(tenantID uuid.UUID, code, name string, permissions []string) (*Role, error) {
	role, err := NewRole(tenantID, code, name)
	if err != nil {
		return nil, err
	}
	role.IsSystem = true
	role.Permissions = permissions
	return role, nil
}

// SetDescription sets the role description
func (r *Role) SetDescription(description string) {
	r.Description = description
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// SetPermissions replaces the role's permission set
func (r *Role) SetPermissions(permissions []string) {
	seen := make(map[string]bool)
	unique := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}
	r.Permissions = unique
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// HasPermission checks if the role grants a permission
func (r *Role) HasPermission(permission string) bool {
	if r.Status != RoleStatusEnabled {
		return false
	}
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Enable enables the role
func (r *Role) Enable() error {
	if r.Status == RoleStatusEnabled {
		return shared.NewDomainError("ALREADY_ENABLED", "Role is already enabled")
	}
	r.Status = RoleStatusEnabled
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// Disable disables the role
func (r *Role) Disable() error {
	if r.IsSystem {
		return shared.NewDomainError("SYSTEM_ROLE", "System roles cannot be disabled")
	}
	if r.Status == RoleStatusDisabled {
		return shared.NewDomainError("ALREADY_DISABLED", "Role is already disabled")
	}
	r.Status = RoleStatusDisabled
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}
