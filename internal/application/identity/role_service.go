package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// CreateRoleInput contains the input for role creation
type CreateRoleInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	Description string
	Permissions []string
}

// UpdateRoleInput contains the mutable role fields
type UpdateRoleInput struct {
	TenantID    uuid.UUID
	RoleID      uuid.UUID
	Name        *string
	Description *string
	Permissions []string
}

// RoleService handles role management operations
type RoleService struct {
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo identity.RoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{roleRepo: roleRepo, logger: logger}
}

// CreateRole creates a custom role in the tenant
func (s *RoleService) CreateRole(ctx context.Context, input CreateRoleInput) (*identity.Role, error) {
	if _, err := s.roleRepo.FindByCode(ctx, input.TenantID, input.Code); err == nil {
		return nil, shared.NewDomainError("ROLE_CODE_TAKEN", "Role code is already in use")
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	role, err := identity.NewRole(input.TenantID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		role.SetDescription(input.Description)
	}
	if len(input.Permissions) > 0 {
		role.SetPermissions(input.Permissions)
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("Role created",
		zap.String("role_id", role.ID.String()),
		zap.String("code", role.Code))
	return role, nil
}

// GetRole returns a single role within the tenant
func (s *RoleService) GetRole(ctx context.Context, tenantID, roleID uuid.UUID) (*identity.Role, error) {
	return s.roleRepo.FindByIDForTenant(ctx, tenantID, roleID)
}

// ListRoles returns all roles in the tenant
func (s *RoleService) ListRoles(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Role, error) {
	return s.roleRepo.FindAllForTenant(ctx, tenantID, filter)
}

// UpdateRole updates a role's name, description and permissions
func (s *RoleService) UpdateRole(ctx context.Context, input UpdateRoleInput) (*identity.Role, error) {
	role, err := s.roleRepo.FindByIDForTenant(ctx, input.TenantID, input.RoleID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		role.Name = *input.Name
		role.IncrementVersion()
	}
	if input.Description != nil {
		role.SetDescription(*input.Description)
	}
	if input.Permissions != nil {
		role.SetPermissions(input.Permissions)
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole deletes a non-system role
func (s *RoleService) DeleteRole(ctx context.Context, tenantID, roleID uuid.UUID) error {
	if err := s.roleRepo.Delete(ctx, tenantID, roleID); err != nil {
		return err
	}
	s.logger.Info("Role deleted", zap.String("role_id", roleID.String()))
	return nil
}
