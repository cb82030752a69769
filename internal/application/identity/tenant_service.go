package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/auth"
)

// TenantService handles tenant lifecycle operations
type TenantService struct {
	tenantRepo identity.TenantRepository
	userRepo   identity.UserRepository
	roleRepo   identity.RoleRepository
	blacklist  auth.TokenBlacklist
	tokenTTL   time.Duration // upper bound on outstanding token lifetime
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service. The blacklist is optional;
// with one, suspending a tenant also revokes its users' outstanding tokens.
func NewTenantService(
	tenantRepo identity.TenantRepository,
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	blacklist auth.TokenBlacklist,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		blacklist:  blacklist,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// CreateTenant provisions a tenant with its system roles and first admin
func (s *TenantService) CreateTenant(ctx context.Context, input CreateTenantInput) (*CreateTenantResult, error) {
	if exists, err := s.tenantRepo.ExistsByCode(ctx, input.Code); err != nil {
		return nil, err
	} else if exists {
		return nil, shared.NewDomainError("TENANT_CODE_TAKEN", "Tenant code is already in use")
	}

	tenant, err := identity.NewTenant(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if input.Plan != "" {
		if err := tenant.SetPlan(identity.TenantPlan(input.Plan)); err != nil {
			return nil, err
		}
	}
	if input.ContactMail != "" {
		if err := tenant.SetContactMail(input.ContactMail); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	adminRole, err := s.seedSystemRoles(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	admin, err := identity.NewUser(tenant.ID, input.AdminUsername, input.AdminEmail, input.AdminPassword)
	if err != nil {
		return nil, err
	}
	if err := admin.AssignRole(adminRole.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code))

	return &CreateTenantResult{
		Tenant: tenant,
		Admin:  userInfoFrom(admin, []string{identity.RoleCodeAdmin}),
	}, nil
}

// GetTenant returns a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*identity.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, tenantID)
}

// GetTenantByCode returns a tenant by its code
func (s *TenantService) GetTenantByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	return s.tenantRepo.FindByCode(ctx, code)
}

// ListTenants returns a page of tenants (platform admin operation)
func (s *TenantService) ListTenants(ctx context.Context, input ListTenantsInput) (*shared.Paginated[identity.Tenant], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.Search = input.Search
	if input.Status != "" {
		filter.Filters["status"] = input.Status
	}
	if input.Plan != "" {
		filter.Filters["plan"] = input.Plan
	}

	tenants, err := s.tenantRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tenantRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(tenants, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateTenant updates the mutable tenant fields
func (s *TenantService) UpdateTenant(ctx context.Context, input UpdateTenantInput) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		tenant.Name = *input.Name
		tenant.IncrementVersion()
	}
	if input.Plan != nil {
		if err := tenant.SetPlan(identity.TenantPlan(*input.Plan)); err != nil {
			return nil, err
		}
	}
	if input.ContactMail != nil {
		if err := tenant.SetContactMail(*input.ContactMail); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// SuspendTenant suspends a tenant. Its users can no longer authenticate,
// and tokens issued before the suspension are revoked so in-flight sessions
// are rejected immediately rather than running out their lifetime.
func (s *TenantService) SuspendTenant(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := tenant.Suspend(); err != nil {
		return err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return err
	}

	if s.blacklist != nil {
		if err := s.blacklist.AddTenantTokensToBlacklist(ctx, tenantID.String(), s.tokenTTL); err != nil {
			s.logger.Error("Failed to revoke suspended tenant's tokens",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}

	s.logger.Warn("Tenant suspended", zap.String("tenant_id", tenantID.String()))
	return nil
}

// ActivateTenant reactivates a suspended tenant
func (s *TenantService) ActivateTenant(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := tenant.Activate(); err != nil {
		return err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return err
	}
	s.logger.Info("Tenant activated", zap.String("tenant_id", tenantID.String()))
	return nil
}

// seedSystemRoles creates the well-known roles for a new tenant and returns
// the admin role.
func (s *TenantService) seedSystemRoles(ctx context.Context, tenantID uuid.UUID) (*identity.Role, error) {
	seeds := []struct {
		code        string
		name        string
		permissions []string
	}{
		{identity.RoleCodeAdmin, "Administrator", []string{
			identity.PermissionPromptModerate,
			identity.PermissionMarketplaceAdmin,
			identity.PermissionPayoutManage,
			identity.PermissionUserManage,
			identity.PermissionTenantManage,
		}},
		{identity.RoleCodeModerator, "Moderator", []string{
			identity.PermissionPromptModerate,
		}},
		{identity.RoleCodeMember, "Member", []string{}},
	}

	var adminRole *identity.Role
	for _, seed := range seeds {
		role, err := identity.NewSystemRole(tenantID, seed.code, seed.name, seed.permissions)
		if err != nil {
			return nil, err
		}
		if err := s.roleRepo.Save(ctx, role); err != nil {
			return nil, err
		}
		if seed.code == identity.RoleCodeAdmin {
			adminRole = role
		}
	}
	return adminRole, nil
}
