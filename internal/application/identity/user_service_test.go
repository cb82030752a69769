package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/auth"
)

func newUserServiceFixture() (*MockUserRepository, *MockRoleRepository, *UserService) {
	userRepo := new(MockUserRepository)
	roleRepo := new(MockRoleRepository)
	return userRepo, roleRepo, NewUserService(userRepo, roleRepo, zap.NewNop())
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates a user with roles", func(t *testing.T) {
		userRepo, roleRepo, service := newUserServiceFixture()

		modRole, err := identity.NewRole(tenantID, "moderator", "Moderator")
		require.NoError(t, err)

		userRepo.On("ExistsByUsername", ctx, tenantID, "dora").Return(false, nil)
		userRepo.On("ExistsByEmail", ctx, tenantID, "dora@example.com").Return(false, nil)
		roleRepo.On("FindByCode", ctx, tenantID, "MODERATOR").Return(modRole, nil)
		userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		info, err := service.CreateUser(ctx, CreateUserInput{
			TenantID:    tenantID,
			Username:    "dora",
			Email:       "dora@example.com",
			Password:    "a-long-password",
			DisplayName: "Dora",
			RoleCodes:   []string{"MODERATOR"},
		})
		require.NoError(t, err)
		assert.Equal(t, "dora", info.Username)
		assert.Equal(t, "Dora", info.DisplayName)
		assert.Equal(t, []string{"MODERATOR"}, info.Roles)
		assert.Equal(t, []uuid.UUID{modRole.ID}, info.RoleIDs)
	})

	t.Run("rejects unknown role codes", func(t *testing.T) {
		userRepo, roleRepo, service := newUserServiceFixture()

		userRepo.On("ExistsByUsername", ctx, tenantID, "dora").Return(false, nil)
		userRepo.On("ExistsByEmail", ctx, tenantID, "dora@example.com").Return(false, nil)
		roleRepo.On("FindByCode", ctx, tenantID, "WIZARD").Return(nil, shared.ErrNotFound)

		_, err := service.CreateUser(ctx, CreateUserInput{
			TenantID:  tenantID,
			Username:  "dora",
			Email:     "dora@example.com",
			Password:  "a-long-password",
			RoleCodes: []string{"WIZARD"},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ROLE_NOT_FOUND", domainErr.Code)
		userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("updates only the provided fields", func(t *testing.T) {
		userRepo, _, service := newUserServiceFixture()
		user, err := identity.NewUser(tenantID, "erin", "erin@example.com", "a-long-password")
		require.NoError(t, err)
		require.NoError(t, user.SetBio("original bio"))

		userRepo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)
		userRepo.On("SaveWithLock", ctx, user).Return(nil)

		displayName := "Erin E."
		paypal := "Erin@PayPal.example.com"
		info, err := service.UpdateProfile(ctx, UpdateUserInput{
			TenantID:    tenantID,
			UserID:      user.ID,
			DisplayName: &displayName,
			PayPalEmail: &paypal,
		})
		require.NoError(t, err)
		assert.Equal(t, "Erin E.", info.DisplayName)
		assert.Equal(t, "erin@paypal.example.com", info.PayPalEmail)
		assert.Equal(t, "original bio", info.Bio)
	})

	t.Run("propagates concurrency conflicts", func(t *testing.T) {
		userRepo, _, service := newUserServiceFixture()
		user, err := identity.NewUser(tenantID, "erin", "erin@example.com", "a-long-password")
		require.NoError(t, err)

		userRepo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)
		userRepo.On("SaveWithLock", ctx, user).Return(shared.ErrConcurrencyConflict)

		displayName := "Erin E."
		_, err = service.UpdateProfile(ctx, UpdateUserInput{
			TenantID:    tenantID,
			UserID:      user.ID,
			DisplayName: &displayName,
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestUserService_ActivateDeactivate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	userRepo, _, service := newUserServiceFixture()
	user, err := identity.NewUser(tenantID, "frank", "frank@example.com", "a-long-password")
	require.NoError(t, err)

	userRepo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)
	userRepo.On("SaveWithLock", ctx, user).Return(nil)

	require.NoError(t, service.DeactivateUser(ctx, tenantID, user.ID))
	assert.Equal(t, identity.UserStatusDeactivated, user.Status)

	require.NoError(t, service.ActivateUser(ctx, tenantID, user.ID))
	assert.Equal(t, identity.UserStatusActive, user.Status)
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	userRepo, _, service := newUserServiceFixture()
	alice, err := identity.NewUser(tenantID, "alice", "alice@example.com", "a-long-password")
	require.NoError(t, err)
	bob, err := identity.NewUser(tenantID, "bob", "bob@example.com", "a-long-password")
	require.NoError(t, err)

	userRepo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10 && f.Filters["status"] == "active"
	})).Return([]identity.User{*alice, *bob}, nil)
	userRepo.On("CountForTenant", ctx, tenantID, mock.Anything).Return(int64(12), nil)

	page, err := service.ListUsers(ctx, ListUsersInput{
		TenantID: tenantID,
		Page:     2,
		PageSize: 10,
		Status:   "active",
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestTenantService_CreateTenant(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions roles and the first admin", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		userRepo := new(MockUserRepository)
		roleRepo := new(MockRoleRepository)
		service := NewTenantService(tenantRepo, userRepo, roleRepo, nil, 0, zap.NewNop())

		tenantRepo.On("ExistsByCode", ctx, "acme-studio").Return(false, nil)
		tenantRepo.On("Save", ctx, mock.AnythingOfType("*identity.Tenant")).Return(nil)
		roleRepo.On("Save", ctx, mock.AnythingOfType("*identity.Role")).Return(nil)
		userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := service.CreateTenant(ctx, CreateTenantInput{
			Code:          "acme-studio",
			Name:          "Acme Studio",
			Plan:          "pro",
			AdminUsername: "admin",
			AdminEmail:    "admin@acme.example.com",
			AdminPassword: "a-long-password",
		})
		require.NoError(t, err)
		assert.Equal(t, "acme-studio", result.Tenant.Code)
		assert.Equal(t, identity.TenantPlanPro, result.Tenant.Plan)
		assert.Equal(t, "admin", result.Admin.Username)
		assert.Contains(t, result.Admin.Roles, identity.RoleCodeAdmin)
		roleRepo.AssertNumberOfCalls(t, "Save", 3)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		service := NewTenantService(tenantRepo, new(MockUserRepository), new(MockRoleRepository), nil, 0, zap.NewNop())

		tenantRepo.On("ExistsByCode", ctx, "acme-studio").Return(true, nil)

		_, err := service.CreateTenant(ctx, CreateTenantInput{Code: "acme-studio", Name: "Acme"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TENANT_CODE_TAKEN", domainErr.Code)
	})
}

func TestTenantService_SuspendActivate(t *testing.T) {
	ctx := context.Background()

	tenantRepo := new(MockTenantRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	service := NewTenantService(tenantRepo, new(MockUserRepository), new(MockRoleRepository), blacklist, time.Hour, zap.NewNop())

	tenant, err := identity.NewTenant("acme", "Acme")
	require.NoError(t, err)

	tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	tenantRepo.On("Save", ctx, tenant).Return(nil)

	issuedBefore := time.Now().Add(-time.Minute)
	require.NoError(t, service.SuspendTenant(ctx, tenant.ID))
	assert.False(t, tenant.IsActive())

	// Suspension revokes tokens its users already hold
	revoked, err := blacklist.IsTenantTokenInvalidated(ctx, tenant.ID.String(), issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, service.ActivateTenant(ctx, tenant.ID))
	assert.True(t, tenant.IsActive())

	// Tokens issued after reactivation are not caught by the old revocation
	current, err := blacklist.IsTenantTokenInvalidated(ctx, tenant.ID.String(), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, current)
}
