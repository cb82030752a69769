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
	"github.com/promptatrium/backend/internal/infrastructure/config"
)

// ============================================================================
// Mocks
// ============================================================================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByOIDCSubject(ctx context.Context, tenantID uuid.UUID, subject string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, tenantID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*identity.Role, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]identity.Role, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Role, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ============================================================================
// Helpers
// ============================================================================

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-for-auth-service-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "promptatrium-test",
		MaxRefreshCount:        10,
	})
}

type authFixture struct {
	userRepo   *MockUserRepository
	roleRepo   *MockRoleRepository
	tenantRepo *MockTenantRepository
	service    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		userRepo:   new(MockUserRepository),
		roleRepo:   new(MockRoleRepository),
		tenantRepo: new(MockTenantRepository),
	}
	f.service = NewAuthService(
		f.userRepo,
		f.roleRepo,
		f.tenantRepo,
		newTestJWTService(),
		auth.NewInMemoryTokenBlacklist(),
		DefaultAuthServiceConfig(),
		zap.NewNop(),
	)
	return f
}

func newActiveTenant(t *testing.T) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("acme", "Acme Studio")
	require.NoError(t, err)
	return tenant
}

func newActiveUser(t *testing.T, tenantID uuid.UUID) *identity.User {
	t.Helper()
	user, err := identity.NewUser(tenantID, "alice", "alice@example.com", "s3cret-password")
	require.NoError(t, err)
	return user
}

// ============================================================================
// Tests
// ============================================================================

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login returns tokens and user info", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user := newActiveUser(t, tenant.ID)
		roleID := uuid.New()
		require.NoError(t, user.AssignRole(roleID))

		memberRole, err := identity.NewRole(tenant.ID, "member", "Member")
		require.NoError(t, err)
		memberRole.ID = roleID

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByUsername", ctx, tenant.ID, "alice").Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)
		f.roleRepo.On("FindByIDs", ctx, tenant.ID, []uuid.UUID{roleID}).Return([]identity.Role{*memberRole}, nil)

		result, err := f.service.Login(ctx, LoginInput{
			TenantID: tenant.ID,
			Username: "alice",
			Password: "s3cret-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, "alice", result.User.Username)
		assert.Contains(t, result.User.Roles, "MEMBER")
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password returns invalid credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user := newActiveUser(t, tenant.ID)

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByUsername", ctx, tenant.ID, "alice").Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		_, err := f.service.Login(ctx, LoginInput{TenantID: tenant.ID, Username: "alice", Password: "wrong"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		assert.Equal(t, 1, user.FailedAttempts)
	})

	t.Run("account locks after repeated failures", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user := newActiveUser(t, tenant.ID)
		user.FailedAttempts = DefaultAuthServiceConfig().MaxLoginAttempts - 1

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByUsername", ctx, tenant.ID, "alice").Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		_, err := f.service.Login(ctx, LoginInput{TenantID: tenant.ID, Username: "alice", Password: "wrong"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
		assert.True(t, user.IsLocked())
	})

	t.Run("unknown username returns invalid credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByUsername", ctx, tenant.ID, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(ctx, LoginInput{TenantID: tenant.ID, Username: "ghost", Password: "whatever"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("suspended tenant rejects login", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		require.NoError(t, tenant.Suspend())

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		_, err := f.service.Login(ctx, LoginInput{TenantID: tenant.ID, Username: "alice", Password: "s3cret-password"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TENANT_SUSPENDED", domainErr.Code)
		f.userRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deactivated account rejects login", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user := newActiveUser(t, tenant.ID)
		require.NoError(t, user.Deactivate())

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByUsername", ctx, tenant.ID, "alice").Return(user, nil)

		_, err := f.service.Login(ctx, LoginInput{TenantID: tenant.ID, Username: "alice", Password: "s3cret-password"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a member account and issues tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)

		memberRole, err := identity.NewRole(tenant.ID, "member", "Member")
		require.NoError(t, err)

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("ExistsByUsername", ctx, tenant.ID, "bob").Return(false, nil)
		f.userRepo.On("ExistsByEmail", ctx, tenant.ID, "bob@example.com").Return(false, nil)
		f.roleRepo.On("FindByCode", ctx, tenant.ID, identity.RoleCodeMember).Return(memberRole, nil)
		f.roleRepo.On("FindByIDs", ctx, tenant.ID, []uuid.UUID{memberRole.ID}).Return([]identity.Role{*memberRole}, nil)
		f.userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := f.service.Register(ctx, RegisterInput{
			TenantID: tenant.ID,
			Username: "bob",
			Email:    "bob@example.com",
			Password: "another-s3cret",
		})
		require.NoError(t, err)
		assert.Equal(t, "bob", result.User.Username)
		assert.Contains(t, result.User.Roles, "MEMBER")
		assert.NotEmpty(t, result.AccessToken)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("ExistsByUsername", ctx, tenant.ID, "alice").Return(true, nil)

		_, err := f.service.Register(ctx, RegisterInput{
			TenantID: tenant.ID,
			Username: "alice",
			Email:    "alice2@example.com",
			Password: "s3cret-password",
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "USERNAME_TAKEN", domainErr.Code)
	})
}

func TestAuthService_LoginWithOIDC(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions account on first login", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)

		memberRole, err := identity.NewRole(tenant.ID, "member", "Member")
		require.NoError(t, err)

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByOIDCSubject", ctx, tenant.ID, "oidc|123").Return(nil, shared.ErrNotFound)
		f.roleRepo.On("FindByCode", ctx, tenant.ID, identity.RoleCodeMember).Return(memberRole, nil)
		f.roleRepo.On("FindByIDs", ctx, tenant.ID, []uuid.UUID{memberRole.ID}).Return([]identity.Role{*memberRole}, nil)
		f.userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := f.service.LoginWithOIDC(ctx, OIDCLoginInput{
			TenantID: tenant.ID,
			Subject:  "oidc|123",
			Username: "carol",
			Email:    "carol@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "carol", result.User.Username)
		f.userRepo.AssertNumberOfCalls(t, "Save", 2) // provision + login timestamp
	})

	t.Run("reuses existing account on subsequent logins", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user, err := identity.NewOIDCUser(tenant.ID, "carol", "carol@example.com", "oidc|123")
		require.NoError(t, err)

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByOIDCSubject", ctx, tenant.ID, "oidc|123").Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		result, err := f.service.LoginWithOIDC(ctx, OIDCLoginInput{TenantID: tenant.ID, Subject: "oidc|123"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		_, err := f.service.LoginWithOIDC(ctx, OIDCLoginInput{TenantID: tenant.ID})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("exchanges a valid refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user := newActiveUser(t, tenant.ID)

		f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		f.userRepo.On("FindByUsername", ctx, tenant.ID, "alice").Return(user, nil)
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		login, err := f.service.Login(ctx, LoginInput{TenantID: tenant.ID, Username: "alice", Password: "s3cret-password"})
		require.NoError(t, err)

		result, err := f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-token"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the password with the correct old one", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user := newActiveUser(t, tenant.ID)

		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.userRepo.On("SaveWithLock", ctx, user).Return(nil)

		err := f.service.ChangePassword(ctx, ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "s3cret-password",
			NewPassword: "new-s3cret-password",
		})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("new-s3cret-password"))
	})

	t.Run("rejects a wrong old password", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant := newActiveTenant(t)
		user := newActiveUser(t, tenant.ID)

		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		err := f.service.ChangePassword(ctx, ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "wrong",
			NewPassword: "new-s3cret-password",
		})
		require.Error(t, err)
		assert.True(t, user.VerifyPassword("s3cret-password"))
	})
}
