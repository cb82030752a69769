package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
)

func setupIdentityTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.TenantModel{},
		&models.UserModel{},
		&models.UserRoleModel{},
		&models.RoleModel{},
	)
	require.NoError(t, err)

	return db
}

func TestUserRepository_SaveAndFind(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormUserRepository(db)
	roleRepo := NewGormRoleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	role, err := identity.NewRole(tenantID, "creator", "Creator")
	require.NoError(t, err)
	require.NoError(t, roleRepo.Save(ctx, role))

	t.Run("round-trips a user with role assignments", func(t *testing.T) {
		user, err := identity.NewUser(tenantID, "Alice", "Alice@Example.com", "hunter2hunter2")
		require.NoError(t, err)
		require.NoError(t, user.SetRoles([]uuid.UUID{role.ID}))
		require.NoError(t, repo.Save(ctx, user))

		found, err := repo.FindByUsername(ctx, tenantID, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
		assert.Equal(t, "alice@example.com", found.Email)
		assert.Equal(t, identity.UserStatusActive, found.Status)
		assert.True(t, found.VerifyPassword("hunter2hunter2"))
		require.Len(t, found.RoleIDs, 1)
		assert.Equal(t, role.ID, found.RoleIDs[0])
	})

	t.Run("finds OIDC users by subject", func(t *testing.T) {
		user, err := identity.NewOIDCUser(tenantID, "bob", "bob@example.com", "auth0|b0b")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, user))

		found, err := repo.FindByOIDCSubject(ctx, tenantID, "auth0|b0b")
		require.NoError(t, err)
		assert.Equal(t, "bob", found.Username)
		assert.Empty(t, found.PasswordHash)

		_, err = repo.FindByOIDCSubject(ctx, tenantID, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("existence checks are case-insensitive", func(t *testing.T) {
		exists, err := repo.ExistsByUsername(ctx, tenantID, "Alice")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, tenantID, "ALICE@EXAMPLE.COM")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByUsername(ctx, tenantID, "nobody")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("lookups are tenant scoped", func(t *testing.T) {
		_, err := repo.FindByUsername(ctx, uuid.New(), "alice")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserRepository_SaveWithLock(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	user, err := identity.NewUser(tenantID, "carol", "carol@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	first, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, first.SetDisplayName("Carol"))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.SetDisplayName("Caroline"))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carol", found.DisplayName)
}

func TestUserRepository_Delete(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormUserRepository(db)
	roleRepo := NewGormRoleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	role, err := identity.NewRole(tenantID, "member", "Member")
	require.NoError(t, err)
	require.NoError(t, roleRepo.Save(ctx, role))

	user, err := identity.NewUser(tenantID, "dave", "dave@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, user.SetRoles([]uuid.UUID{role.ID}))
	require.NoError(t, repo.Save(ctx, user))

	require.NoError(t, repo.Delete(ctx, tenantID, user.ID))

	_, err = repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var assignments int64
	require.NoError(t, db.Model(&models.UserRoleModel{}).Where("user_id = ?", user.ID).Count(&assignments).Error)
	assert.Equal(t, int64(0), assignments)

	assert.ErrorIs(t, repo.Delete(ctx, tenantID, user.ID), shared.ErrNotFound)
}

func TestRoleRepository(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormRoleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("finds by code case-insensitively", func(t *testing.T) {
		role, err := identity.NewRole(tenantID, "moderator", "Moderator")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, role))

		found, err := repo.FindByCode(ctx, tenantID, "moderator")
		require.NoError(t, err)
		assert.Equal(t, "MODERATOR", found.Code)
	})

	t.Run("round-trips permissions", func(t *testing.T) {
		role, err := identity.NewSystemRole(tenantID, "admin", "Administrator", []string{"user:manage", "prompt:moderate"})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, role))

		found, err := repo.FindByID(ctx, role.ID)
		require.NoError(t, err)
		assert.True(t, found.IsSystem)
		assert.Equal(t, []string{"user:manage", "prompt:moderate"}, found.Permissions)
	})

	t.Run("refuses to delete system roles", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, tenantID, "admin")
		require.NoError(t, err)

		err = repo.Delete(ctx, tenantID, found.ID)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SYSTEM_ROLE", domainErr.Code)
	})
}

func TestTenantRepository(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant, err := identity.NewTenant("Acme-Studio", "Acme Studio")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tenant))

	t.Run("finds by code case-insensitively", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "ACME-STUDIO")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
		assert.Equal(t, identity.TenantPlanFree, found.Plan)
	})

	t.Run("existence check", func(t *testing.T) {
		exists, err := repo.ExistsByCode(ctx, "acme-studio")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByCode(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("filters by plan", func(t *testing.T) {
		tenants, err := repo.FindAll(ctx, shared.Filter{
			Filters: map[string]interface{}{"plan": string(identity.TenantPlanPro)},
		})
		require.NoError(t, err)
		assert.Empty(t, tenants)

		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
