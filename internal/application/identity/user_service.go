package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, roleRepo identity.RoleRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// CreateUser creates a user with an explicit role set (admin operation)
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	if exists, err := s.userRepo.ExistsByUsername(ctx, input.TenantID, input.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already taken")
	}
	if exists, err := s.userRepo.ExistsByEmail(ctx, input.TenantID, input.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "Email is already registered")
	}

	user, err := identity.NewUser(input.TenantID, input.Username, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	codes, err := s.applyRoleCodes(ctx, user, input.RoleCodes)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	info := userInfoFrom(user, codes)
	return &info, nil
}

// GetUser returns a single user within the tenant
func (s *UserService) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	codes, err := s.roleCodesFor(ctx, user)
	if err != nil {
		return nil, err
	}
	info := userInfoFrom(user, codes)
	return &info, nil
}

// ListUsers returns a page of users in the tenant
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) (*shared.Paginated[UserInfo], error) {
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

	users, err := s.userRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, userInfoFrom(&users[i], nil))
	}

	result := shared.NewPaginated(infos, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateProfile updates the mutable profile fields of a user
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateUserInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, input.TenantID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Bio != nil {
		if err := user.SetBio(*input.Bio); err != nil {
			return nil, err
		}
	}
	if input.AvatarKey != nil {
		if err := user.SetAvatarKey(*input.AvatarKey); err != nil {
			return nil, err
		}
	}
	if input.PayPalEmail != nil {
		if err := user.SetPayPalEmail(*input.PayPalEmail); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return nil, err
	}

	codes, err := s.roleCodesFor(ctx, user)
	if err != nil {
		return nil, err
	}
	info := userInfoFrom(user, codes)
	return &info, nil
}

// AssignRoles replaces a user's role set with the given role codes
func (s *UserService) AssignRoles(ctx context.Context, input AssignRolesInput) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, input.TenantID, input.UserID)
	if err != nil {
		return err
	}

	if _, err := s.applyRoleCodes(ctx, user, input.RoleCodes); err != nil {
		return err
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}

	s.logger.Info("User roles updated",
		zap.String("user_id", user.ID.String()),
		zap.Strings("roles", input.RoleCodes))
	return nil
}

// ActivateUser activates a pending or deactivated user
func (s *UserService) ActivateUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := user.Activate(); err != nil {
		return err
	}
	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}
	s.logger.Info("User activated", zap.String("user_id", userID.String()))
	return nil
}

// DeactivateUser deactivates a user, blocking further logins
func (s *UserService) DeactivateUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}
	s.logger.Info("User deactivated", zap.String("user_id", userID.String()))
	return nil
}

// DeleteUser removes a user and their role assignments
func (s *UserService) DeleteUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, tenantID, userID); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("user_id", userID.String()))
	return nil
}

// applyRoleCodes resolves role codes and sets them on the user. Returns the
// resolved codes.
func (s *UserService) applyRoleCodes(ctx context.Context, user *identity.User, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return []string{}, nil
	}

	roleIDs := make([]uuid.UUID, 0, len(codes))
	resolved := make([]string, 0, len(codes))
	for _, code := range codes {
		role, err := s.roleRepo.FindByCode(ctx, user.TenantID, code)
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role "+code+" not found")
			}
			return nil, err
		}
		roleIDs = append(roleIDs, role.ID)
		resolved = append(resolved, role.Code)
	}

	if err := user.SetRoles(roleIDs); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *UserService) roleCodesFor(ctx context.Context, user *identity.User) ([]string, error) {
	if len(user.RoleIDs) == 0 {
		return []string{}, nil
	}
	roles, err := s.roleRepo.FindByIDs(ctx, user.TenantID, user.RoleIDs)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(roles))
	for _, role := range roles {
		codes = append(codes, role.Code)
	}
	return codes, nil
}
