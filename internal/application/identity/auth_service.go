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

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Failed attempts before the account locks
	LockDuration     time.Duration // How long the lock lasts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	roleRepo   identity.RoleRepository
	tenantRepo identity.TenantRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	tenantRepo identity.TenantRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		tenantRepo: tenantRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Register creates a new member account in the tenant
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if err := s.requireActiveTenant(ctx, input.TenantID); err != nil {
		return nil, err
	}

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

	if err := s.assignDefaultRole(ctx, user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save new user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.issueTokens(ctx, user)
}

// Login authenticates a user with username and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := s.requireActiveTenant(ctx, input.TenantID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, input.TenantID, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("username", input.Username))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.VerifyPassword(input.Password) {
		user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to record login failure", zap.Error(err))
		}

		if user.IsLocked() {
			s.logger.Warn("Account locked after repeated failures",
				zap.String("username", input.Username),
				zap.Int("attempts", user.FailedAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Login still succeeds; the timestamp is best effort.
		s.logger.Error("Failed to record login success", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.issueTokens(ctx, user)
}

// LoginWithOIDC authenticates a user by a verified OIDC subject,
// provisioning the account on first login.
func (s *AuthService) LoginWithOIDC(ctx context.Context, input OIDCLoginInput) (*LoginResult, error) {
	if err := s.requireActiveTenant(ctx, input.TenantID); err != nil {
		return nil, err
	}
	if input.Subject == "" {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Missing OIDC subject")
	}

	user, err := s.userRepo.FindByOIDCSubject(ctx, input.TenantID, input.Subject)
	if err == shared.ErrNotFound {
		user, err = s.provisionOIDCUser(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record login success", zap.Error(err))
	}

	s.logger.Info("User logged in via OIDC", zap.String("user_id", user.ID.String()))

	return s.issueTokens(ctx, user)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if err := s.requireActiveTenant(ctx, user.TenantID); err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	roles, err := s.roleCodesFor(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, user.Username, roles)
	if err != nil {
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

// Logout revokes the presented access token via the blacklist
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return shared.NewDomainError("LOGOUT_FAILED", "Failed to revoke token")
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser returns the authenticated user's profile and roles
func (s *AuthService) GetCurrentUser(ctx context.Context, tenantID, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	roles, err := s.roleCodesFor(ctx, user)
	if err != nil {
		return nil, err
	}

	info := userInfoFrom(user, roles)
	return &info, nil
}

// ChangePassword changes a user's password after verifying the old one
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}

	// Invalidate tokens issued before the change.
	if s.blacklist != nil {
		ttl := s.jwtService.GetRefreshTokenExpiration()
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), ttl); err != nil {
			s.logger.Warn("Failed to invalidate existing tokens", zap.Error(err))
		}
	}

	s.logger.Info("Password changed", zap.String("user_id", input.UserID.String()))
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *identity.User) (*LoginResult, error) {
	roles, err := s.roleCodesFor(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Username: user.Username,
		Roles:    roles,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  userInfoFrom(user, roles),
	}, nil
}

func (s *AuthService) provisionOIDCUser(ctx context.Context, input OIDCLoginInput) (*identity.User, error) {
	user, err := identity.NewOIDCUser(input.TenantID, input.Username, input.Email, input.Subject)
	if err != nil {
		return nil, err
	}
	if err := s.assignDefaultRole(ctx, user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("OIDC user provisioned", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *AuthService) assignDefaultRole(ctx context.Context, user *identity.User) error {
	role, err := s.roleRepo.FindByCode(ctx, user.TenantID, identity.RoleCodeMember)
	if err != nil {
		if err == shared.ErrNotFound {
			// Tenant without seeded roles; the account still works.
			s.logger.Warn("Member role not found for tenant", zap.String("tenant_id", user.TenantID.String()))
			return nil
		}
		return err
	}
	return user.AssignRole(role.ID)
}

// roleCodesFor resolves the user's role IDs into role codes for JWT claims
func (s *AuthService) roleCodesFor(ctx context.Context, user *identity.User) ([]string, error) {
	if len(user.RoleIDs) == 0 {
		return []string{}, nil
	}
	roles, err := s.roleRepo.FindByIDs(ctx, user.TenantID, user.RoleIDs)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(roles))
	for _, role := range roles {
		if role.Status != identity.RoleStatusEnabled {
			continue
		}
		codes = append(codes, role.Code)
	}
	return codes, nil
}

func (s *AuthService) requireActiveTenant(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return shared.NewDomainError("TENANT_NOT_FOUND", "Tenant not found")
	}
	if !tenant.IsActive() {
		return shared.NewDomainError("TENANT_SUSPENDED", "Tenant is not active")
	}
	return nil
}

func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case auth.ErrInvalidToken:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate token")
	}
}
