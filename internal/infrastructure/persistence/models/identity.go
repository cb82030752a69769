package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	TenantAggregateModel
	Username       string              `gorm:"type:varchar(100);not null;index:idx_users_tenant_username,unique"`
	Email          string              `gorm:"type:varchar(200);not null"`
	PasswordHash   string              `gorm:"type:varchar(255)"`
	OIDCSubject    string              `gorm:"column:oidc_subject;type:varchar(255);index"`
	DisplayName    string              `gorm:"type:varchar(200)"`
	Bio            string              `gorm:"type:text"`
	AvatarKey      string              `gorm:"type:varchar(500)"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	PayPalEmail    string              `gorm:"column:paypal_email;type:varchar(200)"`
	LastLoginAt    *time.Time          `gorm:"index"`
	FailedAttempts int                 `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Note: RoleIDs must be loaded separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		Username:       m.Username,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		OIDCSubject:    m.OIDCSubject,
		DisplayName:    m.DisplayName,
		Bio:            m.Bio,
		AvatarKey:      m.AvatarKey,
		Status:         m.Status,
		RoleIDs:        make([]uuid.UUID, 0), // Loaded separately
		PayPalEmail:    m.PayPalEmail,
		LastLoginAt:    m.LastLoginAt,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
	}
	m.PopulateTenantAggregateRoot(&user.TenantAggregateRoot)
	return user
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.OIDCSubject = u.OIDCSubject
	m.DisplayName = u.DisplayName
	m.Bio = u.Bio
	m.AvatarKey = u.AvatarKey
	m.Status = u.Status
	m.PayPalEmail = u.PayPalEmail
	m.LastLoginAt = u.LastLoginAt
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserRoleModel is the persistence model for the UserRole relationship.
type UserRoleModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// ToDomain converts the persistence model to a domain UserRole.
func (m *UserRoleModel) ToDomain() identity.UserRole {
	return identity.UserRole{
		UserID:    m.UserID,
		RoleID:    m.RoleID,
		TenantID:  m.TenantID,
		CreatedAt: m.CreatedAt,
	}
}

// RoleModel is the persistence model for the Role domain entity.
type RoleModel struct {
	TenantAggregateModel
	Code            string              `gorm:"type:varchar(50);not null;index:idx_roles_tenant_code,unique"`
	Name            string              `gorm:"type:varchar(200);not null"`
	Description     string              `gorm:"type:text"`
	Status          identity.RoleStatus `gorm:"type:varchar(20);not null;default:'enabled'"`
	IsSystem        bool                `gorm:"not null;default:false"`
	PermissionsJSON string              `gorm:"column:permissions;type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role entity.
func (m *RoleModel) ToDomain() (*identity.Role, error) {
	permissions := make([]string, 0)
	if m.PermissionsJSON != "" {
		if err := json.Unmarshal([]byte(m.PermissionsJSON), &permissions); err != nil {
			return nil, err
		}
	}

	role := &identity.Role{
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Status:      m.Status,
		IsSystem:    m.IsSystem,
		Permissions: permissions,
	}
	m.PopulateTenantAggregateRoot(&role.TenantAggregateRoot)
	return role, nil
}

// FromDomain populates the persistence model from a domain Role entity.
func (m *RoleModel) FromDomain(r *identity.Role) error {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.Description = r.Description
	m.Status = r.Status
	m.IsSystem = r.IsSystem

	permissions := r.Permissions
	if permissions == nil {
		permissions = make([]string, 0)
	}
	permissionsJSON, err := json.Marshal(permissions)
	if err != nil {
		return err
	}
	m.PermissionsJSON = string(permissionsJSON)
	return nil
}

// RoleModelFromDomain creates a new persistence model from a domain Role entity.
func RoleModelFromDomain(r *identity.Role) (*RoleModel, error) {
	m := &RoleModel{}
	if err := m.FromDomain(r); err != nil {
		return nil, err
	}
	return m, nil
}

// TenantModel is the persistence model for the Tenant domain entity.
type TenantModel struct {
	AggregateModel
	Code        string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string                `gorm:"type:varchar(200);not null"`
	Plan        identity.TenantPlan   `gorm:"type:varchar(20);not null;default:'free'"`
	Status      identity.TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactMail string                `gorm:"type:varchar(200)"`
	SuspendedAt *time.Time
	Notes       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Code:        m.Code,
		Name:        m.Name,
		Plan:        m.Plan,
		Status:      m.Status,
		ContactMail: m.ContactMail,
		SuspendedAt: m.SuspendedAt,
		Notes:       m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Code = t.Code
	m.Name = t.Name
	m.Plan = t.Plan
	m.Status = t.Status
	m.ContactMail = t.ContactMail
	m.SuspendedAt = t.SuspendedAt
	m.Notes = t.Notes
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
