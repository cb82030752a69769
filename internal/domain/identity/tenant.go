package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/promptatrium/backend/internal/domain/shared"
)

// TenantStatus represents the lifecycle status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusClosed    TenantStatus = "closed"
)

// TenantPlan identifies the subscription plan of a tenant
type TenantPlan string

const (
	TenantPlanFree TenantPlan = "free"
	TenantPlanPro  TenantPlan = "pro"
	TenantPlanTeam TenantPlan = "team"
)

var tenantCodeRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,49}$`)

// Tenant represents an isolated workspace. All prompts, communities,
// listings and ledgers are scoped to a tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Code        string // URL-safe unique identifier
	Name        string
	Plan        TenantPlan
	Status      TenantStatus
	ContactMail string
	SuspendedAt *time.Time
	Notes       string
}

// NewTenant creates a new active tenant on the free plan
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !tenantCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_TENANT_CODE", "Tenant code must be 2-50 lowercase letters, digits or '-'")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Plan:              TenantPlanFree,
		Status:            TenantStatusActive,
	}, nil
}

// SetPlan changes the tenant's subscription plan
func (t *Tenant) SetPlan(plan TenantPlan) error {
	switch plan {
	case TenantPlanFree, TenantPlanPro, TenantPlanTeam:
	default:
		return shared.NewDomainError("INVALID_PLAN", "Unknown tenant plan")
	}
	t.Plan = plan
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// SetContactMail sets the billing/contact address
func (t *Tenant) SetContactMail(email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	t.ContactMail = strings.ToLower(strings.TrimSpace(email))
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Suspend suspends the tenant; all authenticated calls for its users are rejected
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}
	if t.Status == TenantStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Closed tenants cannot be suspended")
	}
	now := time.Now()
	t.Status = TenantStatusSuspended
	t.SuspendedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// Activate re-activates a suspended tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}
	if t.Status == TenantStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Closed tenants cannot be re-activated")
	}
	t.Status = TenantStatusActive
	t.SuspendedAt = nil
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Close permanently closes the tenant
func (t *Tenant) Close() error {
	if t.Status == TenantStatusClosed {
		return shared.NewDomainError("ALREADY_CLOSED", "Tenant is already closed")
	}
	t.Status = TenantStatusClosed
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// IsActive returns true if the tenant accepts authenticated traffic
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
