package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/identity"
	domainidentity "github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// TenantHandler handles tenant management HTTP requests
type TenantHandler struct {
	BaseHandler
	tenantService *identity.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *identity.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// CreateTenantRequest represents the request body for tenant creation
type CreateTenantRequest struct {
	Code          string `json:"code" binding:"required,min=2,max=50,alphanum"`
	Name          string `json:"name" binding:"required,min=2,max=200"`
	Plan          string `json:"plan" binding:"omitempty,oneof=free pro enterprise"`
	ContactMail   string `json:"contact_mail" binding:"omitempty,email"`
	AdminUsername string `json:"admin_username" binding:"required,min=3,max=100"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8,max=128"`
}

// UpdateTenantRequest represents the request body for tenant updates
type UpdateTenantRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=200"`
	Plan        *string `json:"plan" binding:"omitempty,oneof=free pro enterprise"`
	ContactMail *string `json:"contact_mail" binding:"omitempty,email"`
}

// ListTenantsRequest represents tenant listing query parameters
type ListTenantsRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active suspended"`
	Plan   string `form:"plan" binding:"omitempty,oneof=free pro enterprise"`
}

// TenantResponse represents tenant data in responses
type TenantResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	ContactMail string     `json:"contact_mail,omitempty"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTenantResponse(t *domainidentity.Tenant) TenantResponse {
	return TenantResponse{
		ID:          t.ID,
		Code:        t.Code,
		Name:        t.Name,
		Plan:        string(t.Plan),
		Status:      string(t.Status),
		ContactMail: t.ContactMail,
		SuspendedAt: t.SuspendedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// CreateTenant godoc
// @Summary      Create tenant
// @Description  Provision a new tenant with its admin account and system roles
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body CreateTenantRequest true "Tenant data"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tenants [post]
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.tenantService.CreateTenant(c.Request.Context(), identity.CreateTenantInput{
		Code:          req.Code,
		Name:          req.Name,
		Plan:          req.Plan,
		ContactMail:   req.ContactMail,
		AdminUsername: req.AdminUsername,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, gin.H{
		"tenant": toTenantResponse(result.Tenant),
		"admin":  toAuthUserResponse(result.Admin),
	})
}

// GetTenant godoc
// @Summary      Get tenant
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTenantResponse(tenant))
}

// ListTenants godoc
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        search query string false "Search by code or name"
// @Param        status query string false "Filter by status"
// @Param        plan query string false "Filter by plan"
// @Success      200 {object} dto.Response{data=[]TenantResponse}
// @Security     BearerAuth
// @Router       /tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	req := ListTenantsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.tenantService.ListTenants(c.Request.Context(), identity.ListTenantsInput{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Status:   req.Status,
		Plan:     req.Plan,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	tenants := make([]TenantResponse, len(result.Items))
	for i := range result.Items {
		tenants[i] = toTenantResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, tenants, result.Total, result.Page, result.PageSize)
}

// UpdateTenant godoc
// @Summary      Update tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Param        request body UpdateTenantRequest true "Tenant fields"
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tenants/{id} [patch]
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), identity.UpdateTenantInput{
		TenantID:    tenantID,
		Name:        req.Name,
		Plan:        req.Plan,
		ContactMail: req.ContactMail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTenantResponse(tenant))
}

// SuspendTenant godoc
// @Summary      Suspend tenant
// @Description  Suspend a tenant, blocking all logins until reactivated
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /tenants/{id}/suspend [post]
func (h *TenantHandler) SuspendTenant(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.tenantService.SuspendTenant(c.Request.Context(), tenantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Tenant suspended"})
}

// ActivateTenant godoc
// @Summary      Activate tenant
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /tenants/{id}/activate [post]
func (h *TenantHandler) ActivateTenant(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.tenantService.ActivateTenant(c.Request.Context(), tenantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Tenant activated"})
}
