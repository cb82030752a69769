package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/identity"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the request body for user creation
type CreateUserRequest struct {
	Username    string   `json:"username" binding:"required,min=3,max=100"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=8,max=128"`
	DisplayName string   `json:"display_name" binding:"omitempty,max=100"`
	RoleCodes   []string `json:"role_codes" binding:"omitempty,dive,max=50"`
}

// UpdateProfileRequest represents the request body for profile updates.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Bio         *string `json:"bio" binding:"omitempty,max=2000"`
	AvatarKey   *string `json:"avatar_key" binding:"omitempty,max=500"`
	PayPalEmail *string `json:"paypal_email" binding:"omitempty,email"`
}

// AssignRolesRequest represents the request body for role assignment
type AssignRolesRequest struct {
	RoleCodes []string `json:"role_codes" binding:"required,min=1,dive,max=50"`
}

// ListUsersRequest represents user listing query parameters
type ListUsersRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active inactive locked"`
}

// CreateUser godoc
// @Summary      Create user
// @Description  Create a new user account (admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User data"
// @Success      201 {object} dto.Response{data=AuthUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), identity.CreateUserInput{
		TenantID:    tenantID,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		RoleCodes:   req.RoleCodes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAuthUserResponse(*user))
}

// GetUser godoc
// @Summary      Get user
// @Description  Get a user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*user))
}

// ListUsers godoc
// @Summary      List users
// @Description  List users in the tenant with pagination
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        search query string false "Search by username or email"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]AuthUserResponse}
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	req := ListUsersRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), identity.ListUsersInput{
		TenantID: tenantID,
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Status:   req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	users := make([]AuthUserResponse, len(result.Items))
	for i, u := range result.Items {
		users[i] = toAuthUserResponse(u)
	}

	h.SuccessWithMeta(c, users, result.Total, result.Page, result.PageSize)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Update the current user's display name, bio, avatar, or payout email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile fields"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), identity.UpdateUserInput{
		TenantID:    tenantID,
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarKey:   req.AvatarKey,
		PayPalEmail: req.PayPalEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*user))
}

// AssignRoles godoc
// @Summary      Assign roles
// @Description  Replace a user's role assignments
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body AssignRolesRequest true "Role codes"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/roles [put]
func (h *UserHandler) AssignRoles(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	err = h.userService.AssignRoles(c.Request.Context(), identity.AssignRolesInput{
		TenantID:  tenantID,
		UserID:    userID,
		RoleCodes: req.RoleCodes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Roles assigned"})
}

// ActivateUser godoc
// @Summary      Activate user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /users/{id}/activate [post]
func (h *UserHandler) ActivateUser(c *gin.Context) {
	h.userStatusChange(c, h.userService.ActivateUser, "User activated")
}

// DeactivateUser godoc
// @Summary      Deactivate user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /users/{id}/deactivate [post]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.userStatusChange(c, h.userService.DeactivateUser, "User deactivated")
}

// DeleteUser godoc
// @Summary      Delete user
// @Description  Soft-delete a user account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      204 {object} nil
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), tenantID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *UserHandler) userStatusChange(c *gin.Context, fn func(ctx context.Context, tenantID, userID uuid.UUID) error, message string) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := fn(c.Request.Context(), tenantID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": message})
}
