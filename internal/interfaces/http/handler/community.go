package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcommunity "github.com/promptatrium/backend/internal/application/community"
	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// CommunityHandler handles community HTTP requests
type CommunityHandler struct {
	BaseHandler
	communityService *appcommunity.Service
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(communityService *appcommunity.Service) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

// CreateCommunityRequest represents the request body for community creation
type CreateCommunityRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=100"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Visibility  string     `json:"visibility" binding:"omitempty,oneof=public private"`
	ParentID    *uuid.UUID `json:"parent_id" binding:"omitempty"`
}

// UpdateCommunityRequest represents the request body for community updates
type UpdateCommunityRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=public private"`
}

// ListCommunitiesRequest represents the query parameters for listing communities
type ListCommunitiesRequest struct {
	dto.ListRequest
	ParentID string `form:"parent_id" binding:"omitempty,uuid"`
	TopLevel bool   `form:"top_level"`
}

// CreateInviteRequest represents the request body for inviting a user
type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ChangeMemberRoleRequest represents the request body for changing a member's role
type ChangeMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=member moderator"`
}

// TransferOwnershipRequest represents the request body for ownership transfer
type TransferOwnershipRequest struct {
	NewOwnerID uuid.UUID `json:"new_owner_id" binding:"required"`
}

// BanMemberRequest represents the request body for banning a member
type BanMemberRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// CommunityResponse represents community data in responses
type CommunityResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Visibility  string     `json:"visibility"`
	MemberCount int64      `json:"member_count"`
	IconKey     string     `json:"icon_key,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MembershipResponse represents a community membership in responses
type MembershipResponse struct {
	ID          uuid.UUID  `json:"id"`
	CommunityID uuid.UUID  `json:"community_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	BannedAt    *time.Time `json:"banned_at,omitempty"`
	BanReason   string     `json:"ban_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InviteResponse represents a community invite in responses
type InviteResponse struct {
	ID          uuid.UUID  `json:"id"`
	CommunityID uuid.UUID  `json:"community_id"`
	InviterID   uuid.UUID  `json:"inviter_id"`
	Email       string     `json:"email"`
	Token       string     `json:"token"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AcceptedBy  *uuid.UUID `json:"accepted_by,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toCommunityResponse(cm *community.Community) CommunityResponse {
	return CommunityResponse{
		ID:          cm.ID,
		Name:        cm.Name,
		Slug:        cm.Slug,
		Description: cm.Description,
		ParentID:    cm.ParentID,
		OwnerID:     cm.OwnerID,
		Visibility:  string(cm.Visibility),
		MemberCount: cm.MemberCount,
		IconKey:     cm.IconKey,
		CreatedAt:   cm.CreatedAt,
		UpdatedAt:   cm.UpdatedAt,
	}
}

func toMembershipResponse(m *community.Membership) MembershipResponse {
	return MembershipResponse{
		ID:          m.ID,
		CommunityID: m.CommunityID,
		UserID:      m.UserID,
		Role:        string(m.Role),
		Status:      string(m.Status),
		BannedAt:    m.BannedAt,
		BanReason:   m.BanReason,
		CreatedAt:   m.CreatedAt,
	}
}

func toInviteResponse(inv *community.Invite) InviteResponse {
	return InviteResponse{
		ID:          inv.ID,
		CommunityID: inv.CommunityID,
		InviterID:   inv.InviterID,
		Email:       inv.Email,
		Token:       inv.Token,
		Status:      string(inv.Status),
		ExpiresAt:   inv.ExpiresAt,
		AcceptedBy:  inv.AcceptedBy,
		AcceptedAt:  inv.AcceptedAt,
		CreatedAt:   inv.CreatedAt,
	}
}

// CreateCommunity godoc
// @Summary      Create community
// @Description  Create a community; pass parent_id to create a sub-community
// @Tags         communities
// @Accept       json
// @Produce      json
// @Param        request body CreateCommunityRequest true "Community data"
// @Success      201 {object} dto.Response{data=CommunityResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities [post]
func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	var req CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	visibility := community.VisibilityPublic
	if req.Visibility != "" {
		visibility = community.Visibility(req.Visibility)
	}

	cm, err := h.communityService.CreateCommunity(c.Request.Context(), appcommunity.CreateCommunityInput{
		TenantID:    tenantID,
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  visibility,
		ParentID:    req.ParentID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toCommunityResponse(cm))
}

// GetCommunity godoc
// @Summary      Get community
// @Tags         communities
// @Produce      json
// @Param        id path string true "Community ID"
// @Success      200 {object} dto.Response{data=CommunityResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /communities/{id} [get]
func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	cm, err := h.communityService.GetCommunity(c.Request.Context(), tenantID, communityID, viewerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCommunityResponse(cm))
}

// GetCommunityBySlug godoc
// @Summary      Get community by slug
// @Tags         communities
// @Produce      json
// @Param        slug path string true "Community slug"
// @Success      200 {object} dto.Response{data=CommunityResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /communities/slug/{slug} [get]
func (h *CommunityHandler) GetCommunityBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		h.BadRequest(c, "Slug is required")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	cm, err := h.communityService.GetCommunityBySlug(c.Request.Context(), tenantID, slug, viewerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCommunityResponse(cm))
}

// ListCommunities godoc
// @Summary      List communities
// @Tags         communities
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        parent_id query string false "Filter by parent community"
// @Param        top_level query bool false "Only top-level communities"
// @Param        search query string false "Search in name and description"
// @Success      200 {object} dto.Response{data=[]CommunityResponse}
// @Router       /communities [get]
func (h *CommunityHandler) ListCommunities(c *gin.Context) {
	req := ListCommunitiesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	input := appcommunity.ListCommunitiesInput{
		TenantID: tenantID,
		TopLevel: req.TopLevel,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.ParentID != "" {
		id, _ := uuid.Parse(req.ParentID)
		input.ParentID = &id
	}

	result, err := h.communityService.ListCommunities(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CommunityResponse, len(result.Items))
	for i := range result.Items {
		responses[i] = toCommunityResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

// ListSubCommunities godoc
// @Summary      List sub-communities
// @Tags         communities
// @Produce      json
// @Param        id path string true "Parent community ID"
// @Success      200 {object} dto.Response{data=[]CommunityResponse}
// @Router       /communities/{id}/sub-communities [get]
func (h *CommunityHandler) ListSubCommunities(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	subs, err := h.communityService.ListSubCommunities(c.Request.Context(), tenantID, communityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CommunityResponse, len(subs))
	for i := range subs {
		responses[i] = toCommunityResponse(&subs[i])
	}

	h.Success(c, responses)
}

// UpdateCommunity godoc
// @Summary      Update community
// @Tags         communities
// @Accept       json
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        request body UpdateCommunityRequest true "Community fields"
// @Success      200 {object} dto.Response{data=CommunityResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id} [patch]
func (h *CommunityHandler) UpdateCommunity(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	var req UpdateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	input := appcommunity.UpdateCommunityInput{
		TenantID:    tenantID,
		CommunityID: communityID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Visibility != nil {
		v := community.Visibility(*req.Visibility)
		input.Visibility = &v
	}

	cm, err := h.communityService.UpdateCommunity(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCommunityResponse(cm))
}

// DeleteCommunity godoc
// @Summary      Delete community
// @Tags         communities
// @Produce      json
// @Param        id path string true "Community ID"
// @Success      204 {object} nil
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id} [delete]
func (h *CommunityHandler) DeleteCommunity(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.communityService.DeleteCommunity(c.Request.Context(), tenantID, communityID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// JoinCommunity godoc
// @Summary      Join community
// @Tags         communities
// @Produce      json
// @Param        id path string true "Community ID"
// @Success      201 {object} dto.Response{data=MembershipResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id}/join [post]
func (h *CommunityHandler) JoinCommunity(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	membership, err := h.communityService.Join(c.Request.Context(), tenantID, communityID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMembershipResponse(membership))
}

// LeaveCommunity godoc
// @Summary      Leave community
// @Tags         communities
// @Produce      json
// @Param        id path string true "Community ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id}/leave [post]
func (h *CommunityHandler) LeaveCommunity(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.communityService.Leave(c.Request.Context(), tenantID, communityID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Left community"})
}

// ListMembers godoc
// @Summary      List community members
// @Tags         communities
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]MembershipResponse}
// @Router       /communities/{id}/members [get]
func (h *CommunityHandler) ListMembers(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize

	members, err := h.communityService.ListMembers(c.Request.Context(), tenantID, communityID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]MembershipResponse, len(members))
	for i := range members {
		responses[i] = toMembershipResponse(&members[i])
	}

	h.Success(c, responses)
}

// ListMyMemberships godoc
// @Summary      List own memberships
// @Tags         communities
// @Produce      json
// @Success      200 {object} dto.Response{data=[]MembershipResponse}
// @Security     BearerAuth
// @Router       /communities/memberships [get]
func (h *CommunityHandler) ListMyMemberships(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	memberships, err := h.communityService.ListUserMemberships(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]MembershipResponse, len(memberships))
	for i := range memberships {
		responses[i] = toMembershipResponse(&memberships[i])
	}

	h.Success(c, responses)
}

// CreateInvite godoc
// @Summary      Create invite
// @Description  Invite a user by email; moderator role required
// @Tags         communities
// @Accept       json
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        request body CreateInviteRequest true "Invite data"
// @Success      201 {object} dto.Response{data=InviteResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id}/invites [post]
func (h *CommunityHandler) CreateInvite(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invite, err := h.communityService.CreateInvite(c.Request.Context(), appcommunity.CreateInviteInput{
		TenantID:    tenantID,
		CommunityID: communityID,
		InviterID:   userID,
		Email:       req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toInviteResponse(invite))
}

// AcceptInvite godoc
// @Summary      Accept invite
// @Description  Redeem an invite token and join the community
// @Tags         communities
// @Produce      json
// @Param        token path string true "Invite token"
// @Success      200 {object} dto.Response{data=MembershipResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/invites/{token}/accept [post]
func (h *CommunityHandler) AcceptInvite(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.BadRequest(c, "Invite token is required")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	membership, err := h.communityService.AcceptInvite(c.Request.Context(), tenantID, token, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMembershipResponse(membership))
}

// RevokeInvite godoc
// @Summary      Revoke invite
// @Tags         communities
// @Produce      json
// @Param        invite_id path string true "Invite ID"
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/invites/{invite_id} [delete]
func (h *CommunityHandler) RevokeInvite(c *gin.Context) {
	inviteID, err := uuid.Parse(c.Param("invite_id"))
	if err != nil {
		h.BadRequest(c, "Invalid invite ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.communityService.RevokeInvite(c.Request.Context(), tenantID, inviteID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Invite revoked"})
}

// ListInvites godoc
// @Summary      List invites
// @Description  List pending invites of a community; moderator role required
// @Tags         communities
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]InviteResponse}
// @Security     BearerAuth
// @Router       /communities/{id}/invites [get]
func (h *CommunityHandler) ListInvites(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize

	invites, err := h.communityService.ListInvites(c.Request.Context(), tenantID, communityID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]InviteResponse, len(invites))
	for i := range invites {
		responses[i] = toInviteResponse(&invites[i])
	}

	h.Success(c, responses)
}

// ChangeMemberRole godoc
// @Summary      Change member role
// @Description  Promote or demote a member; owner or moderator required
// @Tags         communities
// @Accept       json
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        member_id path string true "Member user ID"
// @Param        request body ChangeMemberRoleRequest true "Target role"
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id}/members/{member_id}/role [put]
func (h *CommunityHandler) ChangeMemberRole(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("member_id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	var req ChangeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.communityService.ChangeMemberRole(c.Request.Context(), appcommunity.ChangeMemberRoleInput{
		TenantID:    tenantID,
		CommunityID: communityID,
		ActorID:     userID,
		MemberID:    memberID,
		Role:        community.MemberRole(req.Role),
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Member role updated"})
}

// TransferOwnership godoc
// @Summary      Transfer ownership
// @Description  Transfer community ownership to another active member
// @Tags         communities
// @Accept       json
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        request body TransferOwnershipRequest true "New owner"
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id}/transfer-ownership [post]
func (h *CommunityHandler) TransferOwnership(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	var req TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.communityService.TransferOwnership(c.Request.Context(), tenantID, communityID, userID, req.NewOwnerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Ownership transferred"})
}

// BanMember godoc
// @Summary      Ban member
// @Tags         communities
// @Accept       json
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        member_id path string true "Member user ID"
// @Param        request body BanMemberRequest false "Ban reason"
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id}/members/{member_id}/ban [post]
func (h *CommunityHandler) BanMember(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("member_id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	var req BanMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.communityService.BanMember(c.Request.Context(), appcommunity.BanMemberInput{
		TenantID:    tenantID,
		CommunityID: communityID,
		ActorID:     userID,
		MemberID:    memberID,
		Reason:      req.Reason,
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Member banned"})
}

// UnbanMember godoc
// @Summary      Unban member
// @Tags         communities
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        member_id path string true "Member user ID"
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /communities/{id}/members/{member_id}/unban [post]
func (h *CommunityHandler) UnbanMember(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("member_id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.communityService.UnbanMember(c.Request.Context(), tenantID, communityID, userID, memberID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Member unbanned"})
}
