package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/marketplace"
	domainmarketplace "github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// DisputeHandler handles marketplace dispute HTTP requests
type DisputeHandler struct {
	BaseHandler
	disputeService *marketplace.DisputeService
}

// NewDisputeHandler creates a new dispute handler
func NewDisputeHandler(disputeService *marketplace.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// OpenDisputeRequest represents the request body for opening a dispute
type OpenDisputeRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Reason  string    `json:"reason" binding:"required,min=10,max=2000"`
}

// ResolveDisputeRequest represents the request body for resolving a dispute
type ResolveDisputeRequest struct {
	Note        string `json:"note" binding:"required,min=1,max=2000"`
	IssueRefund bool   `json:"issue_refund"`
}

// CloseDisputeRequest represents the request body for closing a dispute
type CloseDisputeRequest struct {
	Note string `json:"note" binding:"omitempty,max=2000"`
}

// ListDisputesRequest represents the query parameters for listing disputes
type ListDisputesRequest struct {
	dto.ListRequest
	Status   string `form:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	OpenOnly bool   `form:"open_only"`
	Mine     bool   `form:"mine"`
}

// DisputeResponse represents dispute data in responses
type DisputeResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrderID        uuid.UUID  `json:"order_id"`
	OpenerID       uuid.UUID  `json:"opener_id"`
	Opener         string     `json:"opener"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	AssigneeID     *uuid.UUID `json:"assignee_id,omitempty"`
	ResolutionNote string     `json:"resolution_note,omitempty"`
	RefundIssued   bool       `json:"refund_issued"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toDisputeResponse(d *domainmarketplace.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:             d.ID,
		OrderID:        d.OrderID,
		OpenerID:       d.OpenerID,
		Opener:         string(d.Opener),
		Reason:         d.Reason,
		Status:         string(d.Status),
		AssigneeID:     d.AssigneeID,
		ResolutionNote: d.ResolutionNote,
		RefundIssued:   d.RefundIssued,
		ResolvedAt:     d.ResolvedAt,
		CreatedAt:      d.CreatedAt,
	}
}

// OpenDispute godoc
// @Summary      Open dispute
// @Description  Open a dispute over a paid or completed order
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Param        request body OpenDisputeRequest true "Dispute data"
// @Success      201 {object} dto.Response{data=DisputeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/disputes [post]
func (h *DisputeHandler) OpenDispute(c *gin.Context) {
	var req OpenDisputeRequest
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

	dispute, err := h.disputeService.OpenDispute(c.Request.Context(), marketplace.OpenDisputeInput{
		TenantID: tenantID,
		OrderID:  req.OrderID,
		OpenerID: userID,
		Reason:   req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toDisputeResponse(dispute))
}

// GetDispute godoc
// @Summary      Get dispute
// @Tags         disputes
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Success      200 {object} dto.Response{data=DisputeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/disputes/{id} [get]
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
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

	dispute, err := h.disputeService.GetDispute(c.Request.Context(), tenantID, disputeID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDisputeResponse(dispute))
}

// ListDisputes godoc
// @Summary      List disputes
// @Tags         disputes
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        open_only query bool false "Only unresolved disputes"
// @Param        mine query bool false "Only disputes assigned to the caller"
// @Success      200 {object} dto.Response{data=[]DisputeResponse}
// @Security     BearerAuth
// @Router       /marketplace/disputes [get]
func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	req := ListDisputesRequest{ListRequest: dto.DefaultListRequest()}
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

	input := marketplace.ListDisputesInput{
		TenantID: tenantID,
		Status:   domainmarketplace.DisputeStatus(req.Status),
		OpenOnly: req.OpenOnly,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Mine {
		input.AssigneeID = &userID
	}

	result, err := h.disputeService.ListDisputes(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]DisputeResponse, len(result.Items))
	for i := range result.Items {
		responses[i] = toDisputeResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

// PickUpDispute godoc
// @Summary      Pick up dispute
// @Description  Assign an open dispute to the calling admin
// @Tags         disputes
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Success      200 {object} dto.Response{data=DisputeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/disputes/{id}/pickup [post]
func (h *DisputeHandler) PickUpDispute(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
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

	dispute, err := h.disputeService.PickUpDispute(c.Request.Context(), tenantID, disputeID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDisputeResponse(dispute))
}

// ResolveDispute godoc
// @Summary      Resolve dispute
// @Description  Resolve a dispute with an optional refund of the order
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Param        request body ResolveDisputeRequest true "Resolution"
// @Success      200 {object} dto.Response{data=DisputeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/disputes/{id}/resolve [post]
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	var req ResolveDisputeRequest
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

	dispute, err := h.disputeService.ResolveDispute(c.Request.Context(), marketplace.ResolveDisputeInput{
		TenantID:    tenantID,
		DisputeID:   disputeID,
		AssigneeID:  userID,
		Note:        req.Note,
		IssueRefund: req.IssueRefund,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDisputeResponse(dispute))
}

// CloseDispute godoc
// @Summary      Close dispute
// @Description  Close a dispute without resolution
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Param        request body CloseDisputeRequest false "Closing note"
// @Success      200 {object} dto.Response{data=DisputeResponse}
// @Security     BearerAuth
// @Router       /marketplace/disputes/{id}/close [post]
func (h *DisputeHandler) CloseDispute(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	var req CloseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	dispute, err := h.disputeService.CloseDispute(c.Request.Context(), tenantID, disputeID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDisputeResponse(dispute))
}
