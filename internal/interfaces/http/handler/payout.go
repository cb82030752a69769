package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/billing"
	domainbilling "github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// PayoutHandler handles PayPal payout batch HTTP requests
type PayoutHandler struct {
	BaseHandler
	payoutService *billing.PayoutService
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(payoutService *billing.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// ListPayoutsRequest represents the query parameters for listing payout batches
type ListPayoutsRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,max=50"`
}

// PayoutItemResponse represents a single payout item in responses
type PayoutItemResponse struct {
	ID            uuid.UUID `json:"id"`
	SellerID      uuid.UUID `json:"seller_id"`
	ReceiverEmail string    `json:"receiver_email"`
	Credits       int64     `json:"credits"`
	AmountUSD     string    `json:"amount_usd"`
	Status        string    `json:"status"`
	PayPalItemID  string    `json:"paypal_item_id,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

// PayoutBatchResponse represents a payout batch in responses
type PayoutBatchResponse struct {
	ID            uuid.UUID            `json:"id"`
	SenderBatchID string               `json:"sender_batch_id"`
	PayPalBatchID string               `json:"paypal_batch_id,omitempty"`
	Status        string               `json:"status"`
	ItemCount     int                  `json:"item_count"`
	TotalCredits  int64                `json:"total_credits"`
	TotalUSD      string               `json:"total_usd"`
	SubmittedAt   *time.Time           `json:"submitted_at,omitempty"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty"`
	FailureReason string               `json:"failure_reason,omitempty"`
	Items         []PayoutItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toPayoutBatchResponse(b *domainbilling.PayoutBatch) PayoutBatchResponse {
	resp := PayoutBatchResponse{
		ID:            b.ID,
		SenderBatchID: b.SenderBatchID,
		PayPalBatchID: b.PayPalBatchID,
		Status:        string(b.Status),
		ItemCount:     b.ItemCount,
		TotalCredits:  b.TotalCredits,
		TotalUSD:      b.TotalUSD.Amount().StringFixed(2),
		SubmittedAt:   b.SubmittedAt,
		CompletedAt:   b.CompletedAt,
		FailureReason: b.FailureReason,
		CreatedAt:     b.CreatedAt,
	}
	if len(b.Items) > 0 {
		resp.Items = make([]PayoutItemResponse, len(b.Items))
		for i := range b.Items {
			item := &b.Items[i]
			resp.Items[i] = PayoutItemResponse{
				ID:            item.ID,
				SellerID:      item.SellerID,
				ReceiverEmail: item.ReceiverEmail,
				Credits:       item.Credits,
				AmountUSD:     item.AmountUSD.Amount().StringFixed(2),
				Status:        string(item.Status),
				PayPalItemID:  item.PayPalItemID,
				FailureReason: item.FailureReason,
			}
		}
	}
	return resp
}

// BuildBatch godoc
// @Summary      Build payout batch
// @Description  Collect eligible seller balances into a draft payout batch
// @Tags         billing
// @Produce      json
// @Success      201 {object} dto.Response{data=PayoutBatchResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/payouts [post]
func (h *PayoutHandler) BuildBatch(c *gin.Context) {
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

	batch, err := h.payoutService.BuildBatch(c.Request.Context(), billing.BuildPayoutInput{
		TenantID:  tenantID,
		CreatedBy: userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPayoutBatchResponse(batch))
}

// SubmitBatch godoc
// @Summary      Submit payout batch
// @Description  Submit a draft batch to PayPal and debit seller ledgers
// @Tags         billing
// @Produce      json
// @Param        id path string true "Batch ID"
// @Success      200 {object} dto.Response{data=PayoutBatchResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/payouts/{id}/submit [post]
func (h *PayoutHandler) SubmitBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	batch, err := h.payoutService.SubmitBatch(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPayoutBatchResponse(batch))
}

// GetBatch godoc
// @Summary      Get payout batch
// @Tags         billing
// @Produce      json
// @Param        id path string true "Batch ID"
// @Success      200 {object} dto.Response{data=PayoutBatchResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/payouts/{id} [get]
func (h *PayoutHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	batch, err := h.payoutService.GetBatch(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPayoutBatchResponse(batch))
}

// ListBatches godoc
// @Summary      List payout batches
// @Tags         billing
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]PayoutBatchResponse}
// @Security     BearerAuth
// @Router       /billing/payouts [get]
func (h *PayoutHandler) ListBatches(c *gin.Context) {
	req := ListPayoutsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	result, err := h.payoutService.ListBatches(c.Request.Context(), billing.ListPayoutsInput{
		TenantID: tenantID,
		Status:   domainbilling.PayoutStatus(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PayoutBatchResponse, len(result.Items))
	for i := range result.Items {
		responses[i] = toPayoutBatchResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

// SyncBatchStatus godoc
// @Summary      Sync payout batch status
// @Description  Poll PayPal for the current batch status and reconcile items
// @Tags         billing
// @Produce      json
// @Param        id path string true "Batch ID"
// @Success      200 {object} dto.Response{data=PayoutBatchResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/payouts/{id}/sync [post]
func (h *PayoutHandler) SyncBatchStatus(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	batch, err := h.payoutService.SyncBatchStatus(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPayoutBatchResponse(batch))
}
