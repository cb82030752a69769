package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/billing"
	domainbilling "github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// LedgerHandler handles credit ledger HTTP requests
type LedgerHandler struct {
	BaseHandler
	ledgerService *billing.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *billing.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// TopupRequest represents the request body for a credit top-up
type TopupRequest struct {
	Credits   int64  `json:"credits" binding:"required,min=1"`
	Reference string `json:"reference" binding:"omitempty,max=200"`
}

// AdjustmentRequest represents the request body for an admin balance adjustment
type AdjustmentRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Amount int64     `json:"amount" binding:"required"`
	Reason string    `json:"reason" binding:"required,min=1,max=500"`
}

// ListLedgerRequest represents the query parameters for listing ledger entries
type ListLedgerRequest struct {
	dto.ListRequest
	Type    string `form:"type" binding:"omitempty,max=50"`
	OrderID string `form:"order_id" binding:"omitempty,uuid"`
}

// LedgerEntryResponse represents a ledger entry in responses
type LedgerEntryResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Type         string     `json:"type"`
	Amount       int64      `json:"amount"`
	BalanceAfter int64      `json:"balance_after"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	PayoutID     *uuid.UUID `json:"payout_id,omitempty"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// LedgerSummaryResponse represents a user's ledger summary in responses
type LedgerSummaryResponse struct {
	UserID       uuid.UUID  `json:"user_id"`
	Balance      int64      `json:"balance"`
	TotalEarned  int64      `json:"total_earned"`
	TotalSpent   int64      `json:"total_spent"`
	EntryCount   int64      `json:"entry_count"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

func toLedgerEntryResponse(e *domainbilling.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		Type:         string(e.Type),
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		OrderID:      e.OrderID,
		PayoutID:     e.PayoutID,
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
	}
}

// ListEntries godoc
// @Summary      List ledger entries
// @Description  List the caller's credit ledger entries, newest first
// @Tags         billing
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        type query string false "Filter by entry type"
// @Param        order_id query string false "Filter by order"
// @Success      200 {object} dto.Response{data=[]LedgerEntryResponse}
// @Security     BearerAuth
// @Router       /billing/ledger [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	req := ListLedgerRequest{ListRequest: dto.DefaultListRequest()}
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

	input := billing.ListLedgerInput{
		TenantID: tenantID,
		UserID:   &userID,
		Type:     domainbilling.EntryType(req.Type),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.OrderID != "" {
		id, _ := uuid.Parse(req.OrderID)
		input.OrderID = &id
	}

	result, err := h.ledgerService.ListEntries(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]LedgerEntryResponse, len(result.Items))
	for i := range result.Items {
		responses[i] = toLedgerEntryResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

// GetBalance godoc
// @Summary      Get balance
// @Tags         billing
// @Produce      json
// @Success      200 {object} dto.Response{data=BalanceData}
// @Security     BearerAuth
// @Router       /billing/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
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

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceData{Balance: balance})
}

// GetSummary godoc
// @Summary      Get ledger summary
// @Description  Balance plus lifetime earned and spent totals
// @Tags         billing
// @Produce      json
// @Success      200 {object} dto.Response{data=LedgerSummaryResponse}
// @Security     BearerAuth
// @Router       /billing/summary [get]
func (h *LedgerHandler) GetSummary(c *gin.Context) {
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

	summary, err := h.ledgerService.GetSummary(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LedgerSummaryResponse{
		UserID:       summary.UserID,
		Balance:      summary.Balance,
		TotalEarned:  summary.TotalEarned,
		TotalSpent:   summary.TotalSpent,
		EntryCount:   summary.EntryCount,
		LastActivity: summary.LastActivity,
	})
}

// Topup godoc
// @Summary      Top up credits
// @Description  Credit the caller's ledger after an external purchase
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request body TopupRequest true "Top-up data"
// @Success      201 {object} dto.Response{data=LedgerEntryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/topup [post]
func (h *LedgerHandler) Topup(c *gin.Context) {
	var req TopupRequest
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

	entry, err := h.ledgerService.Topup(c.Request.Context(), billing.TopupInput{
		TenantID:  tenantID,
		UserID:    userID,
		Credits:   req.Credits,
		Reference: req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toLedgerEntryResponse(entry))
}

// Adjust godoc
// @Summary      Adjust balance
// @Description  Apply a manual admin adjustment to a user's ledger
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request body AdjustmentRequest true "Adjustment data"
// @Success      201 {object} dto.Response{data=LedgerEntryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/adjustments [post]
func (h *LedgerHandler) Adjust(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entry, err := h.ledgerService.Adjust(c.Request.Context(), billing.AdjustmentInput{
		TenantID: tenantID,
		UserID:   req.UserID,
		Amount:   req.Amount,
		Reason:   req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toLedgerEntryResponse(entry))
}
