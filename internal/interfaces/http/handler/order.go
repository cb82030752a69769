package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/marketplace"
	domainmarketplace "github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// OrderHandler handles marketplace order HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService *marketplace.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *marketplace.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest represents the request body for order creation
type CreateOrderRequest struct {
	ListingID     uuid.UUID `json:"listing_id" binding:"required"`
	PaymentMethod string    `json:"payment_method" binding:"required,oneof=credits usd"`
}

// CancelOrderRequest represents the request body for order cancellation
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ListOrdersRequest represents the query parameters for listing orders
type ListOrdersRequest struct {
	dto.ListRequest
	Role   string `form:"role" binding:"omitempty,oneof=buyer seller"`
	Status string `form:"status" binding:"omitempty,oneof=pending paid completed refunded cancelled"`
}

// OrderResponse represents order data in responses
type OrderResponse struct {
	ID            uuid.UUID  `json:"id"`
	OrderNumber   string     `json:"order_number"`
	BuyerID       uuid.UUID  `json:"buyer_id"`
	SellerID      uuid.UUID  `json:"seller_id"`
	ListingID     uuid.UUID  `json:"listing_id"`
	ListingTitle  string     `json:"listing_title"`
	PaymentMethod string     `json:"payment_method"`
	AmountUSD     *string    `json:"amount_usd,omitempty"`
	AmountCredits *int64     `json:"amount_credits,omitempty"`
	Status        string     `json:"status"`
	CancelReason  string     `json:"cancel_reason,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toOrderResponse(o *domainmarketplace.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		BuyerID:       o.BuyerID,
		SellerID:      o.SellerID,
		ListingID:     o.ListingID,
		ListingTitle:  o.ListingTitle,
		PaymentMethod: string(o.PaymentMethod),
		AmountCredits: o.AmountCredits,
		Status:        string(o.Status),
		CancelReason:  o.CancelReason,
		PaidAt:        o.PaidAt,
		CompletedAt:   o.CompletedAt,
		RefundedAt:    o.RefundedAt,
		CreatedAt:     o.CreatedAt,
	}
	if o.AmountUSD != nil {
		s := o.AmountUSD.Amount().StringFixed(2)
		resp.AmountUSD = &s
	}
	return resp
}

// CreateOrder godoc
// @Summary      Create order
// @Description  Place an order against an active listing
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Order data"
// @Success      201 {object} dto.Response{data=OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
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

	order, err := h.orderService.CreateOrder(c.Request.Context(), marketplace.CreateOrderInput{
		TenantID:      tenantID,
		BuyerID:       userID,
		ListingID:     req.ListingID,
		PaymentMethod: domainmarketplace.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toOrderResponse(order))
}

// PayOrder godoc
// @Summary      Pay order
// @Description  Pay a pending order; credit orders debit the buyer's ledger
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/orders/{id}/pay [post]
func (h *OrderHandler) PayOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
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

	order, err := h.orderService.PayOrder(c.Request.Context(), tenantID, orderID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(order))
}

// GetOrder godoc
// @Summary      Get order
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
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

	order, err := h.orderService.GetOrder(c.Request.Context(), tenantID, orderID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(order))
}

// ListOrders godoc
// @Summary      List orders
// @Description  List the caller's orders as buyer or seller
// @Tags         marketplace
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        role query string false "buyer or seller" default(buyer)
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]OrderResponse}
// @Security     BearerAuth
// @Router       /marketplace/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	req := ListOrdersRequest{ListRequest: dto.DefaultListRequest()}
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

	input := marketplace.ListOrdersInput{
		TenantID: tenantID,
		Status:   domainmarketplace.OrderStatus(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Role == "seller" {
		input.SellerID = &userID
	} else {
		input.BuyerID = &userID
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]OrderResponse, len(result.Items))
	for i := range result.Items {
		responses[i] = toOrderResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

// CompleteOrder godoc
// @Summary      Complete order
// @Description  Buyer confirms delivery; seller earnings are released
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/orders/{id}/complete [post]
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
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

	order, err := h.orderService.CompleteOrder(c.Request.Context(), tenantID, orderID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(order))
}

// CancelOrder godoc
// @Summary      Cancel order
// @Description  Cancel a pending order
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body CancelOrderRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req CancelOrderRequest
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

	order, err := h.orderService.CancelOrder(c.Request.Context(), tenantID, orderID, userID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(order))
}

// RefundOrder godoc
// @Summary      Refund order
// @Description  Refund a paid or completed order; admin operation
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/orders/{id}/refund [post]
func (h *OrderHandler) RefundOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	order, err := h.orderService.RefundOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(order))
}
