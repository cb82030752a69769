package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/marketplace"
	domainmarketplace "github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// ListingHandler handles marketplace listing HTTP requests
type ListingHandler struct {
	BaseHandler
	listingService *marketplace.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *marketplace.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListingRequest represents the request body for listing creation
type CreateListingRequest struct {
	Title        string      `json:"title" binding:"required,min=1,max=200"`
	Description  string      `json:"description" binding:"omitempty,max=5000"`
	PromptIDs    []uuid.UUID `json:"prompt_ids" binding:"required,min=1,max=50"`
	PriceUSD     *string     `json:"price_usd" binding:"omitempty"`
	PriceCredits *int64      `json:"price_credits" binding:"omitempty,min=1"`
}

// UpdateListingRequest represents the request body for listing updates
type UpdateListingRequest struct {
	Description  *string `json:"description" binding:"omitempty,max=5000"`
	PriceUSD     *string `json:"price_usd" binding:"omitempty"`
	PriceCredits *int64  `json:"price_credits" binding:"omitempty,min=1"`
}

// ListListingsRequest represents the query parameters for listing listings
type ListListingsRequest struct {
	dto.ListRequest
	SellerID string `form:"seller_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=draft active paused delisted"`
}

// ListingResponse represents listing data in responses
type ListingResponse struct {
	ID           uuid.UUID   `json:"id"`
	SellerID     uuid.UUID   `json:"seller_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	PromptIDs    []uuid.UUID `json:"prompt_ids"`
	PriceUSD     *string     `json:"price_usd,omitempty"`
	PriceCredits *int64      `json:"price_credits,omitempty"`
	Status       string      `json:"status"`
	SalesCount   int64       `json:"sales_count"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func toListingResponse(l *domainmarketplace.Listing) ListingResponse {
	resp := ListingResponse{
		ID:           l.ID,
		SellerID:     l.SellerID,
		Title:        l.Title,
		Description:  l.Description,
		PromptIDs:    l.PromptIDs,
		PriceCredits: l.PriceCredits,
		Status:       string(l.Status),
		SalesCount:   l.SalesCount,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.PriceUSD != nil {
		s := l.PriceUSD.Amount().StringFixed(2)
		resp.PriceUSD = &s
	}
	return resp
}

// CreateListing godoc
// @Summary      Create listing
// @Description  Create a draft listing for one or more prompts
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        request body CreateListingRequest true "Listing data"
// @Success      201 {object} dto.Response{data=ListingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/listings [post]
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
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

	listing, err := h.listingService.CreateListing(c.Request.Context(), marketplace.CreateListingInput{
		TenantID:     tenantID,
		SellerID:     userID,
		Title:        req.Title,
		Description:  req.Description,
		PromptIDs:    req.PromptIDs,
		PriceUSD:     req.PriceUSD,
		PriceCredits: req.PriceCredits,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toListingResponse(listing))
}

// GetListing godoc
// @Summary      Get listing
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=ListingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /marketplace/listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	listing, err := h.listingService.GetListing(c.Request.Context(), tenantID, listingID, viewerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toListingResponse(listing))
}

// ListListings godoc
// @Summary      List listings
// @Tags         marketplace
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        seller_id query string false "Filter by seller"
// @Param        status query string false "Filter by status"
// @Param        search query string false "Search in title and description"
// @Success      200 {object} dto.Response{data=[]ListingResponse}
// @Router       /marketplace/listings [get]
func (h *ListingHandler) ListListings(c *gin.Context) {
	req := ListListingsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	input := marketplace.ListListingsInput{
		TenantID: tenantID,
		ViewerID: viewerID(c),
		Status:   domainmarketplace.ListingStatus(req.Status),
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.SellerID != "" {
		id, _ := uuid.Parse(req.SellerID)
		input.SellerID = &id
	}

	result, err := h.listingService.ListListings(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ListingResponse, len(result.Items))
	for i := range result.Items {
		responses[i] = toListingResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

// UpdateListing godoc
// @Summary      Update listing
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        id path string true "Listing ID"
// @Param        request body UpdateListingRequest true "Listing fields"
// @Success      200 {object} dto.Response{data=ListingResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/listings/{id} [patch]
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	var req UpdateListingRequest
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

	listing, err := h.listingService.UpdateListing(c.Request.Context(), marketplace.UpdateListingInput{
		TenantID:     tenantID,
		ListingID:    listingID,
		SellerID:     userID,
		Description:  req.Description,
		PriceUSD:     req.PriceUSD,
		PriceCredits: req.PriceCredits,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toListingResponse(listing))
}

func (h *ListingHandler) statusAction(c *gin.Context, fn func(ctx context.Context, tenantID, listingID, sellerID uuid.UUID) (*domainmarketplace.Listing, error)) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
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

	listing, err := fn(c.Request.Context(), tenantID, listingID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toListingResponse(listing))
}

// ActivateListing godoc
// @Summary      Activate listing
// @Description  Put a draft or paused listing on sale
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=ListingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /marketplace/listings/{id}/activate [post]
func (h *ListingHandler) ActivateListing(c *gin.Context) {
	h.statusAction(c, h.listingService.ActivateListing)
}

// PauseListing godoc
// @Summary      Pause listing
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=ListingResponse}
// @Security     BearerAuth
// @Router       /marketplace/listings/{id}/pause [post]
func (h *ListingHandler) PauseListing(c *gin.Context) {
	h.statusAction(c, h.listingService.PauseListing)
}

// DelistListing godoc
// @Summary      Delist listing
// @Description  Permanently remove a listing from the marketplace
// @Tags         marketplace
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=ListingResponse}
// @Security     BearerAuth
// @Router       /marketplace/listings/{id}/delist [post]
func (h *ListingHandler) DelistListing(c *gin.Context) {
	h.statusAction(c, h.listingService.DelistListing)
}
