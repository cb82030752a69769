package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/prompt"
	domainprompt "github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
)

// CollectionHandler handles prompt collection HTTP requests
type CollectionHandler struct {
	BaseHandler
	collectionService *prompt.CollectionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService *prompt.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// CreateCollectionRequest represents the request body for collection creation
type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=private public"`
}

// UpdateCollectionRequest represents the request body for collection updates
type UpdateCollectionRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=private public"`
}

// SavePromptRequest represents the request body for saving a prompt into a collection
type SavePromptRequest struct {
	PromptID uuid.UUID `json:"prompt_id" binding:"required"`
}

// ReorderCollectionRequest represents the request body for moving a prompt within a collection
type ReorderCollectionRequest struct {
	PromptID uuid.UUID `json:"prompt_id" binding:"required"`
	Position int       `json:"position" binding:"min=0"`
}

// CollectionResponse represents collection data in responses
type CollectionResponse struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Visibility  string      `json:"visibility"`
	PromptIDs   []uuid.UUID `json:"prompt_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toCollectionResponse(col *domainprompt.Collection) CollectionResponse {
	return CollectionResponse{
		ID:          col.ID,
		OwnerID:     col.OwnerID,
		Name:        col.Name,
		Description: col.Description,
		Visibility:  string(col.Visibility),
		PromptIDs:   col.PromptIDs,
		CreatedAt:   col.CreatedAt,
		UpdatedAt:   col.UpdatedAt,
	}
}

// CreateCollection godoc
// @Summary      Create collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        request body CreateCollectionRequest true "Collection data"
// @Success      201 {object} dto.Response{data=CollectionResponse}
// @Security     BearerAuth
// @Router       /collections [post]
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	var req CreateCollectionRequest
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

	visibility := domainprompt.CollectionPrivate
	if req.Visibility != "" {
		visibility = domainprompt.CollectionVisibility(req.Visibility)
	}

	col, err := h.collectionService.CreateCollection(c.Request.Context(), prompt.CreateCollectionInput{
		TenantID:    tenantID,
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  visibility,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toCollectionResponse(col))
}

// GetCollection godoc
// @Summary      Get collection
// @Tags         collections
// @Produce      json
// @Param        id path string true "Collection ID"
// @Success      200 {object} dto.Response{data=CollectionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /collections/{id} [get]
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid collection ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	col, err := h.collectionService.GetCollection(c.Request.Context(), tenantID, collectionID, viewerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCollectionResponse(col))
}

// ListOwnCollections godoc
// @Summary      List own collections
// @Tags         collections
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]CollectionResponse}
// @Security     BearerAuth
// @Router       /collections/mine [get]
func (h *CollectionHandler) ListOwnCollections(c *gin.Context) {
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
	filter.Search = req.Search

	collections, err := h.collectionService.ListOwnCollections(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCollectionResponses(collections))
}

// ListPublicCollections godoc
// @Summary      List public collections
// @Tags         collections
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]CollectionResponse}
// @Router       /collections [get]
func (h *CollectionHandler) ListPublicCollections(c *gin.Context) {
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
	filter.Search = req.Search

	collections, err := h.collectionService.ListPublicCollections(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCollectionResponses(collections))
}

func toCollectionResponses(collections []domainprompt.Collection) []CollectionResponse {
	responses := make([]CollectionResponse, len(collections))
	for i := range collections {
		responses[i] = toCollectionResponse(&collections[i])
	}
	return responses
}

// UpdateCollection godoc
// @Summary      Update collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Collection ID"
// @Param        request body UpdateCollectionRequest true "Collection fields"
// @Success      200 {object} dto.Response{data=CollectionResponse}
// @Security     BearerAuth
// @Router       /collections/{id} [patch]
func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid collection ID")
		return
	}

	var req UpdateCollectionRequest
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

	input := prompt.UpdateCollectionInput{
		TenantID:     tenantID,
		CollectionID: collectionID,
		OwnerID:      userID,
		Name:         req.Name,
		Description:  req.Description,
	}
	if req.Visibility != nil {
		v := domainprompt.CollectionVisibility(*req.Visibility)
		input.Visibility = &v
	}

	col, err := h.collectionService.UpdateCollection(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCollectionResponse(col))
}

// SavePrompt godoc
// @Summary      Save prompt to collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Collection ID"
// @Param        request body SavePromptRequest true "Prompt to save"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /collections/{id}/prompts [post]
func (h *CollectionHandler) SavePrompt(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid collection ID")
		return
	}

	var req SavePromptRequest
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

	if err := h.collectionService.SavePromptToCollection(c.Request.Context(), tenantID, collectionID, userID, req.PromptID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Prompt saved to collection"})
}

// RemovePrompt godoc
// @Summary      Remove prompt from collection
// @Tags         collections
// @Produce      json
// @Param        id path string true "Collection ID"
// @Param        prompt_id path string true "Prompt ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /collections/{id}/prompts/{prompt_id} [delete]
func (h *CollectionHandler) RemovePrompt(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid collection ID")
		return
	}
	promptID, err := uuid.Parse(c.Param("prompt_id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
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

	if err := h.collectionService.RemovePromptFromCollection(c.Request.Context(), tenantID, collectionID, userID, promptID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Prompt removed from collection"})
}

// ReorderCollection godoc
// @Summary      Reorder collection
// @Description  Move a prompt to a new position within a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Collection ID"
// @Param        request body ReorderCollectionRequest true "Prompt and target position"
// @Success      200 {object} dto.Response{data=CollectionResponse}
// @Security     BearerAuth
// @Router       /collections/{id}/reorder [post]
func (h *CollectionHandler) ReorderCollection(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid collection ID")
		return
	}

	var req ReorderCollectionRequest
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

	col, err := h.collectionService.ReorderCollection(c.Request.Context(), prompt.ReorderCollectionInput{
		TenantID:     tenantID,
		CollectionID: collectionID,
		OwnerID:      userID,
		PromptID:     req.PromptID,
		Position:     req.Position,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCollectionResponse(col))
}

// DeleteCollection godoc
// @Summary      Delete collection
// @Tags         collections
// @Produce      json
// @Param        id path string true "Collection ID"
// @Success      204 {object} nil
// @Security     BearerAuth
// @Router       /collections/{id} [delete]
func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid collection ID")
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

	if err := h.collectionService.DeleteCollection(c.Request.Context(), tenantID, collectionID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
