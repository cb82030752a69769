package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/prompt"
	domainprompt "github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/interfaces/http/dto"
	"github.com/promptatrium/backend/internal/interfaces/http/middleware"
)

// PromptHandler handles prompt HTTP requests
type PromptHandler struct {
	BaseHandler
	promptService  *prompt.PromptService
	enhanceService *prompt.EnhanceService
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(promptService *prompt.PromptService, enhanceService *prompt.EnhanceService) *PromptHandler {
	return &PromptHandler{
		promptService:  promptService,
		enhanceService: enhanceService,
	}
}

// CreatePromptRequest represents the request body for prompt creation
type CreatePromptRequest struct {
	Title           string   `json:"title" binding:"required,min=1,max=200"`
	Content         string   `json:"content" binding:"required,min=1,max=20000"`
	NegativeContent string   `json:"negative_content" binding:"omitempty,max=20000"`
	TargetModel     string   `json:"target_model" binding:"omitempty,max=100"`
	Category        string   `json:"category" binding:"omitempty,max=100"`
	Tags            []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// UpdatePromptRequest represents the request body for prompt updates
type UpdatePromptRequest struct {
	Title           string   `json:"title" binding:"required,min=1,max=200"`
	Content         string   `json:"content" binding:"required,min=1,max=20000"`
	NegativeContent string   `json:"negative_content" binding:"omitempty,max=20000"`
	TargetModel     string   `json:"target_model" binding:"omitempty,max=100"`
	Category        string   `json:"category" binding:"omitempty,max=100"`
	Tags            []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// PublishPromptRequest represents the request body for publishing a prompt
type PublishPromptRequest struct {
	Visibility  string     `json:"visibility" binding:"required,oneof=private community public"`
	CommunityID *uuid.UUID `json:"community_id" binding:"omitempty"`
}

// RatePromptRequest represents the request body for rating a prompt
type RatePromptRequest struct {
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

// EnhancePromptRequest represents the request body for prompt enhancement
type EnhancePromptRequest struct {
	Text        string `json:"text" binding:"required,min=1,max=20000"`
	TargetModel string `json:"target_model" binding:"omitempty,max=100"`
}

// ListPromptsRequest represents the query parameters for listing prompts
type ListPromptsRequest struct {
	dto.ListRequest
	AuthorID    string `form:"author_id" binding:"omitempty,uuid"`
	CommunityID string `form:"community_id" binding:"omitempty,uuid"`
	Tag         string `form:"tag" binding:"omitempty,max=50"`
	TargetModel string `form:"target_model" binding:"omitempty,max=100"`
	Category    string `form:"category" binding:"omitempty,max=100"`
}

// PromptResponse represents prompt data in responses
type PromptResponse struct {
	ID               uuid.UUID  `json:"id"`
	AuthorID         uuid.UUID  `json:"author_id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Content          string     `json:"content"`
	NegativeContent  string     `json:"negative_content,omitempty"`
	TargetModel      string     `json:"target_model,omitempty"`
	Category         string     `json:"category,omitempty"`
	Tags             []string   `json:"tags"`
	PreviewImageKey  string     `json:"preview_image_key,omitempty"`
	Visibility       string     `json:"visibility"`
	CommunityID      *uuid.UUID `json:"community_id,omitempty"`
	ModerationStatus string     `json:"moderation_status"`
	ViewCount        int64      `json:"view_count"`
	LikeCount        int64      `json:"like_count"`
	SaveCount        int64      `json:"save_count"`
	UseCount         int64      `json:"use_count"`
	RatingAverage    float64    `json:"rating_average"`
	RatingCount      int64      `json:"rating_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RatingResponse represents a prompt rating in responses
type RatingResponse struct {
	ID        uuid.UUID `json:"id"`
	PromptID  uuid.UUID `json:"prompt_id"`
	UserID    uuid.UUID `json:"user_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EnhanceResponse represents the enhancement pipeline output
type EnhanceResponse struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

func toPromptResponse(p *domainprompt.Prompt) PromptResponse {
	return PromptResponse{
		ID:               p.ID,
		AuthorID:         p.AuthorID,
		Title:            p.Title,
		Slug:             p.Slug,
		Content:          p.Content,
		NegativeContent:  p.NegativeContent,
		TargetModel:      p.TargetModel,
		Category:         p.Category,
		Tags:             p.Tags,
		PreviewImageKey:  p.PreviewImageKey,
		Visibility:       string(p.Visibility),
		CommunityID:      p.CommunityID,
		ModerationStatus: string(p.ModerationStatus),
		ViewCount:        p.ViewCount,
		LikeCount:        p.LikeCount,
		SaveCount:        p.SaveCount,
		UseCount:         p.UseCount,
		RatingAverage:    p.RatingAverage,
		RatingCount:      p.RatingCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toRatingResponse(r *domainprompt.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		PromptID:  r.PromptID,
		UserID:    r.UserID,
		Stars:     r.Stars,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// viewerID returns the authenticated user if present, uuid.Nil otherwise.
// Listing and read endpoints allow anonymous access with reduced visibility.
func viewerID(c *gin.Context) uuid.UUID {
	if s := middleware.GetJWTUserID(c); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			return id
		}
	}
	return uuid.Nil
}

// CreatePrompt godoc
// @Summary      Create prompt
// @Description  Create a private prompt owned by the current user
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Param        request body CreatePromptRequest true "Prompt data"
// @Success      201 {object} dto.Response{data=PromptResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /prompts [post]
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	var req CreatePromptRequest
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

	p, err := h.promptService.CreatePrompt(c.Request.Context(), prompt.CreatePromptInput{
		TenantID:        tenantID,
		AuthorID:        userID,
		Title:           req.Title,
		Content:         req.Content,
		NegativeContent: req.NegativeContent,
		TargetModel:     req.TargetModel,
		Category:        req.Category,
		Tags:            req.Tags,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPromptResponse(p))
}

// GetPrompt godoc
// @Summary      Get prompt
// @Tags         prompts
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /prompts/{id} [get]
func (h *PromptHandler) GetPrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	p, err := h.promptService.GetPrompt(c.Request.Context(), tenantID, promptID, viewerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPromptResponse(p))
}

// GetPromptBySlug godoc
// @Summary      Get prompt by slug
// @Tags         prompts
// @Produce      json
// @Param        slug path string true "Prompt slug"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /prompts/slug/{slug} [get]
func (h *PromptHandler) GetPromptBySlug(c *gin.Context) {
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

	p, err := h.promptService.GetPromptBySlug(c.Request.Context(), tenantID, slug, viewerID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPromptResponse(p))
}

// ListPrompts godoc
// @Summary      List prompts
// @Description  List prompts visible to the caller with optional filters
// @Tags         prompts
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        author_id query string false "Filter by author"
// @Param        community_id query string false "Filter by community"
// @Param        tag query string false "Filter by tag"
// @Param        target_model query string false "Filter by target model"
// @Param        category query string false "Filter by category"
// @Param        search query string false "Search in title and content"
// @Success      200 {object} dto.Response{data=[]PromptResponse}
// @Router       /prompts [get]
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	req := ListPromptsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	input := prompt.ListPromptsInput{
		TenantID:    tenantID,
		ViewerID:    viewerID(c),
		Tag:         req.Tag,
		TargetModel: req.TargetModel,
		Category:    req.Category,
		Search:      req.Search,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if req.AuthorID != "" {
		id, _ := uuid.Parse(req.AuthorID)
		input.AuthorID = &id
	}
	if req.CommunityID != "" {
		id, _ := uuid.Parse(req.CommunityID)
		input.CommunityID = &id
	}

	result, err := h.promptService.ListPrompts(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PromptResponse, len(result.Items))
	for i := range result.Items {
		responses[i] = toPromptResponse(&result.Items[i])
	}

	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

// TrendingPrompts godoc
// @Summary      Trending prompts
// @Description  List prompts ranked by recent activity
// @Tags         prompts
// @Produce      json
// @Param        limit query int false "Maximum results" default(20)
// @Success      200 {object} dto.Response{data=[]PromptResponse}
// @Router       /prompts/trending [get]
func (h *PromptHandler) TrendingPrompts(c *gin.Context) {
	var query struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	prompts, err := h.promptService.TrendingPrompts(c.Request.Context(), tenantID, query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PromptResponse, len(prompts))
	for i := range prompts {
		responses[i] = toPromptResponse(&prompts[i])
	}

	h.Success(c, responses)
}

// UpdatePrompt godoc
// @Summary      Update prompt
// @Description  Update a prompt owned by the current user
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Param        request body UpdatePromptRequest true "Prompt fields"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /prompts/{id} [put]
func (h *PromptHandler) UpdatePrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
		return
	}

	var req UpdatePromptRequest
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

	p, err := h.promptService.UpdatePrompt(c.Request.Context(), prompt.UpdatePromptInput{
		TenantID:        tenantID,
		PromptID:        promptID,
		UserID:          userID,
		Title:           req.Title,
		Content:         req.Content,
		NegativeContent: req.NegativeContent,
		TargetModel:     req.TargetModel,
		Category:        req.Category,
		Tags:            req.Tags,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPromptResponse(p))
}

// DeletePrompt godoc
// @Summary      Delete prompt
// @Tags         prompts
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      204 {object} nil
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /prompts/{id} [delete]
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
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

	if err := h.promptService.DeletePrompt(c.Request.Context(), tenantID, promptID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PublishPrompt godoc
// @Summary      Publish prompt
// @Description  Change a prompt's visibility to community or public
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Param        request body PublishPromptRequest true "Target visibility"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /prompts/{id}/publish [post]
func (h *PromptHandler) PublishPrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
		return
	}

	var req PublishPromptRequest
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

	p, err := h.promptService.PublishPrompt(c.Request.Context(), prompt.PublishPromptInput{
		TenantID:    tenantID,
		PromptID:    promptID,
		UserID:      userID,
		Visibility:  domainprompt.Visibility(req.Visibility),
		CommunityID: req.CommunityID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPromptResponse(p))
}

// UnpublishPrompt godoc
// @Summary      Unpublish prompt
// @Description  Return a prompt to private visibility
// @Tags         prompts
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Security     BearerAuth
// @Router       /prompts/{id}/unpublish [post]
func (h *PromptHandler) UnpublishPrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
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

	p, err := h.promptService.UnpublishPrompt(c.Request.Context(), tenantID, promptID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPromptResponse(p))
}

// moderationAction runs a moderation transition and writes the updated prompt
func (h *PromptHandler) moderationAction(c *gin.Context, fn func(ctx context.Context, tenantID, promptID uuid.UUID) (*domainprompt.Prompt, error)) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
		return
	}

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	p, err := fn(c.Request.Context(), tenantID, promptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPromptResponse(p))
}

// ApprovePrompt godoc
// @Summary      Approve prompt
// @Tags         moderation
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Security     BearerAuth
// @Router       /prompts/{id}/approve [post]
func (h *PromptHandler) ApprovePrompt(c *gin.Context) {
	h.moderationAction(c, h.promptService.ApprovePrompt)
}

// FlagPrompt godoc
// @Summary      Flag prompt
// @Tags         moderation
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Security     BearerAuth
// @Router       /prompts/{id}/flag [post]
func (h *PromptHandler) FlagPrompt(c *gin.Context) {
	h.moderationAction(c, h.promptService.FlagPrompt)
}

// RemovePrompt godoc
// @Summary      Remove prompt
// @Description  Remove a prompt from circulation for moderation reasons
// @Tags         moderation
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response{data=PromptResponse}
// @Security     BearerAuth
// @Router       /prompts/{id}/remove [post]
func (h *PromptHandler) RemovePrompt(c *gin.Context) {
	h.moderationAction(c, h.promptService.RemovePrompt)
}

// LikePrompt godoc
// @Summary      Like prompt
// @Tags         prompts
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /prompts/{id}/like [post]
func (h *PromptHandler) LikePrompt(c *gin.Context) {
	h.likeAction(c, h.promptService.LikePrompt, "Prompt liked")
}

// UnlikePrompt godoc
// @Summary      Unlike prompt
// @Tags         prompts
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /prompts/{id}/like [delete]
func (h *PromptHandler) UnlikePrompt(c *gin.Context) {
	h.likeAction(c, h.promptService.UnlikePrompt, "Prompt unliked")
}

// RecordUse godoc
// @Summary      Record prompt use
// @Description  Increment the use counter when a prompt is copied into a generator
// @Tags         prompts
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /prompts/{id}/use [post]
func (h *PromptHandler) RecordUse(c *gin.Context) {
	h.likeAction(c, h.promptService.RecordUse, "Use recorded")
}

func (h *PromptHandler) likeAction(c *gin.Context, fn func(ctx context.Context, tenantID, promptID, userID uuid.UUID) error, message string) {
	promptID, err := uuid.Parse(c.Param("id"))
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

	if err := fn(c.Request.Context(), tenantID, promptID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": message})
}

// RatePrompt godoc
// @Summary      Rate prompt
// @Description  Rate a prompt one to five stars; a second rating replaces the first
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Param        request body RatePromptRequest true "Rating"
// @Success      200 {object} dto.Response{data=RatingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /prompts/{id}/ratings [post]
func (h *PromptHandler) RatePrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
		return
	}

	var req RatePromptRequest
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

	rating, err := h.promptService.RatePrompt(c.Request.Context(), prompt.RatePromptInput{
		TenantID: tenantID,
		PromptID: promptID,
		UserID:   userID,
		Stars:    req.Stars,
		Comment:  req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRatingResponse(rating))
}

// ListRatings godoc
// @Summary      List prompt ratings
// @Tags         prompts
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]RatingResponse}
// @Router       /prompts/{id}/ratings [get]
func (h *PromptHandler) ListRatings(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
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

	ratings, err := h.promptService.ListRatings(c.Request.Context(), tenantID, promptID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]RatingResponse, len(ratings))
	for i := range ratings {
		responses[i] = toRatingResponse(&ratings[i])
	}

	h.Success(c, responses)
}

// EnhancePrompt godoc
// @Summary      Enhance prompt text
// @Description  Rewrite prompt text through the configured LLM provider chain
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Param        request body EnhancePromptRequest true "Text to enhance"
// @Success      200 {object} dto.Response{data=EnhanceResponse}
// @Security     BearerAuth
// @Router       /prompts/enhance [post]
func (h *PromptHandler) EnhancePrompt(c *gin.Context) {
	var req EnhancePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.enhanceService.Enhance(c.Request.Context(), prompt.EnhanceInput{
		Text:        req.Text,
		TargetModel: req.TargetModel,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, EnhanceResponse{Text: result.Text, Provider: result.Provider})
}
