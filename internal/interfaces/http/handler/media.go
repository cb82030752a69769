package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/application/media"
)

// MediaHandler handles preview image and icon upload HTTP requests.
// Uploads go directly to object storage through presigned URLs; the
// API only issues the URL and records the key once the client confirms.
type MediaHandler struct {
	BaseHandler
	mediaService *media.Service
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *media.Service) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// InitiatePreviewUploadRequest represents the request body for starting a preview upload
type InitiatePreviewUploadRequest struct {
	PromptID    uuid.UUID `json:"prompt_id" binding:"required"`
	FileName    string    `json:"file_name" binding:"required,max=255"`
	ContentType string    `json:"content_type" binding:"required,max=100"`
}

// ConfirmUploadRequest represents the request body for confirming a finished upload
type ConfirmUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

// InitiateIconUploadRequest represents the request body for starting an icon upload
type InitiateIconUploadRequest struct {
	CommunityID uuid.UUID `json:"community_id" binding:"required"`
	FileName    string    `json:"file_name" binding:"required,max=255"`
	ContentType string    `json:"content_type" binding:"required,max=100"`
}

// InitiatePreviewUpload godoc
// @Summary      Initiate preview upload
// @Description  Issue a presigned URL for uploading a prompt preview image
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request body InitiatePreviewUploadRequest true "Upload data"
// @Success      200 {object} dto.Response{data=media.InitiateUploadResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /media/previews/initiate [post]
func (h *MediaHandler) InitiatePreviewUpload(c *gin.Context) {
	var req InitiatePreviewUploadRequest
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

	resp, err := h.mediaService.InitiatePreviewUpload(c.Request.Context(), tenantID, userID, media.InitiatePreviewUploadRequest{
		PromptID:    req.PromptID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmPreviewUpload godoc
// @Summary      Confirm preview upload
// @Description  Record the uploaded preview image key on the prompt
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Param        request body ConfirmUploadRequest true "Storage key"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /media/previews/{id}/confirm [post]
func (h *MediaHandler) ConfirmPreviewUpload(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid prompt ID")
		return
	}

	var req ConfirmUploadRequest
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

	if err := h.mediaService.ConfirmPreviewUpload(c.Request.Context(), tenantID, userID, promptID, req.StorageKey); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Preview image confirmed"})
}

// DeletePreview godoc
// @Summary      Delete preview
// @Description  Remove a prompt's preview image from storage
// @Tags         media
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /media/previews/{id} [delete]
func (h *MediaHandler) DeletePreview(c *gin.Context) {
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

	if err := h.mediaService.DeletePreview(c.Request.Context(), tenantID, userID, promptID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Preview image deleted"})
}

// PreviewDownloadURL godoc
// @Summary      Get preview download URL
// @Tags         media
// @Produce      json
// @Param        id path string true "Prompt ID"
// @Success      200 {object} dto.Response{data=media.DownloadURLResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /media/previews/{id}/url [get]
func (h *MediaHandler) PreviewDownloadURL(c *gin.Context) {
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

	resp, err := h.mediaService.PreviewDownloadURL(c.Request.Context(), tenantID, promptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// InitiateIconUpload godoc
// @Summary      Initiate icon upload
// @Description  Issue a presigned URL for uploading a community icon
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request body InitiateIconUploadRequest true "Upload data"
// @Success      200 {object} dto.Response{data=media.InitiateUploadResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /media/icons/initiate [post]
func (h *MediaHandler) InitiateIconUpload(c *gin.Context) {
	var req InitiateIconUploadRequest
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

	resp, err := h.mediaService.InitiateIconUpload(c.Request.Context(), tenantID, userID, media.InitiateIconUploadRequest{
		CommunityID: req.CommunityID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmIconUpload godoc
// @Summary      Confirm icon upload
// @Description  Record the uploaded icon key on the community
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        id path string true "Community ID"
// @Param        request body ConfirmUploadRequest true "Storage key"
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /media/icons/{id}/confirm [post]
func (h *MediaHandler) ConfirmIconUpload(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid community ID")
		return
	}

	var req ConfirmUploadRequest
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

	if err := h.mediaService.ConfirmIconUpload(c.Request.Context(), tenantID, userID, communityID, req.StorageKey); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Community icon confirmed"})
}
