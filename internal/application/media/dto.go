package media

import (
	"time"

	"github.com/google/uuid"
)

// InitiatePreviewUploadRequest starts a preview image upload for a prompt
type InitiatePreviewUploadRequest struct {
	PromptID    uuid.UUID `json:"prompt_id" validate:"required"`
	FileName    string    `json:"file_name" validate:"required,max=255"`
	ContentType string    `json:"content_type" validate:"required"`
}

// InitiateIconUploadRequest starts an icon upload for a community
type InitiateIconUploadRequest struct {
	CommunityID uuid.UUID `json:"community_id" validate:"required"`
	FileName    string    `json:"file_name" validate:"required,max=255"`
	ContentType string    `json:"content_type" validate:"required"`
}

// InitiateUploadResponse carries the presigned upload URL
type InitiateUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DownloadURLResponse carries a presigned download URL
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
