package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// AllowedImageContentTypes is the whitelist for preview images and icons.
// SVG is excluded because it can carry scripts.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ObjectStorageService defines the interface for object storage operations.
// This interface is implemented by the infrastructure layer (S3-compatible
// stores).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ServiceConfig holds configuration for the media service
type ServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// Service handles preview images for prompts and icons for communities.
// Uploads go straight to object storage through presigned URLs; the
// service only hands out URLs and records the storage key once the
// upload is confirmed.
type Service struct {
	promptRepo     prompt.Repository
	communityRepo  community.Repository
	membershipRepo community.MembershipRepository
	storageService ObjectStorageService
	config         ServiceConfig
}

// NewService creates a new media Service
func NewService(
	promptRepo prompt.Repository,
	communityRepo community.Repository,
	membershipRepo community.MembershipRepository,
	storageService ObjectStorageService,
) *Service {
	return &Service{
		promptRepo:     promptRepo,
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		storageService: storageService,
		config:         DefaultServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *Service) SetConfig(config ServiceConfig) {
	s.config = config
}

// InitiatePreviewUpload returns a presigned URL for uploading a prompt's
// preview image. Only the prompt author can upload a preview.
func (s *Service) InitiatePreviewUpload(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	req InitiatePreviewUploadRequest,
) (*InitiateUploadResponse, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, req.PromptID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, shared.NewDomainError("NOT_PROMPT_AUTHOR", "Only the author can change the preview image")
	}

	if !AllowedImageContentTypes[req.ContentType] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for preview images", req.ContentType))
	}

	storageKey := s.previewStorageKey(tenantID, req.PromptID, req.FileName)

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmPreviewUpload verifies the object landed in storage and records
// the key on the prompt. A previous preview image is deleted best-effort.
func (s *Service) ConfirmPreviewUpload(
	ctx context.Context,
	tenantID, userID, promptID uuid.UUID,
	storageKey string,
) error {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return err
	}
	if p.AuthorID != userID {
		return shared.NewDomainError("NOT_PROMPT_AUTHOR", "Only the author can change the preview image")
	}
	if !strings.HasPrefix(storageKey, s.previewKeyPrefix(tenantID, promptID)) {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this prompt")
	}

	exists, err := s.storageService.ObjectExists(ctx, storageKey)
	if err != nil {
		return shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first.")
	}

	oldKey := p.PreviewImageKey
	p.SetPreviewImage(storageKey)
	if err := s.promptRepo.Save(ctx, p); err != nil {
		return err
	}

	if oldKey != "" && oldKey != storageKey {
		_ = s.storageService.DeleteObject(ctx, oldKey)
	}

	return nil
}

// DeletePreview removes the prompt's preview image
func (s *Service) DeletePreview(ctx context.Context, tenantID, userID, promptID uuid.UUID) error {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return err
	}
	if p.AuthorID != userID {
		return shared.NewDomainError("NOT_PROMPT_AUTHOR", "Only the author can change the preview image")
	}
	if p.PreviewImageKey == "" {
		return nil
	}

	key := p.PreviewImageKey
	p.SetPreviewImage("")
	if err := s.promptRepo.Save(ctx, p); err != nil {
		return err
	}

	_ = s.storageService.DeleteObject(ctx, key)
	return nil
}

// PreviewDownloadURL returns a presigned download URL for a prompt's
// preview image
func (s *Service) PreviewDownloadURL(ctx context.Context, tenantID, promptID uuid.UUID) (*DownloadURLResponse, error) {
	p, err := s.promptRepo.FindByIDForTenant(ctx, tenantID, promptID)
	if err != nil {
		return nil, err
	}
	if p.PreviewImageKey == "" {
		return nil, shared.NewDomainError("NO_PREVIEW_IMAGE", "Prompt has no preview image")
	}

	url, expiresAt, err := s.storageService.GenerateDownloadURL(ctx, p.PreviewImageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// InitiateIconUpload returns a presigned URL for uploading a community
// icon. The caller must be the owner or a moderator of the community.
func (s *Service) InitiateIconUpload(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	req InitiateIconUploadRequest,
) (*InitiateUploadResponse, error) {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, req.CommunityID)
	if err != nil {
		return nil, err
	}
	if err := s.requireModerator(ctx, tenantID, c, userID); err != nil {
		return nil, err
	}

	if !AllowedImageContentTypes[req.ContentType] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for community icons", req.ContentType))
	}

	storageKey := s.iconStorageKey(tenantID, req.CommunityID, req.FileName)

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmIconUpload verifies the object landed in storage and records the
// key on the community
func (s *Service) ConfirmIconUpload(
	ctx context.Context,
	tenantID, userID, communityID uuid.UUID,
	storageKey string,
) error {
	c, err := s.communityRepo.FindByIDForTenant(ctx, tenantID, communityID)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, tenantID, c, userID); err != nil {
		return err
	}
	if !strings.HasPrefix(storageKey, s.iconKeyPrefix(tenantID, communityID)) {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this community")
	}

	exists, err := s.storageService.ObjectExists(ctx, storageKey)
	if err != nil {
		return shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first.")
	}

	oldKey := c.IconKey
	c.SetIcon(storageKey)
	if err := s.communityRepo.Save(ctx, c); err != nil {
		return err
	}

	if oldKey != "" && oldKey != storageKey {
		_ = s.storageService.DeleteObject(ctx, oldKey)
	}

	return nil
}

// requireModerator checks that the user owns or moderates the community
func (s *Service) requireModerator(ctx context.Context, tenantID uuid.UUID, c *community.Community, userID uuid.UUID) error {
	if c.OwnerID == userID {
		return nil
	}
	membership, err := s.membershipRepo.FindByCommunityAndUser(ctx, tenantID, c.ID, userID)
	if err != nil {
		return shared.NewDomainError("NOT_COMMUNITY_MODERATOR", "Only the owner or a moderator can change the icon")
	}
	if !membership.Role.CanModerate() || !membership.IsActive() {
		return shared.NewDomainError("NOT_COMMUNITY_MODERATOR", "Only the owner or a moderator can change the icon")
	}
	return nil
}

func (s *Service) previewKeyPrefix(tenantID, promptID uuid.UUID) string {
	return fmt.Sprintf("previews/%s/%s/", tenantID, promptID)
}

// previewStorageKey builds a collision-free key preserving the extension
func (s *Service) previewStorageKey(tenantID, promptID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return s.previewKeyPrefix(tenantID, promptID) + uuid.New().String() + ext
}

func (s *Service) iconKeyPrefix(tenantID, communityID uuid.UUID) string {
	return fmt.Sprintf("icons/%s/%s/", tenantID, communityID)
}

func (s *Service) iconStorageKey(tenantID, communityID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return s.iconKeyPrefix(tenantID, communityID) + uuid.New().String() + ext
}
