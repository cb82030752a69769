package media

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// ============================================================================
// Mocks
// ============================================================================

type MockPromptRepository struct {
	mock.Mock
}

func (m *MockPromptRepository) FindByID(ctx context.Context, id uuid.UUID) (*prompt.Prompt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter prompt.Filter) ([]prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter prompt.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPromptRepository) FindTrending(ctx context.Context, tenantID uuid.UUID, limit int) ([]prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) Save(ctx context.Context, p *prompt.Prompt) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepository) SaveWithLock(ctx context.Context, p *prompt.Prompt) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Community, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*community.Community), args.Error(1)
}

func (m *MockCommunityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*community.Community, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*community.Community), args.Error(1)
}

func (m *MockCommunityRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*community.Community, error) {
	args := m.Called(ctx, tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*community.Community), args.Error(1)
}

func (m *MockCommunityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter community.Filter) ([]community.Community, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]community.Community), args.Error(1)
}

func (m *MockCommunityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter community.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommunityRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]community.Community, error) {
	args := m.Called(ctx, tenantID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]community.Community), args.Error(1)
}

func (m *MockCommunityRepository) Save(ctx context.Context, c *community.Community) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommunityRepository) SaveWithLock(ctx context.Context, c *community.Community) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommunityRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*community.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByCommunityAndUser(ctx context.Context, tenantID, communityID, userID uuid.UUID) (*community.Membership, error) {
	args := m.Called(ctx, tenantID, communityID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*community.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByCommunity(ctx context.Context, tenantID, communityID uuid.UUID, filter shared.Filter) ([]community.Membership, error) {
	args := m.Called(ctx, tenantID, communityID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]community.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]community.Membership, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]community.Membership), args.Error(1)
}

func (m *MockMembershipRepository) CountByCommunity(ctx context.Context, tenantID, communityID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, communityID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) Save(ctx context.Context, membership *community.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Helpers
// ============================================================================

type mediaTestDeps struct {
	promptRepo     *MockPromptRepository
	communityRepo  *MockCommunityRepository
	membershipRepo *MockMembershipRepository
	storage        *MockObjectStorage
	service        *Service
}

func newMediaTestDeps() *mediaTestDeps {
	d := &mediaTestDeps{
		promptRepo:     new(MockPromptRepository),
		communityRepo:  new(MockCommunityRepository),
		membershipRepo: new(MockMembershipRepository),
		storage:        new(MockObjectStorage),
	}
	d.service = NewService(d.promptRepo, d.communityRepo, d.membershipRepo, d.storage)
	return d
}

func newTestPrompt(t *testing.T, tenantID, authorID uuid.UUID) *prompt.Prompt {
	t.Helper()
	p, err := prompt.NewPrompt(tenantID, authorID, "Neon City", "a neon-lit street", "sdxl")
	require.NoError(t, err)
	return p
}

// ============================================================================
// Tests
// ============================================================================

func TestInitiatePreviewUpload(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	p := newTestPrompt(t, tenantID, authorID)
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	d.storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "image/png", 15*time.Minute).
		Return("https://storage/upload", time.Now().Add(15*time.Minute), nil)

	resp, err := d.service.InitiatePreviewUpload(ctx, tenantID, authorID, InitiatePreviewUploadRequest{
		PromptID:    p.ID,
		FileName:    "Preview.PNG",
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://storage/upload", resp.UploadURL)
	assert.True(t, strings.HasPrefix(resp.StorageKey, "previews/"+tenantID.String()+"/"+p.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(resp.StorageKey, ".png"))
}

func TestInitiatePreviewUpload_NotAuthor(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()

	p := newTestPrompt(t, tenantID, uuid.New())
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	_, err := d.service.InitiatePreviewUpload(ctx, tenantID, uuid.New(), InitiatePreviewUploadRequest{
		PromptID:    p.ID,
		FileName:    "preview.png",
		ContentType: "image/png",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "author")
	d.storage.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiatePreviewUpload_DisallowedContentType(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	p := newTestPrompt(t, tenantID, authorID)
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	_, err := d.service.InitiatePreviewUpload(ctx, tenantID, authorID, InitiatePreviewUploadRequest{
		PromptID:    p.ID,
		FileName:    "preview.svg",
		ContentType: "image/svg+xml",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DISALLOWED_CONTENT_TYPE", domainErr.Code)
}

func TestConfirmPreviewUpload(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	p := newTestPrompt(t, tenantID, authorID)
	p.SetPreviewImage("previews/" + tenantID.String() + "/" + p.ID.String() + "/old.png")
	oldKey := p.PreviewImageKey

	newKey := "previews/" + tenantID.String() + "/" + p.ID.String() + "/new.png"
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	d.storage.On("ObjectExists", ctx, newKey).Return(true, nil)
	d.promptRepo.On("Save", ctx, p).Return(nil)
	d.storage.On("DeleteObject", ctx, oldKey).Return(nil)

	err := d.service.ConfirmPreviewUpload(ctx, tenantID, authorID, p.ID, newKey)

	require.NoError(t, err)
	assert.Equal(t, newKey, p.PreviewImageKey)
	d.storage.AssertCalled(t, "DeleteObject", ctx, oldKey)
}

func TestConfirmPreviewUpload_ForeignStorageKey(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	p := newTestPrompt(t, tenantID, authorID)
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	err := d.service.ConfirmPreviewUpload(ctx, tenantID, authorID, p.ID, "previews/other-tenant/other-prompt/x.png")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STORAGE_KEY", domainErr.Code)
}

func TestConfirmPreviewUpload_ObjectMissing(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	p := newTestPrompt(t, tenantID, authorID)
	key := "previews/" + tenantID.String() + "/" + p.ID.String() + "/missing.png"
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	d.storage.On("ObjectExists", ctx, key).Return(false, nil)

	err := d.service.ConfirmPreviewUpload(ctx, tenantID, authorID, p.ID, key)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UPLOAD_NOT_FOUND", domainErr.Code)
	d.promptRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDeletePreview(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	p := newTestPrompt(t, tenantID, authorID)
	p.SetPreviewImage("previews/x/y/z.png")

	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	d.promptRepo.On("Save", ctx, p).Return(nil)
	d.storage.On("DeleteObject", ctx, "previews/x/y/z.png").Return(nil)

	require.NoError(t, d.service.DeletePreview(ctx, tenantID, authorID, p.ID))
	assert.Empty(t, p.PreviewImageKey)
}

func TestDeletePreview_NoImageIsNoop(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	p := newTestPrompt(t, tenantID, authorID)
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	require.NoError(t, d.service.DeletePreview(ctx, tenantID, authorID, p.ID))
	d.promptRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPreviewDownloadURL(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()

	p := newTestPrompt(t, tenantID, uuid.New())
	p.SetPreviewImage("previews/a/b/c.png")

	expires := time.Now().Add(1 * time.Hour)
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	d.storage.On("GenerateDownloadURL", ctx, "previews/a/b/c.png", 1*time.Hour).
		Return("https://storage/download", expires, nil)

	resp, err := d.service.PreviewDownloadURL(ctx, tenantID, p.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://storage/download", resp.URL)
	assert.Equal(t, expires, resp.ExpiresAt)
}

func TestPreviewDownloadURL_NoImage(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()

	p := newTestPrompt(t, tenantID, uuid.New())
	d.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	_, err := d.service.PreviewDownloadURL(ctx, tenantID, p.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_PREVIEW_IMAGE", domainErr.Code)
}

func TestInitiateIconUpload_OwnerAllowed(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	ownerID := uuid.New()

	c, err := community.NewCommunity(tenantID, ownerID, "Dreamscapes")
	require.NoError(t, err)

	d.communityRepo.On("FindByIDForTenant", ctx, tenantID, c.ID).Return(c, nil)
	d.storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "image/webp", 15*time.Minute).
		Return("https://storage/upload", time.Now().Add(15*time.Minute), nil)

	resp, err := d.service.InitiateIconUpload(ctx, tenantID, ownerID, InitiateIconUploadRequest{
		CommunityID: c.ID,
		FileName:    "icon.webp",
		ContentType: "image/webp",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.StorageKey, "icons/"+tenantID.String()+"/"+c.ID.String()+"/"))
}

func TestInitiateIconUpload_ModeratorAllowed(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	moderatorID := uuid.New()

	c, err := community.NewCommunity(tenantID, uuid.New(), "Dreamscapes")
	require.NoError(t, err)

	membership, err := community.NewMembership(tenantID, c.ID, moderatorID, community.RoleModerator)
	require.NoError(t, err)

	d.communityRepo.On("FindByIDForTenant", ctx, tenantID, c.ID).Return(c, nil)
	d.membershipRepo.On("FindByCommunityAndUser", ctx, tenantID, c.ID, moderatorID).Return(membership, nil)
	d.storage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "image/png", 15*time.Minute).
		Return("https://storage/upload", time.Now().Add(15*time.Minute), nil)

	_, err = d.service.InitiateIconUpload(ctx, tenantID, moderatorID, InitiateIconUploadRequest{
		CommunityID: c.ID,
		FileName:    "icon.png",
		ContentType: "image/png",
	})

	require.NoError(t, err)
}

func TestInitiateIconUpload_PlainMemberDenied(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	memberID := uuid.New()

	c, err := community.NewCommunity(tenantID, uuid.New(), "Dreamscapes")
	require.NoError(t, err)

	membership, err := community.NewMembership(tenantID, c.ID, memberID, community.RoleMember)
	require.NoError(t, err)

	d.communityRepo.On("FindByIDForTenant", ctx, tenantID, c.ID).Return(c, nil)
	d.membershipRepo.On("FindByCommunityAndUser", ctx, tenantID, c.ID, memberID).Return(membership, nil)

	_, err = d.service.InitiateIconUpload(ctx, tenantID, memberID, InitiateIconUploadRequest{
		CommunityID: c.ID,
		FileName:    "icon.png",
		ContentType: "image/png",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_COMMUNITY_MODERATOR", domainErr.Code)
}

func TestConfirmIconUpload(t *testing.T) {
	d := newMediaTestDeps()
	ctx := context.Background()
	tenantID := uuid.New()
	ownerID := uuid.New()

	c, err := community.NewCommunity(tenantID, ownerID, "Dreamscapes")
	require.NoError(t, err)

	key := "icons/" + tenantID.String() + "/" + c.ID.String() + "/icon.png"
	d.communityRepo.On("FindByIDForTenant", ctx, tenantID, c.ID).Return(c, nil)
	d.storage.On("ObjectExists", ctx, key).Return(true, nil)
	d.communityRepo.On("Save", ctx, c).Return(nil)

	require.NoError(t, d.service.ConfirmIconUpload(ctx, tenantID, ownerID, c.ID, key))
	assert.Equal(t, key, c.IconKey)
}
