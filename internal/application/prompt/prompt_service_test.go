package prompt

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/community"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/cache"
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

type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) FindByPromptAndUser(ctx context.Context, tenantID, promptID, userID uuid.UUID) (*prompt.Rating, error) {
	args := m.Called(ctx, tenantID, promptID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prompt.Rating), args.Error(1)
}

func (m *MockRatingRepository) FindByPrompt(ctx context.Context, tenantID, promptID uuid.UUID, filter shared.Filter) ([]prompt.Rating, error) {
	args := m.Called(ctx, tenantID, promptID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]prompt.Rating), args.Error(1)
}

func (m *MockRatingRepository) CountByPrompt(ctx context.Context, tenantID, promptID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, promptID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingRepository) Save(ctx context.Context, rating *prompt.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Exists(ctx context.Context, tenantID, promptID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, promptID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) Save(ctx context.Context, like prompt.PromptLike) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockLikeRepository) Delete(ctx context.Context, tenantID, promptID, userID uuid.UUID) error {
	args := m.Called(ctx, tenantID, promptID, userID)
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

// fakeTrendingCache records activity in memory
type fakeTrendingCache struct {
	activity map[uuid.UUID]float64
	removed  []uuid.UUID
	top      []uuid.UUID
	topErr   error
}

func newFakeTrendingCache() *fakeTrendingCache {
	return &fakeTrendingCache{activity: make(map[uuid.UUID]float64)}
}

func (c *fakeTrendingCache) RecordActivity(_ context.Context, _, promptID uuid.UUID, weight float64) error {
	c.activity[promptID] += weight
	return nil
}

func (c *fakeTrendingCache) TopPrompts(_ context.Context, _ uuid.UUID, _ int) ([]uuid.UUID, error) {
	return c.top, c.topErr
}

func (c *fakeTrendingCache) Remove(_ context.Context, _, promptID uuid.UUID) error {
	c.removed = append(c.removed, promptID)
	return nil
}

func (c *fakeTrendingCache) Close() error { return nil }

type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

// ============================================================================
// Fixtures
// ============================================================================

type promptFixture struct {
	promptRepo     *MockPromptRepository
	ratingRepo     *MockRatingRepository
	likeRepo       *MockLikeRepository
	membershipRepo *MockMembershipRepository
	trending       *fakeTrendingCache
	publisher      *capturingPublisher
	service        *PromptService
}

func newPromptFixture() *promptFixture {
	f := &promptFixture{
		promptRepo:     new(MockPromptRepository),
		ratingRepo:     new(MockRatingRepository),
		likeRepo:       new(MockLikeRepository),
		membershipRepo: new(MockMembershipRepository),
		trending:       newFakeTrendingCache(),
		publisher:      &capturingPublisher{},
	}
	f.service = NewPromptService(
		f.promptRepo,
		f.ratingRepo,
		f.likeRepo,
		f.membershipRepo,
		f.trending,
		f.publisher,
		zap.NewNop(),
	)
	return f
}

func newPublicPrompt(t *testing.T, tenantID, authorID uuid.UUID) *prompt.Prompt {
	t.Helper()
	p, err := prompt.NewPrompt(tenantID, authorID, "Neon city at dusk", "neon-lit cyberpunk street, rain", "sdxl")
	require.NoError(t, err)
	require.NoError(t, p.Publish(prompt.VisibilityPublic, nil))
	require.NoError(t, p.Approve())
	return p
}

// ============================================================================
// Tests
// ============================================================================

func TestPromptService_CreatePrompt(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	f := newPromptFixture()
	f.promptRepo.On("Save", ctx, mock.AnythingOfType("*prompt.Prompt")).Return(nil)

	p, err := f.service.CreatePrompt(ctx, CreatePromptInput{
		TenantID:        tenantID,
		AuthorID:        authorID,
		Title:           "Neon city at dusk",
		Content:         "neon-lit cyberpunk street, rain",
		NegativeContent: "blurry, low quality",
		TargetModel:     "sdxl",
		Category:        "scenes",
		Tags:            []string{"Cyberpunk", "Night"},
	})
	require.NoError(t, err)
	assert.Equal(t, prompt.VisibilityPrivate, p.Visibility)
	assert.Equal(t, prompt.ModerationPending, p.ModerationStatus)
	assert.Equal(t, "blurry, low quality", p.NegativeContent)
	assert.Equal(t, []string{"cyberpunk", "night"}, p.Tags)
	assert.Equal(t, "neon-city-at-dusk", p.Slug)
}

func TestPromptService_GetPrompt(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()
	viewerID := uuid.New()

	t.Run("counts views from non-authors", func(t *testing.T) {
		f := newPromptFixture()
		p := newPublicPrompt(t, tenantID, authorID)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.promptRepo.On("Save", ctx, p).Return(nil)

		got, err := f.service.GetPrompt(ctx, tenantID, p.ID, viewerID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ViewCount)
		assert.Equal(t, cache.WeightView, f.trending.activity[p.ID])
	})

	t.Run("author views do not count", func(t *testing.T) {
		f := newPromptFixture()
		p := newPublicPrompt(t, tenantID, authorID)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

		got, err := f.service.GetPrompt(ctx, tenantID, p.ID, authorID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.ViewCount)
		f.promptRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("private prompts are invisible to others", func(t *testing.T) {
		f := newPromptFixture()
		p, err := prompt.NewPrompt(tenantID, authorID, "Secret draft", "work in progress", "sdxl")
		require.NoError(t, err)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

		_, err = f.service.GetPrompt(ctx, tenantID, p.ID, viewerID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("community prompts require active membership", func(t *testing.T) {
		f := newPromptFixture()
		communityID := uuid.New()
		p, err := prompt.NewPrompt(tenantID, authorID, "Guild exclusive", "members only prompt", "sdxl")
		require.NoError(t, err)
		require.NoError(t, p.Publish(prompt.VisibilityCommunity, &communityID))

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.membershipRepo.On("FindByCommunityAndUser", ctx, tenantID, communityID, viewerID).
			Return(nil, shared.ErrNotFound)

		_, err = f.service.GetPrompt(ctx, tenantID, p.ID, viewerID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestPromptService_PublishPrompt(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	t.Run("publishes publicly and emits an event", func(t *testing.T) {
		f := newPromptFixture()
		p, err := prompt.NewPrompt(tenantID, authorID, "Neon city", "neon streets", "sdxl")
		require.NoError(t, err)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.promptRepo.On("SaveWithLock", ctx, p).Return(nil)

		got, err := f.service.PublishPrompt(ctx, PublishPromptInput{
			TenantID:   tenantID,
			PromptID:   p.ID,
			UserID:     authorID,
			Visibility: prompt.VisibilityPublic,
		})
		require.NoError(t, err)
		assert.Equal(t, prompt.VisibilityPublic, got.Visibility)
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, prompt.EventPromptPublished, f.publisher.events[0].EventType())
	})

	t.Run("community publish requires membership", func(t *testing.T) {
		f := newPromptFixture()
		communityID := uuid.New()
		p, err := prompt.NewPrompt(tenantID, authorID, "Guild piece", "members only", "sdxl")
		require.NoError(t, err)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.membershipRepo.On("FindByCommunityAndUser", ctx, tenantID, communityID, authorID).
			Return(nil, shared.ErrNotFound)

		_, err = f.service.PublishPrompt(ctx, PublishPromptInput{
			TenantID:    tenantID,
			PromptID:    p.ID,
			UserID:      authorID,
			Visibility:  prompt.VisibilityCommunity,
			CommunityID: &communityID,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("only the author may publish", func(t *testing.T) {
		f := newPromptFixture()
		p, err := prompt.NewPrompt(tenantID, authorID, "Neon city", "neon streets", "sdxl")
		require.NoError(t, err)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

		_, err = f.service.PublishPrompt(ctx, PublishPromptInput{
			TenantID:   tenantID,
			PromptID:   p.ID,
			UserID:     uuid.New(),
			Visibility: prompt.VisibilityPublic,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestPromptService_UnpublishPrompt(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	f := newPromptFixture()
	p := newPublicPrompt(t, tenantID, authorID)

	f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	f.promptRepo.On("SaveWithLock", ctx, p).Return(nil)

	got, err := f.service.UnpublishPrompt(ctx, tenantID, p.ID, authorID)
	require.NoError(t, err)
	assert.Equal(t, prompt.VisibilityPrivate, got.Visibility)
	require.Len(t, f.publisher.events, 1)
	removed, ok := f.publisher.events[0].(*prompt.PromptRemovedEvent)
	require.True(t, ok)
	assert.Equal(t, prompt.RemovalReasonUnpublished, removed.Reason)
}

func TestPromptService_LikePrompt(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()
	userID := uuid.New()

	t.Run("records a like once", func(t *testing.T) {
		f := newPromptFixture()
		p := newPublicPrompt(t, tenantID, authorID)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.likeRepo.On("Exists", ctx, tenantID, p.ID, userID).Return(false, nil)
		f.likeRepo.On("Save", ctx, mock.AnythingOfType("prompt.PromptLike")).Return(nil)
		f.promptRepo.On("SaveWithLock", ctx, p).Return(nil)

		require.NoError(t, f.service.LikePrompt(ctx, tenantID, p.ID, userID))
		assert.Equal(t, int64(1), p.LikeCount)
		assert.Equal(t, cache.WeightLike, f.trending.activity[p.ID])
	})

	t.Run("second like is a no-op", func(t *testing.T) {
		f := newPromptFixture()
		p := newPublicPrompt(t, tenantID, authorID)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.likeRepo.On("Exists", ctx, tenantID, p.ID, userID).Return(true, nil)

		require.NoError(t, f.service.LikePrompt(ctx, tenantID, p.ID, userID))
		assert.Equal(t, int64(0), p.LikeCount)
		f.likeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPromptService_RatePrompt(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()
	userID := uuid.New()

	t.Run("first rating sets the average", func(t *testing.T) {
		f := newPromptFixture()
		p := newPublicPrompt(t, tenantID, authorID)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.ratingRepo.On("FindByPromptAndUser", ctx, tenantID, p.ID, userID).Return(nil, shared.ErrNotFound)
		f.ratingRepo.On("Save", ctx, mock.AnythingOfType("*prompt.Rating")).Return(nil)
		f.promptRepo.On("SaveWithLock", ctx, p).Return(nil)

		rating, err := f.service.RatePrompt(ctx, RatePromptInput{
			TenantID: tenantID,
			PromptID: p.ID,
			UserID:   userID,
			Stars:    4,
			Comment:  "solid base prompt",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, rating.Stars)
		assert.Equal(t, float64(4), p.RatingAverage)
		assert.Equal(t, int64(1), p.RatingCount)
	})

	t.Run("re-rating replaces the previous stars", func(t *testing.T) {
		f := newPromptFixture()
		p := newPublicPrompt(t, tenantID, authorID)
		require.NoError(t, p.ApplyRating(4))

		existing, err := prompt.NewRating(tenantID, p.ID, userID, 4, "")
		require.NoError(t, err)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		f.ratingRepo.On("FindByPromptAndUser", ctx, tenantID, p.ID, userID).Return(existing, nil)
		f.ratingRepo.On("Save", ctx, existing).Return(nil)
		f.promptRepo.On("SaveWithLock", ctx, p).Return(nil)

		rating, err := f.service.RatePrompt(ctx, RatePromptInput{
			TenantID: tenantID,
			PromptID: p.ID,
			UserID:   userID,
			Stars:    2,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, rating.Stars)
		assert.Equal(t, float64(2), p.RatingAverage)
		assert.Equal(t, int64(1), p.RatingCount)
	})

	t.Run("authors cannot rate their own prompt", func(t *testing.T) {
		f := newPromptFixture()
		p := newPublicPrompt(t, tenantID, authorID)

		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

		_, err := f.service.RatePrompt(ctx, RatePromptInput{
			TenantID: tenantID,
			PromptID: p.ID,
			UserID:   authorID,
			Stars:    5,
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SELF_RATING", domainErr.Code)
	})
}

func TestPromptService_ListPrompts(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	viewerID := uuid.New()

	t.Run("public listings are forced to approved public prompts", func(t *testing.T) {
		f := newPromptFixture()

		f.promptRepo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(filter prompt.Filter) bool {
			return filter.Visibility == prompt.VisibilityPublic &&
				filter.ModerationStatus == prompt.ModerationApproved &&
				filter.Tag == "cyberpunk"
		})).Return([]prompt.Prompt{}, nil)
		f.promptRepo.On("CountForTenant", ctx, tenantID, mock.Anything).Return(int64(0), nil)

		_, err := f.service.ListPrompts(ctx, ListPromptsInput{
			TenantID: tenantID,
			ViewerID: viewerID,
			Tag:      "cyberpunk",
		})
		require.NoError(t, err)
	})

	t.Run("own listings include private prompts", func(t *testing.T) {
		f := newPromptFixture()

		f.promptRepo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(filter prompt.Filter) bool {
			return filter.Visibility == "" && filter.ModerationStatus == "" && filter.AuthorID != nil
		})).Return([]prompt.Prompt{}, nil)
		f.promptRepo.On("CountForTenant", ctx, tenantID, mock.Anything).Return(int64(0), nil)

		_, err := f.service.ListPrompts(ctx, ListPromptsInput{
			TenantID: tenantID,
			ViewerID: viewerID,
			AuthorID: &viewerID,
		})
		require.NoError(t, err)
	})
}

func TestPromptService_TrendingPrompts(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	t.Run("serves the cached ranking", func(t *testing.T) {
		f := newPromptFixture()
		hot := newPublicPrompt(t, tenantID, authorID)
		hidden, err := prompt.NewPrompt(tenantID, authorID, "Hidden draft", "not yet public", "sdxl")
		require.NoError(t, err)

		f.trending.top = []uuid.UUID{hot.ID, hidden.ID}
		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, hot.ID).Return(hot, nil)
		f.promptRepo.On("FindByIDForTenant", ctx, tenantID, hidden.ID).Return(hidden, nil)

		prompts, err := f.service.TrendingPrompts(ctx, tenantID, 10)
		require.NoError(t, err)
		require.Len(t, prompts, 1)
		assert.Equal(t, hot.ID, prompts[0].ID)
		f.promptRepo.AssertNotCalled(t, "FindTrending", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to counters when the cache is empty", func(t *testing.T) {
		f := newPromptFixture()
		hot := newPublicPrompt(t, tenantID, authorID)

		f.promptRepo.On("FindTrending", ctx, tenantID, 10).Return([]prompt.Prompt{*hot}, nil)

		prompts, err := f.service.TrendingPrompts(ctx, tenantID, 10)
		require.NoError(t, err)
		assert.Len(t, prompts, 1)
	})
}

func TestTrendingRemovalHandler(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	authorID := uuid.New()

	trending := newFakeTrendingCache()
	handler := NewTrendingRemovalHandler(trending, zap.NewNop())

	p, err := prompt.NewPrompt(tenantID, authorID, "Neon city", "neon streets", "sdxl")
	require.NoError(t, err)

	assert.Equal(t, []string{prompt.EventPromptRemoved}, handler.EventTypes())
	require.NoError(t, handler.Handle(ctx, prompt.NewPromptRemovedEvent(p, prompt.RemovalReasonModeration)))
	assert.Equal(t, []uuid.UUID{p.ID}, trending.removed)
}
