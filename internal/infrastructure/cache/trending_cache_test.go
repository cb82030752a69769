package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisTrendingCache(t *testing.T, opts ...RedisTrendingCacheOption) (*RedisTrendingCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisTrendingCacheWithClient(client, opts...), mr
}

func TestRedisTrendingCache_RecordAndRank(t *testing.T) {
	cache, _ := newTestRedisTrendingCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	hot := uuid.New()
	warm := uuid.New()
	cold := uuid.New()

	require.NoError(t, cache.RecordActivity(ctx, tenantID, cold, WeightView))
	require.NoError(t, cache.RecordActivity(ctx, tenantID, warm, WeightLike))
	require.NoError(t, cache.RecordActivity(ctx, tenantID, hot, WeightUse))
	require.NoError(t, cache.RecordActivity(ctx, tenantID, hot, WeightSave))

	top, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)

	require.Len(t, top, 3)
	assert.Equal(t, hot, top[0])
	assert.Equal(t, warm, top[1])
	assert.Equal(t, cold, top[2])
}

func TestRedisTrendingCache_LimitAppliesToRanking(t *testing.T) {
	cache, _ := newTestRedisTrendingCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, cache.RecordActivity(ctx, tenantID, uuid.New(), float64(i+1)))
	}

	top, err := cache.TopPrompts(ctx, tenantID, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestRedisTrendingCache_TenantsDoNotMix(t *testing.T) {
	cache, _ := newTestRedisTrendingCache(t)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()
	promptA := uuid.New()

	require.NoError(t, cache.RecordActivity(ctx, tenantA, promptA, WeightUse))

	top, err := cache.TopPrompts(ctx, tenantB, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestRedisTrendingCache_WindowMergesDailyBuckets(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := base

	cache, _ := newTestRedisTrendingCache(t, withTrendingClock(func() time.Time { return current }))
	ctx := context.Background()
	tenantID := uuid.New()

	oldPrompt := uuid.New()
	newPrompt := uuid.New()

	// Activity two days ago
	require.NoError(t, cache.RecordActivity(ctx, tenantID, oldPrompt, WeightUse))

	// Activity today
	current = base.AddDate(0, 0, 2)
	require.NoError(t, cache.RecordActivity(ctx, tenantID, newPrompt, WeightView))

	top, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)

	// Both days fall inside the 7-day window; the heavier old activity still ranks first
	require.Len(t, top, 2)
	assert.Equal(t, oldPrompt, top[0])
	assert.Equal(t, newPrompt, top[1])
}

func TestRedisTrendingCache_ActivityOutsideWindowIgnored(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := base

	cache, _ := newTestRedisTrendingCache(t, withTrendingClock(func() time.Time { return current }))
	ctx := context.Background()
	tenantID := uuid.New()

	stale := uuid.New()
	require.NoError(t, cache.RecordActivity(ctx, tenantID, stale, WeightUse))

	// Jump past the window so the old bucket no longer contributes
	current = base.AddDate(0, 0, 10)

	top, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestRedisTrendingCache_Remove(t *testing.T) {
	cache, _ := newTestRedisTrendingCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	kept := uuid.New()
	removed := uuid.New()

	require.NoError(t, cache.RecordActivity(ctx, tenantID, kept, WeightLike))
	require.NoError(t, cache.RecordActivity(ctx, tenantID, removed, WeightUse))

	// Materialize the aggregate, then remove
	_, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)

	require.NoError(t, cache.Remove(ctx, tenantID, removed))

	top, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{kept}, top)
}

func TestRedisTrendingCache_ZeroLimit(t *testing.T) {
	cache, _ := newTestRedisTrendingCache(t)
	ctx := context.Background()

	top, err := cache.TopPrompts(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestInMemoryTrendingCache_RecordAndRank(t *testing.T) {
	cache := NewInMemoryTrendingCache()
	ctx := context.Background()
	tenantID := uuid.New()

	hot := uuid.New()
	cold := uuid.New()

	require.NoError(t, cache.RecordActivity(ctx, tenantID, cold, WeightView))
	require.NoError(t, cache.RecordActivity(ctx, tenantID, hot, WeightUse))

	top, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, hot, top[0])
	assert.Equal(t, cold, top[1])
}

func TestInMemoryTrendingCache_AccumulatesWeight(t *testing.T) {
	cache := NewInMemoryTrendingCache()
	ctx := context.Background()
	tenantID := uuid.New()

	steady := uuid.New()
	spiky := uuid.New()

	// Many views beat a single like
	for i := 0; i < 5; i++ {
		require.NoError(t, cache.RecordActivity(ctx, tenantID, steady, WeightView))
	}
	require.NoError(t, cache.RecordActivity(ctx, tenantID, spiky, WeightLike))

	top, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)
	assert.Equal(t, steady, top[0])
}

func TestInMemoryTrendingCache_Remove(t *testing.T) {
	cache := NewInMemoryTrendingCache()
	ctx := context.Background()
	tenantID := uuid.New()

	promptID := uuid.New()
	require.NoError(t, cache.RecordActivity(ctx, tenantID, promptID, WeightUse))
	require.NoError(t, cache.Remove(ctx, tenantID, promptID))

	top, err := cache.TopPrompts(ctx, tenantID, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestInMemoryTrendingCache_UnknownTenant(t *testing.T) {
	cache := NewInMemoryTrendingCache()

	top, err := cache.TopPrompts(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
