package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Activity weights used when scoring prompts for the trending feed.
// A use counts more than a save, a save more than a like, a like more
// than a bare view.
const (
	WeightView = 1.0
	WeightLike = 3.0
	WeightSave = 5.0
	WeightUse  = 8.0
)

// TrendingCache maintains a rolling activity ranking of prompts so the
// trending feed can be served without scanning the prompts table.
type TrendingCache interface {
	// RecordActivity adds weight to a prompt's score for the current day
	RecordActivity(ctx context.Context, tenantID, promptID uuid.UUID, weight float64) error

	// TopPrompts returns prompt IDs ordered by aggregate score over the
	// trailing window, highest first
	TopPrompts(ctx context.Context, tenantID uuid.UUID, limit int) ([]uuid.UUID, error)

	// Remove drops a prompt from the ranking (unpublished or removed prompts)
	Remove(ctx context.Context, tenantID, promptID uuid.UUID) error

	Close() error
}

// TrendingConfig controls the trending window and key retention
type TrendingConfig struct {
	// WindowDays is how many daily buckets contribute to the ranking
	WindowDays int
	// BucketTTL is how long a daily bucket lives in Redis; it must cover
	// the window plus slack for clock skew
	BucketTTL time.Duration
	// AggregateTTL is how long the merged ranking is reused before being
	// recomputed from the daily buckets
	AggregateTTL time.Duration
}

// DefaultTrendingConfig returns a 7-day window with a short-lived aggregate
func DefaultTrendingConfig() TrendingConfig {
	return TrendingConfig{
		WindowDays:   7,
		BucketTTL:    8 * 24 * time.Hour,
		AggregateTTL: 5 * time.Minute,
	}
}

// RedisTrendingCache implements TrendingCache on Redis sorted sets.
// Each tenant gets one sorted set per day; TopPrompts merges the daily
// buckets with ZUNIONSTORE into a cached aggregate set.
type RedisTrendingCache struct {
	client     *redis.Client
	ownsClient bool
	config     TrendingConfig
	logger     *zap.Logger
	now        func() time.Time
}

// RedisTrendingCacheOption is a functional option for configuring the cache
type RedisTrendingCacheOption func(*RedisTrendingCache)

// WithTrendingConfig sets the trending window configuration
func WithTrendingConfig(config TrendingConfig) RedisTrendingCacheOption {
	return func(c *RedisTrendingCache) {
		c.config = config
	}
}

// WithTrendingLogger sets the logger for the cache
func WithTrendingLogger(logger *zap.Logger) RedisTrendingCacheOption {
	return func(c *RedisTrendingCache) {
		c.logger = logger
	}
}

// withTrendingClock overrides the clock, used by tests to pin the day bucket
func withTrendingClock(now func() time.Time) RedisTrendingCacheOption {
	return func(c *RedisTrendingCache) {
		c.now = now
	}
}

// NewRedisTrendingCache creates a new Redis-backed trending cache
func NewRedisTrendingCache(cfg RedisConfig, opts ...RedisTrendingCacheOption) (*RedisTrendingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisTrendingCache{
		client:     client,
		ownsClient: true,
		config:     DefaultTrendingConfig(),
		logger:     zap.NewNop(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisTrendingCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisTrendingCacheWithClient(client *redis.Client, opts ...RedisTrendingCacheOption) *RedisTrendingCache {
	cache := &RedisTrendingCache{
		client:     client,
		ownsClient: false,
		config:     DefaultTrendingConfig(),
		logger:     zap.NewNop(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// bucketKey is the daily sorted set for a tenant
func (c *RedisTrendingCache) bucketKey(tenantID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("trending:%s:%s", tenantID, day.UTC().Format("20060102"))
}

// aggregateKey is the merged ranking for a tenant
func (c *RedisTrendingCache) aggregateKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("trending:%s:agg", tenantID)
}

// RecordActivity adds weight to a prompt's score in today's bucket
func (c *RedisTrendingCache) RecordActivity(ctx context.Context, tenantID, promptID uuid.UUID, weight float64) error {
	key := c.bucketKey(tenantID, c.now())

	pipe := c.client.TxPipeline()
	pipe.ZIncrBy(ctx, key, weight, promptID.String())
	pipe.Expire(ctx, key, c.config.BucketTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error("Failed to record prompt activity",
			zap.String("tenant_id", tenantID.String()),
			zap.String("prompt_id", promptID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to record prompt activity: %w", err)
	}

	return nil
}

// TopPrompts returns the highest scoring prompt IDs over the trailing window
func (c *RedisTrendingCache) TopPrompts(ctx context.Context, tenantID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		return nil, nil
	}

	aggKey := c.aggregateKey(tenantID)

	exists, err := c.client.Exists(ctx, aggKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check trending aggregate: %w", err)
	}

	if exists == 0 {
		if err := c.rebuildAggregate(ctx, tenantID, aggKey); err != nil {
			return nil, err
		}
	}

	members, err := c.client.ZRevRange(ctx, aggKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trending ranking: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			// Skip corrupt members rather than failing the feed
			c.logger.Warn("Skipping malformed trending member", zap.String("member", m))
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// rebuildAggregate merges the window's daily buckets into the aggregate set
func (c *RedisTrendingCache) rebuildAggregate(ctx context.Context, tenantID uuid.UUID, aggKey string) error {
	today := c.now()
	keys := make([]string, 0, c.config.WindowDays)
	for i := 0; i < c.config.WindowDays; i++ {
		keys = append(keys, c.bucketKey(tenantID, today.AddDate(0, 0, -i)))
	}

	pipe := c.client.TxPipeline()
	pipe.ZUnionStore(ctx, aggKey, &redis.ZStore{Keys: keys})
	pipe.Expire(ctx, aggKey, c.config.AggregateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild trending aggregate: %w", err)
	}

	return nil
}

// Remove drops a prompt from all window buckets and the aggregate
func (c *RedisTrendingCache) Remove(ctx context.Context, tenantID, promptID uuid.UUID) error {
	today := c.now()
	member := promptID.String()

	pipe := c.client.TxPipeline()
	for i := 0; i < c.config.WindowDays; i++ {
		pipe.ZRem(ctx, c.bucketKey(tenantID, today.AddDate(0, 0, -i)), member)
	}
	pipe.ZRem(ctx, c.aggregateKey(tenantID), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove prompt from trending: %w", err)
	}

	return nil
}

// Close closes the Redis client if this cache owns it
func (c *RedisTrendingCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisTrendingCache implements TrendingCache
var _ TrendingCache = (*RedisTrendingCache)(nil)
