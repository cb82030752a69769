package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryTrendingCache implements TrendingCache with an in-process map.
// It keeps a single cumulative score per prompt instead of daily buckets,
// which is fine for single-instance deployments and tests.
type InMemoryTrendingCache struct {
	mu     sync.RWMutex
	scores map[uuid.UUID]map[uuid.UUID]float64 // tenantID -> promptID -> score
}

// NewInMemoryTrendingCache creates a new in-memory trending cache
func NewInMemoryTrendingCache() *InMemoryTrendingCache {
	return &InMemoryTrendingCache{
		scores: make(map[uuid.UUID]map[uuid.UUID]float64),
	}
}

// RecordActivity adds weight to a prompt's score
func (c *InMemoryTrendingCache) RecordActivity(_ context.Context, tenantID, promptID uuid.UUID, weight float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tenantScores, exists := c.scores[tenantID]
	if !exists {
		tenantScores = make(map[uuid.UUID]float64)
		c.scores[tenantID] = tenantScores
	}
	tenantScores[promptID] += weight

	return nil
}

// TopPrompts returns the highest scoring prompt IDs, highest first
func (c *InMemoryTrendingCache) TopPrompts(_ context.Context, tenantID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	tenantScores, exists := c.scores[tenantID]
	if !exists {
		return nil, nil
	}

	type ranked struct {
		id    uuid.UUID
		score float64
	}
	entries := make([]ranked, 0, len(tenantScores))
	for id, score := range tenantScores {
		entries = append(entries, ranked{id: id, score: score})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		// Stable order for equal scores
		return entries[i].id.String() < entries[j].id.String()
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}

	return ids, nil
}

// Remove drops a prompt from the ranking
func (c *InMemoryTrendingCache) Remove(_ context.Context, tenantID, promptID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tenantScores, exists := c.scores[tenantID]; exists {
		delete(tenantScores, promptID)
	}

	return nil
}

// Close releases resources (no-op for the in-memory cache)
func (c *InMemoryTrendingCache) Close() error {
	return nil
}

// Ensure InMemoryTrendingCache implements TrendingCache
var _ TrendingCache = (*InMemoryTrendingCache)(nil)
