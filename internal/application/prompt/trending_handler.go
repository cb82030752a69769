package prompt

import (
	"context"

	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/cache"
)

// TrendingRemovalHandler drops prompts from the trending ranking when they
// stop being visible.
type TrendingRemovalHandler struct {
	trending cache.TrendingCache
	logger   *zap.Logger
}

// NewTrendingRemovalHandler creates the handler
func NewTrendingRemovalHandler(trending cache.TrendingCache, logger *zap.Logger) *TrendingRemovalHandler {
	return &TrendingRemovalHandler{trending: trending, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *TrendingRemovalHandler) EventTypes() []string {
	return []string{prompt.EventPromptRemoved}
}

// Handle implements shared.EventHandler
func (h *TrendingRemovalHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	removed, ok := event.(*prompt.PromptRemovedEvent)
	if !ok {
		return nil
	}
	if err := h.trending.Remove(ctx, removed.TenantID(), removed.PromptID); err != nil {
		h.logger.Warn("Failed to drop prompt from trending",
			zap.String("prompt_id", removed.PromptID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*TrendingRemovalHandler)(nil)
