package prompt

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/infrastructure/llm"
)

const maxEnhanceTextLength = 20000

// EnhanceService rewrites raw prompt text through the provider chain
type EnhanceService struct {
	chain  *llm.Chain
	logger *zap.Logger
}

// NewEnhanceService creates a new enhancement service
func NewEnhanceService(chain *llm.Chain, logger *zap.Logger) *EnhanceService {
	return &EnhanceService{chain: chain, logger: logger}
}

// Enhance runs the text through the provider chain. It degrades to the
// original text when every provider fails, so callers always get a usable
// result back.
func (s *EnhanceService) Enhance(ctx context.Context, input EnhanceInput) (*EnhanceResult, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, shared.NewDomainError("EMPTY_TEXT", "Text to enhance is required")
	}
	if len(text) > maxEnhanceTextLength {
		return nil, shared.NewDomainError("TEXT_TOO_LONG", "Text to enhance is too long")
	}

	result := s.chain.Enhance(ctx, llm.Request{
		Text:        text,
		TargetModel: strings.TrimSpace(input.TargetModel),
	})

	if result.Provider == llm.FallbackProviderName {
		s.logger.Warn("Enhancement fell back to original text")
	}

	return &EnhanceResult{
		Text:     result.Text,
		Provider: result.Provider,
	}, nil
}
