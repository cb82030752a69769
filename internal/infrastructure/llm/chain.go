package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/infrastructure/config"
)

// FallbackProviderName marks a result that passed through unchanged
const FallbackProviderName = "none"

// Result is the outcome of running the chain
type Result struct {
	// Text is the enhanced prompt, or the original when no provider succeeded
	Text string
	// Provider is the name of the provider that produced the text,
	// or "none" for the passthrough fallback
	Provider string
}

// Chain tries providers in order and returns the first success.
// Each provider gets exactly one attempt; disabled providers are skipped.
// When every provider fails the original text comes back unchanged with
// provider "none", so enhancement never blocks prompt workflows.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain creates a chain over the given providers, tried in order
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// NewChainFromConfig builds the standard OpenAI, Gemini, Mistral chain
func NewChainFromConfig(cfg config.LLMConfig, logger *zap.Logger) (*Chain, error) {
	openai, err := NewOpenAIProvider(cfg.OpenAI)
	if err != nil {
		return nil, err
	}
	gemini, err := NewGeminiProvider(cfg.Gemini)
	if err != nil {
		return nil, err
	}
	mistral, err := NewMistralProvider(cfg.Mistral)
	if err != nil {
		return nil, err
	}
	return NewChain(logger, openai, gemini, mistral), nil
}

// Enhance runs the chain. It never returns an error; total failure
// degrades to the passthrough result.
func (c *Chain) Enhance(ctx context.Context, req Request) Result {
	original := strings.TrimSpace(req.Text)

	for _, provider := range c.providers {
		if !provider.Enabled() {
			continue
		}
		text, err := provider.Enhance(ctx, req)
		if err != nil {
			c.logger.Warn("enhancement provider failed",
				zap.String("provider", provider.Name()),
				zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return Result{Text: text, Provider: provider.Name()}
	}

	return Result{Text: original, Provider: FallbackProviderName}
}
