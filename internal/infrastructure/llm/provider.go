package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// maxResponseSize limits provider response bodies to prevent memory exhaustion
const maxResponseSize = 2 * 1024 * 1024 // 2MB max response

// Errors shared by all providers
var (
	ErrProviderDisabled = errors.New("llm: provider is disabled")
	ErrEmptyCompletion  = errors.New("llm: provider returned an empty completion")
)

// RequestError is a failed provider call, carrying the vendor's own
// error details when they could be decoded.
type RequestError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("llm: %s request failed with HTTP %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("llm: %s request failed with HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Request is a single enhancement request
type Request struct {
	// Text is the prompt to enhance
	Text string
	// TargetModel is the image model the prompt is written for,
	// e.g. "sdxl" or "midjourney". Optional.
	TargetModel string
}

// Provider is a single LLM backend capable of rewriting a prompt
type Provider interface {
	// Name identifies the provider in results and logs, e.g. "openai"
	Name() string
	// Enabled reports whether the provider is configured for use
	Enabled() bool
	// Enhance rewrites the prompt in a single attempt
	Enhance(ctx context.Context, req Request) (string, error)
}

// systemInstruction is the rewrite instruction sent to every provider
const systemInstruction = "You are an expert prompt engineer for AI image generation. " +
	"Rewrite the user's prompt to be more vivid and detailed: add composition, " +
	"lighting, style and quality descriptors while preserving the original subject " +
	"and intent. Reply with the rewritten prompt only, no explanations."

// buildUserMessage renders the request into the user-role message
func buildUserMessage(req Request) string {
	text := strings.TrimSpace(req.Text)
	if req.TargetModel == "" {
		return text
	}
	return fmt.Sprintf("Target image model: %s\n\n%s", req.TargetModel, text)
}
