package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptatrium/backend/internal/infrastructure/config"
)

const (
	// MistralDefaultBaseURL is the production API endpoint
	MistralDefaultBaseURL = "https://api.mistral.ai/v1"
	// MistralDefaultModel is used when no model is configured
	MistralDefaultModel = "mistral-small-latest"

	mistralDefaultTimeout = 30 * time.Second
)

// ErrMistralMissingAPIKey is returned when an enabled provider has no key
var ErrMistralMissingAPIKey = errors.New("mistral: API key is required")

// MistralProvider calls the Mistral chat completions API.
// The wire format mirrors OpenAI's but errors decode differently, so the
// provider keeps its own types.
type MistralProvider struct {
	apiKey     string
	baseURL    string
	model      string
	enabled    bool
	httpClient *http.Client
}

// NewMistralProvider creates a provider from configuration
func NewMistralProvider(cfg config.LLMProviderConfig) (*MistralProvider, error) {
	if cfg.Enabled && cfg.APIKey == "" {
		return nil, ErrMistralMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = MistralDefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = MistralDefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = mistralDefaultTimeout
	}
	return &MistralProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider
func (p *MistralProvider) Name() string { return "mistral" }

// Enabled reports whether the provider is configured for use
func (p *MistralProvider) Enabled() bool { return p.enabled }

type mistralChatRequest struct {
	Model    string           `json:"model"`
	Messages []mistralMessage `json:"messages"`
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralChatResponse struct {
	Choices []struct {
		Message mistralMessage `json:"message"`
	} `json:"choices"`
	// Mistral error payloads carry message/type at the top level
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Enhance rewrites the prompt through one chat completion call
func (p *MistralProvider) Enhance(ctx context.Context, req Request) (string, error) {
	if !p.enabled {
		return "", ErrProviderDisabled
	}

	body := mistralChatRequest{
		Model: p.model,
		Messages: []mistralMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: buildUserMessage(req)},
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("mistral: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("mistral: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mistral: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("mistral: read response: %w", err)
	}

	var chat mistralChatResponse
	if resp.StatusCode >= 400 {
		reqErr := &RequestError{Provider: p.Name(), StatusCode: resp.StatusCode}
		if json.Unmarshal(respBytes, &chat) == nil {
			reqErr.Message = chat.Message
		}
		return "", reqErr
	}
	if err := json.Unmarshal(respBytes, &chat); err != nil {
		return "", fmt.Errorf("mistral: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(chat.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

var _ Provider = (*MistralProvider)(nil)
