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
	// OpenAIDefaultBaseURL is the production API endpoint
	OpenAIDefaultBaseURL = "https://api.openai.com/v1"
	// OpenAIDefaultModel is used when no model is configured
	OpenAIDefaultModel = "gpt-4o-mini"

	openAIDefaultTimeout = 30 * time.Second
)

// ErrOpenAIMissingAPIKey is returned when an enabled provider has no key
var ErrOpenAIMissingAPIKey = errors.New("openai: API key is required")

// OpenAIProvider calls the OpenAI chat completions API
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	enabled    bool
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider from configuration.
// A disabled provider is valid; Enhance on it fails immediately.
func NewOpenAIProvider(cfg config.LLMProviderConfig) (*OpenAIProvider, error) {
	if cfg.Enabled && cfg.APIKey == "" {
		return nil, ErrOpenAIMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = OpenAIDefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = OpenAIDefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = openAIDefaultTimeout
	}
	return &OpenAIProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider
func (p *OpenAIProvider) Name() string { return "openai" }

// Enabled reports whether the provider is configured for use
func (p *OpenAIProvider) Enabled() bool { return p.enabled }

// openAIChatRequest is the chat completions request body
type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIChatResponse is the chat completions response body
type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Enhance rewrites the prompt through one chat completion call
func (p *OpenAIProvider) Enhance(ctx context.Context, req Request) (string, error) {
	if !p.enabled {
		return "", ErrProviderDisabled
	}

	body := openAIChatRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: buildUserMessage(req)},
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}

	var chat openAIChatResponse
	if resp.StatusCode >= 400 {
		reqErr := &RequestError{Provider: p.Name(), StatusCode: resp.StatusCode}
		if json.Unmarshal(respBytes, &chat) == nil && chat.Error != nil {
			reqErr.Message = chat.Error.Message
		}
		return "", reqErr
	}
	if err := json.Unmarshal(respBytes, &chat); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
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

var _ Provider = (*OpenAIProvider)(nil)
