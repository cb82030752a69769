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
	// GeminiDefaultBaseURL is the production API endpoint
	GeminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// GeminiDefaultModel is used when no model is configured
	GeminiDefaultModel = "gemini-1.5-flash"

	geminiDefaultTimeout = 30 * time.Second
)

// ErrGeminiMissingAPIKey is returned when an enabled provider has no key
var ErrGeminiMissingAPIKey = errors.New("gemini: API key is required")

// GeminiProvider calls the Gemini generateContent API
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	enabled    bool
	httpClient *http.Client
}

// NewGeminiProvider creates a provider from configuration
func NewGeminiProvider(cfg config.LLMProviderConfig) (*GeminiProvider, error) {
	if cfg.Enabled && cfg.APIKey == "" {
		return nil, ErrGeminiMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = GeminiDefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = GeminiDefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = geminiDefaultTimeout
	}
	return &GeminiProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider
func (p *GeminiProvider) Name() string { return "gemini" }

// Enabled reports whether the provider is configured for use
func (p *GeminiProvider) Enabled() bool { return p.enabled }

// geminiGenerateRequest is the generateContent request body.
// The rewrite instruction goes into systemInstruction, the prompt into
// a single user-role content.
type geminiGenerateRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiGenerateResponse is the generateContent response body
type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Enhance rewrites the prompt through one generateContent call
func (p *GeminiProvider) Enhance(ctx context.Context, req Request) (string, error) {
	if !p.enabled {
		return "", ErrProviderDisabled
	}

	body := geminiGenerateRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemInstruction}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: buildUserMessage(req)}}},
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	var generated geminiGenerateResponse
	if resp.StatusCode >= 400 {
		reqErr := &RequestError{Provider: p.Name(), StatusCode: resp.StatusCode}
		if json.Unmarshal(respBytes, &generated) == nil && generated.Error != nil {
			reqErr.Message = generated.Error.Message
		}
		return "", reqErr
	}
	if err := json.Unmarshal(respBytes, &generated); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(generated.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

var _ Provider = (*GeminiProvider)(nil)
