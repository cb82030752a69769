package payment

import (
	"errors"

	"github.com/promptatrium/backend/internal/infrastructure/config"
)

const (
	// PayPalLiveAPIURL is the production API endpoint
	PayPalLiveAPIURL = "https://api-m.paypal.com"
	// PayPalSandboxAPIURL is the sandbox API endpoint
	PayPalSandboxAPIURL = "https://api-m.sandbox.paypal.com"
)

// Errors for PayPal configuration
var (
	ErrPayPalMissingClientID     = errors.New("paypal: client ID is required")
	ErrPayPalMissingClientSecret = errors.New("paypal: client secret is required")
	ErrPayPalInvalidEnvironment  = errors.New("paypal: environment must be 'sandbox' or 'live'")
)

// PayPalConfig holds the adapter's connection settings
type PayPalConfig struct {
	// ClientID is the REST app client ID
	ClientID string
	// ClientSecret is the REST app secret
	ClientSecret string
	// Environment selects sandbox or live endpoints
	Environment string
	// WebhookID identifies the registered webhook for signature checks
	WebhookID string
	// APIBaseURL overrides the environment endpoint, for testing
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewPayPalConfig builds an adapter config from the application config
func NewPayPalConfig(cfg config.PayPalConfig) *PayPalConfig {
	timeout := int(cfg.Timeout.Seconds())
	if timeout <= 0 {
		timeout = 30
	}
	return &PayPalConfig{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		Environment:    cfg.Environment,
		WebhookID:      cfg.WebhookID,
		TimeoutSeconds: timeout,
	}
}

// Validate checks that required fields are present
func (c *PayPalConfig) Validate() error {
	if c.ClientID == "" {
		return ErrPayPalMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrPayPalMissingClientSecret
	}
	switch c.Environment {
	case "sandbox", "live":
	default:
		return ErrPayPalInvalidEnvironment
	}
	return nil
}

// BaseURL resolves the API endpoint for the configured environment
func (c *PayPalConfig) BaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	if c.Environment == "live" {
		return PayPalLiveAPIURL
	}
	return PayPalSandboxAPIURL
}
