package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/promptatrium/backend/internal/domain/billing"
)

const (
	paypalTokenPath         = "/v1/oauth2/token"
	paypalPayoutsPath       = "/v1/payments/payouts"
	paypalVerifyWebhookPath = "/v1/notifications/verify-webhook-signature"

	// maxPayPalResponseSize limits response bodies to prevent memory exhaustion
	maxPayPalResponseSize = 5 * 1024 * 1024 // 5MB max response

	// tokenExpirySkew renews the cached token before PayPal expires it
	tokenExpirySkew = 60 * time.Second
)

// ErrPayPalEmptyBatch is returned when a batch without items is submitted
var ErrPayPalEmptyBatch = errors.New("paypal: batch has no items")

// PayPalRequestError is a failed PayPal call with the decoded error body
type PayPalRequestError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *PayPalRequestError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("paypal: request failed with HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("paypal: request failed with HTTP %d: %s: %s", e.StatusCode, e.Name, e.Message)
}

// PayPalAdapter implements billing.PayoutGateway against the Payouts API.
// Access tokens from the client-credentials grant are cached until shortly
// before expiry.
type PayPalAdapter struct {
	config     *PayPalConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalAdapter creates a new PayPal adapter
func NewPayPalAdapter(config *PayPalConfig) (*PayPalAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PayPalAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// SubmitPayout sends a draft batch to the Payouts API
func (a *PayPalAdapter) SubmitPayout(ctx context.Context, batch *billing.PayoutBatch) (*billing.PayoutSubmission, error) {
	if len(batch.Items) == 0 {
		return nil, ErrPayPalEmptyBatch
	}

	items := make([]paypalPayoutItem, len(batch.Items))
	for i, item := range batch.Items {
		items[i] = paypalPayoutItem{
			RecipientType: "EMAIL",
			Amount: paypalAmount{
				Value:    item.AmountUSD.Amount().StringFixed(2),
				Currency: "USD",
			},
			Receiver:     item.ReceiverEmail,
			SenderItemID: item.SellerID.String(),
			Note:         "PromptAtrium seller earnings",
		}
	}
	body := paypalPayoutRequest{
		SenderBatchHeader: paypalSenderBatchHeader{
			SenderBatchID: batch.SenderBatchID,
			EmailSubject:  "You have a payout from PromptAtrium",
		},
		Items: items,
	}

	respBytes, err := a.doRequest(ctx, http.MethodPost, paypalPayoutsPath, body)
	if err != nil {
		return nil, err
	}

	var payout paypalPayoutResponse
	if err := json.Unmarshal(respBytes, &payout); err != nil {
		return nil, fmt.Errorf("paypal: decode payout response: %w", err)
	}
	return &billing.PayoutSubmission{
		PayPalBatchID: payout.BatchHeader.PayoutBatchID,
		Status:        batchStatusFromPayPal(payout.BatchHeader.BatchStatus),
	}, nil
}

// GetPayoutStatus fetches the current state of a submitted batch
func (a *PayPalAdapter) GetPayoutStatus(ctx context.Context, paypalBatchID string) (*billing.PayoutStatusReport, error) {
	path := paypalPayoutsPath + "/" + url.PathEscape(paypalBatchID)
	respBytes, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payout paypalPayoutResponse
	if err := json.Unmarshal(respBytes, &payout); err != nil {
		return nil, fmt.Errorf("paypal: decode payout response: %w", err)
	}

	report := &billing.PayoutStatusReport{
		PayPalBatchID: payout.BatchHeader.PayoutBatchID,
		SenderBatchID: payout.BatchHeader.SenderBatchHeader.SenderBatchID,
		Status:        batchStatusFromPayPal(payout.BatchHeader.BatchStatus),
		Items:         make([]billing.PayoutItemReport, len(payout.Items)),
	}
	for i, item := range payout.Items {
		itemReport := billing.PayoutItemReport{
			PayPalItemID: item.PayoutItemID,
			SenderItemID: item.PayoutItem.SenderItemID,
			Status:       itemStatusFromPayPal(item.TransactionStatus),
		}
		if item.Errors != nil {
			itemReport.FailureReason = item.Errors.Message
		}
		report.Items[i] = itemReport
	}
	return report, nil
}

// VerifyWebhookSignature checks a webhook delivery through PayPal's
// verification endpoint.
func (a *PayPalAdapter) VerifyWebhookSignature(ctx context.Context, verification billing.WebhookVerification) (bool, error) {
	body := paypalVerifyWebhookRequest{
		TransmissionID:   verification.TransmissionID,
		TransmissionTime: verification.TransmissionTime,
		TransmissionSig:  verification.TransmissionSig,
		CertURL:          verification.CertURL,
		AuthAlgo:         verification.AuthAlgo,
		WebhookID:        a.config.WebhookID,
		WebhookEvent:     verification.Event,
	}

	respBytes, err := a.doRequest(ctx, http.MethodPost, paypalVerifyWebhookPath, body)
	if err != nil {
		return false, err
	}

	var verify paypalVerifyWebhookResponse
	if err := json.Unmarshal(respBytes, &verify); err != nil {
		return false, fmt.Errorf("paypal: decode verification response: %w", err)
	}
	return verify.VerificationStatus == "SUCCESS", nil
}

// getAccessToken returns a cached token or fetches a new one
func (a *PayPalAdapter) getAccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL()+paypalTokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("paypal: build token request: %w", err)
	}
	req.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal: token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxPayPalResponseSize))
	if err != nil {
		return "", fmt.Errorf("paypal: read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", a.decodeError(resp.StatusCode, respBytes)
	}

	var token paypalTokenResponse
	if err := json.Unmarshal(respBytes, &token); err != nil {
		return "", fmt.Errorf("paypal: decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("paypal: token response without access token")
	}

	a.accessToken = token.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpirySkew)
	return a.accessToken, nil
}

// doRequest performs an authenticated JSON API call
func (a *PayPalAdapter) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	token, err := a.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("paypal: marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("paypal: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxPayPalResponseSize))
	if err != nil {
		return nil, fmt.Errorf("paypal: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, a.decodeError(resp.StatusCode, respBytes)
	}
	return respBytes, nil
}

func (a *PayPalAdapter) decodeError(statusCode int, body []byte) error {
	reqErr := &PayPalRequestError{StatusCode: statusCode}
	var decoded paypalError
	if json.Unmarshal(body, &decoded) == nil {
		reqErr.Name = decoded.Name
		reqErr.Message = decoded.Message
	}
	return reqErr
}

var _ billing.PayoutGateway = (*PayPalAdapter)(nil)
