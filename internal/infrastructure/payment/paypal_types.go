package payment

import (
	"encoding/json"

	"github.com/promptatrium/backend/internal/domain/billing"
)

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// paypalTokenResponse is the client-credentials token grant response
type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ---------------------------------------------------------------------------
// Payouts API
// ---------------------------------------------------------------------------

// paypalPayoutRequest is the POST /v1/payments/payouts request body
type paypalPayoutRequest struct {
	SenderBatchHeader paypalSenderBatchHeader `json:"sender_batch_header"`
	Items             []paypalPayoutItem      `json:"items"`
}

type paypalSenderBatchHeader struct {
	SenderBatchID string `json:"sender_batch_id"`
	EmailSubject  string `json:"email_subject,omitempty"`
	EmailMessage  string `json:"email_message,omitempty"`
}

type paypalPayoutItem struct {
	RecipientType string       `json:"recipient_type"`
	Amount        paypalAmount `json:"amount"`
	Receiver      string       `json:"receiver"`
	SenderItemID  string       `json:"sender_item_id"`
	Note          string       `json:"note,omitempty"`
}

type paypalAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// paypalPayoutResponse is returned by both the submit and the status calls
type paypalPayoutResponse struct {
	BatchHeader paypalBatchHeader        `json:"batch_header"`
	Items       []paypalPayoutItemDetail `json:"items,omitempty"`
}

type paypalBatchHeader struct {
	PayoutBatchID     string                  `json:"payout_batch_id"`
	BatchStatus       string                  `json:"batch_status"`
	SenderBatchHeader paypalSenderBatchHeader `json:"sender_batch_header"`
}

type paypalPayoutItemDetail struct {
	PayoutItemID      string           `json:"payout_item_id"`
	TransactionStatus string           `json:"transaction_status"`
	PayoutItem        paypalPayoutItem `json:"payout_item"`
	Errors            *paypalError     `json:"errors,omitempty"`
}

// paypalError is the standard error body of the REST APIs
type paypalError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Webhook verification
// ---------------------------------------------------------------------------

// paypalVerifyWebhookRequest is the verify-webhook-signature request body
type paypalVerifyWebhookRequest struct {
	TransmissionID   string          `json:"transmission_id"`
	TransmissionTime string          `json:"transmission_time"`
	TransmissionSig  string          `json:"transmission_sig"`
	CertURL          string          `json:"cert_url"`
	AuthAlgo         string          `json:"auth_algo"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type paypalVerifyWebhookResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// ---------------------------------------------------------------------------
// Status mapping
// ---------------------------------------------------------------------------

// batchStatusFromPayPal maps PayPal batch statuses onto the domain lifecycle
func batchStatusFromPayPal(status string) billing.PayoutStatus {
	switch status {
	case "PENDING":
		return billing.PayoutSubmitted
	case "PROCESSING":
		return billing.PayoutProcessing
	case "SUCCESS":
		return billing.PayoutCompleted
	case "DENIED", "CANCELED":
		return billing.PayoutFailed
	default:
		return billing.PayoutProcessing
	}
}

// itemStatusFromPayPal maps PayPal transaction statuses onto item states
func itemStatusFromPayPal(status string) billing.PayoutItemStatus {
	switch status {
	case "SUCCESS":
		return billing.ItemSuccess
	case "FAILED", "RETURNED", "BLOCKED", "REFUNDED", "REVERSED":
		return billing.ItemFailed
	case "UNCLAIMED", "ONHOLD":
		return billing.ItemUnclaimed
	default:
		return billing.ItemPending
	}
}
