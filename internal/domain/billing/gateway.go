package billing

import (
	"context"
	"encoding/json"
)

// PayoutSubmission is the gateway's answer to a successful batch submission
type PayoutSubmission struct {
	PayPalBatchID string
	Status        PayoutStatus
}

// PayoutItemReport is the per-receiver state reported by the gateway
type PayoutItemReport struct {
	PayPalItemID  string
	SenderItemID  string // The seller ID we sent with the item
	Status        PayoutItemStatus
	FailureReason string
}

// PayoutStatusReport is the full state of a submitted batch
type PayoutStatusReport struct {
	PayPalBatchID string
	SenderBatchID string
	Status        PayoutStatus
	Items         []PayoutItemReport
}

// WebhookVerification carries the signature headers of a webhook delivery
// together with the raw event body.
type WebhookVerification struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
	Event            json.RawMessage
}

// PayoutGateway abstracts the PayPal Payouts API
type PayoutGateway interface {
	// SubmitPayout sends a draft batch to the gateway. The batch's
	// SenderBatchID doubles as the gateway-side idempotency key.
	SubmitPayout(ctx context.Context, batch *PayoutBatch) (*PayoutSubmission, error)

	// GetPayoutStatus fetches the current state of a submitted batch
	GetPayoutStatus(ctx context.Context, paypalBatchID string) (*PayoutStatusReport, error)

	// VerifyWebhookSignature checks a webhook delivery against the
	// configured webhook ID. False means the event must be discarded.
	VerifyWebhookSignature(ctx context.Context, verification WebhookVerification) (bool, error)
}
