package billing

import (
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/domain/billing"
)

// ListLedgerInput carries ledger search parameters
type ListLedgerInput struct {
	TenantID uuid.UUID
	UserID   *uuid.UUID
	Type     billing.EntryType
	OrderID  *uuid.UUID
	Page     int
	PageSize int
}

// AdjustmentInput carries an admin ledger correction. Amount is signed:
// negative removes credits, positive grants them.
type AdjustmentInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Amount   int64
	Reason   string
}

// TopupInput carries a credit purchase
type TopupInput struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Credits   int64
	Reference string // External payment reference
}

// BuildPayoutInput carries the data for building a payout batch
type BuildPayoutInput struct {
	TenantID  uuid.UUID
	CreatedBy uuid.UUID
}

// ListPayoutsInput carries payout batch search parameters
type ListPayoutsInput struct {
	TenantID uuid.UUID
	Status   billing.PayoutStatus
	Page     int
	PageSize int
}

// WebhookResult reports how a PayPal webhook delivery was handled
type WebhookResult struct {
	TransmissionID string `json:"transmission_id"`
	EventType      string `json:"event_type"`
	Processed      bool   `json:"processed"`
	Message        string `json:"message,omitempty"`
}
