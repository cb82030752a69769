package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
)

// PayoutStatus is the lifecycle state of a payout batch
type PayoutStatus string

const (
	PayoutDraft      PayoutStatus = "draft"
	PayoutSubmitted  PayoutStatus = "submitted"  // Sent to PayPal, awaiting processing
	PayoutProcessing PayoutStatus = "processing" // PayPal accepted the batch
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
)

// IsValid checks if the payout status is valid
func (s PayoutStatus) IsValid() bool {
	switch s {
	case PayoutDraft, PayoutSubmitted, PayoutProcessing, PayoutCompleted, PayoutFailed:
		return true
	}
	return false
}

// CanTransitionTo checks if transition to the target status is allowed
func (s PayoutStatus) CanTransitionTo(target PayoutStatus) bool {
	switch s {
	case PayoutDraft:
		return target == PayoutSubmitted || target == PayoutFailed
	case PayoutSubmitted:
		return target == PayoutProcessing || target == PayoutCompleted || target == PayoutFailed
	case PayoutProcessing:
		return target == PayoutCompleted || target == PayoutFailed
	case PayoutCompleted, PayoutFailed:
		return false
	}
	return false
}

// PayoutItemStatus is the per-receiver state reported by PayPal
type PayoutItemStatus string

const (
	ItemPending   PayoutItemStatus = "pending"
	ItemSuccess   PayoutItemStatus = "success"
	ItemFailed    PayoutItemStatus = "failed"
	ItemUnclaimed PayoutItemStatus = "unclaimed" // Receiver has no PayPal account yet
)

// MinimumPayoutCredits is the balance a seller needs before entering a batch
const MinimumPayoutCredits int64 = 1000 // 10 USD

// PayoutItem is one seller's payment within a batch
type PayoutItem struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	BatchID       uuid.UUID
	SellerID      uuid.UUID
	ReceiverEmail string // PayPal receiver address
	Credits       int64  // Credits debited from the seller's ledger
	AmountUSD     valueobject.Money
	Status        PayoutItemStatus
	PayPalItemID  string // paypal's payout_item_id, set on submission
	FailureReason string
}

// PayoutBatch groups seller earnings into one PayPal Payouts submission.
// SenderBatchID is the idempotency key PayPal echoes back in webhooks.
type PayoutBatch struct {
	shared.TenantAggregateRoot
	SenderBatchID string
	PayPalBatchID string // payout_batch_id assigned by PayPal
	Status        PayoutStatus
	ItemCount     int
	TotalCredits  int64
	TotalUSD      valueobject.Money
	SubmittedAt   *time.Time
	CompletedAt   *time.Time
	FailureReason string
	Items         []PayoutItem `gorm:"-"`
}

// NewPayoutBatch creates an empty draft batch
func NewPayoutBatch(tenantID, createdBy uuid.UUID) *PayoutBatch {
	batch := &PayoutBatch{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Status:              PayoutDraft,
		TotalUSD:            valueobject.ZeroUSD(),
	}
	batch.SenderBatchID = "PAYOUT-" + strings.ToUpper(uuid.New().String()[:13])
	return batch
}

// AddItem adds a seller payment to a draft batch
func (b *PayoutBatch) AddItem(sellerID uuid.UUID, receiverEmail string, credits int64) error {
	if b.Status != PayoutDraft {
		return shared.NewDomainError("BATCH_NOT_DRAFT", "Items can only be added to a draft batch")
	}
	if sellerID == uuid.Nil {
		return shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if strings.TrimSpace(receiverEmail) == "" {
		return shared.NewDomainError("RECEIVER_REQUIRED", "Seller has no PayPal email configured")
	}
	if credits < MinimumPayoutCredits {
		return shared.NewDomainError("BELOW_MINIMUM", "Seller balance is below the payout minimum")
	}
	for _, item := range b.Items {
		if item.SellerID == sellerID {
			return shared.NewDomainError("DUPLICATE_SELLER", "Seller is already in this batch")
		}
	}

	amountUSD := CreditsToUSD(credits)
	b.Items = append(b.Items, PayoutItem{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      b.TenantID,
		BatchID:       b.ID,
		SellerID:      sellerID,
		ReceiverEmail: strings.ToLower(strings.TrimSpace(receiverEmail)),
		Credits:       credits,
		AmountUSD:     amountUSD,
		Status:        ItemPending,
	})
	b.ItemCount = len(b.Items)
	b.TotalCredits += credits
	total, _ := b.TotalUSD.Add(amountUSD)
	b.TotalUSD = total
	b.touch()
	return nil
}

// MarkSubmitted records a successful PayPal submission
func (b *PayoutBatch) MarkSubmitted(paypalBatchID string) error {
	if !b.Status.CanTransitionTo(PayoutSubmitted) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only draft batches can be submitted")
	}
	if len(b.Items) == 0 {
		return shared.NewDomainError("EMPTY_BATCH", "Cannot submit an empty batch")
	}
	now := time.Now()
	b.Status = PayoutSubmitted
	b.PayPalBatchID = paypalBatchID
	b.SubmittedAt = &now
	b.touch()
	return nil
}

// MarkProcessing records that PayPal accepted the batch
func (b *PayoutBatch) MarkProcessing() error {
	if !b.Status.CanTransitionTo(PayoutProcessing) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Batch is not awaiting processing")
	}
	b.Status = PayoutProcessing
	b.touch()
	return nil
}

// MarkCompleted finalizes the batch.
// Emits PayoutCompletedEvent so sellers' ledgers get their payout debits.
func (b *PayoutBatch) MarkCompleted() error {
	if !b.Status.CanTransitionTo(PayoutCompleted) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Batch cannot complete from its current status")
	}
	now := time.Now()
	b.Status = PayoutCompleted
	b.CompletedAt = &now
	b.touch()
	b.AddDomainEvent(NewPayoutCompletedEvent(b))
	return nil
}

// MarkFailed records a batch-level failure
func (b *PayoutBatch) MarkFailed(reason string) error {
	if !b.Status.CanTransitionTo(PayoutFailed) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Batch cannot fail from its current status")
	}
	b.Status = PayoutFailed
	b.FailureReason = strings.TrimSpace(reason)
	b.touch()
	return nil
}

// ApplyItemStatus updates one item from a PayPal webhook
func (b *PayoutBatch) ApplyItemStatus(paypalItemID string, status PayoutItemStatus, failureReason string) error {
	for i := range b.Items {
		if b.Items[i].PayPalItemID == paypalItemID {
			b.Items[i].Status = status
			b.Items[i].FailureReason = failureReason
			b.Items[i].UpdatedAt = time.Now()
			b.touch()
			return nil
		}
	}
	return shared.NewDomainError("PAYOUT_ITEM_NOT_FOUND", "No item with that PayPal item ID in this batch")
}

func (b *PayoutBatch) touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// Event types published by the billing domain
const EventPayoutCompleted = "billing.payout.completed"

// PayoutCompletedEvent is published when a batch completes; the ledger
// handler writes payout_debit entries for the successful items.
type PayoutCompletedEvent struct {
	shared.BaseDomainEvent
	BatchID       uuid.UUID `json:"batch_id"`
	SenderBatchID string    `json:"sender_batch_id"`
	TotalCredits  int64     `json:"total_credits"`
}

// NewPayoutCompletedEvent builds the event from a batch
func NewPayoutCompletedEvent(b *PayoutBatch) *PayoutCompletedEvent {
	return &PayoutCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPayoutCompleted, "PayoutBatch", b.ID, b.TenantID),
		BatchID:         b.ID,
		SenderBatchID:   b.SenderBatchID,
		TotalCredits:    b.TotalCredits,
	}
}
