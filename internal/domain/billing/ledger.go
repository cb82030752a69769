package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry
type EntryType string

const (
	EntryPurchaseDebit EntryType = "purchase_debit" // Buyer charged for an order
	EntrySaleCredit    EntryType = "sale_credit"    // Seller earnings on a completed order
	EntryRefundDebit   EntryType = "refund_debit"   // Seller side of a refund
	EntryRefundCredit  EntryType = "refund_credit"  // Buyer side of a refund
	EntryPayoutDebit   EntryType = "payout_debit"   // Credits converted to a PayPal payout
	EntryAdjustment    EntryType = "adjustment"     // Manual admin correction
	EntryTopup         EntryType = "topup"          // Credits purchased
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryPurchaseDebit, EntrySaleCredit, EntryRefundDebit, EntryRefundCredit,
		EntryPayoutDebit, EntryAdjustment, EntryTopup:
		return true
	}
	return false
}

// CreditsPerUSD is the platform conversion rate: 100 credits = 1 USD
const CreditsPerUSD = 100

// CreditsToUSD converts a credit amount to its USD value
func CreditsToUSD(credits int64) valueobject.Money {
	return valueobject.NewMoneyUSD(decimal.NewFromInt(credits).Div(decimal.NewFromInt(CreditsPerUSD))).Round()
}

// LedgerEntry is one append-only row in a user's credit ledger. Entries are
// never mutated; corrections are new entries. BalanceAfter makes the current
// balance a single-row lookup.
type LedgerEntry struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	UserID       uuid.UUID
	Type         EntryType
	Amount       int64 // Signed: debits negative, credits positive
	BalanceAfter int64
	OrderID      *uuid.UUID
	PayoutID     *uuid.UUID
	Description  string
}

// NewLedgerEntry creates an entry on top of the given prior balance.
// Debit types require a negative amount, credit types a positive one, and
// the resulting balance may not go negative. Refund debits are the one
// exception: a sale reversal stands even when the seller has already spent
// or been paid the earnings, and the shortfall shows as a negative balance.
func NewLedgerEntry(tenantID, userID uuid.UUID, entryType EntryType, amount, priorBalance int64, description string) (*LedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Unknown ledger entry type")
	}
	if amount == 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Ledger amount cannot be zero")
	}
	switch entryType {
	case EntryPurchaseDebit, EntryRefundDebit, EntryPayoutDebit:
		if amount > 0 {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Debit entries carry a negative amount")
		}
	case EntrySaleCredit, EntryRefundCredit, EntryTopup:
		if amount < 0 {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit entries carry a positive amount")
		}
	case EntryAdjustment:
		// Adjustments go either way
	}
	balanceAfter := priorBalance + amount
	if balanceAfter < 0 && entryType != EntryRefundDebit {
		return nil, shared.ErrInsufficientCredits
	}

	return &LedgerEntry{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		UserID:       userID,
		Type:         entryType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  strings.TrimSpace(description),
	}, nil
}

// WithOrder links the entry to an order
func (e *LedgerEntry) WithOrder(orderID uuid.UUID) *LedgerEntry {
	e.OrderID = &orderID
	return e
}

// WithPayout links the entry to a payout batch
func (e *LedgerEntry) WithPayout(payoutID uuid.UUID) *LedgerEntry {
	e.PayoutID = &payoutID
	return e
}

// IsDebit reports whether the entry reduces the balance
func (e *LedgerEntry) IsDebit() bool {
	return e.Amount < 0
}

// LedgerSummary aggregates a user's ledger activity
type LedgerSummary struct {
	UserID       uuid.UUID
	Balance      int64
	TotalEarned  int64 // Sum of positive entries
	TotalSpent   int64 // Sum of negative entries, as a positive number
	EntryCount   int64
	LastActivity *time.Time
}
