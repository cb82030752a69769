package marketplace

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
)

// ListingStatus is the lifecycle state of a marketplace listing
type ListingStatus string

const (
	ListingDraft    ListingStatus = "draft"
	ListingActive   ListingStatus = "active"
	ListingPaused   ListingStatus = "paused"
	ListingDelisted ListingStatus = "delisted"
)

// IsValid checks if the listing status is valid
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingDraft, ListingActive, ListingPaused, ListingDelisted:
		return true
	}
	return false
}

// CanTransitionTo checks if transition to the target status is allowed
func (s ListingStatus) CanTransitionTo(target ListingStatus) bool {
	switch s {
	case ListingDraft:
		return target == ListingActive || target == ListingDelisted
	case ListingActive:
		return target == ListingPaused || target == ListingDelisted
	case ListingPaused:
		return target == ListingActive || target == ListingDelisted
	case ListingDelisted:
		return false
	}
	return false
}

// Listing is a sellable prompt or bundle of prompts. A listing carries a
// USD price, a credit price, or both; the buyer picks the payment method.
type Listing struct {
	shared.TenantAggregateRoot
	SellerID     uuid.UUID
	Title        string
	Description  string
	PromptIDs    []uuid.UUID // One for a single prompt, several for a bundle
	PriceUSD     *valueobject.Money
	PriceCredits *int64
	Status       ListingStatus
	SalesCount   int64
}

// NewListing creates a draft listing
func NewListing(tenantID, sellerID uuid.UUID, title string, promptIDs []uuid.UUID) (*Listing, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Listing title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Listing title cannot exceed 200 characters")
	}
	if len(promptIDs) == 0 {
		return nil, shared.NewDomainError("EMPTY_LISTING", "A listing needs at least one prompt")
	}
	seen := make(map[uuid.UUID]bool)
	for _, id := range promptIDs {
		if id == uuid.Nil || seen[id] {
			return nil, shared.NewDomainError("INVALID_PROMPT_ID", "Listing prompts must be unique and non-empty")
		}
		seen[id] = true
	}

	return &Listing{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, sellerID),
		SellerID:            sellerID,
		Title:               title,
		PromptIDs:           promptIDs,
		Status:              ListingDraft,
	}, nil
}

// SetDescription sets the listing description
func (l *Listing) SetDescription(description string) error {
	if len(description) > 10000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 10000 characters")
	}
	l.Description = description
	l.touch()
	return nil
}

// SetPricing sets the USD and/or credit price. At least one must be set
// before the listing can be activated.
func (l *Listing) SetPricing(priceUSD *valueobject.Money, priceCredits *int64) error {
	if priceUSD == nil && priceCredits == nil {
		return shared.NewDomainError("INVALID_PRICE", "A listing needs a USD or credit price")
	}
	if priceUSD != nil {
		if priceUSD.Currency() != valueobject.USD {
			return shared.NewDomainError("INVALID_PRICE", "Listing prices are in USD")
		}
		if !priceUSD.IsPositive() {
			return shared.NewDomainError("INVALID_PRICE", "USD price must be positive")
		}
		rounded := priceUSD.Round()
		priceUSD = &rounded
	}
	if priceCredits != nil && *priceCredits <= 0 {
		return shared.NewDomainError("INVALID_PRICE", "Credit price must be positive")
	}
	l.PriceUSD = priceUSD
	l.PriceCredits = priceCredits
	l.touch()
	return nil
}

// Activate puts the listing on the marketplace
func (l *Listing) Activate() error {
	if !l.Status.CanTransitionTo(ListingActive) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Listing cannot be activated from its current status")
	}
	if l.PriceUSD == nil && l.PriceCredits == nil {
		return shared.NewDomainError("INVALID_PRICE", "Listing needs a price before activation")
	}
	l.Status = ListingActive
	l.touch()
	return nil
}

// Pause temporarily hides the listing
func (l *Listing) Pause() error {
	if !l.Status.CanTransitionTo(ListingPaused) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only active listings can be paused")
	}
	l.Status = ListingPaused
	l.touch()
	return nil
}

// Delist permanently removes the listing from the marketplace
func (l *Listing) Delist() error {
	if !l.Status.CanTransitionTo(ListingDelisted) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Listing is already delisted")
	}
	l.Status = ListingDelisted
	l.touch()
	return nil
}

// RecordSale increments the sales counter
func (l *Listing) RecordSale() {
	l.SalesCount++
	l.touch()
}

// IsPurchasable reports whether orders can be placed against the listing
func (l *Listing) IsPurchasable() bool {
	return l.Status == ListingActive
}

// SupportsCredits reports whether the listing can be bought with credits
func (l *Listing) SupportsCredits() bool {
	return l.PriceCredits != nil
}

// SupportsUSD reports whether the listing can be bought with USD balance
func (l *Listing) SupportsUSD() bool {
	return l.PriceUSD != nil
}

func (l *Listing) touch() {
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}
