package marketplace

import (
	"github.com/google/uuid"

	"github.com/promptatrium/backend/internal/domain/marketplace"
)

// CreateListingInput carries the data for creating a listing
type CreateListingInput struct {
	TenantID     uuid.UUID
	SellerID     uuid.UUID
	Title        string
	Description  string
	PromptIDs    []uuid.UUID
	PriceUSD     *string // Decimal string, e.g. "4.99"
	PriceCredits *int64
}

// UpdateListingInput carries the data for updating a listing.
// Nil fields are left unchanged.
type UpdateListingInput struct {
	TenantID     uuid.UUID
	ListingID    uuid.UUID
	SellerID     uuid.UUID
	Description  *string
	PriceUSD     *string
	PriceCredits *int64
}

// ListListingsInput carries listing search parameters
type ListListingsInput struct {
	TenantID uuid.UUID
	ViewerID uuid.UUID
	SellerID *uuid.UUID
	Status   marketplace.ListingStatus
	Search   string
	Page     int
	PageSize int
}

// CreateOrderInput carries the data for placing an order
type CreateOrderInput struct {
	TenantID      uuid.UUID
	BuyerID       uuid.UUID
	ListingID     uuid.UUID
	PaymentMethod marketplace.PaymentMethod
}

// ListOrdersInput carries order search parameters
type ListOrdersInput struct {
	TenantID uuid.UUID
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   marketplace.OrderStatus
	Page     int
	PageSize int
}

// OpenDisputeInput carries the data for opening a dispute
type OpenDisputeInput struct {
	TenantID uuid.UUID
	OrderID  uuid.UUID
	OpenerID uuid.UUID
	Reason   string
}

// ResolveDisputeInput carries the data for resolving a dispute
type ResolveDisputeInput struct {
	TenantID    uuid.UUID
	DisputeID   uuid.UUID
	AssigneeID  uuid.UUID
	Note        string
	IssueRefund bool
}

// ListDisputesInput carries dispute search parameters
type ListDisputesInput struct {
	TenantID   uuid.UUID
	AssigneeID *uuid.UUID
	Status     marketplace.DisputeStatus
	OpenOnly   bool
	Page       int
	PageSize   int
}
