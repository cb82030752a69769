package marketplace

import (
	"context"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// ListingFilter narrows listing searches
type ListingFilter struct {
	shared.Filter
	SellerID *uuid.UUID
	Status   ListingStatus
	Search   string // Matches title and description
}

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	BuyerID   *uuid.UUID
	SellerID  *uuid.UUID
	ListingID *uuid.UUID
	Status    OrderStatus
}

// DisputeFilter narrows dispute listings
type DisputeFilter struct {
	shared.Filter
	OrderID    *uuid.UUID
	AssigneeID *uuid.UUID
	Status     DisputeStatus
	OpenOnly   bool
}

// ListingRepository defines persistence operations for listings
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Listing, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ListingFilter) ([]Listing, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ListingFilter) (int64, error)
	Save(ctx context.Context, listing *Listing) error
	SaveWithLock(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]Order, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) (int64, error)
	Save(ctx context.Context, order *Order) error
	SaveWithLock(ctx context.Context, order *Order) error
}

// DisputeRepository defines persistence operations for disputes
type DisputeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Dispute, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Dispute, error)
	FindOpenByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*Dispute, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DisputeFilter) ([]Dispute, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter DisputeFilter) (int64, error)
	Save(ctx context.Context, dispute *Dispute) error
	SaveWithLock(ctx context.Context, dispute *Dispute) error
}
