package marketplace

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
)

// ListingService handles marketplace listing use cases
type ListingService struct {
	listingRepo marketplace.ListingRepository
	promptRepo  prompt.Repository
	logger      *zap.Logger
}

// NewListingService creates a new listing service
func NewListingService(
	listingRepo marketplace.ListingRepository,
	promptRepo prompt.Repository,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		promptRepo:  promptRepo,
		logger:      logger,
	}
}

// CreateListing creates a draft listing over the seller's own prompts
func (s *ListingService) CreateListing(ctx context.Context, input CreateListingInput) (*marketplace.Listing, error) {
	for _, promptID := range input.PromptIDs {
		p, err := s.promptRepo.FindByIDForTenant(ctx, input.TenantID, promptID)
		if err != nil {
			return nil, err
		}
		if p.AuthorID != input.SellerID {
			return nil, shared.NewDomainError("NOT_PROMPT_OWNER", "Only your own prompts can be listed")
		}
	}

	listing, err := marketplace.NewListing(input.TenantID, input.SellerID, input.Title, input.PromptIDs)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		if err := listing.SetDescription(input.Description); err != nil {
			return nil, err
		}
	}
	if input.PriceUSD != nil || input.PriceCredits != nil {
		priceUSD, err := parsePriceUSD(input.PriceUSD)
		if err != nil {
			return nil, err
		}
		if err := listing.SetPricing(priceUSD, input.PriceCredits); err != nil {
			return nil, err
		}
	}

	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("Listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("seller_id", input.SellerID.String()),
		zap.Int("prompt_count", len(input.PromptIDs)))
	return listing, nil
}

// GetListing returns a listing. Inactive listings are visible only to
// their seller.
func (s *ListingService) GetListing(ctx context.Context, tenantID, listingID, viewerID uuid.UUID) (*marketplace.Listing, error) {
	listing, err := s.listingRepo.FindByIDForTenant(ctx, tenantID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != marketplace.ListingActive && listing.SellerID != viewerID {
		return nil, shared.ErrNotFound
	}
	return listing, nil
}

// ListListings returns a page of listings. Viewers other than the seller
// only see active ones.
func (s *ListingService) ListListings(ctx context.Context, input ListListingsInput) (*shared.Paginated[marketplace.Listing], error) {
	filter := marketplace.ListingFilter{Filter: shared.DefaultFilter()}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.SellerID = input.SellerID
	filter.Search = input.Search

	ownListing := input.SellerID != nil && *input.SellerID == input.ViewerID && input.ViewerID != uuid.Nil
	if ownListing {
		filter.Status = input.Status
	} else {
		filter.Status = marketplace.ListingActive
	}

	listings, err := s.listingRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.listingRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(listings, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateListing updates the description and pricing of the seller's listing
func (s *ListingService) UpdateListing(ctx context.Context, input UpdateListingInput) (*marketplace.Listing, error) {
	listing, err := s.ownedListing(ctx, input.TenantID, input.ListingID, input.SellerID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		if err := listing.SetDescription(*input.Description); err != nil {
			return nil, err
		}
	}
	if input.PriceUSD != nil || input.PriceCredits != nil {
		priceUSD, err := parsePriceUSD(input.PriceUSD)
		if err != nil {
			return nil, err
		}
		if err := listing.SetPricing(priceUSD, input.PriceCredits); err != nil {
			return nil, err
		}
	}

	if err := s.listingRepo.SaveWithLock(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// ActivateListing puts the listing on the marketplace
func (s *ListingService) ActivateListing(ctx context.Context, tenantID, listingID, sellerID uuid.UUID) (*marketplace.Listing, error) {
	return s.transition(ctx, tenantID, listingID, sellerID, (*marketplace.Listing).Activate)
}

// PauseListing temporarily hides the listing
func (s *ListingService) PauseListing(ctx context.Context, tenantID, listingID, sellerID uuid.UUID) (*marketplace.Listing, error) {
	return s.transition(ctx, tenantID, listingID, sellerID, (*marketplace.Listing).Pause)
}

// DelistListing permanently removes the listing from the marketplace
func (s *ListingService) DelistListing(ctx context.Context, tenantID, listingID, sellerID uuid.UUID) (*marketplace.Listing, error) {
	return s.transition(ctx, tenantID, listingID, sellerID, (*marketplace.Listing).Delist)
}

func (s *ListingService) transition(ctx context.Context, tenantID, listingID, sellerID uuid.UUID, change func(*marketplace.Listing) error) (*marketplace.Listing, error) {
	listing, err := s.ownedListing(ctx, tenantID, listingID, sellerID)
	if err != nil {
		return nil, err
	}
	if err := change(listing); err != nil {
		return nil, err
	}
	if err := s.listingRepo.SaveWithLock(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) ownedListing(ctx context.Context, tenantID, listingID, sellerID uuid.UUID) (*marketplace.Listing, error) {
	listing, err := s.listingRepo.FindByIDForTenant(ctx, tenantID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, shared.ErrForbidden
	}
	return listing, nil
}

func parsePriceUSD(price *string) (*valueobject.Money, error) {
	if price == nil {
		return nil, nil
	}
	money, err := valueobject.NewMoneyUSDFromString(*price)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "USD price must be a decimal number")
	}
	return &money, nil
}
