package marketplace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func newActiveListing(t *testing.T, tenantID, sellerID uuid.UUID, priceCredits *int64, priceUSD *string) *marketplace.Listing {
	t.Helper()
	listing, err := marketplace.NewListing(tenantID, sellerID, "Neon pack", []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	usd, err := parsePriceUSD(priceUSD)
	require.NoError(t, err)
	require.NoError(t, listing.SetPricing(usd, priceCredits))
	require.NoError(t, listing.Activate())
	return listing
}

func TestListingService_CreateListing(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sellerID := uuid.New()

	t.Run("creates a draft listing over own prompts", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		promptRepo := new(MockPromptRepository)
		service := NewListingService(listingRepo, promptRepo, zap.NewNop())

		p, err := prompt.NewPrompt(tenantID, sellerID, "Neon city", "neon city, rain", "sdxl")
		require.NoError(t, err)
		promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
		listingRepo.On("Save", ctx, mock.AnythingOfType("*marketplace.Listing")).Return(nil)

		listing, err := service.CreateListing(ctx, CreateListingInput{
			TenantID:     tenantID,
			SellerID:     sellerID,
			Title:        "Neon pack",
			PromptIDs:    []uuid.UUID{p.ID},
			PriceCredits: int64Ptr(500),
			PriceUSD:     strPtr("4.99"),
		})
		require.NoError(t, err)
		assert.Equal(t, marketplace.ListingDraft, listing.Status)
		assert.Equal(t, int64(500), *listing.PriceCredits)
		assert.Equal(t, "4.99", listing.PriceUSD.Amount().String())
	})

	t.Run("rejects listing someone else's prompt", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		promptRepo := new(MockPromptRepository)
		service := NewListingService(listingRepo, promptRepo, zap.NewNop())

		other, err := prompt.NewPrompt(tenantID, uuid.New(), "Not yours", "content", "sdxl")
		require.NoError(t, err)
		promptRepo.On("FindByIDForTenant", ctx, tenantID, other.ID).Return(other, nil)

		_, err = service.CreateListing(ctx, CreateListingInput{
			TenantID:     tenantID,
			SellerID:     sellerID,
			Title:        "Neon pack",
			PromptIDs:    []uuid.UUID{other.ID},
			PriceCredits: int64Ptr(500),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_PROMPT_OWNER", domainErr.Code)
		listingRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed USD price", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		promptRepo := new(MockPromptRepository)
		service := NewListingService(listingRepo, promptRepo, zap.NewNop())

		p, err := prompt.NewPrompt(tenantID, sellerID, "Neon city", "neon city, rain", "sdxl")
		require.NoError(t, err)
		promptRepo.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

		_, err = service.CreateListing(ctx, CreateListingInput{
			TenantID:  tenantID,
			SellerID:  sellerID,
			Title:     "Neon pack",
			PromptIDs: []uuid.UUID{p.ID},
			PriceUSD:  strPtr("four dollars"),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})
}

func TestListingService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sellerID := uuid.New()

	t.Run("activate, pause and delist", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		service := NewListingService(listingRepo, new(MockPromptRepository), zap.NewNop())

		listing, err := marketplace.NewListing(tenantID, sellerID, "Neon pack", []uuid.UUID{uuid.New()})
		require.NoError(t, err)
		require.NoError(t, listing.SetPricing(nil, int64Ptr(500)))

		listingRepo.On("FindByIDForTenant", ctx, tenantID, listing.ID).Return(listing, nil)
		listingRepo.On("SaveWithLock", ctx, listing).Return(nil)

		_, err = service.ActivateListing(ctx, tenantID, listing.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.ListingActive, listing.Status)

		_, err = service.PauseListing(ctx, tenantID, listing.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.ListingPaused, listing.Status)

		_, err = service.DelistListing(ctx, tenantID, listing.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.ListingDelisted, listing.Status)
	})

	t.Run("only the seller manages the listing", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		service := NewListingService(listingRepo, new(MockPromptRepository), zap.NewNop())

		listing := newActiveListing(t, tenantID, sellerID, int64Ptr(500), nil)
		listingRepo.On("FindByIDForTenant", ctx, tenantID, listing.ID).Return(listing, nil)

		_, err := service.PauseListing(ctx, tenantID, listing.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("draft listings are hidden from other viewers", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		service := NewListingService(listingRepo, new(MockPromptRepository), zap.NewNop())

		listing, err := marketplace.NewListing(tenantID, sellerID, "Neon pack", []uuid.UUID{uuid.New()})
		require.NoError(t, err)
		listingRepo.On("FindByIDForTenant", ctx, tenantID, listing.ID).Return(listing, nil)

		_, err = service.GetListing(ctx, tenantID, listing.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		got, err := service.GetListing(ctx, tenantID, listing.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, listing.ID, got.ID)
	})
}

func TestListingService_ListListings(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sellerID := uuid.New()

	t.Run("public browsing only sees active listings", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		service := NewListingService(listingRepo, new(MockPromptRepository), zap.NewNop())

		listingRepo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f marketplace.ListingFilter) bool {
			return f.Status == marketplace.ListingActive
		})).Return([]marketplace.Listing{}, nil)
		listingRepo.On("CountForTenant", ctx, tenantID, mock.Anything).Return(int64(0), nil)

		_, err := service.ListListings(ctx, ListListingsInput{
			TenantID: tenantID,
			ViewerID: uuid.New(),
			Status:   marketplace.ListingDraft, // Ignored for non-sellers
		})
		require.NoError(t, err)
		listingRepo.AssertExpectations(t)
	})

	t.Run("sellers browse their own listings in any status", func(t *testing.T) {
		listingRepo := new(MockListingRepository)
		service := NewListingService(listingRepo, new(MockPromptRepository), zap.NewNop())

		listingRepo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f marketplace.ListingFilter) bool {
			return f.Status == marketplace.ListingDraft && f.SellerID != nil && *f.SellerID == sellerID
		})).Return([]marketplace.Listing{}, nil)
		listingRepo.On("CountForTenant", ctx, tenantID, mock.Anything).Return(int64(0), nil)

		_, err := service.ListListings(ctx, ListListingsInput{
			TenantID: tenantID,
			ViewerID: sellerID,
			SellerID: &sellerID,
			Status:   marketplace.ListingDraft,
		})
		require.NoError(t, err)
		listingRepo.AssertExpectations(t)
	})
}
