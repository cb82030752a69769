package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/shared"
	"github.com/promptatrium/backend/internal/domain/shared/valueobject"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
)

func setupMarketplaceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ListingModel{}, &models.OrderModel{}, &models.DisputeModel{})
	require.NoError(t, err)

	return db
}

func newActiveListing(t *testing.T, tenantID, sellerID uuid.UUID, title string) *marketplace.Listing {
	t.Helper()
	listing, err := marketplace.NewListing(tenantID, sellerID, title, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	price := valueobject.NewMoneyUSD(decimal.NewFromFloat(4.99))
	credits := int64(499)
	require.NoError(t, listing.SetPricing(&price, &credits))
	require.NoError(t, listing.Activate())
	return listing
}

func TestListingRepository(t *testing.T) {
	db := setupMarketplaceTestDB(t)
	repo := NewGormListingRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	sellerID := uuid.New()

	t.Run("round-trips pricing", func(t *testing.T) {
		listing := newActiveListing(t, tenantID, sellerID, "SDXL Portrait Pack")
		require.NoError(t, repo.Save(ctx, listing))

		found, err := repo.FindByIDForTenant(ctx, tenantID, listing.ID)
		require.NoError(t, err)
		require.NotNil(t, found.PriceUSD)
		assert.True(t, found.PriceUSD.Amount().Equal(decimal.NewFromFloat(4.99)))
		require.NotNil(t, found.PriceCredits)
		assert.Equal(t, int64(499), *found.PriceCredits)
		assert.Equal(t, marketplace.ListingActive, found.Status)
		assert.Len(t, found.PromptIDs, 1)
	})

	t.Run("credits-only listings keep a null USD price", func(t *testing.T) {
		listing, err := marketplace.NewListing(tenantID, sellerID, "Credits Only Pack", []uuid.UUID{uuid.New()})
		require.NoError(t, err)
		credits := int64(250)
		require.NoError(t, listing.SetPricing(nil, &credits))
		require.NoError(t, repo.Save(ctx, listing))

		found, err := repo.FindByID(ctx, listing.ID)
		require.NoError(t, err)
		assert.Nil(t, found.PriceUSD)
		require.NotNil(t, found.PriceCredits)
		assert.Equal(t, int64(250), *found.PriceCredits)
	})

	t.Run("filters by seller and status", func(t *testing.T) {
		results, err := repo.FindAllForTenant(ctx, tenantID, marketplace.ListingFilter{
			SellerID: &sellerID,
			Status:   marketplace.ListingActive,
		})
		require.NoError(t, err)
		assert.Len(t, results, 1)

		count, err := repo.CountForTenant(ctx, tenantID, marketplace.ListingFilter{Search: "portrait"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("records sales under the lock", func(t *testing.T) {
		found, err := repo.FindAllForTenant(ctx, tenantID, marketplace.ListingFilter{Status: marketplace.ListingActive})
		require.NoError(t, err)
		require.Len(t, found, 1)

		listing := &found[0]
		listing.RecordSale()
		require.NoError(t, repo.SaveWithLock(ctx, listing))

		reloaded, err := repo.FindByID(ctx, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), reloaded.SalesCount)
	})
}

func TestOrderRepository(t *testing.T) {
	db := setupMarketplaceTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	buyerID := uuid.New()
	sellerID := uuid.New()

	listing := newActiveListing(t, tenantID, sellerID, "Landscape Bundle")
	order, err := marketplace.NewOrder(tenantID, buyerID, listing, marketplace.PayWithCredits)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	t.Run("finds by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, tenantID, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
		assert.Equal(t, "Landscape Bundle", found.ListingTitle)
		assert.Equal(t, marketplace.OrderPending, found.Status)
		require.NotNil(t, found.AmountCredits)
		assert.Equal(t, int64(499), *found.AmountCredits)
		assert.Nil(t, found.AmountUSD)
	})

	t.Run("persists the payment lifecycle", func(t *testing.T) {
		require.NoError(t, order.MarkPaid())
		require.NoError(t, repo.SaveWithLock(ctx, order))
		require.NoError(t, order.Complete())
		require.NoError(t, repo.SaveWithLock(ctx, order))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.OrderCompleted, found.Status)
		assert.NotNil(t, found.PaidAt)
		assert.NotNil(t, found.CompletedAt)
	})

	t.Run("stale writer gets a conflict", func(t *testing.T) {
		stale := *order
		stale.IncrementVersion()
		stale.IncrementVersion()
		assert.ErrorIs(t, repo.SaveWithLock(ctx, &stale), shared.ErrConcurrencyConflict)
	})

	t.Run("filters by buyer", func(t *testing.T) {
		results, err := repo.FindAllForTenant(ctx, tenantID, marketplace.OrderFilter{BuyerID: &buyerID})
		require.NoError(t, err)
		assert.Len(t, results, 1)

		other := uuid.New()
		results, err = repo.FindAllForTenant(ctx, tenantID, marketplace.OrderFilter{BuyerID: &other})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestDisputeRepository(t *testing.T) {
	db := setupMarketplaceTestDB(t)
	repo := NewGormDisputeRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	buyerID := uuid.New()
	sellerID := uuid.New()

	listing := newActiveListing(t, tenantID, sellerID, "Disputed Bundle")
	order, err := marketplace.NewOrder(tenantID, buyerID, listing, marketplace.PayWithCredits)
	require.NoError(t, err)
	require.NoError(t, order.MarkPaid())

	dispute, err := marketplace.NewDispute(order, buyerID, "prompt does not match the preview")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, dispute))

	t.Run("finds the open dispute for an order", func(t *testing.T) {
		found, err := repo.FindOpenByOrder(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, dispute.ID, found.ID)
		assert.Equal(t, marketplace.OpenedByBuyer, found.Opener)
	})

	t.Run("in-progress disputes still count as open", func(t *testing.T) {
		admin := uuid.New()
		require.NoError(t, dispute.PickUp(admin))
		require.NoError(t, repo.SaveWithLock(ctx, dispute))

		found, err := repo.FindOpenByOrder(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.DisputeInProgress, found.Status)
		require.NotNil(t, found.AssigneeID)
		assert.Equal(t, admin, *found.AssigneeID)
	})

	t.Run("resolved disputes are no longer open", func(t *testing.T) {
		require.NoError(t, dispute.Resolve("refund issued", true))
		require.NoError(t, repo.SaveWithLock(ctx, dispute))

		_, err := repo.FindOpenByOrder(ctx, tenantID, order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		found, err := repo.FindByID(ctx, dispute.ID)
		require.NoError(t, err)
		assert.True(t, found.RefundIssued)
		assert.Equal(t, "refund issued", found.ResolutionNote)
		assert.NotNil(t, found.ResolvedAt)
	})

	t.Run("open-only filter", func(t *testing.T) {
		results, err := repo.FindAllForTenant(ctx, tenantID, marketplace.DisputeFilter{OpenOnly: true})
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = repo.FindAllForTenant(ctx, tenantID, marketplace.DisputeFilter{})
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}
