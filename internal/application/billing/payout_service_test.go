package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
)

type payoutFixture struct {
	payoutRepo *MockPayoutRepository
	ledger     *fakeLedger
	userRepo   *MockUserRepository
	gateway    *fakeGateway
	publisher  *capturingPublisher
	service    *PayoutService
}

func newPayoutFixture() *payoutFixture {
	f := &payoutFixture{
		payoutRepo: new(MockPayoutRepository),
		ledger:     &fakeLedger{},
		userRepo:   new(MockUserRepository),
		gateway:    &fakeGateway{},
		publisher:  &capturingPublisher{},
	}
	f.service = NewPayoutService(f.payoutRepo, f.ledger, f.userRepo, f.gateway, f.publisher, zap.NewNop())
	return f
}

func seedBalance(t *testing.T, ledger *fakeLedger, tenantID, userID uuid.UUID, credits int64) {
	t.Helper()
	entry, err := billing.NewLedgerEntry(tenantID, userID, billing.EntrySaleCredit, credits, 0, "seed")
	require.NoError(t, err)
	require.NoError(t, ledger.Append(context.Background(), entry))
}

func newSeller(t *testing.T, tenantID uuid.UUID, username, paypalEmail string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(tenantID, username, username+"@example.com", "s3cret-password")
	require.NoError(t, err)
	if paypalEmail != "" {
		require.NoError(t, user.SetPayPalEmail(paypalEmail))
	}
	return user
}

func TestPayoutService_BuildBatch(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	adminID := uuid.New()

	t.Run("collects eligible sellers with a PayPal email", func(t *testing.T) {
		f := newPayoutFixture()
		eligible := newSeller(t, tenantID, "alice", "alice@paypal.example.com")
		noEmail := newSeller(t, tenantID, "bob", "")
		seedBalance(t, f.ledger, tenantID, eligible.ID, 2500)
		seedBalance(t, f.ledger, tenantID, noEmail.ID, 5000)
		seedBalance(t, f.ledger, tenantID, uuid.New(), 500) // Below minimum

		f.userRepo.On("FindByIDForTenant", ctx, tenantID, eligible.ID).Return(eligible, nil)
		f.userRepo.On("FindByIDForTenant", ctx, tenantID, noEmail.ID).Return(noEmail, nil)
		f.payoutRepo.On("Save", ctx, mock.AnythingOfType("*billing.PayoutBatch")).Return(nil)

		batch, err := f.service.BuildBatch(ctx, BuildPayoutInput{TenantID: tenantID, CreatedBy: adminID})
		require.NoError(t, err)
		assert.Equal(t, billing.PayoutDraft, batch.Status)
		require.Equal(t, 1, batch.ItemCount)
		assert.Equal(t, eligible.ID, batch.Items[0].SellerID)
		assert.Equal(t, "alice@paypal.example.com", batch.Items[0].ReceiverEmail)
		assert.Equal(t, int64(2500), batch.TotalCredits)
		assert.Equal(t, "25.00", batch.TotalUSD.Amount().StringFixed(2))
	})

	t.Run("topped-up credits are never paid out", func(t *testing.T) {
		f := newPayoutFixture()
		buyer := newSeller(t, tenantID, "carol", "carol@paypal.example.com")
		entry, err := billing.NewLedgerEntry(tenantID, buyer.ID, billing.EntryTopup, 10000, 0, "Credit purchase")
		require.NoError(t, err)
		require.NoError(t, f.ledger.Append(ctx, entry))

		_, err = f.service.BuildBatch(ctx, BuildPayoutInput{TenantID: tenantID, CreatedBy: adminID})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ELIGIBLE_SELLERS", domainErr.Code)
	})

	t.Run("a payout covers at most the seller's remaining balance", func(t *testing.T) {
		f := newPayoutFixture()
		seller := newSeller(t, tenantID, "dave", "dave@paypal.example.com")
		seedBalance(t, f.ledger, tenantID, seller.ID, 3000)
		spent, err := billing.NewLedgerEntry(tenantID, seller.ID, billing.EntryPurchaseDebit, -1000, 3000, "Purchase")
		require.NoError(t, err)
		require.NoError(t, f.ledger.Append(ctx, spent))

		f.userRepo.On("FindByIDForTenant", ctx, tenantID, seller.ID).Return(seller, nil)
		f.payoutRepo.On("Save", ctx, mock.AnythingOfType("*billing.PayoutBatch")).Return(nil)

		batch, err := f.service.BuildBatch(ctx, BuildPayoutInput{TenantID: tenantID, CreatedBy: adminID})
		require.NoError(t, err)
		require.Equal(t, 1, batch.ItemCount)
		assert.Equal(t, int64(2000), batch.Items[0].Credits)
	})

	t.Run("no eligible sellers fails the build", func(t *testing.T) {
		f := newPayoutFixture()

		_, err := f.service.BuildBatch(ctx, BuildPayoutInput{TenantID: tenantID, CreatedBy: adminID})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ELIGIBLE_SELLERS", domainErr.Code)
		f.payoutRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPayoutService_SubmitBatch(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	adminID := uuid.New()

	draftBatch := func(t *testing.T) *billing.PayoutBatch {
		t.Helper()
		batch := billing.NewPayoutBatch(tenantID, adminID)
		require.NoError(t, batch.AddItem(uuid.New(), "seller@paypal.example.com", 2000))
		return batch
	}

	t.Run("submits the batch to PayPal", func(t *testing.T) {
		f := newPayoutFixture()
		batch := draftBatch(t)
		f.gateway.submission = &billing.PayoutSubmission{
			PayPalBatchID: "BATCH-7XY",
			Status:        billing.PayoutProcessing,
		}

		f.payoutRepo.On("FindByIDForTenant", ctx, tenantID, batch.ID).Return(batch, nil)
		f.payoutRepo.On("SaveWithLock", ctx, batch).Return(nil)

		submitted, err := f.service.SubmitBatch(ctx, tenantID, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PayoutProcessing, submitted.Status)
		assert.Equal(t, "BATCH-7XY", submitted.PayPalBatchID)
		assert.NotNil(t, submitted.SubmittedAt)
		assert.Equal(t, []string{batch.SenderBatchID}, f.gateway.submitted)
	})

	t.Run("a gateway failure marks the batch failed", func(t *testing.T) {
		f := newPayoutFixture()
		batch := draftBatch(t)
		f.gateway.submitErr = errors.New("INSUFFICIENT_FUNDS")

		f.payoutRepo.On("FindByIDForTenant", ctx, tenantID, batch.ID).Return(batch, nil)
		f.payoutRepo.On("SaveWithLock", ctx, batch).Return(nil)

		_, err := f.service.SubmitBatch(ctx, tenantID, batch.ID)
		require.Error(t, err)
		assert.Equal(t, billing.PayoutFailed, batch.Status)
		assert.Equal(t, "INSUFFICIENT_FUNDS", batch.FailureReason)
	})
}

func TestPayoutService_SyncBatchStatus(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	adminID := uuid.New()
	sellerID := uuid.New()

	t.Run("folds the PayPal report into the batch", func(t *testing.T) {
		f := newPayoutFixture()
		batch := billing.NewPayoutBatch(tenantID, adminID)
		require.NoError(t, batch.AddItem(sellerID, "seller@paypal.example.com", 2000))
		require.NoError(t, batch.MarkSubmitted("BATCH-7XY"))

		f.gateway.statusReport = &billing.PayoutStatusReport{
			PayPalBatchID: "BATCH-7XY",
			SenderBatchID: batch.SenderBatchID,
			Status:        billing.PayoutCompleted,
			Items: []billing.PayoutItemReport{
				{
					PayPalItemID: "ITEM-1",
					SenderItemID: sellerID.String(),
					Status:       billing.ItemSuccess,
				},
			},
		}
		f.payoutRepo.On("FindByIDForTenant", ctx, tenantID, batch.ID).Return(batch, nil)
		f.payoutRepo.On("SaveWithLock", ctx, batch).Return(nil)

		synced, err := f.service.SyncBatchStatus(ctx, tenantID, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PayoutCompleted, synced.Status)
		assert.Equal(t, "ITEM-1", synced.Items[0].PayPalItemID)
		assert.Equal(t, billing.ItemSuccess, synced.Items[0].Status)

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, billing.EventPayoutCompleted, f.publisher.events[0].EventType())
	})

	t.Run("unsubmitted batches cannot be synced", func(t *testing.T) {
		f := newPayoutFixture()
		batch := billing.NewPayoutBatch(tenantID, adminID)

		f.payoutRepo.On("FindByIDForTenant", ctx, tenantID, batch.ID).Return(batch, nil)

		_, err := f.service.SyncBatchStatus(ctx, tenantID, batch.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BATCH_NOT_SUBMITTED", domainErr.Code)
	})
}
