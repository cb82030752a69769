package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/identity"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// fakeLedger is an in-memory billing.LedgerRepository with the same
// balance-chain verification as the real one.
type fakeLedger struct {
	mu      sync.Mutex
	entries []billing.LedgerEntry
}

func (f *fakeLedger) FindByID(ctx context.Context, id uuid.UUID) (*billing.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			return &f.entries[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLedger) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.LedgerFilter) ([]billing.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []billing.LedgerEntry
	for _, e := range f.entries {
		if e.TenantID != tenantID {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.OrderID != nil && (e.OrderID == nil || *e.OrderID != *filter.OrderID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeLedger) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.LedgerFilter) (int64, error) {
	entries, _ := f.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(entries)), nil
}

func (f *fakeLedger) BalanceFor(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balanceLocked(tenantID, userID), nil
}

func (f *fakeLedger) balanceLocked(tenantID, userID uuid.UUID) int64 {
	var balance int64
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.UserID == userID {
			balance += e.Amount
		}
	}
	return balance
}

func (f *fakeLedger) EarningsAtLeast(ctx context.Context, tenantID uuid.UUID, minimum int64) ([]billing.SellerEarnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := make(map[uuid.UUID]int64)
	earned := make(map[uuid.UUID]int64)
	for _, e := range f.entries {
		if e.TenantID != tenantID {
			continue
		}
		totals[e.UserID] += e.Amount
		switch e.Type {
		case billing.EntrySaleCredit, billing.EntryRefundDebit, billing.EntryPayoutDebit:
			earned[e.UserID] += e.Amount
		}
	}
	var out []billing.SellerEarnings
	for userID, earnings := range earned {
		payable := min(earnings, totals[userID])
		if payable >= minimum {
			out = append(out, billing.SellerEarnings{UserID: userID, Payable: payable})
		}
	}
	return out, nil
}

func (f *fakeLedger) SummaryFor(ctx context.Context, tenantID, userID uuid.UUID) (*billing.LedgerSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := &billing.LedgerSummary{UserID: userID}
	for _, e := range f.entries {
		if e.TenantID != tenantID || e.UserID != userID {
			continue
		}
		summary.EntryCount++
		summary.Balance += e.Amount
		if e.Amount > 0 {
			summary.TotalEarned += e.Amount
		} else {
			summary.TotalSpent += -e.Amount
		}
	}
	return summary, nil
}

func (f *fakeLedger) Append(ctx context.Context, entry *billing.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.BalanceAfter-entry.Amount != f.balanceLocked(entry.TenantID, entry.UserID) {
		return shared.ErrConcurrencyConflict
	}
	f.entries = append(f.entries, *entry)
	return nil
}

var _ billing.LedgerRepository = (*fakeLedger)(nil)

type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PayoutBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PayoutBatch), args.Error(1)
}

func (m *MockPayoutRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.PayoutBatch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PayoutBatch), args.Error(1)
}

func (m *MockPayoutRepository) FindBySenderBatchID(ctx context.Context, senderBatchID string) (*billing.PayoutBatch, error) {
	args := m.Called(ctx, senderBatchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PayoutBatch), args.Error(1)
}

func (m *MockPayoutRepository) FindByPayPalBatchID(ctx context.Context, paypalBatchID string) (*billing.PayoutBatch, error) {
	args := m.Called(ctx, paypalBatchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PayoutBatch), args.Error(1)
}

func (m *MockPayoutRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PayoutFilter) ([]billing.PayoutBatch, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PayoutBatch), args.Error(1)
}

func (m *MockPayoutRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PayoutFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPayoutRepository) FindAllByStatus(ctx context.Context, status billing.PayoutStatus, limit int) ([]billing.PayoutBatch, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PayoutBatch), args.Error(1)
}

func (m *MockPayoutRepository) Save(ctx context.Context, batch *billing.PayoutBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockPayoutRepository) SaveWithLock(ctx context.Context, batch *billing.PayoutBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByOIDCSubject(ctx context.Context, tenantID uuid.UUID, subject string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, tenantID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// fakeGateway is a scripted billing.PayoutGateway
type fakeGateway struct {
	submission   *billing.PayoutSubmission
	submitErr    error
	statusReport *billing.PayoutStatusReport
	statusErr    error
	verifyResult bool
	verifyErr    error

	submitted []string // Sender batch IDs seen by SubmitPayout
}

func (g *fakeGateway) SubmitPayout(ctx context.Context, batch *billing.PayoutBatch) (*billing.PayoutSubmission, error) {
	g.submitted = append(g.submitted, batch.SenderBatchID)
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	return g.submission, nil
}

func (g *fakeGateway) GetPayoutStatus(ctx context.Context, paypalBatchID string) (*billing.PayoutStatusReport, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.statusReport, nil
}

func (g *fakeGateway) VerifyWebhookSignature(ctx context.Context, verification billing.WebhookVerification) (bool, error) {
	return g.verifyResult, g.verifyErr
}

var _ billing.PayoutGateway = (*fakeGateway)(nil)

// capturingPublisher records every published event
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}
