package marketplace

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/prompt"
	"github.com/promptatrium/backend/internal/domain/shared"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*marketplace.Listing, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Listing), args.Error(1)
}

func (m *MockListingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.ListingFilter) ([]marketplace.Listing, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.Listing), args.Error(1)
}

func (m *MockListingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.ListingFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) Save(ctx context.Context, listing *marketplace.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) SaveWithLock(ctx context.Context, listing *marketplace.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*marketplace.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*marketplace.Order, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.OrderFilter) ([]marketplace.Order, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.Order), args.Error(1)
}

func (m *MockOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.OrderFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *marketplace.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *marketplace.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*marketplace.Dispute, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) FindOpenByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*marketplace.Dispute, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.DisputeFilter) ([]marketplace.Dispute, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter marketplace.DisputeFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDisputeRepository) Save(ctx context.Context, dispute *marketplace.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}

func (m *MockDisputeRepository) SaveWithLock(ctx context.Context, dispute *marketplace.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}

type MockPromptRepository struct {
	mock.Mock
}

func (m *MockPromptRepository) FindByID(ctx context.Context, id uuid.UUID) (*prompt.Prompt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter prompt.Filter) ([]prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter prompt.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPromptRepository) FindTrending(ctx context.Context, tenantID uuid.UUID, limit int) ([]prompt.Prompt, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]prompt.Prompt), args.Error(1)
}

func (m *MockPromptRepository) Save(ctx context.Context, p *prompt.Prompt) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepository) SaveWithLock(ctx context.Context, p *prompt.Prompt) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

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
	earned := make(map[uuid.UUID]int64)
	for _, e := range f.entries {
		if e.TenantID != tenantID {
			continue
		}
		switch e.Type {
		case billing.EntrySaleCredit, billing.EntryRefundDebit, billing.EntryPayoutDebit:
			earned[e.UserID] += e.Amount
		}
	}
	var out []billing.SellerEarnings
	for userID, earnings := range earned {
		if earnings >= minimum {
			out = append(out, billing.SellerEarnings{UserID: userID, Payable: earnings})
		}
	}
	return out, nil
}

func (f *fakeLedger) SummaryFor(ctx context.Context, tenantID, userID uuid.UUID) (*billing.LedgerSummary, error) {
	balance, _ := f.BalanceFor(ctx, tenantID, userID)
	return &billing.LedgerSummary{UserID: userID, Balance: balance}, nil
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

// capturingPublisher records every published event
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}
