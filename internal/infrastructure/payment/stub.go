package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/promptatrium/backend/internal/domain/billing"
)

// StubPayoutGateway is a placeholder implementation of billing.PayoutGateway.
// It accepts every batch and immediately reports it as completed.
// Use this for development when PayPal is not configured.
type StubPayoutGateway struct {
	mu      sync.Mutex
	batches map[string]*billing.PayoutStatusReport
	counter int
}

// NewStubPayoutGateway creates a new StubPayoutGateway
func NewStubPayoutGateway() *StubPayoutGateway {
	return &StubPayoutGateway{
		batches: make(map[string]*billing.PayoutStatusReport),
	}
}

// Ensure StubPayoutGateway implements billing.PayoutGateway
var _ billing.PayoutGateway = (*StubPayoutGateway)(nil)

// SubmitPayout pretends to submit the batch and records it as completed
func (g *StubPayoutGateway) SubmitPayout(ctx context.Context, batch *billing.PayoutBatch) (*billing.PayoutSubmission, error) {
	if batch == nil {
		return nil, errors.New("batch is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	paypalBatchID := fmt.Sprintf("STUB-BATCH-%06d", g.counter)

	items := make([]billing.PayoutItemReport, 0, len(batch.Items))
	for i, item := range batch.Items {
		items = append(items, billing.PayoutItemReport{
			PayPalItemID: fmt.Sprintf("%s-ITEM-%03d", paypalBatchID, i+1),
			SenderItemID: item.SellerID.String(),
			Status:       billing.ItemSuccess,
		})
	}

	g.batches[paypalBatchID] = &billing.PayoutStatusReport{
		PayPalBatchID: paypalBatchID,
		SenderBatchID: batch.SenderBatchID,
		Status:        billing.PayoutCompleted,
		Items:         items,
	}

	return &billing.PayoutSubmission{
		PayPalBatchID: paypalBatchID,
		Status:        billing.PayoutProcessing,
	}, nil
}

// GetPayoutStatus returns the recorded state of a stub batch
func (g *StubPayoutGateway) GetPayoutStatus(ctx context.Context, paypalBatchID string) (*billing.PayoutStatusReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	report, ok := g.batches[paypalBatchID]
	if !ok {
		return nil, fmt.Errorf("stub gateway: unknown batch %q", paypalBatchID)
	}
	return report, nil
}

// VerifyWebhookSignature accepts every delivery. The stub never receives
// real webhooks, so this only matters in tests.
func (g *StubPayoutGateway) VerifyWebhookSignature(ctx context.Context, verification billing.WebhookVerification) (bool, error) {
	return true, nil
}
