package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
)

// PayoutSyncer pulls the current gateway state for one payout batch.
// Implemented by the billing PayoutService.
type PayoutSyncer interface {
	SyncBatchStatus(ctx context.Context, tenantID, batchID uuid.UUID) (*billing.PayoutBatch, error)
}

// BatchSource lists payout batches awaiting settlement
type BatchSource interface {
	FindAllByStatus(ctx context.Context, status billing.PayoutStatus, limit int) ([]billing.PayoutBatch, error)
}

// PayoutSyncExecutor executes sync jobs against the gateway
type PayoutSyncExecutor struct {
	syncer PayoutSyncer
	logger *zap.Logger
}

// NewPayoutSyncExecutor creates a new executor
func NewPayoutSyncExecutor(syncer PayoutSyncer, logger *zap.Logger) *PayoutSyncExecutor {
	return &PayoutSyncExecutor{syncer: syncer, logger: logger}
}

// Ensure PayoutSyncExecutor implements JobExecutor
var _ JobExecutor = (*PayoutSyncExecutor)(nil)

// Execute syncs a single batch. A batch that is already settled is a no-op
// on the service side, so replays are harmless.
func (e *PayoutSyncExecutor) Execute(ctx context.Context, job *Job) error {
	batch, err := e.syncer.SyncBatchStatus(ctx, job.TenantID, job.BatchID)
	if err != nil {
		return err
	}

	e.logger.Debug("Batch synced",
		zap.String("batch_id", batch.ID.String()),
		zap.String("status", string(batch.Status)),
	)
	return nil
}

// PayoutSyncTriggerConfig holds configuration for the sync trigger
type PayoutSyncTriggerConfig struct {
	// PollInterval is how often unsettled batches are re-checked
	PollInterval time.Duration
	// BatchLimit caps how many batches are enqueued per poll
	BatchLimit int
}

// DefaultPayoutSyncTriggerConfig returns default trigger configuration
func DefaultPayoutSyncTriggerConfig() PayoutSyncTriggerConfig {
	return PayoutSyncTriggerConfig{
		PollInterval: 10 * time.Minute,
		BatchLimit:   50,
	}
}

// PayoutSyncTrigger periodically enqueues sync jobs for batches that were
// submitted to the gateway but have not reached a terminal state. It is
// the backstop for lost webhook deliveries.
type PayoutSyncTrigger struct {
	config    PayoutSyncTriggerConfig
	scheduler *Scheduler
	source    BatchSource
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPayoutSyncTrigger creates a new sync trigger
func NewPayoutSyncTrigger(
	config PayoutSyncTriggerConfig,
	scheduler *Scheduler,
	source BatchSource,
	logger *zap.Logger,
) *PayoutSyncTrigger {
	return &PayoutSyncTrigger{
		config:    config,
		scheduler: scheduler,
		source:    source,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (t *PayoutSyncTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Payout sync trigger started",
		zap.Duration("poll_interval", t.config.PollInterval),
		zap.Int("batch_limit", t.config.BatchLimit),
	)

	return nil
}

// Stop stops the trigger loop
func (t *PayoutSyncTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Payout sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *PayoutSyncTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.enqueuePending(ctx)
		}
	}
}

// enqueuePending schedules a sync for every batch still in flight
func (t *PayoutSyncTrigger) enqueuePending(ctx context.Context) {
	enqueued := 0
	for _, status := range []billing.PayoutStatus{billing.PayoutSubmitted, billing.PayoutProcessing} {
		batches, err := t.source.FindAllByStatus(ctx, status, t.config.BatchLimit)
		if err != nil {
			t.logger.Error("Failed to list unsettled payout batches",
				zap.String("status", string(status)),
				zap.Error(err),
			)
			continue
		}

		for _, batch := range batches {
			if err := t.scheduler.ScheduleSync(batch.TenantID, batch.ID); err != nil {
				t.logger.Warn("Failed to schedule payout sync",
					zap.String("batch_id", batch.ID.String()),
					zap.Error(err),
				)
				continue
			}
			enqueued++
		}
	}

	if enqueued > 0 {
		t.logger.Info("Enqueued payout sync jobs", zap.Int("count", enqueued))
	}
}
