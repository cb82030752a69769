package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/shared"
)

type fakeSyncer struct {
	mu     sync.Mutex
	calls  []uuid.UUID
	result *billing.PayoutBatch
	err    error
}

func (f *fakeSyncer) SyncBatchStatus(ctx context.Context, tenantID, batchID uuid.UUID) (*billing.PayoutBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, batchID)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSyncer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeBatchSource struct {
	mu      sync.Mutex
	batches map[billing.PayoutStatus][]billing.PayoutBatch
	err     error
	queries []billing.PayoutStatus
}

func (f *fakeBatchSource) FindAllByStatus(ctx context.Context, status billing.PayoutStatus, limit int) ([]billing.PayoutBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, status)
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[status], nil
}

func pendingBatch(status billing.PayoutStatus) billing.PayoutBatch {
	batch := billing.PayoutBatch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New()),
		Status:              status,
	}
	return batch
}

func TestPayoutSyncExecutorExecute(t *testing.T) {
	batch := pendingBatch(billing.PayoutCompleted)
	syncer := &fakeSyncer{result: &batch}
	executor := NewPayoutSyncExecutor(syncer, zap.NewNop())

	job := NewJob(batch.TenantID, batch.ID, 3)
	err := executor.Execute(context.Background(), job)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{batch.ID}, syncer.calls)
}

func TestPayoutSyncExecutorPropagatesError(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("gateway timeout")}
	executor := NewPayoutSyncExecutor(syncer, zap.NewNop())

	err := executor.Execute(context.Background(), NewJob(uuid.New(), uuid.New(), 3))

	assert.EqualError(t, err, "gateway timeout")
}

func TestTriggerEnqueuesUnsettledBatches(t *testing.T) {
	submitted := pendingBatch(billing.PayoutSubmitted)
	processing := pendingBatch(billing.PayoutProcessing)
	source := &fakeBatchSource{
		batches: map[billing.PayoutStatus][]billing.PayoutBatch{
			billing.PayoutSubmitted:  {submitted},
			billing.PayoutProcessing: {processing},
		},
	}

	executor := &recordingExecutor{}
	s := NewScheduler(testConfig(), executor, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))

	trigger := NewPayoutSyncTrigger(DefaultPayoutSyncTriggerConfig(), s, source, zap.NewNop())
	trigger.enqueuePending(context.Background())

	waitFor(t, time.Second, func() bool { return executor.count() == 2 })
	require.NoError(t, s.Stop(context.Background()))

	// Both in-flight states are polled, terminal ones are not
	assert.Equal(t, []billing.PayoutStatus{billing.PayoutSubmitted, billing.PayoutProcessing}, source.queries)

	ids := map[uuid.UUID]bool{}
	for _, job := range executor.executed {
		ids[job.BatchID] = true
	}
	assert.True(t, ids[submitted.ID])
	assert.True(t, ids[processing.ID])
}

func TestTriggerSurvivesSourceErrors(t *testing.T) {
	source := &fakeBatchSource{err: errors.New("db down")}

	s := NewScheduler(testConfig(), &recordingExecutor{}, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		_ = s.Stop(context.Background())
	}()

	trigger := NewPayoutSyncTrigger(DefaultPayoutSyncTriggerConfig(), s, source, zap.NewNop())
	trigger.enqueuePending(context.Background())

	// Both status queries are attempted despite the first failing
	assert.Len(t, source.queries, 2)
}

func TestTriggerRunLoopPolls(t *testing.T) {
	batch := pendingBatch(billing.PayoutSubmitted)
	source := &fakeBatchSource{
		batches: map[billing.PayoutStatus][]billing.PayoutBatch{
			billing.PayoutSubmitted: {batch},
		},
	}

	executor := &recordingExecutor{}
	s := NewScheduler(testConfig(), executor, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))

	cfg := PayoutSyncTriggerConfig{PollInterval: 10 * time.Millisecond, BatchLimit: 10}
	trigger := NewPayoutSyncTrigger(cfg, s, source, zap.NewNop())
	require.NoError(t, trigger.Start(context.Background()))

	waitFor(t, time.Second, func() bool { return executor.count() >= 2 })

	require.NoError(t, trigger.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestTriggerStopWithoutStart(t *testing.T) {
	trigger := NewPayoutSyncTrigger(DefaultPayoutSyncTriggerConfig(), nil, nil, zap.NewNop())
	assert.NoError(t, trigger.Stop(context.Background()))
}
