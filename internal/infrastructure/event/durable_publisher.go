package event

import (
	"context"

	"github.com/promptatrium/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// DurablePublisher implements shared.EventPublisher by writing events to the
// outbox table instead of dispatching them in-process. The OutboxProcessor
// picks them up and delivers them to the event bus, so events survive a
// crash between the state change and delivery.
type DurablePublisher struct {
	db    *gorm.DB
	inner *OutboxPublisher
}

// NewDurablePublisher creates a publisher backed by the outbox table
func NewDurablePublisher(db *gorm.DB, serializer *EventSerializer) *DurablePublisher {
	return &DurablePublisher{db: db, inner: NewOutboxPublisher(serializer)}
}

// Ensure DurablePublisher implements shared.EventPublisher
var _ shared.EventPublisher = (*DurablePublisher)(nil)

// Publish appends the events to the outbox in a single transaction
func (p *DurablePublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return p.inner.PublishWithTx(ctx, tx, events...)
	})
}
