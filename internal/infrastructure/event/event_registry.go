package event

import (
	"github.com/promptatrium/backend/internal/domain/billing"
	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/prompt"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Prompt domain events
	serializer.Register(prompt.EventPromptPublished, &prompt.PromptPublishedEvent{})
	serializer.Register(prompt.EventPromptRemoved, &prompt.PromptRemovedEvent{})

	// Marketplace domain events
	serializer.Register(marketplace.EventOrderCompleted, &marketplace.OrderCompletedEvent{})
	serializer.Register(marketplace.EventOrderRefunded, &marketplace.OrderRefundedEvent{})
	serializer.Register(marketplace.EventDisputeResolved, &marketplace.DisputeResolvedEvent{})

	// Billing domain events
	serializer.Register(billing.EventPayoutCompleted, &billing.PayoutCompletedEvent{})
}
