package marketplace

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// DisputeStatus is the lifecycle state of a dispute
type DisputeStatus string

const (
	DisputeOpen       DisputeStatus = "open"
	DisputeInProgress DisputeStatus = "in_progress"
	DisputeResolved   DisputeStatus = "resolved"
	DisputeClosed     DisputeStatus = "closed"
)

// IsValid checks if the dispute status is valid
func (s DisputeStatus) IsValid() bool {
	switch s {
	case DisputeOpen, DisputeInProgress, DisputeResolved, DisputeClosed:
		return true
	}
	return false
}

// CanTransitionTo checks if transition to the target status is allowed.
// An open dispute may be closed directly without being picked up.
func (s DisputeStatus) CanTransitionTo(target DisputeStatus) bool {
	switch s {
	case DisputeOpen:
		return target == DisputeInProgress || target == DisputeClosed
	case DisputeInProgress:
		return target == DisputeResolved || target == DisputeClosed
	case DisputeResolved, DisputeClosed:
		return false
	}
	return false
}

// DisputeOpener identifies which party opened the dispute
type DisputeOpener string

const (
	OpenedByBuyer  DisputeOpener = "buyer"
	OpenedBySeller DisputeOpener = "seller"
)

// Dispute tracks a buyer/seller disagreement over an order
type Dispute struct {
	shared.TenantAggregateRoot
	OrderID        uuid.UUID
	OpenerID       uuid.UUID
	Opener         DisputeOpener
	Reason         string
	Status         DisputeStatus
	AssigneeID     *uuid.UUID // Admin handling the dispute
	ResolutionNote string
	RefundIssued   bool
	ResolvedAt     *time.Time
}

// NewDispute opens a dispute over an order. Only the buyer or seller of the
// order may open one, and only for paid or completed orders.
func NewDispute(order *Order, openerID uuid.UUID, reason string) (*Dispute, error) {
	if order == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order is required")
	}
	if order.Status != OrderPaid && order.Status != OrderCompleted {
		return nil, shared.NewDomainError("ORDER_NOT_DISPUTABLE", "Only paid or completed orders can be disputed")
	}
	var opener DisputeOpener
	switch openerID {
	case order.BuyerID:
		opener = OpenedByBuyer
	case order.SellerID:
		opener = OpenedBySeller
	default:
		return nil, shared.NewDomainError("NOT_A_PARTY", "Only the buyer or seller can open a dispute")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("REASON_REQUIRED", "A dispute needs a reason")
	}
	if len(reason) > 5000 {
		return nil, shared.NewDomainError("INVALID_REASON", "Dispute reason cannot exceed 5000 characters")
	}

	return &Dispute{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(order.TenantID, openerID),
		OrderID:             order.ID,
		OpenerID:            openerID,
		Opener:              opener,
		Reason:              reason,
		Status:              DisputeOpen,
	}, nil
}

// PickUp assigns the dispute to an admin and moves it in progress
func (d *Dispute) PickUp(assigneeID uuid.UUID) error {
	if assigneeID == uuid.Nil {
		return shared.NewDomainError("INVALID_ASSIGNEE", "Assignee ID cannot be empty")
	}
	if !d.Status.CanTransitionTo(DisputeInProgress) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only open disputes can be picked up")
	}
	d.Status = DisputeInProgress
	d.AssigneeID = &assigneeID
	d.touch()
	return nil
}

// Resolve settles the dispute with a note, optionally issuing a refund.
// Emits DisputeResolvedEvent for the ledger to pick up.
func (d *Dispute) Resolve(note string, issueRefund bool) error {
	if !d.Status.CanTransitionTo(DisputeResolved) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only in-progress disputes can be resolved")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.NewDomainError("RESOLUTION_NOTE_REQUIRED", "Resolving a dispute requires a note")
	}
	now := time.Now()
	d.Status = DisputeResolved
	d.ResolutionNote = note
	d.RefundIssued = issueRefund
	d.ResolvedAt = &now
	d.touch()
	d.AddDomainEvent(NewDisputeResolvedEvent(d))
	return nil
}

// Close dismisses the dispute without a resolution
func (d *Dispute) Close(note string) error {
	if !d.Status.CanTransitionTo(DisputeClosed) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Dispute cannot be closed from its current status")
	}
	d.Status = DisputeClosed
	d.ResolutionNote = strings.TrimSpace(note)
	d.touch()
	return nil
}

// IsOpen reports whether the dispute still needs attention
func (d *Dispute) IsOpen() bool {
	return d.Status == DisputeOpen || d.Status == DisputeInProgress
}

func (d *Dispute) touch() {
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}
