package marketplace

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptatrium/backend/internal/domain/marketplace"
	"github.com/promptatrium/backend/internal/domain/shared"
)

// DisputeService handles buyer/seller disputes over orders
type DisputeService struct {
	disputeRepo marketplace.DisputeRepository
	orderRepo   marketplace.OrderRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewDisputeService creates a new dispute service
func NewDisputeService(
	disputeRepo marketplace.DisputeRepository,
	orderRepo marketplace.OrderRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *DisputeService {
	return &DisputeService{
		disputeRepo: disputeRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// OpenDispute opens a dispute over an order. An order carries at most one
// open dispute at a time.
func (s *DisputeService) OpenDispute(ctx context.Context, input OpenDisputeInput) (*marketplace.Dispute, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, input.TenantID, input.OrderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.disputeRepo.FindOpenByOrder(ctx, input.TenantID, input.OrderID)
	if err == nil && existing != nil {
		return nil, shared.NewDomainError("DISPUTE_EXISTS", "This order already has an open dispute")
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	dispute, err := marketplace.NewDispute(order, input.OpenerID, input.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		return nil, err
	}

	s.logger.Info("Dispute opened",
		zap.String("dispute_id", dispute.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("opener", string(dispute.Opener)))
	return dispute, nil
}

// GetDispute returns a dispute to one of the order's parties or its assignee
func (s *DisputeService) GetDispute(ctx context.Context, tenantID, disputeID, viewerID uuid.UUID) (*marketplace.Dispute, error) {
	dispute, err := s.disputeRepo.FindByIDForTenant(ctx, tenantID, disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.AssigneeID != nil && *dispute.AssigneeID == viewerID {
		return dispute, nil
	}
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, dispute.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != viewerID && order.SellerID != viewerID {
		return nil, shared.ErrNotFound
	}
	return dispute, nil
}

// ListDisputes returns a page of disputes for the moderation queue
func (s *DisputeService) ListDisputes(ctx context.Context, input ListDisputesInput) (*shared.Paginated[marketplace.Dispute], error) {
	filter := marketplace.DisputeFilter{Filter: shared.DefaultFilter()}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.AssigneeID = input.AssigneeID
	filter.Status = input.Status
	filter.OpenOnly = input.OpenOnly

	disputes, err := s.disputeRepo.FindAllForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.disputeRepo.CountForTenant(ctx, input.TenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(disputes, total, filter.Page, filter.PageSize)
	return &result, nil
}

// PickUpDispute assigns an open dispute to an admin
func (s *DisputeService) PickUpDispute(ctx context.Context, tenantID, disputeID, assigneeID uuid.UUID) (*marketplace.Dispute, error) {
	dispute, err := s.disputeRepo.FindByIDForTenant(ctx, tenantID, disputeID)
	if err != nil {
		return nil, err
	}
	if err := dispute.PickUp(assigneeID); err != nil {
		return nil, err
	}
	if err := s.disputeRepo.SaveWithLock(ctx, dispute); err != nil {
		return nil, err
	}
	return dispute, nil
}

// ResolveDispute settles a dispute. With a refund the order is reversed and
// its refunded event drives the ledger entries.
func (s *DisputeService) ResolveDispute(ctx context.Context, input ResolveDisputeInput) (*marketplace.Dispute, error) {
	dispute, err := s.disputeRepo.FindByIDForTenant(ctx, input.TenantID, input.DisputeID)
	if err != nil {
		return nil, err
	}
	if dispute.AssigneeID == nil || *dispute.AssigneeID != input.AssigneeID {
		return nil, shared.ErrForbidden
	}

	var order *marketplace.Order
	if input.IssueRefund {
		order, err = s.orderRepo.FindByIDForTenant(ctx, input.TenantID, dispute.OrderID)
		if err != nil {
			return nil, err
		}
		if err := order.Refund(); err != nil {
			return nil, err
		}
	}

	if err := dispute.Resolve(input.Note, input.IssueRefund); err != nil {
		return nil, err
	}
	if err := s.disputeRepo.SaveWithLock(ctx, dispute); err != nil {
		return nil, err
	}
	if order != nil {
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, err
		}
		s.publishAll(ctx, order.GetDomainEvents())
		order.ClearDomainEvents()
	}
	s.publishAll(ctx, dispute.GetDomainEvents())
	dispute.ClearDomainEvents()

	s.logger.Info("Dispute resolved",
		zap.String("dispute_id", dispute.ID.String()),
		zap.Bool("refund_issued", input.IssueRefund))
	return dispute, nil
}

// CloseDispute dismisses a dispute without a resolution
func (s *DisputeService) CloseDispute(ctx context.Context, tenantID, disputeID uuid.UUID, note string) (*marketplace.Dispute, error) {
	dispute, err := s.disputeRepo.FindByIDForTenant(ctx, tenantID, disputeID)
	if err != nil {
		return nil, err
	}
	if err := dispute.Close(note); err != nil {
		return nil, err
	}
	if err := s.disputeRepo.SaveWithLock(ctx, dispute); err != nil {
		return nil, err
	}

	s.logger.Info("Dispute closed", zap.String("dispute_id", dispute.ID.String()))
	return dispute, nil
}

func (s *DisputeService) publishAll(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish dispute event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
