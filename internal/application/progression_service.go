package application

import (
	"context"
	"fmt"

	"github.com/pulse-platform/production-service/pkg/errors"
	"github.com/pulse-platform/production-service/pkg/logging"
	"github.com/pulse-platform/production-service/pkg/metrics"

	"github.com/pulse-platform/production-service/internal/domain"
)

// ProgressionApplicationService moves work items along their stage
// routes and keeps the batch level status in step.
type ProgressionApplicationService struct {
	batches    domain.BatchRepository
	items      domain.WorkItemRepository
	history    domain.HistoryRepository
	catalog    domain.CatalogRepository
	publisher  domain.EventPublisher
	aggregator *StatusAggregator
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewProgressionApplicationService creates a new ProgressionApplicationService
func NewProgressionApplicationService(
	batches domain.BatchRepository,
	items domain.WorkItemRepository,
	history domain.HistoryRepository,
	catalog domain.CatalogRepository,
	publisher domain.EventPublisher,
	aggregator *StatusAggregator,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ProgressionApplicationService {
	return &ProgressionApplicationService{
		batches:    batches,
		items:      items,
		history:    history,
		catalog:    catalog,
		publisher:  publisher,
		aggregator: aggregator,
		metrics:    m,
		logger:     logger.WithComponent("progression_service"),
	}
}

// AdvanceStage moves a work item to the next stage of its route,
// records the transition and notifies the supervisors of the stage
// left behind and the stage entered. The work item write must
// succeed; history, notifications and the status rollup are best
// effort.
func (s *ProgressionApplicationService) AdvanceStage(ctx context.Context, cmd AdvanceStageCommand) (*AdvanceResultDTO, error) {
	item, err := s.items.FindByID(ctx, cmd.ItemID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get work item", "itemId", cmd.ItemID)
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("work item", cmd.ItemID)
	}

	batch, err := s.batches.FindByID(ctx, item.BatchID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get batch", "batchId", item.BatchID)
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	if batch == nil {
		return nil, errors.ErrNotFoundWithID("batch", item.BatchID)
	}

	completedStage := item.CurrentStage()
	oldStatus, err := item.Advance(cmd.Actor)
	if err != nil {
		switch err {
		case domain.ErrEmptyRoute:
			return nil, errors.ErrInvalidRoute(
				fmt.Sprintf("work item %s has no stage route", item.ID))
		case domain.ErrAlreadyTerminal:
			return nil, errors.ErrInvalidState(
				fmt.Sprintf("work item %s already passed its terminal stage", item.ID))
		default:
			return nil, errors.MapDomainError(err)
		}
	}

	if err := s.items.Update(ctx, item); err != nil {
		s.logger.WithError(err).Error("Failed to persist stage advance",
			"batchNumber", item.BatchNumber, "itemId", item.ID)
		return nil, fmt.Errorf("failed to advance stage: %w", err)
	}

	// Everything past the item write is best effort.
	entry := domain.NewWorkItemHistoryEntry(
		batch.ID, batch.BatchNumber, item.ID, oldStatus, item.Status, cmd.Actor, "stage advance")
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to append stage history",
			"batchNumber", item.BatchNumber, "itemId", item.ID)
	}

	s.publishStageEvents(ctx, item)

	overall := batch.OverallStatus
	if next, err := s.aggregator.Recompute(ctx, batch, cmd.Actor); err != nil {
		s.logger.WithError(err).Warn("Failed to recompute batch status", "batchNumber", batch.BatchNumber)
	} else {
		overall = next
	}

	s.metrics.RecordStageAdvance(completedStage)
	s.logger.Info("Advanced work item",
		"batchNumber", item.BatchNumber,
		"itemId", item.ID,
		"partName", item.PartName,
		"oldStatus", oldStatus,
		"newStatus", item.Status)
	return &AdvanceResultDTO{
		Item:          ToWorkItemDTO(item),
		OldStatus:     oldStatus,
		OverallStatus: overall,
	}, nil
}

// publishStageEvents resolves supervisor roles for the item's pending
// stage transition events and publishes them. An unmapped stage yields
// an empty role, which downstream treats as "no notification".
func (s *ProgressionApplicationService) publishStageEvents(ctx context.Context, item *domain.MSWorkItem) {
	roles, err := s.catalog.StageRoles(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load stage roles", "batchNumber", item.BatchNumber)
		roles = domain.StageRoleMap{}
	}

	for _, ev := range item.GetDomainEvents() {
		if st, ok := ev.(domain.StageTransitionEvent); ok {
			st.SupervisorRole = roles.ResolveSupervisorRole(st.StageName)
			ev = st
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.WithError(err).Warn("Failed to publish stage event",
				"batchNumber", item.BatchNumber,
				"eventType", ev.EventType())
		}
	}
	item.ClearDomainEvents()
}
