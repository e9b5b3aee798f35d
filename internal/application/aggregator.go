package application

import (
	"context"
	"fmt"

	"github.com/pulse-platform/production-service/pkg/logging"

	"github.com/pulse-platform/production-service/internal/domain"
)

// StatusAggregator rolls child work item statuses up into the batch
// level status after each mutation. Recomputation is idempotent:
// running it twice in a row changes nothing.
type StatusAggregator struct {
	batches   domain.BatchRepository
	items     domain.WorkItemRepository
	history   domain.HistoryRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
}

// NewStatusAggregator creates a new StatusAggregator
func NewStatusAggregator(
	batches domain.BatchRepository,
	items domain.WorkItemRepository,
	history domain.HistoryRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *StatusAggregator {
	return &StatusAggregator{
		batches:   batches,
		items:     items,
		history:   history,
		publisher: publisher,
		logger:    logger.WithComponent("status_aggregator"),
	}
}

// Recompute reloads the batch's child statuses, derives the overall
// status and persists it when it changed. History and event
// publication are best effort; only the master write can fail the
// recompute.
func (a *StatusAggregator) Recompute(ctx context.Context, batch *domain.Batch, actor string) (string, error) {
	childStatuses, err := a.items.ChildStatuses(ctx, batch.ID)
	if err != nil {
		return batch.OverallStatus, fmt.Errorf("failed to load child statuses for %s: %w", batch.BatchNumber, err)
	}

	old := batch.OverallStatus
	next := domain.ComputeOverallStatus(batch.ApprovalStatus, childStatuses, old)
	if !batch.SetOverallStatus(next) {
		return old, nil
	}

	if err := a.batches.Update(ctx, batch); err != nil {
		return old, fmt.Errorf("failed to persist status %q for %s: %w", next, batch.BatchNumber, err)
	}

	entries := []domain.StatusHistoryEntry{
		domain.NewStatusHistoryEntry(batch.ID, batch.BatchNumber, old, next, actor, "status rollup"),
	}
	if next == domain.StatusCompleted {
		entries = append(entries,
			domain.NewStatusHistoryEntry(batch.ID, batch.BatchNumber, next, next, actor, "batch completed"))
	}
	if err := a.history.Append(ctx, entries...); err != nil {
		a.logger.WithError(err).Warn("Failed to append status history", "batchNumber", batch.BatchNumber)
	}

	if err := a.publisher.PublishAll(ctx, batch.GetDomainEvents()); err != nil {
		a.logger.WithError(err).Warn("Failed to publish status events", "batchNumber", batch.BatchNumber)
	}
	batch.ClearDomainEvents()

	a.logger.Info("Batch status recomputed",
		"batchNumber", batch.BatchNumber,
		"oldStatus", old,
		"newStatus", next,
		"childCount", len(childStatuses))
	return next, nil
}
