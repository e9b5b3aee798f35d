package application

import (
	"context"
	"fmt"
	"time"

	"github.com/pulse-platform/production-service/pkg/errors"
	"github.com/pulse-platform/production-service/pkg/logging"
	"github.com/pulse-platform/production-service/pkg/metrics"

	"github.com/pulse-platform/production-service/internal/domain"
)

// BatchApplicationService handles the batch lifecycle use cases:
// creation, approval decisions, scheduling and queries.
type BatchApplicationService struct {
	batches   domain.BatchRepository
	items     domain.WorkItemRepository
	history   domain.HistoryRepository
	catalog   domain.CatalogRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewBatchApplicationService creates a new BatchApplicationService
func NewBatchApplicationService(
	batches domain.BatchRepository,
	items domain.WorkItemRepository,
	history domain.HistoryRepository,
	catalog domain.CatalogRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *BatchApplicationService {
	return &BatchApplicationService{
		batches:   batches,
		items:     items,
		history:   history,
		catalog:   catalog,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent("batch_service"),
	}
}

// CreateBatch creates a new production batch pending approval and
// allocates its batch number within the current period.
func (s *BatchApplicationService) CreateBatch(ctx context.Context, cmd CreateBatchCommand) (*BatchDTO, error) {
	config, err := s.catalog.Config(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load production config, using defaults")
		config = domain.ProductionConfig{}
	}

	minQty := config.EffectiveMinQuantity()
	maxQty := config.EffectiveMaxQuantity()
	if cmd.Quantity < minQty || cmd.Quantity > maxQty {
		return nil, errors.ErrValidation(
			fmt.Sprintf("quantity must be between %d and %d", minQty, maxQty))
	}

	batch, err := domain.NewBatch(cmd.ModelCode, cmd.Quantity, cmd.IncludeMS, cmd.IncludeCNC, cmd.IncludeStore, cmd.SelectedParts, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	existing, err := s.batches.ListBatchNumbers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list batch numbers")
		return nil, fmt.Errorf("failed to allocate batch number: %w", err)
	}
	batch.BatchNumber = domain.NextBatchNumber(existing, domain.PeriodKey(time.Now()), batch.ModelCode, batch.ProcessCode())

	if err := s.batches.Save(ctx, batch); err != nil {
		s.logger.WithError(err).Error("Failed to save batch", "batchNumber", batch.BatchNumber)
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	s.appendHistory(ctx, domain.NewStatusHistoryEntry(
		batch.ID, batch.BatchNumber, "", domain.StatusPendingApproval, cmd.CreatedBy, "batch created"))

	event := domain.NewBatchCreatedEvent(batch.ID, batch.BatchNumber, batch.ModelCode, batch.Quantity, cmd.CreatedBy)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish batch created event", "batchNumber", batch.BatchNumber)
	}

	s.metrics.RecordBatchCreated(batch.ModelCode)
	s.logger.Info("Created batch",
		"batchNumber", batch.BatchNumber,
		"modelCode", batch.ModelCode,
		"quantity", batch.Quantity)
	return ToBatchDTO(batch), nil
}

// ApproveBatch approves a pending batch, explodes its machine-shop
// work items when the MS family is included, and reports both the
// refreshed master and the created items. Approving a batch that is
// no longer pending approval returns the unchanged state.
func (s *BatchApplicationService) ApproveBatch(ctx context.Context, cmd ApproveBatchCommand) (*ApprovalResultDTO, error) {
	batch, err := s.loadBatch(ctx, cmd.BatchID)
	if err != nil {
		return nil, err
	}

	oldOverall := batch.OverallStatus
	if !batch.Approve(cmd.Actor) {
		s.logger.Info("Approve ignored, batch not pending",
			"batchNumber", batch.BatchNumber,
			"approvalStatus", batch.ApprovalStatus)
		return &ApprovalResultDTO{Batch: *ToBatchDTO(batch), Changed: false}, nil
	}

	if err := s.batches.Update(ctx, batch); err != nil {
		s.logger.WithError(err).Error("Failed to persist approval", "batchNumber", batch.BatchNumber)
		return nil, fmt.Errorf("failed to approve batch: %w", err)
	}

	// Everything past the master write is best effort.
	s.appendHistory(ctx, domain.NewStatusHistoryEntry(
		batch.ID, batch.BatchNumber, string(domain.ApprovalPending), string(domain.ApprovalApproved), cmd.Actor, "approval decision"))
	if oldOverall != batch.OverallStatus {
		s.appendHistory(ctx, domain.NewStatusHistoryEntry(
			batch.ID, batch.BatchNumber, oldOverall, batch.OverallStatus, cmd.Actor, "approval decision"))
	}

	var itemDTOs []WorkItemDTO
	if batch.IncludeMS {
		created, err := s.explodeWorkItems(ctx, batch)
		if err != nil {
			s.logger.WithError(err).Error("Failed to explode work items", "batchNumber", batch.BatchNumber)
		} else {
			itemDTOs = ToWorkItemDTOs(created)
		}
	}

	if err := s.publisher.PublishAll(ctx, batch.GetDomainEvents()); err != nil {
		s.logger.WithError(err).Warn("Failed to publish approval events", "batchNumber", batch.BatchNumber)
	}
	batch.ClearDomainEvents()

	s.metrics.RecordBatchDecided("approved")
	s.logger.Audit(ctx, "approve", "batch", batch.BatchNumber, cmd.Actor, map[string]any{
		"workItems": len(itemDTOs),
	})
	return &ApprovalResultDTO{Batch: *ToBatchDTO(batch), Changed: true, WorkItems: itemDTOs}, nil
}

// RejectBatch rejects a pending batch. No work items are ever created
// for a rejected batch. Rejecting a batch that is no longer pending
// approval returns the unchanged state.
func (s *BatchApplicationService) RejectBatch(ctx context.Context, cmd RejectBatchCommand) (*ApprovalResultDTO, error) {
	batch, err := s.loadBatch(ctx, cmd.BatchID)
	if err != nil {
		return nil, err
	}

	oldOverall := batch.OverallStatus
	if !batch.Reject(cmd.Actor, cmd.Reason) {
		s.logger.Info("Reject ignored, batch not pending",
			"batchNumber", batch.BatchNumber,
			"approvalStatus", batch.ApprovalStatus)
		return &ApprovalResultDTO{Batch: *ToBatchDTO(batch), Changed: false}, nil
	}

	if err := s.batches.Update(ctx, batch); err != nil {
		s.logger.WithError(err).Error("Failed to persist rejection", "batchNumber", batch.BatchNumber)
		return nil, fmt.Errorf("failed to reject batch: %w", err)
	}

	s.appendHistory(ctx, domain.NewStatusHistoryEntry(
		batch.ID, batch.BatchNumber, string(domain.ApprovalPending), string(domain.ApprovalRejected), cmd.Actor, cmd.Reason))
	if oldOverall != batch.OverallStatus {
		s.appendHistory(ctx, domain.NewStatusHistoryEntry(
			batch.ID, batch.BatchNumber, oldOverall, batch.OverallStatus, cmd.Actor, cmd.Reason))
	}

	if err := s.publisher.PublishAll(ctx, batch.GetDomainEvents()); err != nil {
		s.logger.WithError(err).Warn("Failed to publish rejection events", "batchNumber", batch.BatchNumber)
	}
	batch.ClearDomainEvents()

	s.metrics.RecordBatchDecided("rejected")
	s.logger.Audit(ctx, "reject", "batch", batch.BatchNumber, cmd.Actor, map[string]any{
		"reason": cmd.Reason,
	})
	return &ApprovalResultDTO{Batch: *ToBatchDTO(batch), Changed: true}, nil
}

// ScheduleBatch stamps the scheduled production date on an approved
// batch and mirrors it onto its work items.
func (s *BatchApplicationService) ScheduleBatch(ctx context.Context, cmd ScheduleBatchCommand) (*BatchDTO, error) {
	batch, err := s.loadBatch(ctx, cmd.BatchID)
	if err != nil {
		return nil, err
	}

	oldOverall := batch.OverallStatus
	if err := batch.Schedule(cmd.ScheduledDate); err != nil {
		return nil, errors.ErrInvalidState(
			fmt.Sprintf("batch %s cannot be scheduled: %s", batch.BatchNumber, err.Error()))
	}

	if err := s.batches.Update(ctx, batch); err != nil {
		s.logger.WithError(err).Error("Failed to persist schedule", "batchNumber", batch.BatchNumber)
		return nil, fmt.Errorf("failed to schedule batch: %w", err)
	}

	// Mirror the date onto work items, best effort per row.
	items, err := s.items.FindByBatchID(ctx, batch.ID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load work items for scheduling", "batchNumber", batch.BatchNumber)
	} else {
		for _, item := range items {
			item.SetScheduledDate(cmd.ScheduledDate)
			if err := s.items.Update(ctx, item); err != nil {
				s.logger.WithError(err).Warn("Failed to stamp scheduled date",
					"batchNumber", batch.BatchNumber, "itemId", item.ID)
			}
		}
	}

	if oldOverall != batch.OverallStatus {
		s.appendHistory(ctx, domain.NewStatusHistoryEntry(
			batch.ID, batch.BatchNumber, oldOverall, batch.OverallStatus, cmd.Actor, "production scheduled"))
	}

	s.logger.Info("Scheduled batch",
		"batchNumber", batch.BatchNumber,
		"scheduledDate", cmd.ScheduledDate.Format("2006-01-02"))
	return ToBatchDTO(batch), nil
}

// GetBatch retrieves a batch by record id.
func (s *BatchApplicationService) GetBatch(ctx context.Context, query GetBatchQuery) (*BatchDTO, error) {
	batch, err := s.loadBatch(ctx, query.BatchID)
	if err != nil {
		return nil, err
	}
	return ToBatchDTO(batch), nil
}

// GetBatchByNumber retrieves a batch by its batch number.
func (s *BatchApplicationService) GetBatchByNumber(ctx context.Context, query GetBatchByNumberQuery) (*BatchDTO, error) {
	batch, err := s.batches.FindByBatchNumber(ctx, query.BatchNumber)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get batch", "batchNumber", query.BatchNumber)
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	if batch == nil {
		return nil, errors.ErrNotFoundWithID("batch", query.BatchNumber)
	}
	return ToBatchDTO(batch), nil
}

// ListPendingApproval lists batches still awaiting a decision.
func (s *BatchApplicationService) ListPendingApproval(ctx context.Context) ([]BatchListDTO, error) {
	batches, err := s.batches.FindPendingApproval(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list pending batches")
		return nil, fmt.Errorf("failed to list pending batches: %w", err)
	}
	return ToBatchListDTOs(batches), nil
}

// ListWorkItems lists every work item of a batch.
func (s *BatchApplicationService) ListWorkItems(ctx context.Context, query ListWorkItemsQuery) ([]WorkItemDTO, error) {
	batch, err := s.loadBatch(ctx, query.BatchID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.FindByBatchID(ctx, batch.ID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list work items", "batchNumber", batch.BatchNumber)
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	return ToWorkItemDTOs(items), nil
}

// explodeWorkItems resolves the affected part set, groups the matching
// route rows by part, material and route, and creates one work item
// per group with the summed required quantity. Explosion is guarded
// against duplicates: a batch that already has work items is skipped.
func (s *BatchApplicationService) explodeWorkItems(ctx context.Context, batch *domain.Batch) ([]*domain.MSWorkItem, error) {
	existing, err := s.items.FindByBatchID(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing work items: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Warn("Work items already exist, skipping explosion",
			"batchNumber", batch.BatchNumber, "count", len(existing))
		return nil, nil
	}

	parts, err := s.catalog.ModelParts(ctx, batch.ModelCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load model parts: %w", err)
	}

	partIDs := batch.SelectedParts
	if len(partIDs) == 0 {
		partIDs = make([]string, 0, len(parts))
		for _, p := range parts {
			partIDs = append(partIDs, p.ID)
		}
	}
	if len(partIDs) == 0 {
		s.logger.Warn("No parts to explode", "batchNumber", batch.BatchNumber)
		return nil, nil
	}

	rows, err := s.catalog.MSRoutes(ctx, partIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing rows: %w", err)
	}

	type group struct {
		partName string
		material string
		route    domain.Route
		qty      float64
	}
	groups := make(map[string]*group)
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		route := domain.ParseRoute(row.PostProcess)
		if route.IsEmpty() {
			s.logger.Warn("Routing row has no route, skipping",
				"batchNumber", batch.BatchNumber, "partName", row.PartName)
			continue
		}
		key := row.PartName + "|" + row.Material + "|" + route.String()
		g, ok := groups[key]
		if !ok {
			g = &group{partName: row.PartName, material: row.Material, route: route}
			groups[key] = g
			order = append(order, key)
		}
		g.qty += row.QtyPerUnit * float64(batch.Quantity)
	}

	items := make([]*domain.MSWorkItem, 0, len(order))
	for _, key := range order {
		g := groups[key]
		item, err := domain.NewMSWorkItem(batch.ID, batch.BatchNumber, g.partName, g.material, g.route, g.qty)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping work item",
				"batchNumber", batch.BatchNumber, "partName", g.partName)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, nil
	}

	if err := s.items.SaveAll(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to save work items: %w", err)
	}

	s.metrics.RecordItemsExploded(len(items))
	s.logger.Info("Exploded work items",
		"batchNumber", batch.BatchNumber,
		"count", len(items))
	return items, nil
}

func (s *BatchApplicationService) loadBatch(ctx context.Context, batchID string) (*domain.Batch, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get batch", "batchId", batchID)
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	if batch == nil {
		return nil, errors.ErrNotFoundWithID("batch", batchID)
	}
	return batch, nil
}

func (s *BatchApplicationService) appendHistory(ctx context.Context, entry domain.StatusHistoryEntry) {
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to append status history",
			"batchNumber", entry.BatchNumber,
			"newStatus", entry.NewStatus)
	}
}
