package recordstore

import (
	"context"
	"sync"

	"github.com/pulse-platform/production-service/pkg/errors"

	"github.com/pulse-platform/production-service/internal/domain"
)

// WorkItemRepository persists exploded machine-shop rows.
type WorkItemRepository struct {
	client *Client

	mu     sync.Mutex
	rowIDs map[string]int
}

// NewWorkItemRepository creates a new WorkItemRepository
func NewWorkItemRepository(client *Client) *WorkItemRepository {
	return &WorkItemRepository{
		client: client,
		rowIDs: make(map[string]int),
	}
}

// SaveAll inserts a set of work item rows.
func (r *WorkItemRepository) SaveAll(ctx context.Context, items []*domain.MSWorkItem) error {
	if len(items) == 0 {
		return nil
	}

	fields := make([]map[string]any, 0, len(items))
	for _, item := range items {
		fields = append(fields, workItemFields(item))
	}

	ids, err := r.client.AddRecords(ctx, TableBatchMS, fields)
	if err != nil {
		return err
	}
	if len(ids) == len(items) {
		for i, item := range items {
			r.cacheRowID(item.ID, ids[i])
		}
	}
	return nil
}

// Update patches the existing row of the work item.
func (r *WorkItemRepository) Update(ctx context.Context, item *domain.MSWorkItem) error {
	rowID, err := r.rowID(ctx, item.ID)
	if err != nil {
		return err
	}
	return r.client.PatchRecord(ctx, TableBatchMS, rowID, workItemFields(item))
}

// FindByID retrieves a work item by its domain id. Returns nil when
// the item does not exist.
func (r *WorkItemRepository) FindByID(ctx context.Context, id string) (*domain.MSWorkItem, error) {
	records, err := r.client.GetRecords(ctx, TableBatchMS, map[string]any{"item_id": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	item, err := workItemFromRecord(records[0])
	if err != nil {
		return nil, err
	}
	r.cacheRowID(item.ID, records[0].ID)
	return item, nil
}

// FindByBatchID lists every work item of a batch.
func (r *WorkItemRepository) FindByBatchID(ctx context.Context, batchID string) ([]*domain.MSWorkItem, error) {
	records, err := r.client.GetRecords(ctx, TableBatchMS, map[string]any{"batch_id": batchID})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.MSWorkItem, 0, len(records))
	for _, record := range records {
		item, err := workItemFromRecord(record)
		if err != nil {
			return nil, err
		}
		r.cacheRowID(item.ID, record.ID)
		items = append(items, item)
	}
	return items, nil
}

// ChildStatuses collects the status labels of every child row of the
// batch across the machine-shop, CNC and store tables. CNC and store
// rows are owned by other systems; only their status column is read.
func (r *WorkItemRepository) ChildStatuses(ctx context.Context, batchID string) ([]string, error) {
	statuses := make([]string, 0)
	for _, table := range []string{TableBatchMS, TableBatchCNC, TableBatchStore} {
		records, err := r.client.GetRecords(ctx, table, map[string]any{"batch_id": batchID})
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			statuses = append(statuses, fieldString(record.Fields, "status"))
		}
	}
	return statuses, nil
}

func (r *WorkItemRepository) cacheRowID(itemID string, rowID int) {
	r.mu.Lock()
	r.rowIDs[itemID] = rowID
	r.mu.Unlock()
}

func (r *WorkItemRepository) rowID(ctx context.Context, itemID string) (int, error) {
	r.mu.Lock()
	rowID, ok := r.rowIDs[itemID]
	r.mu.Unlock()
	if ok {
		return rowID, nil
	}

	records, err := r.client.GetRecords(ctx, TableBatchMS, map[string]any{"item_id": itemID})
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, errors.ErrNotFoundWithID("work item", itemID)
	}
	r.cacheRowID(itemID, records[0].ID)
	return records[0].ID, nil
}

func workItemFields(item *domain.MSWorkItem) map[string]any {
	return map[string]any{
		"item_id":        item.ID,
		"batch_id":       item.BatchID,
		"batch_number":   item.BatchNumber,
		"part_name":      item.PartName,
		"material_name":  item.Material,
		"post_process":   item.Route.String(),
		"required_qty":   item.RequiredQty,
		"stage_index":    item.StageIndex,
		"stage_name":     item.StageName,
		"status":         item.Status,
		"start_date":     timeField(item.StartDate),
		"scheduled_date": timeField(item.ScheduledDate),
		"created_at":     item.CreatedAt.Unix(),
		"updated_at":     item.UpdatedAt.Unix(),
		"updated_by":     item.UpdatedBy,
	}
}

func workItemFromRecord(record Record) (*domain.MSWorkItem, error) {
	fields := record.Fields
	for _, required := range []string{"item_id", "batch_id"} {
		if fieldString(fields, required) == "" {
			return nil, decodeError(TableBatchMS, record.ID, required)
		}
	}
	item := &domain.MSWorkItem{
		ID:            fieldString(fields, "item_id"),
		BatchID:       fieldString(fields, "batch_id"),
		BatchNumber:   fieldString(fields, "batch_number"),
		PartName:      fieldString(fields, "part_name"),
		Material:      fieldString(fields, "material_name"),
		Route:         domain.ParseRoute(fieldString(fields, "post_process")),
		RequiredQty:   fieldFloat(fields, "required_qty"),
		StageIndex:    fieldInt(fields, "stage_index"),
		StageName:     fieldString(fields, "stage_name"),
		Status:        fieldString(fields, "status"),
		StartDate:     fieldTime(fields, "start_date"),
		ScheduledDate: fieldTime(fields, "scheduled_date"),
		UpdatedBy:     fieldString(fields, "updated_by"),
	}
	if t := fieldTime(fields, "created_at"); t != nil {
		item.CreatedAt = *t
	}
	if t := fieldTime(fields, "updated_at"); t != nil {
		item.UpdatedAt = *t
	}
	return item, nil
}
