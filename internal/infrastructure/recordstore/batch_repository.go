package recordstore

import (
	"context"
	"sync"
	"time"

	"github.com/pulse-platform/production-service/pkg/errors"

	"github.com/pulse-platform/production-service/internal/domain"
)

// BatchRepository persists batches in the master table. The store
// assigns its own numeric row ids; the domain batch id is kept as a
// regular column and row ids are cached per batch for patching.
type BatchRepository struct {
	client *Client

	mu     sync.Mutex
	rowIDs map[string]int
}

// NewBatchRepository creates a new BatchRepository
func NewBatchRepository(client *Client) *BatchRepository {
	return &BatchRepository{
		client: client,
		rowIDs: make(map[string]int),
	}
}

// Save inserts a new batch master row.
func (r *BatchRepository) Save(ctx context.Context, batch *domain.Batch) error {
	ids, err := r.client.AddRecords(ctx, TableBatchMaster, []map[string]any{batchFields(batch)})
	if err != nil {
		return err
	}
	if len(ids) == 1 {
		r.cacheRowID(batch.ID, ids[0])
	}
	return nil
}

// Update patches the existing master row of the batch.
func (r *BatchRepository) Update(ctx context.Context, batch *domain.Batch) error {
	rowID, err := r.rowID(ctx, batch.ID)
	if err != nil {
		return err
	}
	return r.client.PatchRecord(ctx, TableBatchMaster, rowID, batchFields(batch))
}

// FindByID retrieves a batch by its domain id. Returns nil when the
// batch does not exist.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*domain.Batch, error) {
	return r.findOne(ctx, map[string]any{"batch_id": id})
}

// FindByBatchNumber retrieves a batch by its batch number.
func (r *BatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*domain.Batch, error) {
	return r.findOne(ctx, map[string]any{"batch_number": batchNumber})
}

// FindPendingApproval lists batches still awaiting a decision.
func (r *BatchRepository) FindPendingApproval(ctx context.Context) ([]*domain.Batch, error) {
	records, err := r.client.GetRecords(ctx, TableBatchMaster, map[string]any{
		"approval_status": string(domain.ApprovalPending),
	})
	if err != nil {
		return nil, err
	}
	return r.toBatches(records)
}

// FindApprovedUnscheduled lists approved batches without a scheduled
// date approved before the cutoff. The store cannot filter on absent
// dates, so the date checks happen client side.
func (r *BatchRepository) FindApprovedUnscheduled(ctx context.Context, approvedBefore time.Time) ([]*domain.Batch, error) {
	records, err := r.client.GetRecords(ctx, TableBatchMaster, map[string]any{
		"approval_status": string(domain.ApprovalApproved),
	})
	if err != nil {
		return nil, err
	}
	batches, err := r.toBatches(records)
	if err != nil {
		return nil, err
	}

	var result []*domain.Batch
	for _, batch := range batches {
		if batch.ScheduledDate != nil {
			continue
		}
		if batch.ApprovalDate != nil && batch.ApprovalDate.Before(approvedBefore) {
			result = append(result, batch)
		}
	}
	return result, nil
}

// ListBatchNumbers returns every batch number in the master table.
func (r *BatchRepository) ListBatchNumbers(ctx context.Context) ([]string, error) {
	records, err := r.client.GetRecords(ctx, TableBatchMaster, nil)
	if err != nil {
		return nil, err
	}

	numbers := make([]string, 0, len(records))
	for _, record := range records {
		if number := fieldString(record.Fields, "batch_number"); number != "" {
			numbers = append(numbers, number)
		}
	}
	return numbers, nil
}

func (r *BatchRepository) findOne(ctx context.Context, filter map[string]any) (*domain.Batch, error) {
	records, err := r.client.GetRecords(ctx, TableBatchMaster, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	batch, err := batchFromRecord(records[0])
	if err != nil {
		return nil, err
	}
	r.cacheRowID(batch.ID, records[0].ID)
	return batch, nil
}

func (r *BatchRepository) toBatches(records []Record) ([]*domain.Batch, error) {
	batches := make([]*domain.Batch, 0, len(records))
	for _, record := range records {
		batch, err := batchFromRecord(record)
		if err != nil {
			return nil, err
		}
		r.cacheRowID(batch.ID, record.ID)
		batches = append(batches, batch)
	}
	return batches, nil
}

func (r *BatchRepository) cacheRowID(batchID string, rowID int) {
	r.mu.Lock()
	r.rowIDs[batchID] = rowID
	r.mu.Unlock()
}

func (r *BatchRepository) rowID(ctx context.Context, batchID string) (int, error) {
	r.mu.Lock()
	rowID, ok := r.rowIDs[batchID]
	r.mu.Unlock()
	if ok {
		return rowID, nil
	}

	records, err := r.client.GetRecords(ctx, TableBatchMaster, map[string]any{"batch_id": batchID})
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, errors.ErrNotFoundWithID("batch", batchID)
	}
	r.cacheRowID(batchID, records[0].ID)
	return records[0].ID, nil
}

func batchFields(b *domain.Batch) map[string]any {
	return map[string]any{
		"batch_id":        b.ID,
		"batch_number":    b.BatchNumber,
		"model_code":      b.ModelCode,
		"quantity":        b.Quantity,
		"include_ms":      b.IncludeMS,
		"include_cnc":     b.IncludeCNC,
		"include_store":   b.IncludeStore,
		"selected_parts":  domain.FormatPartIDList(b.SelectedParts),
		"created_by":      b.CreatedBy,
		"created_at":      b.CreatedAt.Unix(),
		"approval_status": string(b.ApprovalStatus),
		"approval_date":   timeField(b.ApprovalDate),
		"approved_by":     b.ApprovedBy,
		"overall_status":  b.OverallStatus,
		"scheduled_date":  timeField(b.ScheduledDate),
		"start_date":      timeField(b.StartDate),
		"completion_date": timeField(b.CompletionDate),
		"updated_at":      b.UpdatedAt.Unix(),
	}
}

func batchFromRecord(record Record) (*domain.Batch, error) {
	fields := record.Fields
	for _, required := range []string{"batch_id", "batch_number"} {
		if fieldString(fields, required) == "" {
			return nil, decodeError(TableBatchMaster, record.ID, required)
		}
	}
	batch := &domain.Batch{
		ID:             fieldString(fields, "batch_id"),
		BatchNumber:    fieldString(fields, "batch_number"),
		ModelCode:      fieldString(fields, "model_code"),
		Quantity:       fieldInt(fields, "quantity"),
		IncludeMS:      fieldBool(fields, "include_ms"),
		IncludeCNC:     fieldBool(fields, "include_cnc"),
		IncludeStore:   fieldBool(fields, "include_store"),
		SelectedParts:  domain.ParsePartIDList(fieldString(fields, "selected_parts")),
		CreatedBy:      fieldString(fields, "created_by"),
		ApprovalStatus: domain.ApprovalStatus(fieldString(fields, "approval_status")),
		ApprovalDate:   fieldTime(fields, "approval_date"),
		ApprovedBy:     fieldString(fields, "approved_by"),
		OverallStatus:  fieldString(fields, "overall_status"),
		ScheduledDate:  fieldTime(fields, "scheduled_date"),
		StartDate:      fieldTime(fields, "start_date"),
		CompletionDate: fieldTime(fields, "completion_date"),
	}
	if t := fieldTime(fields, "created_at"); t != nil {
		batch.CreatedAt = *t
	}
	if t := fieldTime(fields, "updated_at"); t != nil {
		batch.UpdatedAt = *t
	}
	return batch, nil
}
