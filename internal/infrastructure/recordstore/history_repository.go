package recordstore

import (
	"context"

	"github.com/pulse-platform/production-service/internal/domain"
)

// HistoryRepository appends to the status history table. Rows are
// write-once; nothing ever patches them.
type HistoryRepository struct {
	client *Client
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(client *Client) *HistoryRepository {
	return &HistoryRepository{client: client}
}

// Append records one or more history entries.
func (r *HistoryRepository) Append(ctx context.Context, entries ...domain.StatusHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	fields := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		fields = append(fields, map[string]any{
			"entry_id":     entry.ID,
			"batch_id":     entry.BatchID,
			"batch_number": entry.BatchNumber,
			"entity_type":  entry.EntityType,
			"entity_id":    entry.EntityID,
			"old_status":   entry.OldStatus,
			"new_status":   entry.NewStatus,
			"changed_by":   entry.ChangedBy,
			"changed_at":   entry.ChangedAt.Unix(),
			"note":         entry.Note,
		})
	}

	_, err := r.client.AddRecords(ctx, TableStatusHistory, fields)
	return err
}
