package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity types recorded in the status history trail. The CNC and
// store systems write "CNC" and "Store" into the same table, so the
// vocabulary is shared, not ours to rename.
const (
	EntityBatch    = "Master"
	EntityWorkItem = "MS"
)

// StatusHistoryEntry is one audit trail row recording a status
// transition on a batch or one of its work items.
type StatusHistoryEntry struct {
	ID          string
	BatchID     string
	BatchNumber string
	EntityType  string
	EntityID    string
	OldStatus   string
	NewStatus   string
	ChangedBy   string
	ChangedAt   time.Time
	Note        string
}

// NewStatusHistoryEntry records a transition on the batch itself.
func NewStatusHistoryEntry(batchID, batchNumber, oldStatus, newStatus, changedBy, note string) StatusHistoryEntry {
	return StatusHistoryEntry{
		ID:          uuid.New().String(),
		BatchID:     batchID,
		BatchNumber: batchNumber,
		EntityType:  EntityBatch,
		EntityID:    batchID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedBy:   changedBy,
		ChangedAt:   time.Now().UTC(),
		Note:        note,
	}
}

// NewWorkItemHistoryEntry records a transition on a work item.
func NewWorkItemHistoryEntry(batchID, batchNumber, itemID, oldStatus, newStatus, changedBy, note string) StatusHistoryEntry {
	return StatusHistoryEntry{
		ID:          uuid.New().String(),
		BatchID:     batchID,
		BatchNumber: batchNumber,
		EntityType:  EntityWorkItem,
		EntityID:    itemID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedBy:   changedBy,
		ChangedAt:   time.Now().UTC(),
		Note:        note,
	}
}
