package domain

import "time"

// Domain event type identifiers. These flow through to the event bus
// unchanged, so downstream consumers depend on the exact strings.
const (
	EventTypeBatchCreated      = "production_batch_created"
	EventTypeBatchApproved     = "production_batch_approved"
	EventTypeBatchRejected     = "production_batch_rejected"
	EventTypeStagePending      = "ms_stage_pending"
	EventTypeStageCompleted    = "ms_stage_completed"
	EventTypeStatusChanged     = "batch_status_changed"
	EventTypeBatchNotScheduled = "production_batch_not_scheduled_reminder"
)

// DomainEvent is implemented by everything the domain layer raises.
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// BatchCreatedEvent is raised when a new batch enters pending approval.
type BatchCreatedEvent struct {
	BatchID     string
	BatchNumber string
	ModelCode   string
	Quantity    int
	CreatedBy   string
	Timestamp   time.Time
}

func NewBatchCreatedEvent(batchID, batchNumber, modelCode string, quantity int, createdBy string) BatchCreatedEvent {
	return BatchCreatedEvent{
		BatchID:     batchID,
		BatchNumber: batchNumber,
		ModelCode:   modelCode,
		Quantity:    quantity,
		CreatedBy:   createdBy,
		Timestamp:   time.Now().UTC(),
	}
}

func (e BatchCreatedEvent) EventType() string     { return EventTypeBatchCreated }
func (e BatchCreatedEvent) OccurredAt() time.Time { return e.Timestamp }

// BatchApprovedEvent is raised when a pending batch is approved.
type BatchApprovedEvent struct {
	BatchID       string
	BatchNumber   string
	ModelCode     string
	DecidedBy     string
	OverallStatus string
	Timestamp     time.Time
}

func NewBatchApprovedEvent(batchID, batchNumber, modelCode, decidedBy, overallStatus string) BatchApprovedEvent {
	return BatchApprovedEvent{
		BatchID:       batchID,
		BatchNumber:   batchNumber,
		ModelCode:     modelCode,
		DecidedBy:     decidedBy,
		OverallStatus: overallStatus,
		Timestamp:     time.Now().UTC(),
	}
}

func (e BatchApprovedEvent) EventType() string     { return EventTypeBatchApproved }
func (e BatchApprovedEvent) OccurredAt() time.Time { return e.Timestamp }

// BatchRejectedEvent is raised when a pending batch is rejected.
type BatchRejectedEvent struct {
	BatchID     string
	BatchNumber string
	ModelCode   string
	DecidedBy   string
	Reason      string
	Timestamp   time.Time
}

func NewBatchRejectedEvent(batchID, batchNumber, modelCode, decidedBy, reason string) BatchRejectedEvent {
	return BatchRejectedEvent{
		BatchID:     batchID,
		BatchNumber: batchNumber,
		ModelCode:   modelCode,
		DecidedBy:   decidedBy,
		Reason:      reason,
		Timestamp:   time.Now().UTC(),
	}
}

func (e BatchRejectedEvent) EventType() string     { return EventTypeBatchRejected }
func (e BatchRejectedEvent) OccurredAt() time.Time { return e.Timestamp }

// StageTransitionEvent carries a work item moving between stages.
// Pending and completed variants share the shape and differ only in
// event type. SupervisorRole is filled in by the application layer
// once the stage to role mapping is resolved; an empty role means no
// notification target.
type StageTransitionEvent struct {
	eventType      string
	BatchID        string
	BatchNumber    string
	ItemID         string
	PartName       string
	StageName      string
	StageIndex     int
	StatusLabel    string
	MovedBy        string
	SupervisorRole string
	Timestamp      time.Time
}

func NewStagePendingEvent(batchID, batchNumber, itemID, partName, stageName string, stageIndex int, statusLabel, movedBy string) StageTransitionEvent {
	return newStageTransitionEvent(EventTypeStagePending, batchID, batchNumber, itemID, partName, stageName, stageIndex, statusLabel, movedBy)
}

func NewStageCompletedEvent(batchID, batchNumber, itemID, partName, stageName string, stageIndex int, statusLabel, movedBy string) StageTransitionEvent {
	return newStageTransitionEvent(EventTypeStageCompleted, batchID, batchNumber, itemID, partName, stageName, stageIndex, statusLabel, movedBy)
}

func newStageTransitionEvent(eventType, batchID, batchNumber, itemID, partName, stageName string, stageIndex int, statusLabel, movedBy string) StageTransitionEvent {
	return StageTransitionEvent{
		eventType:   eventType,
		BatchID:     batchID,
		BatchNumber: batchNumber,
		ItemID:      itemID,
		PartName:    partName,
		StageName:   stageName,
		StageIndex:  stageIndex,
		StatusLabel: statusLabel,
		MovedBy:     movedBy,
		Timestamp:   time.Now().UTC(),
	}
}

func (e StageTransitionEvent) EventType() string     { return e.eventType }
func (e StageTransitionEvent) OccurredAt() time.Time { return e.Timestamp }

// BatchStatusChangedEvent is raised whenever the rolled-up batch
// status changes.
type BatchStatusChangedEvent struct {
	BatchID     string
	BatchNumber string
	OldStatus   string
	NewStatus   string
	Timestamp   time.Time
}

func NewBatchStatusChangedEvent(batchID, batchNumber, oldStatus, newStatus string) BatchStatusChangedEvent {
	return BatchStatusChangedEvent{
		BatchID:     batchID,
		BatchNumber: batchNumber,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Timestamp:   time.Now().UTC(),
	}
}

func (e BatchStatusChangedEvent) EventType() string     { return EventTypeStatusChanged }
func (e BatchStatusChangedEvent) OccurredAt() time.Time { return e.Timestamp }

// BatchNotScheduledEvent reminds supervisors about approved batches
// that were never scheduled.
type BatchNotScheduledEvent struct {
	BatchID     string
	BatchNumber string
	ApprovedAt  time.Time
	AgeDays     int
	Timestamp   time.Time
}

func NewBatchNotScheduledEvent(batchID, batchNumber string, approvedAt time.Time, ageDays int) BatchNotScheduledEvent {
	return BatchNotScheduledEvent{
		BatchID:     batchID,
		BatchNumber: batchNumber,
		ApprovedAt:  approvedAt,
		AgeDays:     ageDays,
		Timestamp:   time.Now().UTC(),
	}
}

func (e BatchNotScheduledEvent) EventType() string     { return EventTypeBatchNotScheduled }
func (e BatchNotScheduledEvent) OccurredAt() time.Time { return e.Timestamp }
