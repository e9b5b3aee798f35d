package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for production domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new PulseCloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *PulseCloudEvent {
	event := &PulseCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		Extensions:      make(map[string]interface{}),
	}

	return event
}

// CreateEventWithCorrelation creates an event with correlation tracking
func (f *EventFactory) CreateEventWithCorrelation(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	correlationID string,
) *PulseCloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.CorrelationID = correlationID
	return event
}

// WithRecipients sets notification fan-out context and returns the event
func (e *PulseCloudEvent) WithRecipients(mode RecipientMode, roles []string) *PulseCloudEvent {
	e.RecipientMode = mode
	e.RecipientRoles = roles
	return e
}

// CreateBatchCreatedEvent creates a BatchCreated event
func (f *EventFactory) CreateBatchCreatedEvent(
	ctx context.Context,
	batchID string,
	batchNumber string,
	modelCode string,
	processCode string,
	quantity int,
	createdBy string,
) *PulseCloudEvent {
	data := BatchCreatedData{
		BatchID:     batchID,
		BatchNumber: batchNumber,
		ModelCode:   modelCode,
		ProcessCode: processCode,
		Quantity:    quantity,
		CreatedBy:   createdBy,
	}
	event := f.CreateEvent(ctx, BatchCreated, "batch/"+batchNumber, data)
	event.BatchNumber = batchNumber
	return event
}

// CreateBatchApprovedEvent creates a BatchApproved event
func (f *EventFactory) CreateBatchApprovedEvent(
	ctx context.Context,
	batchID string,
	batchNumber string,
	approvedBy string,
	overallStatus string,
	itemCount int,
) *PulseCloudEvent {
	data := BatchApprovalData{
		BatchID:       batchID,
		BatchNumber:   batchNumber,
		DecidedBy:     approvedBy,
		OverallStatus: overallStatus,
		ItemCount:     itemCount,
	}
	event := f.CreateEvent(ctx, BatchApproved, "batch/"+batchNumber, data)
	event.BatchNumber = batchNumber
	return event
}

// CreateBatchRejectedEvent creates a BatchRejected event
func (f *EventFactory) CreateBatchRejectedEvent(
	ctx context.Context,
	batchID string,
	batchNumber string,
	rejectedBy string,
	reason string,
) *PulseCloudEvent {
	data := BatchApprovalData{
		BatchID:       batchID,
		BatchNumber:   batchNumber,
		DecidedBy:     rejectedBy,
		OverallStatus: "Batch Rejected",
		Reason:        reason,
	}
	event := f.CreateEvent(ctx, BatchRejected, "batch/"+batchNumber, data)
	event.BatchNumber = batchNumber
	return event
}

// CreateStageTransitionEvent creates a StagePending or StageCompleted event
func (f *EventFactory) CreateStageTransitionEvent(
	ctx context.Context,
	eventType string,
	batchNumber string,
	itemID string,
	partName string,
	stageName string,
	stageIndex int,
	statusLabel string,
	movedBy string,
) *PulseCloudEvent {
	data := StageTransitionData{
		BatchNumber: batchNumber,
		ItemID:      itemID,
		PartName:    partName,
		StageName:   stageName,
		StageIndex:  stageIndex,
		StatusLabel: statusLabel,
		MovedBy:     movedBy,
	}
	event := f.CreateEvent(ctx, eventType, "batch/"+batchNumber+"/item/"+itemID, data)
	event.BatchNumber = batchNumber
	return event
}

// CreateBatchStatusChangedEvent creates a BatchStatusChanged event
func (f *EventFactory) CreateBatchStatusChangedEvent(
	ctx context.Context,
	batchID string,
	batchNumber string,
	previousStatus string,
	newStatus string,
) *PulseCloudEvent {
	data := BatchStatusChangedData{
		BatchID:        batchID,
		BatchNumber:    batchNumber,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
	}
	event := f.CreateEvent(ctx, BatchStatusChanged, "batch/"+batchNumber, data)
	event.BatchNumber = batchNumber
	return event
}

// CreateBatchNotScheduledEvent creates a BatchNotScheduledReminder event
func (f *EventFactory) CreateBatchNotScheduledEvent(
	ctx context.Context,
	batchID string,
	batchNumber string,
	approvedAt time.Time,
	ageDays int,
) *PulseCloudEvent {
	data := BatchNotScheduledData{
		BatchID:     batchID,
		BatchNumber: batchNumber,
		ApprovedAt:  approvedAt,
		AgeDays:     ageDays,
	}
	event := f.CreateEvent(ctx, BatchNotScheduledReminder, "batch/"+batchNumber, data)
	event.BatchNumber = batchNumber
	return event
}
