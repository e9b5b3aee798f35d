package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus tracks the approval decision on a batch.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending Approval"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// Overall batch statuses.
const (
	StatusPendingApproval = "Pending Approval"
	StatusSchedulePending = "Schedule Pending"
	StatusScheduled       = "Scheduled"
	StatusInProgress      = "In Progress"
	StatusCompleted       = "Completed"
	StatusBatchRejected   = "Batch Rejected"
)

// Process families a batch can span.
const (
	ProcessMS    = "MS"
	ProcessCNC   = "CNC"
	ProcessStore = "Store"
)

var (
	// ErrBatchNotFound indicates the requested batch does not exist
	ErrBatchNotFound = errors.New("batch not found")
	// ErrInvalidQuantity indicates the quantity is out of the configured range
	ErrInvalidQuantity = errors.New("invalid batch quantity")
	// ErrNoProcessSelected indicates no process family was included
	ErrNoProcessSelected = errors.New("at least one process must be selected")
	// ErrNotApproved indicates an operation requires an approved batch
	ErrNotApproved = errors.New("batch is not approved")
	// ErrWorkItemsExist indicates work items already exist for the batch
	ErrWorkItemsExist = errors.New("work items already exist for batch")
)

// Batch is the master record of a production batch. It owns the
// approval lifecycle and the overall status computed from its work
// items. Work items themselves are separate entities.
type Batch struct {
	ID             string
	BatchNumber    string
	ModelCode      string
	Quantity       int
	IncludeMS      bool
	IncludeCNC     bool
	IncludeStore   bool
	SelectedParts  []string
	CreatedBy      string
	CreatedAt      time.Time
	ApprovalStatus ApprovalStatus
	ApprovalDate   *time.Time
	ApprovedBy     string
	OverallStatus  string
	ScheduledDate  *time.Time
	StartDate      *time.Time
	CompletionDate *time.Time
	UpdatedAt      time.Time

	domainEvents []DomainEvent
}

// NewBatch creates a batch pending approval. The batch number is
// assigned by the caller via NextBatchNumber before persisting.
func NewBatch(modelCode string, quantity int, includeMS, includeCNC, includeStore bool, selectedParts []string, createdBy string) (*Batch, error) {
	if modelCode == "" {
		return nil, fmt.Errorf("model code is required")
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !includeMS && !includeCNC && !includeStore {
		return nil, ErrNoProcessSelected
	}

	now := time.Now().UTC()
	b := &Batch{
		ID:             uuid.New().String(),
		ModelCode:      modelCode,
		Quantity:       quantity,
		IncludeMS:      includeMS,
		IncludeCNC:     includeCNC,
		IncludeStore:   includeStore,
		SelectedParts:  selectedParts,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		ApprovalStatus: ApprovalPending,
		OverallStatus:  StatusPendingApproval,
		UpdatedAt:      now,
	}
	return b, nil
}

// ProcessCode derives the process segment of the batch number from the
// included families: "M" for MS, "C" for CNC, "S" for Store, in that
// order, or "NA" when none apply.
func (b *Batch) ProcessCode() string {
	code := ""
	if b.IncludeMS {
		code += "M"
	}
	if b.IncludeCNC {
		code += "C"
	}
	if b.IncludeStore {
		code += "S"
	}
	if code == "" {
		return "NA"
	}
	return code
}

// Approve transitions the batch from pending approval to approved and
// moves the overall status to schedule pending. Approving a batch
// that is not pending approval is a no-op; the returned bool reports
// whether the state changed.
func (b *Batch) Approve(actor string) bool {
	if b.ApprovalStatus != ApprovalPending {
		return false
	}

	now := time.Now().UTC()
	b.ApprovalStatus = ApprovalApproved
	b.ApprovalDate = &now
	b.ApprovedBy = actor
	b.StartDate = &now
	b.OverallStatus = StatusSchedulePending
	b.UpdatedAt = now

	b.AddDomainEvent(NewBatchApprovedEvent(b.ID, b.BatchNumber, b.ModelCode, actor, b.OverallStatus))
	return true
}

// Reject transitions the batch from pending approval to rejected.
// Rejecting a batch that is not pending approval is a no-op.
func (b *Batch) Reject(actor, reason string) bool {
	if b.ApprovalStatus != ApprovalPending {
		return false
	}

	now := time.Now().UTC()
	b.ApprovalStatus = ApprovalRejected
	b.ApprovalDate = &now
	b.ApprovedBy = actor
	b.OverallStatus = StatusBatchRejected
	b.UpdatedAt = now

	b.AddDomainEvent(NewBatchRejectedEvent(b.ID, b.BatchNumber, b.ModelCode, actor, reason))
	return true
}

// Schedule stamps the scheduled production date. Only approved batches
// can be scheduled.
func (b *Batch) Schedule(date time.Time) error {
	if b.ApprovalStatus != ApprovalApproved {
		return ErrNotApproved
	}

	d := date.UTC()
	b.ScheduledDate = &d
	b.OverallStatus = StatusScheduled
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// SetOverallStatus applies a recomputed overall status, stamping the
// completion date the first time the batch completes. Returns whether
// the status changed.
func (b *Batch) SetOverallStatus(status string) bool {
	if b.OverallStatus == status {
		return false
	}

	now := time.Now().UTC()
	old := b.OverallStatus
	b.OverallStatus = status
	b.UpdatedAt = now
	if status == StatusCompleted && b.CompletionDate == nil {
		b.CompletionDate = &now
	}

	b.AddDomainEvent(NewBatchStatusChangedEvent(b.ID, b.BatchNumber, old, status))
	return true
}

// IsPendingApproval reports whether the batch still awaits a decision.
func (b *Batch) IsPendingApproval() bool {
	return b.ApprovalStatus == ApprovalPending
}

// AddDomainEvent records a domain event for later publishing.
func (b *Batch) AddDomainEvent(event DomainEvent) {
	b.domainEvents = append(b.domainEvents, event)
}

// GetDomainEvents returns the accumulated domain events.
func (b *Batch) GetDomainEvents() []DomainEvent {
	return b.domainEvents
}

// ClearDomainEvents drops accumulated events after publishing.
func (b *Batch) ClearDomainEvents() {
	b.domainEvents = nil
}
