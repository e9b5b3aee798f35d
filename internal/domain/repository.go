package domain

import (
	"context"
	"time"
)

// BatchRepository persists batch master records.
type BatchRepository interface {
	// Save inserts a new batch
	Save(ctx context.Context, batch *Batch) error

	// Update persists changes to an existing batch
	Update(ctx context.Context, batch *Batch) error

	// FindByID retrieves a batch by its record id
	FindByID(ctx context.Context, id string) (*Batch, error)

	// FindByBatchNumber retrieves a batch by its batch number
	FindByBatchNumber(ctx context.Context, batchNumber string) (*Batch, error)

	// FindPendingApproval lists batches still awaiting a decision
	FindPendingApproval(ctx context.Context) ([]*Batch, error)

	// FindApprovedUnscheduled lists approved batches with no scheduled
	// date whose approval is older than the cutoff
	FindApprovedUnscheduled(ctx context.Context, approvedBefore time.Time) ([]*Batch, error)

	// ListBatchNumbers returns every existing batch number, used when
	// allocating the next number in a period
	ListBatchNumbers(ctx context.Context) ([]string, error)
}

// WorkItemRepository persists exploded machine-shop work items.
type WorkItemRepository interface {
	// SaveAll inserts a set of new work items
	SaveAll(ctx context.Context, items []*MSWorkItem) error

	// Update persists changes to an existing work item
	Update(ctx context.Context, item *MSWorkItem) error

	// FindByID retrieves a work item by its record id
	FindByID(ctx context.Context, id string) (*MSWorkItem, error)

	// FindByBatchID lists every work item of a batch
	FindByBatchID(ctx context.Context, batchID string) ([]*MSWorkItem, error)

	// ChildStatuses collects the status labels of every child row of a
	// batch across all process families, used for the status rollup
	ChildStatuses(ctx context.Context, batchID string) ([]string, error)
}

// HistoryRepository appends to the status transition audit trail.
// Writes are best effort: a failed append never blocks the transition
// it records.
type HistoryRepository interface {
	// Append records one or more history entries
	Append(ctx context.Context, entries ...StatusHistoryEntry) error
}

// CatalogRepository reads the reference tables backing batch creation
// and explosion.
type CatalogRepository interface {
	// ModelParts lists the parts of a product model
	ModelParts(ctx context.Context, modelCode string) ([]ModelPart, error)

	// MSRoutes lists the machine-shop routing rows for a set of parts
	MSRoutes(ctx context.Context, partIDs []string) ([]MSPartRow, error)

	// StageRoles returns the stage to supervisor role mapping
	StageRoles(ctx context.Context) (StageRoleMap, error)

	// Config reads the production limits configuration
	Config(ctx context.Context) (ProductionConfig, error)
}

// EventPublisher delivers domain events to the event bus. Publishing
// is best effort: failures are logged by implementations and never
// propagate into the transition that raised the event.
type EventPublisher interface {
	// Publish sends one domain event
	Publish(ctx context.Context, event DomainEvent) error

	// PublishAll sends a set of domain events
	PublishAll(ctx context.Context, events []DomainEvent) error
}
