package application

import "time"

// CreateBatchCommand represents the request to create a new production batch
type CreateBatchCommand struct {
	ModelCode     string
	Quantity      int
	IncludeMS     bool
	IncludeCNC    bool
	IncludeStore  bool
	SelectedParts []string
	CreatedBy     string
}

// ApproveBatchCommand represents the request to approve a pending batch
type ApproveBatchCommand struct {
	BatchID string
	Actor   string
}

// RejectBatchCommand represents the request to reject a pending batch
type RejectBatchCommand struct {
	BatchID string
	Actor   string
	Reason  string
}

// ScheduleBatchCommand represents the request to stamp a scheduled date
type ScheduleBatchCommand struct {
	BatchID       string
	ScheduledDate time.Time
	Actor         string
}

// AdvanceStageCommand represents the request to move a work item to its next stage
type AdvanceStageCommand struct {
	ItemID string
	Actor  string
}

// GetBatchQuery represents the query to get a batch by record id
type GetBatchQuery struct {
	BatchID string
}

// GetBatchByNumberQuery represents the query to get a batch by batch number
type GetBatchByNumberQuery struct {
	BatchNumber string
}

// ListWorkItemsQuery represents the query to list a batch's work items
type ListWorkItemsQuery struct {
	BatchID string
}
