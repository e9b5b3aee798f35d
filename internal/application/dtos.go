package application

import "time"

// BatchDTO represents a production batch in responses
type BatchDTO struct {
	BatchID        string     `json:"batchId"`
	BatchNumber    string     `json:"batchNumber"`
	ModelCode      string     `json:"modelCode"`
	Quantity       int        `json:"quantity"`
	IncludeMS      bool       `json:"includeMs"`
	IncludeCNC     bool       `json:"includeCnc"`
	IncludeStore   bool       `json:"includeStore"`
	SelectedParts  []string   `json:"selectedParts,omitempty"`
	ApprovalStatus string     `json:"approvalStatus"`
	ApprovalDate   *time.Time `json:"approvalDate,omitempty"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	OverallStatus  string     `json:"overallStatus"`
	ScheduledDate  *time.Time `json:"scheduledDate,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	CreatedBy      string     `json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// WorkItemDTO represents an exploded machine-shop work item
type WorkItemDTO struct {
	ItemID        string     `json:"itemId"`
	BatchID       string     `json:"batchId"`
	BatchNumber   string     `json:"batchNumber"`
	PartName      string     `json:"partName"`
	Material      string     `json:"material"`
	Route         []string   `json:"route"`
	RequiredQty   float64    `json:"requiredQty"`
	StageIndex    int        `json:"stageIndex"`
	StageName     string     `json:"stageName,omitempty"`
	Status        string     `json:"status"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	UpdatedBy     string     `json:"updatedBy,omitempty"`
}

// ApprovalResultDTO represents the outcome of an approval decision
type ApprovalResultDTO struct {
	Batch     BatchDTO      `json:"batch"`
	Changed   bool          `json:"changed"`
	WorkItems []WorkItemDTO `json:"workItems,omitempty"`
}

// AdvanceResultDTO represents the outcome of a stage advance
type AdvanceResultDTO struct {
	Item          WorkItemDTO `json:"item"`
	OldStatus     string      `json:"oldStatus"`
	OverallStatus string      `json:"overallStatus"`
}

// BatchListDTO represents a simplified batch for list operations
type BatchListDTO struct {
	BatchID        string    `json:"batchId"`
	BatchNumber    string    `json:"batchNumber"`
	ModelCode      string    `json:"modelCode"`
	Quantity       int       `json:"quantity"`
	ApprovalStatus string    `json:"approvalStatus"`
	OverallStatus  string    `json:"overallStatus"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}
