package events

import (
	"time"
)

// EventType constants for production domain events
const (
	BatchCreated  = "production_batch_created"
	BatchApproved = "production_batch_approved"
	BatchRejected = "production_batch_rejected"

	StagePending   = "ms_stage_pending"
	StageCompleted = "ms_stage_completed"

	BatchStatusChanged = "batch_status_changed"

	BatchNotScheduledReminder = "production_batch_not_scheduled_reminder"
)

// Source constants for event sources
const (
	SourceProduction = "/pulse/production-service"
)

// RecipientMode controls how a notification fans out to users
type RecipientMode string

const (
	RecipientOwnerOnly            RecipientMode = "OWNER_ONLY"
	RecipientOwnerPlusSubscribers RecipientMode = "OWNER_PLUS_SUBSCRIBERS"
	RecipientSubscribersOnly      RecipientMode = "SUBSCRIBERS_ONLY"
)

// PulseCloudEvent represents a CloudEvents v1.0 compliant event
type PulseCloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// Pulse-specific extensions
	CorrelationID  string        `json:"pulsecorrelationid,omitempty"`
	BatchNumber    string        `json:"pulsebatchnumber,omitempty"`
	RecipientMode  RecipientMode `json:"pulserecipientmode,omitempty"`
	RecipientRoles []string      `json:"pulserecipientroles,omitempty"`
}

// BatchCreatedData represents the data payload for BatchCreated events
type BatchCreatedData struct {
	BatchID     string `json:"batchId"`
	BatchNumber string `json:"batchNumber"`
	ModelCode   string `json:"modelCode"`
	ProcessCode string `json:"processCode"`
	Quantity    int    `json:"quantity"`
	CreatedBy   string `json:"createdBy"`
}

// BatchApprovalData represents the data payload for BatchApproved and
// BatchRejected events
type BatchApprovalData struct {
	BatchID       string `json:"batchId"`
	BatchNumber   string `json:"batchNumber"`
	DecidedBy     string `json:"decidedBy"`
	OverallStatus string `json:"overallStatus"`
	ItemCount     int    `json:"itemCount,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// StageTransitionData represents the data payload for StagePending and
// StageCompleted events
type StageTransitionData struct {
	BatchNumber string `json:"batchNumber"`
	ItemID      string `json:"itemId"`
	PartName    string `json:"partName"`
	StageName   string `json:"stageName"`
	StageIndex  int    `json:"stageIndex"`
	StatusLabel string `json:"statusLabel"`
	MovedBy     string `json:"movedBy"`
}

// BatchStatusChangedData represents the data payload for BatchStatusChanged events
type BatchStatusChangedData struct {
	BatchID        string `json:"batchId"`
	BatchNumber    string `json:"batchNumber"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
}

// BatchNotScheduledData represents the data payload for BatchNotScheduledReminder events
type BatchNotScheduledData struct {
	BatchID     string    `json:"batchId"`
	BatchNumber string    `json:"batchNumber"`
	ApprovedAt  time.Time `json:"approvedAt"`
	AgeDays     int       `json:"ageDays"`
}
