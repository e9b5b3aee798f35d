package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Terminal status for a work item that has passed every stage of its
// route.
const StatusCuttingCompleted = "Cutting Completed"

var (
	// ErrWorkItemNotFound indicates the requested work item does not exist
	ErrWorkItemNotFound = errors.New("work item not found")
	// ErrEmptyRoute indicates the stored route has no stages
	ErrEmptyRoute = errors.New("work item route is empty")
	// ErrAlreadyTerminal indicates the item already passed its terminal stage
	ErrAlreadyTerminal = errors.New("work item already at terminal stage")
)

// MSWorkItem is one exploded machine-shop row of a batch: a (part,
// material, route) group with the summed quantity required across the
// batch.
type MSWorkItem struct {
	ID            string
	BatchID       string
	BatchNumber   string
	PartName      string
	Material      string
	Route         Route
	RequiredQty   float64
	StageIndex    int
	StageName     string
	Status        string
	StartDate     *time.Time
	ScheduledDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UpdatedBy     string

	domainEvents []DomainEvent
}

// StatusLabel derives the display status for a stage position on a
// route. Positions before the last stage read "<stage> Pending", the
// last stage reads "In <stage>", and one past the end is the terminal
// completed status.
func StatusLabel(index int, route Route) (string, error) {
	if route.IsEmpty() {
		return "", ErrEmptyRoute
	}
	switch {
	case index < 0:
		return "", fmt.Errorf("stage index %d out of range", index)
	case index < len(route)-1:
		return route[index] + " Pending", nil
	case index == len(route)-1:
		return "In " + route[index], nil
	case index == len(route):
		return StatusCuttingCompleted, nil
	default:
		return "", ErrAlreadyTerminal
	}
}

// NewMSWorkItem creates a work item positioned at the first stage of
// its route.
func NewMSWorkItem(batchID, batchNumber, partName, material string, route Route, requiredQty float64) (*MSWorkItem, error) {
	if route.IsEmpty() {
		return nil, ErrEmptyRoute
	}

	status, err := StatusLabel(0, route)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &MSWorkItem{
		ID:          uuid.New().String(),
		BatchID:     batchID,
		BatchNumber: batchNumber,
		PartName:    partName,
		Material:    material,
		Route:       route,
		RequiredQty: requiredQty,
		StageIndex:  0,
		StageName:   route[0],
		Status:      status,
		StartDate:   &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsTerminal reports whether the item has passed its final stage.
func (w *MSWorkItem) IsTerminal() bool {
	return w.StageIndex >= len(w.Route)
}

// CurrentStage returns the stage at the current index, or empty when
// the item is terminal.
func (w *MSWorkItem) CurrentStage() string {
	if w.StageIndex >= 0 && w.StageIndex < len(w.Route) {
		return w.Route[w.StageIndex]
	}
	return ""
}

// Advance moves the item to the next stage of its route. Reaching one
// past the last stage marks the item terminal. Advancing a terminal
// item is an error.
func (w *MSWorkItem) Advance(actor string) (oldStatus string, err error) {
	if w.Route.IsEmpty() {
		return "", ErrEmptyRoute
	}
	if w.IsTerminal() {
		return "", ErrAlreadyTerminal
	}

	oldStatus = w.Status
	completedStage := w.Route[w.StageIndex]
	nextIndex := w.StageIndex + 1

	status, err := StatusLabel(nextIndex, w.Route)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	w.StageIndex = nextIndex
	w.Status = status
	w.UpdatedAt = now
	w.UpdatedBy = actor
	if nextIndex < len(w.Route) {
		w.StageName = w.Route[nextIndex]
	} else {
		w.StageName = ""
	}

	w.AddDomainEvent(NewStageCompletedEvent(w.BatchID, w.BatchNumber, w.ID, w.PartName, completedStage, w.StageIndex, w.Status, actor))
	if !w.IsTerminal() {
		w.AddDomainEvent(NewStagePendingEvent(w.BatchID, w.BatchNumber, w.ID, w.PartName, w.StageName, w.StageIndex, w.Status, actor))
	}
	return oldStatus, nil
}

// SetScheduledDate stamps the planned production date on the row.
func (w *MSWorkItem) SetScheduledDate(date time.Time) {
	d := date.UTC()
	w.ScheduledDate = &d
	w.UpdatedAt = time.Now().UTC()
}

// AddDomainEvent records a domain event for later publishing.
func (w *MSWorkItem) AddDomainEvent(event DomainEvent) {
	w.domainEvents = append(w.domainEvents, event)
}

// GetDomainEvents returns the accumulated domain events.
func (w *MSWorkItem) GetDomainEvents() []DomainEvent {
	return w.domainEvents
}

// ClearDomainEvents drops accumulated events after publishing.
func (w *MSWorkItem) ClearDomainEvents() {
	w.domainEvents = nil
}
