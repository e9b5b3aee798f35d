package application

import (
	"github.com/pulse-platform/production-service/internal/domain"
)

// ToBatchDTO converts a domain batch to its response representation
func ToBatchDTO(b *domain.Batch) *BatchDTO {
	if b == nil {
		return nil
	}
	return &BatchDTO{
		BatchID:        b.ID,
		BatchNumber:    b.BatchNumber,
		ModelCode:      b.ModelCode,
		Quantity:       b.Quantity,
		IncludeMS:      b.IncludeMS,
		IncludeCNC:     b.IncludeCNC,
		IncludeStore:   b.IncludeStore,
		SelectedParts:  b.SelectedParts,
		ApprovalStatus: string(b.ApprovalStatus),
		ApprovalDate:   b.ApprovalDate,
		ApprovedBy:     b.ApprovedBy,
		OverallStatus:  b.OverallStatus,
		ScheduledDate:  b.ScheduledDate,
		StartDate:      b.StartDate,
		CompletionDate: b.CompletionDate,
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// ToBatchListDTOs converts domain batches to their list representation
func ToBatchListDTOs(batches []*domain.Batch) []BatchListDTO {
	result := make([]BatchListDTO, 0, len(batches))
	for _, b := range batches {
		result = append(result, BatchListDTO{
			BatchID:        b.ID,
			BatchNumber:    b.BatchNumber,
			ModelCode:      b.ModelCode,
			Quantity:       b.Quantity,
			ApprovalStatus: string(b.ApprovalStatus),
			OverallStatus:  b.OverallStatus,
			CreatedBy:      b.CreatedBy,
			CreatedAt:      b.CreatedAt,
		})
	}
	return result
}

// ToWorkItemDTO converts a domain work item to its response representation
func ToWorkItemDTO(item *domain.MSWorkItem) WorkItemDTO {
	return WorkItemDTO{
		ItemID:        item.ID,
		BatchID:       item.BatchID,
		BatchNumber:   item.BatchNumber,
		PartName:      item.PartName,
		Material:      item.Material,
		Route:         item.Route,
		RequiredQty:   item.RequiredQty,
		StageIndex:    item.StageIndex,
		StageName:     item.StageName,
		Status:        item.Status,
		StartDate:     item.StartDate,
		ScheduledDate: item.ScheduledDate,
		UpdatedAt:     item.UpdatedAt,
		UpdatedBy:     item.UpdatedBy,
	}
}

// ToWorkItemDTOs converts a slice of domain work items
func ToWorkItemDTOs(items []*domain.MSWorkItem) []WorkItemDTO {
	result := make([]WorkItemDTO, 0, len(items))
	for _, item := range items {
		result = append(result, ToWorkItemDTO(item))
	}
	return result
}
