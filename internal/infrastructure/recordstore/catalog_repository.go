package recordstore

import (
	"context"
	"strconv"

	"github.com/pulse-platform/production-service/internal/domain"
)

// CatalogRepository reads the reference tables: model parts, routing
// rows, stage to role mappings and the production configuration. Parts
// are keyed by their store row id since the catalog tables predate the
// service and carry no separate id column.
type CatalogRepository struct {
	client *Client
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(client *Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

// ModelParts lists the parts of a product model.
func (r *CatalogRepository) ModelParts(ctx context.Context, modelCode string) ([]domain.ModelPart, error) {
	records, err := r.client.GetRecords(ctx, TableModelConfig, map[string]any{"model_code": modelCode})
	if err != nil {
		return nil, err
	}

	parts := make([]domain.ModelPart, 0, len(records))
	for _, record := range records {
		parts = append(parts, domain.ModelPart{
			ID:        strconv.Itoa(record.ID),
			Name:      fieldString(record.Fields, "part_name"),
			ModelCode: fieldString(record.Fields, "model_code"),
		})
	}
	return parts, nil
}

// MSRoutes lists the machine-shop routing rows for a set of parts.
// Part ids that are not numeric row ids are skipped.
func (r *CatalogRepository) MSRoutes(ctx context.Context, partIDs []string) ([]domain.MSPartRow, error) {
	ids := make([]any, 0, len(partIDs))
	for _, id := range partIDs {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		ids = append(ids, n)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := r.client.GetRecords(ctx, TablePartMSList, map[string]any{"part_id": ids})
	if err != nil {
		return nil, err
	}

	rows := make([]domain.MSPartRow, 0, len(records))
	for _, record := range records {
		refs := fieldRefIDs(record.Fields, "part_id")
		partID := ""
		if len(refs) > 0 {
			partID = strconv.Itoa(refs[0])
		}
		rows = append(rows, domain.MSPartRow{
			PartID:      partID,
			PartName:    fieldString(record.Fields, "part_name"),
			Material:    fieldString(record.Fields, "material_name"),
			PostProcess: fieldString(record.Fields, "post_process"),
			QtyPerUnit:  fieldFloat(record.Fields, "qty_nos"),
		})
	}
	return rows, nil
}

// StageRoles returns the stage to supervisor role mapping.
func (r *CatalogRepository) StageRoles(ctx context.Context) (domain.StageRoleMap, error) {
	records, err := r.client.GetRecords(ctx, TableStageMapping, nil)
	if err != nil {
		return nil, err
	}

	roles := make(domain.StageRoleMap, len(records))
	for _, record := range records {
		stage := fieldString(record.Fields, "stage_name")
		if stage == "" {
			continue
		}
		roles[stage] = fieldString(record.Fields, "supervisor_role")
	}
	return roles, nil
}

// Config reads the production limits configuration. A missing
// configuration row yields the zero value, whose accessors fall back
// to defaults.
func (r *CatalogRepository) Config(ctx context.Context) (domain.ProductionConfig, error) {
	records, err := r.client.GetRecords(ctx, TableProductionConf, nil)
	if err != nil {
		return domain.ProductionConfig{}, err
	}
	if len(records) == 0 {
		return domain.ProductionConfig{}, nil
	}

	fields := records[0].Fields
	return domain.ProductionConfig{
		MinQuantity:           fieldInt(fields, "min_quantity"),
		MaxQuantity:           fieldInt(fields, "max_quantity"),
		ReminderEnabled:       fieldBoolPtr(fields, "reminder_enabled"),
		ReminderThresholdDays: fieldInt(fields, "reminder_threshold_days"),
	}, nil
}
