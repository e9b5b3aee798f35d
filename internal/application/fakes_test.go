package application

import (
	"context"
	"time"

	"github.com/pulse-platform/production-service/pkg/logging"
	"github.com/pulse-platform/production-service/pkg/metrics"

	"github.com/pulse-platform/production-service/internal/domain"
)

// In-memory repository fakes shared by the service tests. Each fake
// allows injecting an error per operation to exercise failure paths.

type fakeBatchRepo struct {
	batches   map[string]*domain.Batch
	saveErr   error
	updateErr error
	findErr   error
	listErr   error
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[string]*domain.Batch)}
}

func (r *fakeBatchRepo) Save(_ context.Context, batch *domain.Batch) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.batches[batch.ID] = batch
	return nil
}

func (r *fakeBatchRepo) Update(_ context.Context, batch *domain.Batch) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.batches[batch.ID] = batch
	return nil
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id string) (*domain.Batch, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.batches[id], nil
}

func (r *fakeBatchRepo) FindByBatchNumber(_ context.Context, batchNumber string) (*domain.Batch, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, b := range r.batches {
		if b.BatchNumber == batchNumber {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBatchRepo) FindPendingApproval(_ context.Context) ([]*domain.Batch, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var result []*domain.Batch
	for _, b := range r.batches {
		if b.IsPendingApproval() {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *fakeBatchRepo) FindApprovedUnscheduled(_ context.Context, approvedBefore time.Time) ([]*domain.Batch, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var result []*domain.Batch
	for _, b := range r.batches {
		if b.ApprovalStatus != domain.ApprovalApproved || b.ScheduledDate != nil {
			continue
		}
		if b.ApprovalDate != nil && b.ApprovalDate.Before(approvedBefore) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *fakeBatchRepo) ListBatchNumbers(_ context.Context) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var numbers []string
	for _, b := range r.batches {
		numbers = append(numbers, b.BatchNumber)
	}
	return numbers, nil
}

type fakeItemRepo struct {
	items     map[string]*domain.MSWorkItem
	siblings  map[string][]string // extra CNC/store child statuses per batch
	saveErr   error
	updateErr error
	findErr   error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]*domain.MSWorkItem)}
}

func (r *fakeItemRepo) SaveAll(_ context.Context, items []*domain.MSWorkItem) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *domain.MSWorkItem) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) FindByID(_ context.Context, id string) (*domain.MSWorkItem, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.items[id], nil
}

func (r *fakeItemRepo) FindByBatchID(_ context.Context, batchID string) ([]*domain.MSWorkItem, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var result []*domain.MSWorkItem
	for _, item := range r.items {
		if item.BatchID == batchID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (r *fakeItemRepo) ChildStatuses(ctx context.Context, batchID string) ([]string, error) {
	items, err := r.FindByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	statuses := make([]string, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, item.Status)
	}
	return append(statuses, r.siblings[batchID]...), nil
}

type fakeHistoryRepo struct {
	entries   []domain.StatusHistoryEntry
	appendErr error
}

func (r *fakeHistoryRepo) Append(_ context.Context, entries ...domain.StatusHistoryEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, entries...)
	return nil
}

type fakeCatalog struct {
	parts     []domain.ModelPart
	routes    []domain.MSPartRow
	roles     domain.StageRoleMap
	config    domain.ProductionConfig
	partsErr  error
	routesErr error
	rolesErr  error
	configErr error
}

func (c *fakeCatalog) ModelParts(_ context.Context, _ string) ([]domain.ModelPart, error) {
	if c.partsErr != nil {
		return nil, c.partsErr
	}
	return c.parts, nil
}

func (c *fakeCatalog) MSRoutes(_ context.Context, _ []string) ([]domain.MSPartRow, error) {
	if c.routesErr != nil {
		return nil, c.routesErr
	}
	return c.routes, nil
}

func (c *fakeCatalog) StageRoles(_ context.Context) (domain.StageRoleMap, error) {
	if c.rolesErr != nil {
		return nil, c.rolesErr
	}
	return c.roles, nil
}

func (c *fakeCatalog) Config(_ context.Context) (domain.ProductionConfig, error) {
	if c.configErr != nil {
		return domain.ProductionConfig{}, c.configErr
	}
	return c.config, nil
}

type fakePublisher struct {
	events     []domain.DomainEvent
	publishErr error
}

func (p *fakePublisher) Publish(_ context.Context, event domain.DomainEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("production-service-test")
	config.Level = logging.LevelError
	return logging.New(config)
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("production-service-test"))
}
