package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pulse-platform/production-service/pkg/errors"

	"github.com/pulse-platform/production-service/internal/domain"
)

type batchServiceFixture struct {
	batches   *fakeBatchRepo
	items     *fakeItemRepo
	history   *fakeHistoryRepo
	catalog   *fakeCatalog
	publisher *fakePublisher
	service   *BatchApplicationService
}

func newBatchServiceFixture() *batchServiceFixture {
	f := &batchServiceFixture{
		batches:   newFakeBatchRepo(),
		items:     newFakeItemRepo(),
		history:   &fakeHistoryRepo{},
		publisher: &fakePublisher{},
		catalog: &fakeCatalog{
			parts: []domain.ModelPart{
				{ID: "p1", Name: "Side Panel", ModelCode: "MX100"},
				{ID: "p2", Name: "Base Frame", ModelCode: "MX100"},
			},
			routes: []domain.MSPartRow{
				{PartID: "p1", PartName: "Side Panel", Material: "SS304", PostProcess: "Cutting - Bending", QtyPerUnit: 2},
				{PartID: "p1", PartName: "Side Panel", Material: "SS304", PostProcess: "Cutting - Bending", QtyPerUnit: 1},
				{PartID: "p2", PartName: "Base Frame", Material: "MS Sheet", PostProcess: "Cutting - Welding - Painting", QtyPerUnit: 1},
			},
			roles: domain.StageRoleMap{"Cutting": "cutting_supervisor"},
		},
	}
	f.service = NewBatchApplicationService(
		f.batches, f.items, f.history, f.catalog, f.publisher, testMetrics(), testLogger())
	return f
}

func (f *batchServiceFixture) createBatch(t *testing.T, includeMS bool) *BatchDTO {
	t.Helper()
	dto, err := f.service.CreateBatch(context.Background(), CreateBatchCommand{
		ModelCode:  "MX100",
		Quantity:   10,
		IncludeMS:  includeMS,
		IncludeCNC: !includeMS,
		CreatedBy:  "planner",
	})
	require.NoError(t, err)
	return dto
}

func TestCreateBatch(t *testing.T) {
	t.Run("allocates batch number within period", func(t *testing.T) {
		f := newBatchServiceFixture()

		dto := f.createBatch(t, true)

		period := domain.PeriodKey(time.Now())
		assert.Equal(t, fmt.Sprintf("%s-MX100-M-001", period), dto.BatchNumber)
		assert.Equal(t, string(domain.ApprovalPending), dto.ApprovalStatus)
		assert.Equal(t, domain.StatusPendingApproval, dto.OverallStatus)

		second := f.createBatch(t, true)
		assert.True(t, strings.HasSuffix(second.BatchNumber, "-002"))
	})

	t.Run("publishes created event and history", func(t *testing.T) {
		f := newBatchServiceFixture()

		f.createBatch(t, true)

		assert.Equal(t, []string{domain.EventTypeBatchCreated}, f.publisher.eventTypes())
		require.Len(t, f.history.entries, 1)
		assert.Equal(t, domain.StatusPendingApproval, f.history.entries[0].NewStatus)
	})

	t.Run("quantity outside configured limits rejected", func(t *testing.T) {
		f := newBatchServiceFixture()
		f.catalog.config = domain.ProductionConfig{MinQuantity: 5, MaxQuantity: 50}

		_, err := f.service.CreateBatch(context.Background(), CreateBatchCommand{
			ModelCode: "MX100",
			Quantity:  51,
			IncludeMS: true,
			CreatedBy: "planner",
		})

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	})

	t.Run("config load failure falls back to defaults", func(t *testing.T) {
		f := newBatchServiceFixture()
		f.catalog.configErr = fmt.Errorf("store unavailable")

		dto := f.createBatch(t, true)
		assert.NotEmpty(t, dto.BatchNumber)
	})

	t.Run("no process family rejected", func(t *testing.T) {
		f := newBatchServiceFixture()

		_, err := f.service.CreateBatch(context.Background(), CreateBatchCommand{
			ModelCode: "MX100",
			Quantity:  10,
			CreatedBy: "planner",
		})
		assert.Error(t, err)
	})
}

func TestApproveBatch(t *testing.T) {
	t.Run("approves and explodes work items", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)

		result, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{
			BatchID: dto.BatchID,
			Actor:   "supervisor",
		})
		require.NoError(t, err)

		assert.True(t, result.Changed)
		assert.Equal(t, string(domain.ApprovalApproved), result.Batch.ApprovalStatus)
		assert.Equal(t, domain.StatusSchedulePending, result.Batch.OverallStatus)

		// Two Side Panel rows share part, material and route, so they
		// collapse into one item with the summed quantity.
		require.Len(t, result.WorkItems, 2)
		byPart := map[string]WorkItemDTO{}
		for _, item := range result.WorkItems {
			byPart[item.PartName] = item
		}
		assert.Equal(t, 30.0, byPart["Side Panel"].RequiredQty)
		assert.Equal(t, []string{"Cutting", "Bending"}, byPart["Side Panel"].Route)
		assert.Equal(t, "Cutting Pending", byPart["Side Panel"].Status)
		assert.Equal(t, 10.0, byPart["Base Frame"].RequiredQty)
	})

	t.Run("create then approve writes three history entries", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)

		_, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		// One for creation, one for the approval decision, one for the
		// pending to schedule-pending aggregate shift.
		require.Len(t, f.history.entries, 3)
		assert.Equal(t, domain.StatusPendingApproval, f.history.entries[0].NewStatus)
		assert.Equal(t, string(domain.ApprovalApproved), f.history.entries[1].NewStatus)
		assert.Equal(t, domain.StatusSchedulePending, f.history.entries[2].NewStatus)
	})

	t.Run("cnc only batch creates no work items", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, false)

		result, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{
			BatchID: dto.BatchID,
			Actor:   "supervisor",
		})
		require.NoError(t, err)

		assert.True(t, result.Changed)
		assert.Empty(t, result.WorkItems)
		assert.Empty(t, f.items.items)
	})

	t.Run("second approval is a no-op", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)

		first, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)
		require.True(t, first.Changed)
		itemCount := len(f.items.items)

		second, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		assert.False(t, second.Changed)
		assert.Len(t, f.items.items, itemCount)
	})

	t.Run("existing work items block re-explosion", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)

		item, err := domain.NewMSWorkItem(dto.BatchID, dto.BatchNumber, "Side Panel", "SS304", domain.Route{"Cutting"}, 5)
		require.NoError(t, err)
		require.NoError(t, f.items.SaveAll(context.Background(), []*domain.MSWorkItem{item}))

		result, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		assert.True(t, result.Changed)
		assert.Empty(t, result.WorkItems)
		assert.Len(t, f.items.items, 1)
	})

	t.Run("rows with empty route skipped", func(t *testing.T) {
		f := newBatchServiceFixture()
		f.catalog.routes = []domain.MSPartRow{
			{PartID: "p1", PartName: "Side Panel", Material: "SS304", PostProcess: "", QtyPerUnit: 2},
			{PartID: "p2", PartName: "Base Frame", Material: "MS Sheet", PostProcess: "Cutting", QtyPerUnit: 1},
		}
		dto := f.createBatch(t, true)

		result, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		require.Len(t, result.WorkItems, 1)
		assert.Equal(t, "Base Frame", result.WorkItems[0].PartName)
	})

	t.Run("explicit part selection narrows explosion", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto, err := f.service.CreateBatch(context.Background(), CreateBatchCommand{
			ModelCode:     "MX100",
			Quantity:      10,
			IncludeMS:     true,
			SelectedParts: []string{"p2"},
			CreatedBy:     "planner",
		})
		require.NoError(t, err)

		// The catalog fake returns rows for whatever ids it is given;
		// narrow it the way the real store would.
		f.catalog.routes = f.catalog.routes[2:]

		result, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)
		require.Len(t, result.WorkItems, 1)
		assert.Equal(t, "Base Frame", result.WorkItems[0].PartName)
	})

	t.Run("explosion failure does not fail approval", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)
		f.catalog.routesErr = fmt.Errorf("store unavailable")

		result, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		assert.True(t, result.Changed)
		assert.Empty(t, result.WorkItems)
		assert.Equal(t, string(domain.ApprovalApproved), result.Batch.ApprovalStatus)
	})

	t.Run("master write failure fails approval", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)
		f.batches.updateErr = fmt.Errorf("store unavailable")

		_, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		assert.Error(t, err)
		assert.Empty(t, f.items.items)
	})

	t.Run("unknown batch not found", func(t *testing.T) {
		f := newBatchServiceFixture()

		_, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: "missing", Actor: "supervisor"})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})
}

func TestRejectBatch(t *testing.T) {
	t.Run("rejects without creating work items", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)

		result, err := f.service.RejectBatch(context.Background(), RejectBatchCommand{
			BatchID: dto.BatchID,
			Actor:   "supervisor",
			Reason:  "wrong model",
		})
		require.NoError(t, err)

		assert.True(t, result.Changed)
		assert.Equal(t, domain.StatusBatchRejected, result.Batch.OverallStatus)
		assert.Empty(t, f.items.items)
		assert.Contains(t, f.publisher.eventTypes(), domain.EventTypeBatchRejected)
	})

	t.Run("rejecting an approved batch is a no-op", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)
		_, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		result, err := f.service.RejectBatch(context.Background(), RejectBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		assert.False(t, result.Changed)
		assert.Equal(t, string(domain.ApprovalApproved), result.Batch.ApprovalStatus)
	})
}

func TestScheduleBatch(t *testing.T) {
	t.Run("stamps date on master and work items", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)
		_, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
		scheduled, err := f.service.ScheduleBatch(context.Background(), ScheduleBatchCommand{
			BatchID:       dto.BatchID,
			ScheduledDate: date,
			Actor:         "planner",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusScheduled, scheduled.OverallStatus)
		require.NotNil(t, scheduled.ScheduledDate)
		assert.Equal(t, date, *scheduled.ScheduledDate)
		for _, item := range f.items.items {
			require.NotNil(t, item.ScheduledDate)
			assert.Equal(t, date, *item.ScheduledDate)
		}
	})

	t.Run("pending batch cannot be scheduled", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)

		_, err := f.service.ScheduleBatch(context.Background(), ScheduleBatchCommand{
			BatchID:       dto.BatchID,
			ScheduledDate: time.Now(),
			Actor:         "planner",
		})

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInvalidState, appErr.Code)
	})
}

func TestBatchQueries(t *testing.T) {
	t.Run("get by id and number", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)

		byID, err := f.service.GetBatch(context.Background(), GetBatchQuery{BatchID: dto.BatchID})
		require.NoError(t, err)
		assert.Equal(t, dto.BatchNumber, byID.BatchNumber)

		byNumber, err := f.service.GetBatchByNumber(context.Background(), GetBatchByNumberQuery{BatchNumber: dto.BatchNumber})
		require.NoError(t, err)
		assert.Equal(t, dto.BatchID, byNumber.BatchID)

		_, err = f.service.GetBatchByNumber(context.Background(), GetBatchByNumberQuery{BatchNumber: "nope"})
		assert.Error(t, err)
	})

	t.Run("pending approval listing", func(t *testing.T) {
		f := newBatchServiceFixture()
		pending := f.createBatch(t, true)
		decided := f.createBatch(t, true)
		_, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: decided.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		list, err := f.service.ListPendingApproval(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, pending.BatchID, list[0].BatchID)
	})

	t.Run("list work items", func(t *testing.T) {
		f := newBatchServiceFixture()
		dto := f.createBatch(t, true)
		_, err := f.service.ApproveBatch(context.Background(), ApproveBatchCommand{BatchID: dto.BatchID, Actor: "supervisor"})
		require.NoError(t, err)

		items, err := f.service.ListWorkItems(context.Background(), ListWorkItemsQuery{BatchID: dto.BatchID})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}
