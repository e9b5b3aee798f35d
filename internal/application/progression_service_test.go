package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pulse-platform/production-service/pkg/errors"

	"github.com/pulse-platform/production-service/internal/domain"
)

type progressionFixture struct {
	batches   *fakeBatchRepo
	items     *fakeItemRepo
	history   *fakeHistoryRepo
	catalog   *fakeCatalog
	publisher *fakePublisher
	service   *ProgressionApplicationService
}

func newProgressionFixture() *progressionFixture {
	f := &progressionFixture{
		batches:   newFakeBatchRepo(),
		items:     newFakeItemRepo(),
		history:   &fakeHistoryRepo{},
		publisher: &fakePublisher{},
		catalog: &fakeCatalog{
			roles: domain.StageRoleMap{
				"Cutting": "cutting_supervisor",
				"Bending": "bending_supervisor",
			},
		},
	}
	logger := testLogger()
	m := testMetrics()
	aggregator := NewStatusAggregator(f.batches, f.items, f.history, f.publisher, logger)
	f.service = NewProgressionApplicationService(
		f.batches, f.items, f.history, f.catalog, f.publisher, aggregator, m, logger)
	return f
}

// seed installs an approved batch with one work item on the given route.
func (f *progressionFixture) seed(t *testing.T, route domain.Route) (*domain.Batch, *domain.MSWorkItem) {
	t.Helper()
	ctx := context.Background()

	batch, err := domain.NewBatch("MX100", 10, true, false, false, nil, "planner")
	require.NoError(t, err)
	batch.BatchNumber = "AUG25-MX100-M-001"
	batch.Approve("supervisor")
	batch.ClearDomainEvents()
	require.NoError(t, f.batches.Save(ctx, batch))

	item, err := domain.NewMSWorkItem(batch.ID, batch.BatchNumber, "Side Panel", "SS304", route, 20)
	require.NoError(t, err)
	item.ClearDomainEvents()
	require.NoError(t, f.items.SaveAll(ctx, []*domain.MSWorkItem{item}))
	return batch, item
}

func TestAdvanceStage(t *testing.T) {
	t.Run("moves item and rolls batch status up", func(t *testing.T) {
		f := newProgressionFixture()
		batch, item := f.seed(t, domain.Route{"Cutting", "Bending", "Welding"})

		result, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{
			ItemID: item.ID,
			Actor:  "operator",
		})
		require.NoError(t, err)

		assert.Equal(t, "Cutting Pending", result.OldStatus)
		assert.Equal(t, "Bending Pending", result.Item.Status)
		assert.Equal(t, 1, result.Item.StageIndex)
		assert.Equal(t, domain.StatusInProgress, result.OverallStatus)
		assert.Equal(t, domain.StatusInProgress, f.batches.batches[batch.ID].OverallStatus)
	})

	t.Run("publishes completed and pending events with roles", func(t *testing.T) {
		f := newProgressionFixture()
		_, item := f.seed(t, domain.Route{"Cutting", "Bending", "Welding"})

		_, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		require.NoError(t, err)

		var completed, pending *domain.StageTransitionEvent
		for _, ev := range f.publisher.events {
			st, ok := ev.(domain.StageTransitionEvent)
			if !ok {
				continue
			}
			switch st.EventType() {
			case domain.EventTypeStageCompleted:
				completed = &st
			case domain.EventTypeStagePending:
				pending = &st
			}
		}
		require.NotNil(t, completed)
		require.NotNil(t, pending)
		assert.Equal(t, "Cutting", completed.StageName)
		assert.Equal(t, "cutting_supervisor", completed.SupervisorRole)
		assert.Equal(t, "Bending", pending.StageName)
		assert.Equal(t, "bending_supervisor", pending.SupervisorRole)
	})

	t.Run("unmapped stage yields empty role", func(t *testing.T) {
		f := newProgressionFixture()
		f.catalog.roles = domain.StageRoleMap{}
		_, item := f.seed(t, domain.Route{"Cutting", "Bending"})

		_, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		require.NoError(t, err)

		for _, ev := range f.publisher.events {
			if st, ok := ev.(domain.StageTransitionEvent); ok {
				assert.Empty(t, st.SupervisorRole)
			}
		}
	})

	t.Run("terminal advance completes the batch", func(t *testing.T) {
		f := newProgressionFixture()
		batch, item := f.seed(t, domain.Route{"Cutting"})

		result, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusCuttingCompleted, result.Item.Status)
		assert.Equal(t, domain.StatusCompleted, result.OverallStatus)
		stored := f.batches.batches[batch.ID]
		assert.Equal(t, domain.StatusCompleted, stored.OverallStatus)
		require.NotNil(t, stored.CompletionDate)
	})

	t.Run("advancing past terminal is invalid state", func(t *testing.T) {
		f := newProgressionFixture()
		_, item := f.seed(t, domain.Route{"Cutting"})

		_, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		require.NoError(t, err)

		_, err = f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInvalidState, appErr.Code)
	})

	t.Run("empty stored route is invalid route", func(t *testing.T) {
		f := newProgressionFixture()
		_, item := f.seed(t, domain.Route{"Cutting"})
		item.Route = domain.Route{}

		_, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInvalidRoute, appErr.Code)
	})

	t.Run("unknown item not found", func(t *testing.T) {
		f := newProgressionFixture()

		_, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: "missing", Actor: "operator"})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})

	t.Run("orphaned item reports missing batch", func(t *testing.T) {
		f := newProgressionFixture()
		_, item := f.seed(t, domain.Route{"Cutting"})
		item.BatchID = "gone"

		_, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})

	t.Run("item write failure fails the advance", func(t *testing.T) {
		f := newProgressionFixture()
		_, item := f.seed(t, domain.Route{"Cutting", "Bending"})
		f.items.updateErr = fmt.Errorf("store unavailable")

		_, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		assert.Error(t, err)
	})

	t.Run("history and notification failures do not fail the advance", func(t *testing.T) {
		f := newProgressionFixture()
		_, item := f.seed(t, domain.Route{"Cutting", "Bending"})
		f.history.appendErr = fmt.Errorf("store unavailable")
		f.publisher.publishErr = fmt.Errorf("broker unavailable")

		result, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		require.NoError(t, err)
		assert.Equal(t, "Bending Pending", result.Item.Status)
	})
}

func TestStatusAggregatorRecompute(t *testing.T) {
	t.Run("no change leaves history empty", func(t *testing.T) {
		f := newProgressionFixture()
		batch, _ := f.seed(t, domain.Route{"Cutting", "Bending"})
		aggregator := NewStatusAggregator(f.batches, f.items, f.history, f.publisher, testLogger())

		// Items are at "Cutting Pending" so the rollup moves the batch
		// to in progress once, then stays put.
		status, err := aggregator.Recompute(context.Background(), batch, "system")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, status)
		historyLen := len(f.history.entries)

		status, err = aggregator.Recompute(context.Background(), batch, "system")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, status)
		assert.Len(t, f.history.entries, historyLen)
	})

	t.Run("pending approval wins over children", func(t *testing.T) {
		f := newProgressionFixture()
		ctx := context.Background()

		batch, err := domain.NewBatch("MX100", 10, true, false, false, nil, "planner")
		require.NoError(t, err)
		batch.BatchNumber = "AUG25-MX100-M-002"
		require.NoError(t, f.batches.Save(ctx, batch))

		aggregator := NewStatusAggregator(f.batches, f.items, f.history, f.publisher, testLogger())
		status, err := aggregator.Recompute(ctx, batch, "system")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingApproval, status)
	})

	t.Run("counts sibling process rows in the rollup", func(t *testing.T) {
		f := newProgressionFixture()
		batch, item := f.seed(t, domain.Route{"Cutting"})
		aggregator := NewStatusAggregator(f.batches, f.items, f.history, f.publisher, testLogger())

		// The machine-shop item finishes but a CNC row is still open, so
		// the batch stays in progress.
		f.items.siblings = map[string][]string{batch.ID: {"In Milling"}}
		result, err := f.service.AdvanceStage(context.Background(), AdvanceStageCommand{ItemID: item.ID, Actor: "operator"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCuttingCompleted, result.Item.Status)
		assert.Equal(t, domain.StatusInProgress, result.OverallStatus)

		// Once the CNC row reports done, every child is terminal.
		f.items.siblings[batch.ID] = []string{"Done"}
		status, err := aggregator.Recompute(context.Background(), batch, "system")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, status)
		assert.NotNil(t, f.batches.batches[batch.ID].CompletionDate)
	})
}
