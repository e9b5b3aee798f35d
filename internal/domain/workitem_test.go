package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabel(t *testing.T) {
	route := Route{"Cutting", "Bending", "Welding"}

	tests := []struct {
		name     string
		index    int
		route    Route
		expected string
		wantErr  error
	}{
		{"first stage", 0, route, "Cutting Pending", nil},
		{"middle stage", 1, route, "Bending Pending", nil},
		{"last stage", 2, route, "In Welding", nil},
		{"past last stage is terminal", 3, route, StatusCuttingCompleted, nil},
		{"beyond terminal", 4, route, "", ErrAlreadyTerminal},
		{"single stage route active", 0, Route{"Cutting"}, "In Cutting", nil},
		{"single stage route terminal", 1, Route{"Cutting"}, StatusCuttingCompleted, nil},
		{"empty route", 0, Route{}, "", ErrEmptyRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StatusLabel(tt.index, tt.route)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewMSWorkItem(t *testing.T) {
	t.Run("item starts at first stage", func(t *testing.T) {
		item, err := NewMSWorkItem("batch-1", "AUG25-MX100-M-001", "Side Panel", "SS304", Route{"Cutting", "Bending"}, 20)
		require.NoError(t, err)

		assert.Equal(t, 0, item.StageIndex)
		assert.Equal(t, "Cutting", item.StageName)
		assert.Equal(t, "Cutting Pending", item.Status)
		assert.Equal(t, 20.0, item.RequiredQty)
		assert.False(t, item.IsTerminal())
		require.NotNil(t, item.StartDate)
	})

	t.Run("empty route rejected", func(t *testing.T) {
		_, err := NewMSWorkItem("batch-1", "AUG25-MX100-M-001", "Side Panel", "SS304", Route{}, 20)
		assert.ErrorIs(t, err, ErrEmptyRoute)
	})
}

func TestMSWorkItemAdvance(t *testing.T) {
	newItem := func(t *testing.T) *MSWorkItem {
		item, err := NewMSWorkItem("batch-1", "AUG25-MX100-M-001", "Side Panel", "SS304", Route{"Cutting", "Bending", "Welding"}, 20)
		require.NoError(t, err)
		item.ClearDomainEvents()
		return item
	}

	t.Run("walks the full route to terminal", func(t *testing.T) {
		item := newItem(t)

		old, err := item.Advance("operator")
		require.NoError(t, err)
		assert.Equal(t, "Cutting Pending", old)
		assert.Equal(t, 1, item.StageIndex)
		assert.Equal(t, "Bending Pending", item.Status)
		assert.Equal(t, "Bending", item.StageName)

		_, err = item.Advance("operator")
		require.NoError(t, err)
		assert.Equal(t, "In Welding", item.Status)

		old, err = item.Advance("operator")
		require.NoError(t, err)
		assert.Equal(t, "In Welding", old)
		assert.Equal(t, StatusCuttingCompleted, item.Status)
		assert.True(t, item.IsTerminal())
		assert.Empty(t, item.StageName)
	})

	t.Run("advancing terminal item fails", func(t *testing.T) {
		item := newItem(t)
		for i := 0; i < 3; i++ {
			_, err := item.Advance("operator")
			require.NoError(t, err)
		}

		_, err := item.Advance("operator")
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
	})

	t.Run("empty stored route fails", func(t *testing.T) {
		item := newItem(t)
		item.Route = Route{}

		_, err := item.Advance("operator")
		assert.ErrorIs(t, err, ErrEmptyRoute)
	})

	t.Run("raises completed and pending events", func(t *testing.T) {
		item := newItem(t)

		_, err := item.Advance("operator")
		require.NoError(t, err)

		events := item.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeStageCompleted, events[0].EventType())
		assert.Equal(t, EventTypeStagePending, events[1].EventType())

		completed, ok := events[0].(StageTransitionEvent)
		require.True(t, ok)
		assert.Equal(t, "Cutting", completed.StageName)
		assert.Equal(t, "operator", completed.MovedBy)
	})

	t.Run("terminal advance raises only completed event", func(t *testing.T) {
		item := newItem(t)
		item.StageIndex = 2
		item.Status = "In Welding"
		item.StageName = "Welding"

		_, err := item.Advance("operator")
		require.NoError(t, err)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStageCompleted, events[0].EventType())
	})
}
