package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transition(coordinator string, from, to domain.LifecycleState, actionCount int) domain.TransitionEvent {
	return domain.TransitionEvent{
		EventBase: domain.EventBase{
			Timestamp:   time.Date(2024, 1, 1, 0, 0, actionCount, 0, time.UTC),
			Type:        domain.EventTransition,
			Coordinator: coordinator,
		},
		From:        from,
		To:          to,
		ActionCount: actionCount,
		Visible:     true,
	}
}

// RunTraceStoreContract runs a suite of tests to verify that a TraceStore implementation
// adheres to the defined interface contract.
func RunTraceStoreContract(t *testing.T, store TraceStore) {
	ctx := context.Background()
	stageID := fmt.Sprintf("contract-stage-%d", time.Now().UnixNano())

	t.Run("Append and List", func(t *testing.T) {
		events := []domain.TransitionEvent{
			transition("moon", domain.StateInitializing, domain.StateRunning, 1),
			transition("moon", domain.StateRunning, domain.StateRestarting, 2),
			transition("moon", domain.StateRestarting, domain.StateInitializing, 2),
		}
		for _, e := range events {
			require.NoError(t, store.Append(ctx, stageID, e), "Append should not return error")
		}

		got, err := store.List(ctx, stageID)
		require.NoError(t, err, "List should not return error")
		require.Len(t, got, len(events))
		for i := range events {
			assert.Equal(t, events[i].Coordinator, got[i].Coordinator)
			assert.Equal(t, events[i].From, got[i].From)
			assert.Equal(t, events[i].To, got[i].To)
			assert.Equal(t, events[i].ActionCount, got[i].ActionCount)
			assert.True(t, events[i].Timestamp.Equal(got[i].Timestamp))
		}
	})

	t.Run("List Non-Existent", func(t *testing.T) {
		_, err := store.List(ctx, "non-existent-"+stageID)
		assert.ErrorIs(t, err, domain.ErrTraceNotFound)
	})

	t.Run("Stages", func(t *testing.T) {
		other := stageID + "-other"
		require.NoError(t, store.Append(ctx, other, transition("sun", domain.StateInitializing, domain.StateFinished, 1)))
		defer func() {
			_ = store.Delete(ctx, other)
		}()

		stages, err := store.Stages(ctx)
		require.NoError(t, err)
		assert.Contains(t, stages, stageID)
		assert.Contains(t, stages, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, stageID), "Delete should not return error")

		_, err := store.List(ctx, stageID)
		assert.ErrorIs(t, err, domain.ErrTraceNotFound, "List after Delete should return ErrTraceNotFound")

		stages, err := store.Stages(ctx)
		require.NoError(t, err)
		assert.NotContains(t, stages, stageID)
	})
}
