package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleState_Predicates(t *testing.T) {
	tests := []struct {
		state   LifecycleState
		started bool
		settled bool
	}{
		{StateUnset, false, false},
		{StateRestarting, false, false},
		{StateInitializing, false, false},
		{StateRunning, true, false},
		{StateFinished, true, true},
		{StateUnmounted, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.True(t, tt.state.Valid())
			assert.Equal(t, tt.started, tt.state.Started())
			assert.Equal(t, tt.settled, tt.state.Settled())
		})
	}
	assert.False(t, LifecycleState("paused").Valid())
}

func TestParseLifecycleState(t *testing.T) {
	s, err := ParseLifecycleState("running")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, s)

	s, err = ParseLifecycleState("unset")
	require.NoError(t, err)
	assert.Equal(t, StateUnset, s)

	_, err = ParseLifecycleState("paused")
	assert.Error(t, err)
}

func TestBinding_NotifyIsNilSafe(t *testing.T) {
	var b *AnimationBinding
	assert.NotPanics(t, func() { b.Notify("a", StateRunning) })

	var got []string
	b = &AnimationBinding{NotifyParentOfState: func(id string, s LifecycleState) {
		got = append(got, id+"="+s.String())
	}}
	b.Notify("a", StateFinished)
	assert.Equal(t, []string{"a=finished"}, got)
}

func TestErrors_Unwrap(t *testing.T) {
	cfg := &ConfigError{Component: "box", Err: ErrMissingID}
	assert.ErrorIs(t, cfg, ErrMissingID)
	assert.Equal(t, "configuration error in box: missing id", cfg.Error())

	boom := errors.New("boom")
	anim := &AnimationError{Coordinator: "moon", ActionCount: 2, Err: boom}
	assert.ErrorIs(t, anim, boom)
	assert.Contains(t, anim.Error(), "moon")
}

func TestMergeHooks(t *testing.T) {
	var order []string
	hooks := MergeHooks(
		LifecycleHooks{OnTransition: func(_ context.Context, e *TransitionEvent) { order = append(order, "a") }},
		LifecycleHooks{},
		LifecycleHooks{OnTransition: func(_ context.Context, e *TransitionEvent) { order = append(order, "b") }},
	)
	hooks.OnTransition(context.Background(), &TransitionEvent{})
	hooks.OnDispatch(context.Background(), &DispatchEvent{})
	assert.Equal(t, []string{"a", "b"}, order)
}
