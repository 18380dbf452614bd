package lifecycle

import (
	"maps"

	"github.com/aretw0/kinetic/pkg/domain"
)

// Snapshot is a serializable view of a coordinator's state.
type Snapshot struct {
	ID             string                           `json:"id"`
	Name           string                           `json:"name,omitempty"`
	Parent         string                           `json:"parent,omitempty"`
	ActionCount    int                              `json:"action_count"`
	Current        domain.LifecycleState            `json:"current"`
	HasRunForCycle bool                             `json:"has_run_for_cycle"`
	Visible        bool                             `json:"visible"`
	Attached       bool                             `json:"attached"`
	TriggerState   any                              `json:"trigger_state,omitempty"`
	ChildStates    map[string]domain.LifecycleState `json:"child_states,omitempty"`
}

// Snapshot captures s for reporting.
func (s State[T]) Snapshot(id, name string) Snapshot {
	return Snapshot{
		ID:             id,
		Name:           name,
		ActionCount:    s.ActionCount,
		Current:        s.Current,
		HasRunForCycle: s.HasRunForCycle,
		Visible:        s.Visible,
		TriggerState:   s.TriggerState,
		ChildStates:    maps.Clone(s.ChildStates),
	}
}

// Filter returns the snapshots keep reports true for. The result is never nil.
func Filter(snaps []Snapshot, keep func(Snapshot) bool) []Snapshot {
	out := make([]Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		if keep(snap) {
			out = append(out, snap)
		}
	}
	return out
}

// InState keeps snapshots whose current state is state.
func InState(state domain.LifecycleState) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Current == state }
}

// HasStarted keeps snapshots whose animation has (or has not) started this cycle.
func HasStarted(want bool) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Current.Started() == want }
}
