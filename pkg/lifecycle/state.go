// Package lifecycle holds the per-coordinator state store.
//
// State is only changed through Reduce, a pure function of the current state and
// an Action. Coordinators queue actions and fold them on their scheduler.
package lifecycle

import (
	"maps"
	"reflect"

	"github.com/aretw0/kinetic/pkg/domain"
)

// State is the data owned by a single coordinator.
type State[T any] struct {
	// ActionCount is incremented once per new trigger.
	ActionCount int
	// Current is the lifecycle state of the coordinator.
	Current domain.LifecycleState
	// HasRunForCycle is set once dispatch was invoked for ActionCount.
	HasRunForCycle bool
	// TriggerState is the last trigger payload taken into account.
	TriggerState T
	// Visible is the last visibility taken into account.
	Visible bool
	// ChildStates maps child ids to their last reported state for this cycle.
	ChildStates map[string]domain.LifecycleState
}

// Initial returns the state of a freshly mounted coordinator.
func Initial[T any](trigger T) State[T] {
	return State[T]{
		Current:      domain.StateInitializing,
		TriggerState: trigger,
		ChildStates:  make(map[string]domain.LifecycleState),
	}
}

// SameTrigger reports whether (trigger, visible) equals the pair recorded in s.
func (s State[T]) SameTrigger(trigger T, visible bool) bool {
	return s.Visible == visible && SameTrigger(s.TriggerState, trigger)
}

// Clone returns a copy of s that shares no mutable data.
func (s State[T]) Clone() State[T] {
	next := s
	next.ChildStates = maps.Clone(s.ChildStates)
	if next.ChildStates == nil {
		next.ChildStates = make(map[string]domain.LifecycleState)
	}
	return next
}

// SameTrigger compares two trigger payloads structurally.
func SameTrigger[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

// ChildrenMatch reports whether every child of interest that has reported
// in this cycle is in one of states. Children that never reported are ignored;
// if none of them reported, ChildrenMatch is false.
func ChildrenMatch(ofInterest []string, states []domain.LifecycleState, children map[string]domain.LifecycleState) bool {
	looked := 0
	for _, id := range ofInterest {
		current, reported := children[id]
		if !reported {
			continue
		}
		looked++
		if !containsState(states, current) {
			return false
		}
	}
	return looked > 0
}

func containsState(states []domain.LifecycleState, s domain.LifecycleState) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
