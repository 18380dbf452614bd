package domain

import "fmt"

// LifecycleState is the phase of a coordinator within its current action cycle.
type LifecycleState string

const (
	StateUnset        LifecycleState = ""             // Not reported yet in this cycle
	StateRestarting   LifecycleState = "restarting"   // Previous animation canceled, renders nothing for one tick
	StateInitializing LifecycleState = "initializing" // Waiting for guards and an attached node
	StateRunning      LifecycleState = "running"      // Animation dispatched, awaiting completion
	StateFinished     LifecycleState = "finished"     // Animation completed (or nothing matched)
	StateUnmounted    LifecycleState = "unmounted"    // No node needed for this cycle
)

// States lists every reportable state in lifecycle order.
var States = []LifecycleState{
	StateRestarting,
	StateInitializing,
	StateRunning,
	StateFinished,
	StateUnmounted,
}

func (s LifecycleState) String() string {
	if s == StateUnset {
		return "unset"
	}
	return string(s)
}

// Valid reports whether s is one of the known states, including StateUnset.
func (s LifecycleState) Valid() bool {
	if s == StateUnset {
		return true
	}
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// Started reports whether a coordinator in state s has dispatched (or skipped) its animation.
func (s LifecycleState) Started() bool {
	return s == StateRunning || s == StateFinished || s == StateUnmounted
}

// Settled reports whether the cycle is over for a coordinator in state s.
func (s LifecycleState) Settled() bool {
	return s == StateFinished || s == StateUnmounted
}

// ParseLifecycleState converts a wire value into a LifecycleState.
func ParseLifecycleState(v string) (LifecycleState, error) {
	s := LifecycleState(v)
	if v == "unset" {
		return StateUnset, nil
	}
	if !s.Valid() {
		return StateUnset, fmt.Errorf("unknown lifecycle state %q", v)
	}
	return s, nil
}
