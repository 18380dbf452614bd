package lifecycle

import "github.com/aretw0/kinetic/pkg/domain"

// Kind enumerates the transitions of the state store.
type Kind int

const (
	// NewAction starts a new action cycle for a changed trigger.
	NewAction Kind = iota
	// FinishedByCompletion moves running to finished; ignored in any other state.
	FinishedByCompletion
	// HasRun marks the current cycle as dispatched.
	HasRun
	// ToRunning sets the state to running.
	ToRunning
	// ToFinished sets the state to finished.
	ToFinished
	// ToUnmounted sets the state to unmounted.
	ToUnmounted
	// ToInitializing sets the state to initializing.
	ToInitializing
	// ChildStateUpdate records a state reported by a child.
	ChildStateUpdate
)

var kindNames = [...]string{
	NewAction:            "new_action",
	FinishedByCompletion: "finished_by_completion",
	HasRun:               "has_run",
	ToRunning:            "to_running",
	ToFinished:           "to_finished",
	ToUnmounted:          "to_unmounted",
	ToInitializing:       "to_initializing",
	ChildStateUpdate:     "child_state_update",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Action is a single transition request.
// TriggerState and Visible are read by NewAction; ChildID and ChildState by ChildStateUpdate.
type Action[T any] struct {
	Kind         Kind
	TriggerState T
	Visible      bool
	ChildID      string
	ChildState   domain.LifecycleState
}

// NewActionFor builds a NewAction for the given trigger.
func NewActionFor[T any](trigger T, visible bool) Action[T] {
	return Action[T]{Kind: NewAction, TriggerState: trigger, Visible: visible}
}

// ChildReport builds a ChildStateUpdate.
func ChildReport[T any](childID string, state domain.LifecycleState) Action[T] {
	return Action[T]{Kind: ChildStateUpdate, ChildID: childID, ChildState: state}
}

// Simple builds an action that carries no payload.
func Simple[T any](kind Kind) Action[T] {
	return Action[T]{Kind: kind}
}
