package lifecycle

import "github.com/aretw0/kinetic/pkg/domain"

// Reduce applies a single action to s and returns the resulting state.
// s is never mutated.
func Reduce[T any](s State[T], a Action[T]) State[T] {
	next := s.Clone()

	switch a.Kind {
	case NewAction:
		next.ActionCount = s.ActionCount + 1
		if s.Current == domain.StateRunning {
			next.Current = domain.StateRestarting
		} else {
			next.Current = domain.StateInitializing
		}
		next.HasRunForCycle = false
		next.TriggerState = a.TriggerState
		next.Visible = a.Visible
		// Unmounted children are out of play; everyone else reports again.
		for id, st := range next.ChildStates {
			if st != domain.StateUnmounted {
				next.ChildStates[id] = domain.StateUnset
			}
		}

	case FinishedByCompletion:
		if s.Current == domain.StateRunning {
			next.Current = domain.StateFinished
		}

	case HasRun:
		next.HasRunForCycle = true

	case ToRunning:
		next.Current = domain.StateRunning

	case ToFinished:
		next.Current = domain.StateFinished

	case ToUnmounted:
		next.Current = domain.StateUnmounted

	case ToInitializing:
		next.Current = domain.StateInitializing

	case ChildStateUpdate:
		next.ChildStates[a.ChildID] = a.ChildState
	}

	return next
}

// ReduceAll folds actions over s in order.
func ReduceAll[T any](s State[T], actions ...Action[T]) State[T] {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}
