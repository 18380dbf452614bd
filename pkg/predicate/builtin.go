package predicate

// IsVisible holds when the trigger is visible.
func IsVisible[P, T any]() Predicate[P, T] {
	return func(_ P, ctx Context[T]) bool {
		return ctx.Visible
	}
}

// IsHidden holds when the trigger is hidden.
func IsHidden[P, T any]() Predicate[P, T] {
	return func(_ P, ctx Context[T]) bool {
		return !ctx.Visible
	}
}

// Always holds unconditionally.
func Always[P, T any]() Predicate[P, T] {
	return func(P, Context[T]) bool {
		return true
	}
}

// All holds when every predicate holds.
func All[P, T any](ps ...Predicate[P, T]) Predicate[P, T] {
	return func(state P, ctx Context[T]) bool {
		for _, p := range ps {
			if !p(state, ctx) {
				return false
			}
		}
		return true
	}
}

// Any holds when at least one predicate holds.
func Any[P, T any](ps ...Predicate[P, T]) Predicate[P, T] {
	return func(state P, ctx Context[T]) bool {
		for _, p := range ps {
			if p(state, ctx) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not[P, T any](p Predicate[P, T]) Predicate[P, T] {
	return func(state P, ctx Context[T]) bool {
		return !p(state, ctx)
	}
}

// OnState lifts a check over the predicate state alone.
func OnState[P, T any](fn func(P) bool) Predicate[P, T] {
	return func(state P, _ Context[T]) bool {
		return fn(state)
	}
}

// OnTrigger lifts a check over the trigger state alone.
func OnTrigger[P, T any](fn func(T) bool) Predicate[P, T] {
	return func(_ P, ctx Context[T]) bool {
		return fn(ctx.TriggerState)
	}
}
