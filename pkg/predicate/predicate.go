// Package predicate decides which animation clause applies to a trigger.
//
// Predicates are pure functions over an external predicate state P and the
// trigger context. Each clause pairs an AND-combined list of predicates with the
// animation to run when all of them hold.
package predicate

import "github.com/aretw0/kinetic/pkg/domain"

// Context is the trigger information a predicate is evaluated against.
type Context[T any] struct {
	TriggerState T
	Visible      bool
}

// Predicate decides whether a clause applies.
type Predicate[P, T any] func(state P, ctx Context[T]) bool

// Clause pairs predicates (AND-combined) with the animation they select.
type Clause[P, T any] struct {
	Predicates []Predicate[P, T]
	Animation  domain.Animation
}

// When builds a clause with a single predicate.
func When[P, T any](p Predicate[P, T], anim domain.Animation) Clause[P, T] {
	return Clause[P, T]{Predicates: []Predicate[P, T]{p}, Animation: anim}
}

// WhenAll builds a clause that applies only when every predicate holds.
func WhenAll[P, T any](ps []Predicate[P, T], anim domain.Animation) Clause[P, T] {
	return Clause[P, T]{Predicates: ps, Animation: anim}
}

// Matches reports whether every predicate of the clause holds.
// A clause without predicates always matches.
func (c Clause[P, T]) Matches(state P, ctx Context[T]) bool {
	for _, p := range c.Predicates {
		if p == nil {
			continue
		}
		if !p(state, ctx) {
			return false
		}
	}
	return true
}

// Select returns the first clause, in declaration order, whose predicates hold.
// Later clauses are not evaluated.
func Select[P, T any](clauses []Clause[P, T], state P, ctx Context[T]) (Clause[P, T], bool) {
	for _, c := range clauses {
		if c.Matches(state, ctx) {
			return c, true
		}
	}
	return Clause[P, T]{}, false
}
