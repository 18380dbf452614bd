package animate

import (
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/predicate"
)

// Run is the outcome of a dispatch.
type Run struct {
	// HasRun is true when a clause matched and its animation was invoked.
	HasRun bool
	// Ctx is the context the animation was (or would have been) invoked with.
	Ctx domain.AnimationContext
	// Result is the completion returned by the animation; nil when there is
	// nothing to await or nothing matched.
	Result domain.Completion
}

// Dispatch selects the first clause whose predicates hold and invokes its
// animation on node, at most once.
func Dispatch[P, T any](node domain.Node, when []predicate.Clause[P, T], state P, ctx predicate.Context[T]) Run {
	run := Run{Ctx: domain.AnimationContext{Node: node}}

	clause, ok := predicate.Select(when, state, ctx)
	if !ok {
		return run
	}

	run.HasRun = true
	if clause.Animation != nil {
		run.Result = clause.Animation(run.Ctx)
	}
	return run
}
