package domain

// Node is the handle of a rendered element an animation operates on.
type Node interface {
	ID() string
}

// Completion is the awaitable returned by an animation.
// The channel yields nil (or is closed) when the animation finishes and a
// non-nil error when it is rejected.
type Completion interface {
	Finished() <-chan error
}

// AnimationContext is passed to an animation when it is dispatched.
type AnimationContext struct {
	Node Node
}

// Animation starts an animation on ctx.Node.
// Returning nil means there is nothing to await and the cycle finishes immediately.
type Animation func(ctx AnimationContext) Completion

// CompletionFunc adapts a plain channel into a Completion.
type CompletionFunc func() <-chan error

// Finished implements Completion.
func (f CompletionFunc) Finished() <-chan error {
	return f()
}
