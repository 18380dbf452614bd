package domain

// NotifyParentOfState is invoked by a child coordinator to report its lifecycle state.
type NotifyParentOfState func(childID string, state LifecycleState)

// AnimationBinding is handed from a coordinator to the element it renders.
// It is rebuilt on every render and must not be retained across renders.
type AnimationBinding struct {
	NotifyParentOfState NotifyParentOfState
	ParentState         LifecycleState
	ParentVisible       bool
}

// Notify reports state for childID if the binding carries a callback.
func (b *AnimationBinding) Notify(childID string, state LifecycleState) {
	if b == nil || b.NotifyParentOfState == nil {
		return
	}
	b.NotifyParentOfState(childID, state)
}
