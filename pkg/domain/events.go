package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition  EventType = "transition"
	EventDispatch    EventType = "dispatch"
	EventCancel      EventType = "cancel"
	EventChildReport EventType = "child_report"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	Coordinator string    `json:"coordinator"`
	Name        string    `json:"name,omitempty"`
}

// TransitionEvent records a change of a coordinator's current state.
type TransitionEvent struct {
	EventBase
	From        LifecycleState `json:"from"`
	To          LifecycleState `json:"to"`
	ActionCount int            `json:"action_count"`
	Visible     bool           `json:"visible"`
}

// DispatchEvent records an animation dispatch attempt.
type DispatchEvent struct {
	EventBase
	Matched     bool `json:"matched"`
	Awaiting    bool `json:"awaiting"`
	ActionCount int  `json:"action_count"`
	Visible     bool `json:"visible"`
}

// CancelEvent records the cancellation of a tracked completion.
type CancelEvent struct {
	EventBase
	ActionCount int `json:"action_count"`
}

// ChildReportEvent records a child reporting its state to its parent.
type ChildReportEvent struct {
	EventBase
	Child string         `json:"child"`
	State LifecycleState `json:"state"`
}

// LifecycleHooks defines callbacks for coordinator observability.
// Hooks run on the scheduler goroutine and must not block.
type LifecycleHooks struct {
	OnTransition  func(context.Context, *TransitionEvent)
	OnDispatch    func(context.Context, *DispatchEvent)
	OnCancel      func(context.Context, *CancelEvent)
	OnChildReport func(context.Context, *ChildReportEvent)
}

// MergeHooks fans every event out to all the given hooks, in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnDispatch: func(ctx context.Context, e *DispatchEvent) {
			for _, h := range hooks {
				if h.OnDispatch != nil {
					h.OnDispatch(ctx, e)
				}
			}
		},
		OnCancel: func(ctx context.Context, e *CancelEvent) {
			for _, h := range hooks {
				if h.OnCancel != nil {
					h.OnCancel(ctx, e)
				}
			}
		},
		OnChildReport: func(ctx context.Context, e *ChildReportEvent) {
			for _, h := range hooks {
				if h.OnChildReport != nil {
					h.OnChildReport(ctx, e)
				}
			}
		},
	}
}
