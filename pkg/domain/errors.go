package domain

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when a renderable element is rendered without an id.
var ErrMissingID = errors.New("missing id")

// ErrMissingBinding is returned when an element that requires an animation binding has none.
var ErrMissingBinding = errors.New("missing animation binding")

// ErrNoChild is returned when a coordinator is asked to render but has no child element.
var ErrNoChild = errors.New("coordinator has no child element")

// ErrRouterNotFound is returned when a named trigger source does not exist.
var ErrRouterNotFound = errors.New("router not found")

// ErrSchedulerStopped is returned when work is posted to a stopped scheduler.
var ErrSchedulerStopped = errors.New("scheduler stopped")

// ErrTraceNotFound is returned when a stage has no recorded trace.
var ErrTraceNotFound = errors.New("trace not found")

// ConfigError is a fatal configuration error raised while rendering.
type ConfigError struct {
	Component string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AnimationError reports a completion that was rejected by the animation engine.
type AnimationError struct {
	Coordinator string
	ActionCount int
	Err         error
}

func (e *AnimationError) Error() string {
	return fmt.Sprintf("animation of %s rejected (action %d): %v", e.Coordinator, e.ActionCount, e.Err)
}

func (e *AnimationError) Unwrap() error {
	return e.Err
}
