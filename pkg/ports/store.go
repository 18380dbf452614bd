package ports

import (
	"context"

	"github.com/aretw0/kinetic/pkg/domain"
)

// TraceStore persists the lifecycle transitions of a stage, in order.
type TraceStore interface {
	// Append records one transition for stageID.
	Append(ctx context.Context, stageID string, event domain.TransitionEvent) error

	// List returns the transitions of stageID in the order they were appended.
	// Returns domain.ErrTraceNotFound if nothing was recorded.
	List(ctx context.Context, stageID string) ([]domain.TransitionEvent, error)

	// Delete removes the trace of stageID.
	Delete(ctx context.Context, stageID string) error

	// Stages returns the ids of every stage with a recorded trace.
	Stages(ctx context.Context) ([]string, error)
}
