package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/ports"
)

// Recorder persists transitions to a TraceStore.
type Recorder struct {
	store   ports.TraceStore
	stageID string
	logger  *slog.Logger
}

// NewRecorder creates a recorder appending to store under stageID.
// Store failures are logged, never propagated to the coordinator.
func NewRecorder(store ports.TraceStore, stageID string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{store: store, stageID: stageID, logger: logger}
}

// Hooks returns the lifecycle hooks recording transitions.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			if err := r.store.Append(ctx, r.stageID, *e); err != nil {
				r.logger.Error("failed to record transition", "stage", r.stageID, "coordinator", e.Coordinator, "err", err)
			}
		},
	}
}

// Trace returns what was recorded so far.
func (r *Recorder) Trace(ctx context.Context) ([]domain.TransitionEvent, error) {
	return r.store.List(ctx, r.stageID)
}
