package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/trigger"
)

// Apply performs one router change.
func Apply(routers *trigger.Registry, step Step) (domain.Trigger, error) {
	r, err := routers.Get(step.Router)
	if err != nil {
		return domain.Trigger{}, err
	}
	switch step.Action {
	case ActionShow:
		return r.Show(step.Data), nil
	case ActionHide:
		return r.Hide(), nil
	case ActionSet:
		return r.Set(step.Visible, step.Data), nil
	default:
		return domain.Trigger{}, fmt.Errorf("%w: unknown action %q", ErrInvalid, step.Action)
	}
}

// Play runs the scene script, waiting each step's delay before applying it.
// It returns once the last step was applied; the stage keeps animating.
func (b *Built) Play(ctx context.Context) error {
	logger := b.Stage.Logger()
	for i, step := range b.Scene.Script {
		if step.After != "" {
			d, err := time.ParseDuration(step.After)
			if err != nil {
				return &SceneError{Path: fmt.Sprintf("script[%d]", i), Err: err}
			}
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		t, err := Apply(b.Stage.Routers(), step)
		if err != nil {
			return &SceneError{Path: fmt.Sprintf("script[%d]", i), Err: err}
		}
		logger.Info("script step", "step", i, "router", step.Router, "action", step.Action, "visible", t.Visible)
	}
	return nil
}

// WaitSettled polls until the tree is settled or ctx is done.
func (b *Built) WaitSettled(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if b.Settled() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Settle flushes the stage on the calling goroutine until the tree is settled or
// ctx is done. Use it instead of WaitSettled when nothing else runs the stage.
func (b *Built) Settle(ctx context.Context, interval time.Duration) error {
	for {
		if err := b.Stage.Flush(); err != nil {
			return err
		}
		if b.Settled() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
