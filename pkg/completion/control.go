// Package completion tracks a single in-flight animation completion that can be
// canceled at any time.
//
// A Control owns at most one tracked completion. Its finish action fires at most
// once per tracked completion, and never after Cancel.
package completion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
)

// Control is a cancellable wrapper around one asynchronous completion.
// Safe for concurrent use.
type Control struct {
	mu       sync.Mutex
	current  *tracking
	onFinish func()
	onError  func(error)
	logger   *slog.Logger
}

// resolved is the channel of a completion that finished before it was tracked.
var resolved = func() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}()

type tracking struct {
	cancel   context.CancelFunc
	canceled bool
	settled  bool
}

// Option configures a Control.
type Option func(*Control)

// WithLogger sets the logger used to report recovered cancellation failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Control) {
		c.logger = logger
	}
}

// WithErrorHandler registers a callback for rejected completions.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Control) {
		c.onError = fn
	}
}

// New creates an idle Control.
func New(opts ...Option) *Control {
	c := &Control{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetFinishAction registers the callback invoked on genuine completion.
func (c *Control) SetFinishAction(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinish = fn
}

// Track starts waiting on completion. The finish action is invoked once the
// completion resolves, unless Cancel was called first. A nil completion (or one
// without a channel) counts as already resolved.
// A completion tracked earlier is canceled.
func (c *Control) Track(completion domain.Completion) *Pending {
	p := &Pending{done: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	t := &tracking{cancel: cancel}

	c.mu.Lock()
	previous := c.current
	c.current = t
	c.mu.Unlock()

	if previous != nil {
		c.cancelTracking(previous)
	}

	finished := resolved
	if completion != nil {
		if ch := completion.Finished(); ch != nil {
			finished = ch
		}
	}

	go c.wait(ctx, t, finished, p)
	return p
}

func (c *Control) wait(ctx context.Context, t *tracking, finished <-chan error, p *Pending) {
	defer close(p.done)
	defer t.cancel()

	select {
	case <-ctx.Done():
		p.setCanceled()
		return
	case err, ok := <-finished:
		if ok && err != nil {
			p.setErr(err)
			c.reject(t, err)
			return
		}
	}

	c.mu.Lock()
	if t.canceled || t.settled {
		c.mu.Unlock()
		p.setCanceled()
		return
	}
	t.settled = true
	action := c.onFinish
	c.mu.Unlock()

	if action != nil {
		action()
	}
}

func (c *Control) reject(t *tracking, err error) {
	c.mu.Lock()
	handler := c.onError
	canceled := t.canceled
	t.settled = true
	c.mu.Unlock()

	if canceled || handler == nil {
		return
	}
	handler(err)
}

// Cancel abandons the tracked completion. It is idempotent and never panics.
// A Control can track again after Cancel.
func (c *Control) Cancel() {
	c.mu.Lock()
	t := c.current
	c.mu.Unlock()

	if t != nil {
		c.cancelTracking(t)
	}
}

func (c *Control) cancelTracking(t *tracking) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("recovered from cancel failure", "err", fmt.Errorf("%v", r))
		}
	}()

	c.mu.Lock()
	if t.canceled || t.settled {
		c.mu.Unlock()
		return
	}
	t.canceled = true
	c.mu.Unlock()

	t.cancel()
}

// Canceled reports whether the last tracked completion was canceled.
func (c *Control) Canceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.canceled
}

// Active reports whether a tracked completion is still in flight.
func (c *Control) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && !c.current.canceled && !c.current.settled
}

// Pending is the observable side of a tracked completion.
type Pending struct {
	done     chan struct{}
	mu       sync.Mutex
	err      error
	canceled bool
}

// Done is closed once the completion resolved, was rejected or was canceled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the rejection error, if any.
func (p *Pending) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Canceled reports whether the completion was abandoned before its finish action ran.
func (p *Pending) Canceled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

func (p *Pending) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *Pending) setCanceled() {
	p.mu.Lock()
	p.canceled = true
	p.mu.Unlock()
}
