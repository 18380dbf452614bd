package trigger

import (
	"log/slog"
	"sync"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
)

// Router is a named, in-memory trigger source. Safe for concurrent use.
type Router struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	current domain.Trigger
	nextSub int
	subs    map[int]func(Update)
	order   []int
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithInitial sets the initial trigger without notifying anyone.
func WithInitial(visible bool, data any) Option {
	return func(r *Router) {
		r.current = domain.Trigger{Visible: visible, Data: data}
	}
}

// NewRouter creates a hidden router.
func NewRouter(name string, opts ...Option) *Router {
	r := &Router{
		name:   name,
		logger: logging.NewNop(),
		subs:   make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Source = (*Router)(nil)

// Name implements Source.
func (r *Router) Name() string {
	return r.name
}

// Current implements Source.
func (r *Router) Current() domain.Trigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Visible reports whether the router is currently shown.
func (r *Router) Visible() bool {
	return r.Current().Visible
}

// Show makes the router visible with data.
func (r *Router) Show(data any) domain.Trigger {
	return r.Set(true, data)
}

// Hide makes the router hidden, keeping its last data.
func (r *Router) Hide() domain.Trigger {
	r.mu.Lock()
	data := r.current.Data
	r.mu.Unlock()
	return r.Set(false, data)
}

// Set replaces visibility and data. Every call counts as a new action,
// even if nothing else changed. Subscribers are notified synchronously.
func (r *Router) Set(visible bool, data any) domain.Trigger {
	r.mu.Lock()
	r.current = domain.Trigger{
		Visible:     visible,
		Data:        data,
		ActionCount: r.current.ActionCount + 1,
	}
	current := r.current
	subs := make([]func(Update), 0, len(r.order))
	for _, id := range r.order {
		subs = append(subs, r.subs[id])
	}
	r.mu.Unlock()

	r.logger.Debug("router updated", "router", r.name, "visible", visible, "action_count", current.ActionCount)

	u := Update{Source: r.name, Current: current}
	for _, fn := range subs {
		fn(u)
	}
	return current
}

// Subscribe implements Source. Subscribers are called in subscription order.
func (r *Router) Subscribe(fn func(Update)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.order = append(r.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unsubscribe(id)
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (r *Router) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *Router) unsubscribe(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subs, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
