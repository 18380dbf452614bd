package trigger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/kinetic/pkg/domain"
)

// Registry holds named routers. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	routers map[string]*Router
	opts    []Option
}

// NewRegistry creates an empty registry. opts are applied to every router it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		routers: make(map[string]*Router),
		opts:    opts,
	}
}

// Register creates a router. Registering an existing name is an error.
func (r *Registry) Register(name string, opts ...Option) (*Router, error) {
	if name == "" {
		return nil, &domain.ConfigError{Component: "router", Err: domain.ErrMissingID}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routers[name]; exists {
		return nil, fmt.Errorf("router %q already registered", name)
	}
	router := NewRouter(name, append(append([]Option{}, r.opts...), opts...)...)
	r.routers[name] = router
	return router, nil
}

// Get returns the named router.
func (r *Registry) Get(name string) (*Router, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	router, ok := r.routers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRouterNotFound, name)
	}
	return router, nil
}

// Names returns the registered router names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.routers))
	for name := range r.routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the current trigger of every router.
func (r *Registry) Snapshot() map[string]domain.Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.Trigger, len(r.routers))
	for name, router := range r.routers {
		out[name] = router.Current()
	}
	return out
}
