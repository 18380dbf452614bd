package animate

import (
	"log/slog"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/predicate"
	"github.com/google/uuid"
)

// Props configure a Coordinator. P is the predicate state, T the trigger state.
type Props[P, T any] struct {
	// Name labels the coordinator in logs and events.
	Name string
	// ID is reported to the parent. A unique id is generated when empty.
	ID string

	Visible        bool
	TriggerState   T
	PredicateState P

	// When lists the animation clauses, evaluated in order.
	When []predicate.Clause[P, T]
	// Child is the element rendered and animated by the coordinator.
	Child Element

	// KeepOnHide keeps the child rendered once the exit animation finished.
	// By default the child is unmounted.
	KeepOnHide bool

	EnterAfterParentStart  bool
	EnterAfterParentFinish bool
	ExitAfterChildStart    []string
	ExitAfterChildFinish   []string
}

type config struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	newID  func() string
}

// Option configures a Coordinator.
type Option func(*config)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithIDGenerator overrides how ids are generated for coordinators without one.
func WithIDGenerator(fn func() string) Option {
	return func(c *config) {
		c.newID = fn
	}
}

func defaultConfig() config {
	return config{
		logger: logging.NewNop(),
		newID:  uuid.NewString,
	}
}
