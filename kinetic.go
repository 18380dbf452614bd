package kinetic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/animate"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/host"
	"github.com/aretw0/kinetic/pkg/lifecycle"
	"github.com/aretw0/kinetic/pkg/observability"
	"github.com/aretw0/kinetic/pkg/ports"
	"github.com/aretw0/kinetic/pkg/trigger"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a crashed process keeps a stage locked.
// A running stage renews its lock every third of the ttl.
const DefaultLockTTL = time.Minute

// Inspectable is a coordinator as seen by the stage.
type Inspectable interface {
	ID() string
	Snapshot() lifecycle.Snapshot
}

// Stage is the high-level entry point of the library. It owns the scheduler every
// coordinator runs on, the named routers that drive them and the observability
// wiring (metrics, trace recording, live events).
type Stage struct {
	id     string
	ctx    context.Context
	sched  *host.Scheduler
	logger *slog.Logger

	routers *trigger.Registry
	hooks   domain.LifecycleHooks
	metrics *observability.Metrics
	store   ports.TraceStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	events  *observability.Broadcaster

	mu           sync.RWMutex
	coordinators map[string]Inspectable
	order        []string
}

// Option defines a functional option for configuring the Stage.
type Option func(*Stage)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks, in addition to the built-in ones.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Stage) {
		s.hooks = hooks
	}
}

// WithMetrics feeds m from every coordinator.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Stage) {
		s.metrics = m
	}
}

// WithTraceStore records every transition in store.
func WithTraceStore(store ports.TraceStore) Option {
	return func(s *Stage) {
		s.store = store
	}
}

// WithLocker makes Run hold a lock on the stage id.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Stage) {
		s.locker = locker
	}
}

// WithLockTTL sets the ttl of the stage lock (DefaultLockTTL otherwise).
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Stage) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithID sets the stage id used for traces and locks. A random id is used otherwise.
func WithID(id string) Option {
	return func(s *Stage) {
		s.id = id
	}
}

// WithContext sets the context handed to lifecycle hooks.
func WithContext(ctx context.Context) Option {
	return func(s *Stage) {
		s.ctx = ctx
	}
}

// New creates an empty stage.
func New(opts ...Option) *Stage {
	s := &Stage{
		ctx:          context.Background(),
		logger:       logging.NewNop(),
		lockTTL:      DefaultLockTTL,
		coordinators: make(map[string]Inspectable),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}

	s.logger = s.logger.With("stage", s.id)
	s.sched = host.New(host.WithLogger(s.logger), host.WithContext(s.ctx))
	s.routers = trigger.NewRegistry(trigger.WithLogger(s.logger))
	s.events = observability.NewBroadcaster(64, s.logger)

	all := []domain.LifecycleHooks{s.hooks, s.events.Hooks()}
	if s.metrics != nil {
		all = append(all, s.metrics.Hooks())
	}
	if s.store != nil {
		all = append(all, observability.NewRecorder(s.store, s.id, s.logger).Hooks())
	}
	s.hooks = domain.MergeHooks(all...)
	return s
}

// ID returns the stage id.
func (s *Stage) ID() string {
	return s.id
}

// Scheduler returns the scheduler coordinators of this stage run on.
func (s *Stage) Scheduler() *host.Scheduler {
	return s.sched
}

// Logger returns the stage logger.
func (s *Stage) Logger() *slog.Logger {
	return s.logger
}

// Routers returns the registry of named routers.
func (s *Stage) Routers() *trigger.Registry {
	return s.routers
}

// Hooks returns the merged lifecycle hooks coordinators should use.
func (s *Stage) Hooks() domain.LifecycleHooks {
	return s.hooks
}

// Events returns the live event broadcaster.
func (s *Stage) Events() *observability.Broadcaster {
	return s.events
}

// Register makes c visible to Snapshots.
func (s *Stage) Register(c Inspectable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.coordinators[c.ID()]; !exists {
		s.order = append(s.order, c.ID())
	}
	s.coordinators[c.ID()] = c
}

// Snapshots returns the state of every registered coordinator, in registration order.
func (s *Stage) Snapshots() []lifecycle.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]lifecycle.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.coordinators[id].Snapshot())
	}
	return out
}

// Snapshot returns the state of one coordinator.
func (s *Stage) Snapshot(id string) (lifecycle.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coordinators[id]
	if !ok {
		return lifecycle.Snapshot{}, false
	}
	return c.Snapshot(), true
}

// Trace returns the recorded transitions of this stage.
func (s *Stage) Trace(ctx context.Context) ([]domain.TransitionEvent, error) {
	if s.store == nil {
		return nil, domain.ErrTraceNotFound
	}
	return s.store.List(ctx, s.id)
}

// Flush runs every pending task on the calling goroutine.
func (s *Stage) Flush() error {
	return s.sched.Flush()
}

// Run drives the stage until ctx is done, Stop is called or a coordinator fails.
// With a locker configured, the stage id is locked for the duration. Lockers
// that implement ports.Renewer are renewed while Run is active; losing the
// lock stops the stage.
func (s *Stage) Run(ctx context.Context) error {
	var lost <-chan error
	if s.locker != nil {
		key := "stage:" + s.id
		unlock, err := s.locker.Lock(ctx, key, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to lock stage %s: %w", s.id, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release stage lock", "err", err)
			}
		}()

		if r, ok := s.locker.(ports.Renewer); ok {
			var stop func()
			lost, stop = s.keepLock(ctx, r, key)
			defer stop()
		}
	}

	s.logger.Debug("stage running")
	err := s.sched.Run(ctx)
	s.logger.Debug("stage stopped", "err", err)

	select {
	case lerr := <-lost:
		return fmt.Errorf("stage %s: %w", s.id, lerr)
	default:
	}
	return err
}

// keepLock renews the stage lock until stop is called. A failed renewal is
// reported on the returned channel and stops the scheduler.
func (s *Stage) keepLock(ctx context.Context, r ports.Renewer, key string) (<-chan error, func()) {
	ctx, cancel := context.WithCancel(ctx)
	lost := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.lockTTL / 3)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := r.Renew(ctx, key, s.lockTTL); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("stage lock lost", "err", err)
				lost <- err
				s.sched.Stop()
				return
			}
		}
	}()

	return lost, func() {
		cancel()
		<-done
	}
}

// Stop ends Run and rejects further work.
func (s *Stage) Stop() {
	s.sched.Stop()
}

// NewCoordinator creates a coordinator on the stage's scheduler with the stage's
// logger and hooks, and registers it.
func NewCoordinator[P, T any](s *Stage, props animate.Props[P, T], opts ...animate.Option) *animate.Coordinator[P, T] {
	base := []animate.Option{
		animate.WithLogger(s.logger),
		animate.WithLifecycleHooks(s.hooks),
	}
	c := animate.New(s.sched, props, append(base, opts...)...)
	s.Register(c)
	return c
}
