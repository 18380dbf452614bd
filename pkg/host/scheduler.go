// Package host provides the cooperative scheduler coordinators run on.
//
// Every state mutation of a coordinator happens inside a task executed by a
// Scheduler, one task at a time. Other goroutines (animation completions, trigger
// sources, timers) only ever Post tasks.
package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
)

// Task is a unit of work executed on the scheduler goroutine.
type Task func() error

// Scheduler is a single-threaded mailbox of tasks.
type Scheduler struct {
	mu       sync.Mutex
	queue    []Task
	reported []error
	stopped  bool
	wake     chan struct{}

	flushMu sync.Mutex
	running bool

	ctx    context.Context
	logger *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithContext sets the context handed to lifecycle hooks.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) {
		s.ctx = ctx
	}
}

// New creates an idle scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		wake:   make(chan struct{}, 1),
		ctx:    context.Background(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Context returns the context tasks should use for hooks and I/O.
func (s *Scheduler) Context() context.Context {
	return s.ctx
}

// Post enqueues a task. Safe for concurrent use.
func (s *Scheduler) Post(task Task) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return domain.ErrSchedulerStopped
	}
	s.queue = append(s.queue, task)
	s.mu.Unlock()

	s.signal()
	return nil
}

// After posts task once d has elapsed. The returned function cancels it.
func (s *Scheduler) After(d time.Duration, task Task) (stop func() bool) {
	t := time.AfterFunc(d, func() {
		if err := s.Post(task); err != nil {
			s.logger.Debug("dropping delayed task", "err", err)
		}
	})
	return t.Stop
}

// Report records an error raised outside of a task. It is returned by the next Flush.
func (s *Scheduler) Report(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.reported = append(s.reported, err)
	s.mu.Unlock()

	s.signal()
}

// Flush runs queued tasks on the calling goroutine until the queue is empty.
// Tasks posted while flushing are run in the same call. The first error stops
// the flush and is returned; remaining tasks stay queued.
// A Flush issued while another one is in progress (including from inside a
// task) returns immediately.
func (s *Scheduler) Flush() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.setRunning(true)
	defer s.setRunning(false)

	for {
		task, ok, err := s.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := task(); err != nil {
			return err
		}
	}
}

// Run flushes tasks as they arrive until ctx is done, Stop is called or a task fails.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.Flush(); err != nil {
			return err
		}
		if s.Stopped() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}

// Stop rejects further tasks and drops the queue.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.queue = nil
	s.mu.Unlock()

	s.signal()
}

// Stopped reports whether Stop was called.
func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) next() (Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reported) > 0 {
		err := errors.Join(s.reported...)
		s.reported = nil
		return nil, false, err
	}
	if len(s.queue) == 0 {
		return nil, false, nil
	}
	task := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return task, true, nil
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
