package animate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/host"
	"github.com/aretw0/kinetic/pkg/predicate"
	"github.com/stretchr/testify/require"
)

type world struct{}

type manual struct {
	ch   chan error
	once sync.Once
}

func newManual() *manual {
	return &manual{ch: make(chan error, 1)}
}

func (m *manual) Finished() <-chan error { return m.ch }
func (m *manual) resolve()               { m.once.Do(func() { close(m.ch) }) }
func (m *manual) reject(err error)       { m.once.Do(func() { m.ch <- err }) }

// script is an animation that records its invocations and hands out manual completions.
type script struct {
	mu    sync.Mutex
	nodes []string
	runs  []*manual
	none  bool
}

func (s *script) animation() domain.Animation {
	return func(ctx domain.AnimationContext) domain.Completion {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.nodes = append(s.nodes, ctx.Node.ID())
		if s.none {
			return nil
		}
		m := newManual()
		s.runs = append(s.runs, m)
		return m
	}
}

func (s *script) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

func (s *script) run(i int) *manual {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[i]
}

func always(anim domain.Animation) []predicate.Clause[world, domain.Trigger] {
	return []predicate.Clause[world, domain.Trigger]{{Animation: anim}}
}

// trace records lifecycle hook events.
type trace struct {
	mu          sync.Mutex
	transitions []string
	dispatches  int
	cancels     int
}

func (tr *trace) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			tr.mu.Lock()
			defer tr.mu.Unlock()
			tr.transitions = append(tr.transitions, e.Coordinator+":"+e.From.String()+">"+e.To.String())
		},
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			tr.mu.Lock()
			defer tr.mu.Unlock()
			tr.dispatches++
		},
		OnCancel: func(_ context.Context, e *domain.CancelEvent) {
			tr.mu.Lock()
			defer tr.mu.Unlock()
			tr.cancels++
		},
	}
}

func (tr *trace) mark() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.transitions)
}

func (tr *trace) since(n int) []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.transitions[n:]...)
}

func (tr *trace) cancelCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.cancels
}

// settle flushes the scheduler until cond holds.
func settle(t *testing.T, sched *host.Scheduler, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		if err := sched.Flush(); err != nil {
			return false
		}
		return cond()
	}, time.Second, time.Millisecond)
}

func flush(t *testing.T, sched *host.Scheduler) {
	t.Helper()
	require.NoError(t, sched.Flush())
}

// probe is a Child that records the binding it receives.
type probe struct {
	mu       sync.Mutex
	binding  *domain.AnimationBinding
	binds    int
	detached bool
}

func (p *probe) Bind(b *domain.AnimationBinding) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.binding = b
	p.binds++
	p.detached = false
}

func (p *probe) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detached = true
}

func (p *probe) report(sched *host.Scheduler, id string, state domain.LifecycleState) error {
	return sched.Post(func() error {
		p.mu.Lock()
		b := p.binding
		p.mu.Unlock()
		b.Notify(id, state)
		return nil
	})
}

func (p *probe) last() *domain.AnimationBinding {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binding
}

func predicateCtx(visible bool) predicate.Context[domain.Trigger] {
	return predicate.Context[domain.Trigger]{Visible: visible}
}
