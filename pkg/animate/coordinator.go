package animate

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/completion"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/host"
	"github.com/aretw0/kinetic/pkg/lifecycle"
	"github.com/aretw0/kinetic/pkg/predicate"
)

var (
	childStartPending  = []domain.LifecycleState{domain.StateUnset, domain.StateRestarting, domain.StateInitializing}
	childFinishPending = []domain.LifecycleState{domain.StateUnset, domain.StateRestarting, domain.StateInitializing, domain.StateRunning}
)

// deps are the values effects are keyed on, captured after every commit.
type deps[T any] struct {
	current     domain.LifecycleState
	actionCount int
	node        domain.Node
	parentState domain.LifecycleState
	childStates map[string]domain.LifecycleState
	trigger     T
	visible     bool
}

// Coordinator drives the animation lifecycle of one element.
//
// Exported methods may be called from any goroutine; they post work to the
// scheduler. Bind and Detach are the exception: they implement Child and are
// called by the parent element on the scheduler goroutine.
type Coordinator[P, T any] struct {
	sched  *host.Scheduler
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	uid    string

	props   Props[P, T]
	binding *domain.AnimationBinding

	mu      sync.RWMutex // guards state, node and mounted for readers off the scheduler
	mounted bool
	state   lifecycle.State[T]
	node    domain.Node

	pending      []lifecycle.Action[T]
	queued       bool
	control      *completion.Control
	childMounted bool
	committed    bool
	prev         deps[T]
}

var _ Child = (*Coordinator[struct{}, struct{}])(nil)

// New creates an unmounted coordinator.
func New[P, T any](sched *host.Scheduler, props Props[P, T], opts ...Option) *Coordinator[P, T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Coordinator[P, T]{
		sched: sched,
		hooks: cfg.hooks,
		uid:   cfg.newID(),
		props: props,
		state: lifecycle.Initial(props.TriggerState),
	}
	name := props.Name
	if name == "" {
		name = "unnamed"
	}
	c.logger = logging.Scope(cfg.logger, "animate", name).With("coordinator", c.ID())
	return c
}

// ID returns the id reported to the parent.
func (c *Coordinator[P, T]) ID() string {
	if c.props.ID != "" {
		return c.props.ID
	}
	return c.uid
}

// Name returns the display name of the coordinator.
func (c *Coordinator[P, T]) Name() string {
	if c.props.Name != "" {
		return c.props.Name
	}
	return c.ID()
}

// Mount mounts the coordinator as a root, without a parent binding.
func (c *Coordinator[P, T]) Mount() {
	c.post(func() error {
		if !c.mounted {
			c.mount(nil)
		}
		return nil
	})
}

// Unmount tears a root coordinator down.
func (c *Coordinator[P, T]) Unmount() {
	c.post(func() error {
		c.Detach()
		return nil
	})
}

// Update changes the props of the coordinator.
func (c *Coordinator[P, T]) Update(fn func(*Props[P, T])) {
	c.post(func() error {
		fn(&c.props)
		c.schedule()
		return nil
	})
}

// SetTrigger updates the visibility and trigger state.
func (c *Coordinator[P, T]) SetTrigger(trigger T, visible bool) {
	c.Update(func(p *Props[P, T]) {
		p.TriggerState = trigger
		p.Visible = visible
	})
}

// SetPredicateState replaces the predicate state used by the next dispatch.
func (c *Coordinator[P, T]) SetPredicateState(state P) {
	c.Update(func(p *Props[P, T]) {
		p.PredicateState = state
	})
}

// Bind implements Child. The first call mounts the coordinator.
func (c *Coordinator[P, T]) Bind(binding *domain.AnimationBinding) {
	if !c.mounted {
		c.mount(binding)
		return
	}

	changed := c.binding == nil || binding == nil ||
		c.binding.ParentState != binding.ParentState ||
		c.binding.ParentVisible != binding.ParentVisible
	c.binding = binding
	if changed {
		c.schedule()
	}
}

// Detach implements Child. The coordinator cancels its animation, reports
// itself unmounted to its parent and forgets its state, as a fresh instance would.
func (c *Coordinator[P, T]) Detach() {
	if !c.mounted {
		return
	}
	c.logger.Debug("detaching", "state", c.state.Current)

	if c.control != nil {
		c.control.Cancel()
		c.control = nil
	}
	if c.childMounted && c.props.Child != nil {
		c.props.Child.Unmount()
	}
	c.childMounted = false

	c.binding.Notify(c.ID(), domain.StateUnmounted)

	c.mu.Lock()
	c.mounted = false
	c.node = nil
	c.state = lifecycle.Initial(c.props.TriggerState)
	c.mu.Unlock()

	c.binding = nil
	c.pending = nil
	c.committed = false
	c.prev = deps[T]{}
}

// State returns a copy of the lifecycle state.
func (c *Coordinator[P, T]) State() lifecycle.State[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Current returns the current lifecycle state.
func (c *Coordinator[P, T]) Current() domain.LifecycleState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Current
}

// Node returns the attached node, or nil.
func (c *Coordinator[P, T]) Node() domain.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.node
}

// Mounted reports whether the coordinator is part of the tree.
func (c *Coordinator[P, T]) Mounted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mounted
}

// Snapshot returns a serializable view of the coordinator.
func (c *Coordinator[P, T]) Snapshot() lifecycle.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := c.state.Snapshot(c.ID(), c.props.Name)
	snap.Attached = c.node != nil
	return snap
}

func (c *Coordinator[P, T]) mount(binding *domain.AnimationBinding) {
	c.logger.Debug("mounting")

	c.mu.Lock()
	c.mounted = true
	c.state = lifecycle.Initial(c.props.TriggerState)
	c.node = nil
	c.mu.Unlock()

	c.binding = binding
	c.pending = nil
	c.committed = false
	c.control = nil
	c.schedule()
}

func (c *Coordinator[P, T]) post(task host.Task) {
	if err := c.sched.Post(task); err != nil {
		c.logger.Debug("dropping coordinator task", "err", err)
	}
}

func (c *Coordinator[P, T]) schedule() {
	if c.queued {
		return
	}
	c.queued = true
	c.post(c.flush)
}

func (c *Coordinator[P, T]) dispatch(a lifecycle.Action[T]) {
	c.pending = append(c.pending, a)
	c.schedule()
}

// flush is one render pass: fold queued actions, decide what to render,
// commit it and run the effects whose dependencies changed.
func (c *Coordinator[P, T]) flush() error {
	c.queued = false
	if !c.mounted {
		c.pending = nil
		return nil
	}

	c.apply()

	show := c.render()
	if err := c.commit(show); err != nil {
		return err
	}

	c.runEffects()
	return nil
}

func (c *Coordinator[P, T]) apply() {
	if len(c.pending) == 0 {
		return
	}
	actions := c.pending
	c.pending = nil

	for _, a := range actions {
		from := c.state.Current
		next := lifecycle.Reduce(c.state, a)

		c.mu.Lock()
		c.state = next
		c.mu.Unlock()

		if next.Current != from {
			c.emitTransition(from, next.Current)
		}
	}
}

// visible is the effective visibility: a hidden parent hides its children.
func (c *Coordinator[P, T]) visible() bool {
	if c.binding != nil && !c.binding.ParentVisible {
		return false
	}
	return c.props.Visible
}

func (c *Coordinator[P, T]) parentState() domain.LifecycleState {
	if c.binding == nil || c.binding.ParentState == domain.StateUnset {
		return domain.StateInitializing
	}
	return c.binding.ParentState
}

func (c *Coordinator[P, T]) waitingForParent(visible bool) bool {
	if !visible {
		return false
	}
	parent := c.parentState()
	if c.props.EnterAfterParentStart && parent != domain.StateRunning && parent != domain.StateFinished {
		return true
	}
	return c.props.EnterAfterParentFinish && parent != domain.StateFinished
}

// render decides whether the child is rendered for the current state.
func (c *Coordinator[P, T]) render() bool {
	s := c.state
	visible := c.visible()
	unmountOnHide := !c.props.KeepOnHide

	switch {
	case s.Current == domain.StateRestarting:
		// Render nothing so the next animation starts from a clean node.
		c.logger.Debug("restarting, rendering nothing")
		return false
	case c.node == nil && unmountOnHide && !visible:
		return false
	case c.waitingForParent(visible):
		c.logger.Debug("waiting for parent before showing children", "parent", c.parentState())
		return false
	case s.Current == domain.StateUnmounted:
		return false
	case !visible && unmountOnHide && s.Current == domain.StateFinished &&
		s.SameTrigger(c.props.TriggerState, visible):
		// The recorded trigger must match, otherwise the finished flag predates a new action.
		c.logger.Debug("hidden and finished, unmounting")
		c.dispatch(lifecycle.Simple[T](lifecycle.ToUnmounted))
		return false
	}
	return true
}

func (c *Coordinator[P, T]) commit(show bool) error {
	if !show {
		if c.childMounted {
			c.props.Child.Unmount()
			c.childMounted = false
		}
		return nil
	}
	if c.props.Child == nil {
		return &domain.ConfigError{Component: "coordinator " + c.Name(), Err: domain.ErrNoChild}
	}

	err := c.props.Child.Render(ElementProps{
		ID: c.ID(),
		Binding: &domain.AnimationBinding{
			NotifyParentOfState: c.reportChild,
			ParentState:         c.state.Current,
			ParentVisible:       c.state.Visible,
		},
		Ref: c.setRef,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", c.Name(), err)
	}
	c.childMounted = true
	return nil
}

// setRef records the attached node. Detach notifications (nil) are ignored.
func (c *Coordinator[P, T]) setRef(node domain.Node) {
	if node == nil {
		return
	}
	c.mu.Lock()
	c.node = node
	c.mu.Unlock()
}

func (c *Coordinator[P, T]) reportChild(childID string, state domain.LifecycleState) {
	if c.hooks.OnChildReport != nil {
		c.hooks.OnChildReport(c.sched.Context(), &domain.ChildReportEvent{
			EventBase: c.eventBase(domain.EventChildReport),
			Child:     childID,
			State:     state,
		})
	}
	c.dispatch(lifecycle.ChildReport[T](childID, state))
}

func (c *Coordinator[P, T]) capture() deps[T] {
	return deps[T]{
		current:     c.state.Current,
		actionCount: c.state.ActionCount,
		node:        c.node,
		parentState: c.parentState(),
		childStates: maps.Clone(c.state.ChildStates),
		trigger:     c.props.TriggerState,
		visible:     c.visible(),
	}
}

// runEffects runs, in order, the effects whose dependencies changed since the
// previous commit. The first commit runs all of them.
func (c *Coordinator[P, T]) runEffects() {
	cur := c.capture()
	prev := c.prev
	first := !c.committed
	c.prev = cur
	c.committed = true

	stateChanged := first || prev.current != cur.current

	if stateChanged {
		c.binding.Notify(c.ID(), cur.current)
	}

	if first || prev.visible != cur.visible || !lifecycle.SameTrigger(prev.trigger, cur.trigger) {
		c.newAction(cur.trigger, cur.visible)
	}

	if stateChanged ||
		prev.actionCount != cur.actionCount ||
		prev.node != cur.node ||
		prev.parentState != cur.parentState ||
		!maps.Equal(prev.childStates, cur.childStates) {
		c.animate()
	}

	if stateChanged && cur.current == domain.StateRestarting {
		c.dispatch(lifecycle.Simple[T](lifecycle.ToInitializing))
	}
}

func (c *Coordinator[P, T]) newAction(trigger T, visible bool) {
	c.logger.Debug("new action", "visible", visible, "action_count", c.state.ActionCount+1)

	c.cancelControl()
	c.control = c.newControl()
	c.dispatch(lifecycle.NewActionFor(trigger, visible))
}

// animate walks the guard chain and dispatches the animation once unblocked.
func (c *Coordinator[P, T]) animate() {
	s := c.state
	visible := c.visible()
	log := c.logger.With("state", s.Current, "action_count", s.ActionCount)

	if s.Current == domain.StateRestarting {
		return
	}

	if c.node == nil {
		log.Debug("no node attached")
		c.cancelControl()
		if !visible {
			c.dispatch(lifecycle.Simple[T](lifecycle.ToUnmounted))
		}
		return
	}

	if s.HasRunForCycle {
		return
	}

	parent := c.parentState()
	if visible && c.props.EnterAfterParentStart && parent != domain.StateRunning && parent != domain.StateFinished {
		log.Debug("waiting for parent to start", "parent", parent)
		return
	}

	if !visible && len(c.props.ExitAfterChildStart) > 0 &&
		lifecycle.ChildrenMatch(c.props.ExitAfterChildStart, childStartPending, s.ChildStates) {
		log.Debug("waiting for children to start", "children", c.props.ExitAfterChildStart)
		return
	}

	if visible && c.props.EnterAfterParentFinish && parent != domain.StateFinished {
		log.Debug("waiting for parent to finish", "parent", parent)
		return
	}

	if !visible && len(c.props.ExitAfterChildFinish) > 0 &&
		lifecycle.ChildrenMatch(c.props.ExitAfterChildFinish, childFinishPending, s.ChildStates) {
		log.Debug("waiting for children to finish", "children", c.props.ExitAfterChildFinish)
		return
	}

	c.dispatch(lifecycle.Simple[T](lifecycle.HasRun))

	run := Dispatch(c.node, c.props.When, c.props.PredicateState, predicate.Context[T]{
		TriggerState: c.props.TriggerState,
		Visible:      visible,
	})
	log.Debug("dispatched animation", "has_run", run.HasRun, "awaiting", run.Result != nil)

	if c.hooks.OnDispatch != nil {
		c.hooks.OnDispatch(c.sched.Context(), &domain.DispatchEvent{
			EventBase:   c.eventBase(domain.EventDispatch),
			Matched:     run.HasRun,
			Awaiting:    run.Result != nil,
			ActionCount: s.ActionCount,
			Visible:     visible,
		})
	}

	if run.HasRun {
		c.dispatch(lifecycle.Simple[T](lifecycle.ToRunning))
	}
	if run.Result == nil {
		c.dispatch(lifecycle.Simple[T](lifecycle.ToFinished))
		return
	}
	if c.control == nil {
		c.control = c.newControl()
	}
	c.control.Track(run.Result)
}

func (c *Coordinator[P, T]) newControl() *completion.Control {
	var ctl *completion.Control
	ctl = completion.New(
		completion.WithLogger(c.logger),
		completion.WithErrorHandler(func(err error) {
			c.sched.Report(&domain.AnimationError{
				Coordinator: c.Name(),
				ActionCount: c.State().ActionCount,
				Err:         err,
			})
		}),
	)
	ctl.SetFinishAction(func() {
		c.post(func() error {
			// Completions of a replaced control are stale.
			if c.control != ctl {
				return nil
			}
			c.dispatch(lifecycle.Simple[T](lifecycle.FinishedByCompletion))
			return nil
		})
	})
	return ctl
}

func (c *Coordinator[P, T]) cancelControl() {
	if c.control == nil {
		return
	}
	active := c.control.Active()
	c.control.Cancel()
	if active && c.hooks.OnCancel != nil {
		c.hooks.OnCancel(c.sched.Context(), &domain.CancelEvent{
			EventBase:   c.eventBase(domain.EventCancel),
			ActionCount: c.state.ActionCount,
		})
	}
}

func (c *Coordinator[P, T]) emitTransition(from, to domain.LifecycleState) {
	c.logger.Debug("transition", "from", from, "to", to, "action_count", c.state.ActionCount)
	if c.hooks.OnTransition == nil {
		return
	}
	c.hooks.OnTransition(c.sched.Context(), &domain.TransitionEvent{
		EventBase:   c.eventBase(domain.EventTransition),
		From:        from,
		To:          to,
		ActionCount: c.state.ActionCount,
		Visible:     c.state.Visible,
	})
}

func (c *Coordinator[P, T]) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:   time.Now(),
		Type:        t,
		Coordinator: c.ID(),
		Name:        c.props.Name,
	}
}
