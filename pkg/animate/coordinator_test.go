package animate

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/host"
	"github.com/aretw0/kinetic/pkg/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMoon(t *testing.T, visible bool, anim *script, tr *trace) (*host.Scheduler, *Coordinator[world, domain.Trigger], *Box) {
	t.Helper()
	sched := host.New()
	box := &Box{}
	c := New(sched, Props[world, domain.Trigger]{
		Name:    "moon",
		ID:      "moon",
		Visible: visible,
		When:    always(anim.animation()),
		Child:   box,
	}, WithLifecycleHooks(tr.hooks()))
	c.Mount()
	flush(t, sched)
	return sched, c, box
}

func TestCoordinator_MoonScenario(t *testing.T) {
	anim := &script{}
	tr := &trace{}
	sched, moon, box := newMoon(t, false, anim, tr)

	assert.Equal(t, domain.StateUnmounted, moon.Current(), "hidden without a node")
	assert.False(t, box.Mounted())
	assert.Zero(t, anim.calls())

	mark := tr.mark()
	moon.SetTrigger(domain.Trigger{Visible: true, ActionCount: 1}, true)
	flush(t, sched)

	assert.Equal(t, []string{"moon:unmounted>initializing", "moon:initializing>running"}, tr.since(mark))
	require.Equal(t, 1, anim.calls())
	assert.True(t, box.Mounted())
	firstNode := box.Node()

	// The hide arrives while the entry animation is still running.
	mark = tr.mark()
	moon.SetTrigger(domain.Trigger{Visible: false, ActionCount: 2}, false)
	flush(t, sched)

	assert.Equal(t, []string{
		"moon:running>restarting",
		"moon:restarting>initializing",
		"moon:initializing>running",
	}, tr.since(mark))
	require.Equal(t, 2, anim.calls(), "exit animation dispatched")
	assert.Equal(t, 1, tr.cancelCount())
	assert.False(t, firstNode.Attached(), "restart remounts the node")
	assert.Equal(t, 3, moon.State().ActionCount, "mount, show and hide")

	// The overtaken entry animation resolves late and must be ignored.
	anim.run(0).resolve()
	time.Sleep(10 * time.Millisecond)
	flush(t, sched)
	assert.Equal(t, domain.StateRunning, moon.Current())

	mark = tr.mark()
	anim.run(1).resolve()
	settle(t, sched, func() bool { return moon.Current() == domain.StateUnmounted })

	assert.Equal(t, []string{"moon:running>finished", "moon:finished>unmounted"}, tr.since(mark))
	assert.False(t, box.Mounted(), "finished exit unmounts the child")
}

func TestCoordinator_EntryFinishes(t *testing.T) {
	anim := &script{}
	tr := &trace{}
	sched, moon, _ := newMoon(t, true, anim, tr)

	assert.Equal(t, []string{"moon:initializing>running"}, tr.since(0))
	assert.Equal(t, []string{"moon"}, anim.nodes)

	anim.run(0).resolve()
	settle(t, sched, func() bool { return moon.Current() == domain.StateFinished })

	state := moon.State()
	assert.Equal(t, 1, state.ActionCount)
	assert.True(t, state.HasRunForCycle)
	assert.True(t, state.Visible)
}

func TestCoordinator_CancelThenRestart(t *testing.T) {
	anim := &script{}
	tr := &trace{}
	sched, moon, _ := newMoon(t, true, anim, tr)
	require.Equal(t, domain.StateRunning, moon.Current())
	before := moon.State().ActionCount

	mark := tr.mark()
	moon.SetTrigger(domain.Trigger{Visible: true, Data: "eclipse"}, true)
	flush(t, sched)

	assert.Equal(t, []string{
		"moon:running>restarting",
		"moon:restarting>initializing",
		"moon:initializing>running",
	}, tr.since(mark))
	assert.Equal(t, before+1, moon.State().ActionCount)
	assert.Equal(t, 2, anim.calls())
	assert.Equal(t, 1, tr.cancelCount())

	anim.run(0).resolve()
	time.Sleep(10 * time.Millisecond)
	flush(t, sched)
	assert.Equal(t, domain.StateRunning, moon.Current(), "stale completion is ignored")

	anim.run(1).resolve()
	settle(t, sched, func() bool { return moon.Current() == domain.StateFinished })
}

func TestCoordinator_SameTriggerIsNotANewAction(t *testing.T) {
	anim := &script{}
	tr := &trace{}
	sched, moon, _ := newMoon(t, true, anim, tr)

	for i := 0; i < 3; i++ {
		moon.SetTrigger(domain.Trigger{}, true)
		moon.SetPredicateState(world{})
		flush(t, sched)
	}

	assert.Equal(t, 1, anim.calls(), "dispatch runs once per action")
	assert.Equal(t, 1, moon.State().ActionCount)
}

func TestCoordinator_NoMatchingClauseFinishes(t *testing.T) {
	sched := host.New()
	c := New(sched, Props[world, domain.Trigger]{
		ID:      "sun",
		Visible: true,
		When: []predicate.Clause[world, domain.Trigger]{
			predicate.When(predicate.IsHidden[world, domain.Trigger](), (&script{}).animation()),
		},
		Child: &Box{},
	})
	c.Mount()
	flush(t, sched)

	assert.Equal(t, domain.StateFinished, c.Current())
}

func TestCoordinator_InstantAnimationFinishes(t *testing.T) {
	anim := &script{none: true}
	tr := &trace{}
	_, moon, _ := newMoon(t, true, anim, tr)

	assert.Equal(t, domain.StateFinished, moon.Current())
	assert.Equal(t, []string{"moon:initializing>running", "moon:running>finished"}, tr.since(0))
}

func TestCoordinator_ParentGatedEntry(t *testing.T) {
	sched := host.New()
	anim := &script{}
	var reports []domain.LifecycleState

	child := New(sched, Props[world, domain.Trigger]{
		ID:                     "star",
		Visible:                true,
		EnterAfterParentFinish: true,
		When:                   always(anim.animation()),
		Child:                  &Box{},
	})
	notify := func(id string, s domain.LifecycleState) {
		assert.Equal(t, "star", id)
		reports = append(reports, s)
	}

	bind := func(parent domain.LifecycleState) {
		require.NoError(t, sched.Post(func() error {
			child.Bind(&domain.AnimationBinding{
				NotifyParentOfState: notify,
				ParentState:         parent,
				ParentVisible:       true,
			})
			return nil
		}))
		flush(t, sched)
	}

	bind(domain.StateRunning)
	assert.Zero(t, anim.calls())
	assert.Nil(t, child.Node(), "nothing is rendered while waiting")
	assert.Equal(t, []domain.LifecycleState{domain.StateInitializing}, reports)

	bind(domain.StateFinished)
	assert.Equal(t, 1, anim.calls())
	assert.Equal(t, domain.StateRunning, child.Current())
	assert.Equal(t, []domain.LifecycleState{domain.StateInitializing, domain.StateRunning}, reports)
}

func TestCoordinator_ParentGatedStart(t *testing.T) {
	sched := host.New()
	anim := &script{}

	child := New(sched, Props[world, domain.Trigger]{
		ID:                    "star",
		Visible:               true,
		EnterAfterParentStart: true,
		When:                  always(anim.animation()),
		Child:                 &Box{},
	})

	for _, parent := range []domain.LifecycleState{domain.StateInitializing, domain.StateRunning} {
		require.NoError(t, sched.Post(func() error {
			child.Bind(&domain.AnimationBinding{ParentState: parent, ParentVisible: true})
			return nil
		}))
		flush(t, sched)
	}
	assert.Equal(t, 1, anim.calls())
}

func TestCoordinator_ChildGatedExit(t *testing.T) {
	sched := host.New()
	enter := &script{none: true}
	exit := &script{}
	x := &probe{}

	c := New(sched, Props[world, domain.Trigger]{
		ID:                   "planet",
		Visible:              true,
		ExitAfterChildFinish: []string{"x"},
		When: []predicate.Clause[world, domain.Trigger]{
			predicate.When(predicate.IsVisible[world, domain.Trigger](), enter.animation()),
			predicate.When(predicate.IsHidden[world, domain.Trigger](), exit.animation()),
		},
		Child: &Box{Children: []Child{x}},
	})
	c.Mount()
	flush(t, sched)
	require.Equal(t, domain.StateFinished, c.Current())

	require.NoError(t, x.report(sched, "x", domain.StateRunning))
	flush(t, sched)

	c.SetTrigger(domain.Trigger{Visible: false}, false)
	flush(t, sched)
	assert.Equal(t, domain.StateInitializing, c.Current())
	assert.Equal(t, domain.StateUnset, c.State().ChildStates["x"], "new action clears child reports")
	assert.False(t, x.last().ParentVisible)

	require.NoError(t, x.report(sched, "x", domain.StateRunning))
	flush(t, sched)
	assert.Zero(t, exit.calls(), "child still running")
	assert.True(t, c.Mounted())

	require.NoError(t, x.report(sched, "x", domain.StateFinished))
	flush(t, sched)
	assert.Equal(t, 1, exit.calls())
	assert.Equal(t, domain.StateRunning, c.Current())

	exit.run(0).resolve()
	settle(t, sched, func() bool { return c.Current() == domain.StateUnmounted })
	assert.True(t, x.detached, "children are detached with the element")
}

func TestCoordinator_ChildGatedStart(t *testing.T) {
	sched := host.New()
	exit := &script{}
	x := &probe{}

	c := New(sched, Props[world, domain.Trigger]{
		ID:                  "planet",
		Visible:             true,
		ExitAfterChildStart: []string{"x"},
		When: []predicate.Clause[world, domain.Trigger]{
			predicate.When(predicate.IsHidden[world, domain.Trigger](), exit.animation()),
		},
		Child: &Box{Children: []Child{x}},
	})
	c.Mount()
	flush(t, sched)
	require.NoError(t, x.report(sched, "x", domain.StateFinished))
	flush(t, sched)

	c.SetTrigger(domain.Trigger{}, false)
	flush(t, sched)
	require.NoError(t, x.report(sched, "x", domain.StateInitializing))
	flush(t, sched)
	assert.Zero(t, exit.calls())

	require.NoError(t, x.report(sched, "x", domain.StateRunning))
	flush(t, sched)
	assert.Equal(t, 1, exit.calls())
}

func TestCoordinator_UnmountedChildDoesNotBlock(t *testing.T) {
	sched := host.New()
	exit := &script{}
	x := &probe{}

	c := New(sched, Props[world, domain.Trigger]{
		ID:                   "planet",
		Visible:              true,
		ExitAfterChildFinish: []string{"x"},
		When: []predicate.Clause[world, domain.Trigger]{
			predicate.When(predicate.IsHidden[world, domain.Trigger](), exit.animation()),
		},
		Child: &Box{Children: []Child{x}},
	})
	c.Mount()
	flush(t, sched)
	require.NoError(t, x.report(sched, "x", domain.StateUnmounted))
	flush(t, sched)

	c.SetTrigger(domain.Trigger{}, false)
	flush(t, sched)

	assert.Equal(t, domain.StateUnmounted, c.State().ChildStates["x"])
	assert.Equal(t, 1, exit.calls())
}

func TestCoordinator_RocketWaitsForEngine(t *testing.T) {
	sched := host.New()
	tr := &trace{}
	rocketAnim := &script{}
	engineAnim := &script{}

	engine := New(sched, Props[world, domain.Trigger]{
		ID:      "engine",
		Visible: true,
		When:    always(engineAnim.animation()),
		Child:   &Box{},
	}, WithLifecycleHooks(tr.hooks()))
	rocket := New(sched, Props[world, domain.Trigger]{
		ID:                   "rocket",
		Visible:              true,
		ExitAfterChildFinish: []string{"engine"},
		When:                 always(rocketAnim.animation()),
		Child:                &Box{Children: []Child{engine}},
	}, WithLifecycleHooks(tr.hooks()))

	rocket.Mount()
	flush(t, sched)
	require.Equal(t, 1, rocketAnim.calls())
	require.Equal(t, 1, engineAnim.calls())
	assert.Equal(t, domain.StateRunning, rocket.State().ChildStates["engine"])

	rocketAnim.run(0).resolve()
	engineAnim.run(0).resolve()
	settle(t, sched, func() bool {
		return rocket.Current() == domain.StateFinished &&
			rocket.State().ChildStates["engine"] == domain.StateFinished
	})

	rocket.SetTrigger(domain.Trigger{}, false)
	flush(t, sched)

	assert.Equal(t, 2, engineAnim.calls(), "hidden parent hides the engine")
	assert.Equal(t, 1, rocketAnim.calls(), "rocket waits for the engine to finish")
	assert.Equal(t, domain.StateInitializing, rocket.Current())
	assert.Equal(t, domain.StateRunning, rocket.State().ChildStates["engine"])

	engineAnim.run(1).resolve()
	settle(t, sched, func() bool { return rocketAnim.calls() == 2 })
	assert.Equal(t, domain.StateRunning, rocket.Current())

	rocketAnim.run(1).resolve()
	settle(t, sched, func() bool { return rocket.Current() == domain.StateUnmounted })
	assert.False(t, engine.Mounted(), "engine is torn down with the rocket's element")
}

func TestCoordinator_RejectedCompletionFailsTheScheduler(t *testing.T) {
	anim := &script{}
	tr := &trace{}
	sched, moon, _ := newMoon(t, true, anim, tr)

	boom := errors.New("boom")
	anim.run(0).reject(boom)

	var err error
	require.Eventually(t, func() bool {
		err = sched.Flush()
		return err != nil
	}, time.Second, time.Millisecond)

	var animErr *domain.AnimationError
	require.ErrorAs(t, err, &animErr)
	assert.Equal(t, "moon", animErr.Coordinator)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StateRunning, moon.Current(), "rejection does not finish the cycle")
}

func TestCoordinator_MissingChildIsAConfigError(t *testing.T) {
	sched := host.New()
	c := New(sched, Props[world, domain.Trigger]{Name: "ghost", Visible: true})
	c.Mount()

	err := sched.Flush()
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, domain.ErrNoChild)
}

func TestCoordinator_DetachNotifiesUnmounted(t *testing.T) {
	sched := host.New()
	anim := &script{}
	var reports []domain.LifecycleState

	child := New(sched, Props[world, domain.Trigger]{
		ID:      "star",
		Visible: true,
		When:    always(anim.animation()),
		Child:   &Box{},
	})
	binding := &domain.AnimationBinding{
		NotifyParentOfState: func(_ string, s domain.LifecycleState) { reports = append(reports, s) },
		ParentState:         domain.StateFinished,
		ParentVisible:       true,
	}
	require.NoError(t, sched.Post(func() error {
		child.Bind(binding)
		return nil
	}))
	flush(t, sched)
	require.Equal(t, domain.StateRunning, child.Current())

	require.NoError(t, sched.Post(func() error {
		child.Detach()
		return nil
	}))
	flush(t, sched)

	assert.Equal(t, domain.StateUnmounted, reports[len(reports)-1])
	assert.False(t, child.Mounted())
	assert.Nil(t, child.Node())

	// The canceled animation resolving later changes nothing.
	anim.run(0).resolve()
	time.Sleep(10 * time.Millisecond)
	flush(t, sched)
	assert.Equal(t, domain.StateInitializing, child.Current())
}

func TestCoordinator_GeneratedID(t *testing.T) {
	sched := host.New()
	c := New(sched, Props[world, domain.Trigger]{Name: "comet"}, WithIDGenerator(func() string { return "id-1" }))
	assert.Equal(t, "id-1", c.ID())
	assert.Equal(t, "comet", c.Name())

	anon := New(sched, Props[world, domain.Trigger]{})
	assert.NotEmpty(t, anon.ID())
	assert.NotEqual(t, anon.ID(), New(sched, Props[world, domain.Trigger]{}).ID())
}

func TestCoordinator_Snapshot(t *testing.T) {
	anim := &script{}
	_, moon, _ := newMoon(t, true, anim, &trace{})

	snap := moon.Snapshot()
	assert.Equal(t, "moon", snap.ID)
	assert.Equal(t, domain.StateRunning, snap.Current)
	assert.True(t, snap.Attached)
	assert.True(t, snap.Visible)
}
