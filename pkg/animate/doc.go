/*
Package animate implements the animation coordinator.

A Coordinator drives the animation of a single element. It watches its trigger
(visible + trigger state), replays its animation on every new trigger, cancels
animations that are overtaken by a newer trigger, and orders itself relative to its
parent and children:

  - EnterAfterParentStart / EnterAfterParentFinish delay entering until the parent
    coordinator has started / finished its own animation.
  - ExitAfterChildStart / ExitAfterChildFinish delay exiting until the named children
    have started / finished theirs.

Coordinators never talk to a central scheduler about each other. Parent state flows
down through the AnimationBinding handed to the rendered element, and children report
their state back up through the binding's callback.

All state changes happen on a host.Scheduler. A typical tree:

	sched := host.New()
	engine := animate.New(sched, animate.Props[World, domain.Trigger]{
		ID:   "engine",
		When: clauses,
		Child: &animate.Box{},
	})
	rocket := animate.New(sched, animate.Props[World, domain.Trigger]{
		ID:                   "rocket",
		When:                 clauses,
		ExitAfterChildFinish: []string{"engine"},
		Child:                &animate.Box{Children: []animate.Child{engine}},
	})
	rocket.Mount()
	_ = sched.Run(ctx)
*/
package animate
