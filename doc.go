/*
Package kinetic is a declarative animation orchestration library.

An application declares, per element, which animation to run for which trigger
(typically a router becoming visible or hidden) and how the element should order
itself relative to its parent and children. kinetic replays the right animation on
every new trigger, cancels animations overtaken by a newer trigger and enforces
entry/exit ordering across the tree through a parent/child binding protocol.

# Concept

Every animated element is driven by a Coordinator (package animate), a small state
machine cycling through initializing, running, finished, restarting and unmounted.
Coordinators run on a single cooperative scheduler owned by a Stage; completions of
in-flight animations arrive asynchronously and are posted back onto it.

# Usage

	stage := kinetic.New(kinetic.WithLogger(logger))
	router, _ := stage.Routers().Register("moon")

	moon := kinetic.NewCoordinator(stage, animate.Props[struct{}, domain.Trigger]{
		ID: "moon",
		When: []predicate.Clause[struct{}, domain.Trigger]{
			predicate.When(predicate.IsVisible[struct{}, domain.Trigger](), motion.Fade(200*time.Millisecond)),
			predicate.When(predicate.IsHidden[struct{}, domain.Trigger](), motion.FadeOut(200*time.Millisecond)),
		},
		Child: &animate.Box{},
	})
	animate.Follow(moon, router)
	moon.Mount()

	router.Show(nil)
	_ = stage.Run(ctx)

Scenes (package scene) declare the same trees in YAML, and cmd/kinetic plays,
serves and inspects them.
*/
package kinetic
