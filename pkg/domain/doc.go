/*
Package domain contains the core domain models of the kinetic animation coordinator.

It defines the vocabulary shared by the coordinator, the lifecycle store and every
adapter: lifecycle states, triggers, the parent/child binding and the contracts of
the external collaborators (nodes, animations and their completions). This package
is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - LifecycleState: The phase of a coordinator inside its current action cycle.
  - Trigger: The (visible, data) payload emitted by a trigger source such as a router.
  - AnimationBinding: What a coordinator hands to its child so the child can report upward.
  - Animation / Completion: The opaque animation engine contract.
  - LifecycleHooks: Observability callbacks fired on transitions, dispatches and cancellations.
*/
package domain
