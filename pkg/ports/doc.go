/*
Package ports defines the driven ports (interfaces) of kinetic.

These interfaces decouple the stage from external implementations, allowing traces
to be kept in memory, on disk or in Redis.

# Key Interfaces

  - TraceStore: Persists the lifecycle transitions recorded for a stage.
  - DistributedLocker: Ensures a single process drives a given stage at a time.
*/
package ports
