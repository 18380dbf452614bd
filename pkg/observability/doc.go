/*
Package observability turns coordinator lifecycle hooks into metrics, persisted
traces and live event streams.

Each component exposes Hooks() returning a domain.LifecycleHooks; the stage merges
them with domain.MergeHooks and hands the result to every coordinator.
*/
package observability
