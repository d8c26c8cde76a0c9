// Package sync keeps the local user and event store consistent with the
// directory provider.
//
// The Orchestrator exposes the entry points: SyncUsers, SyncAllData,
// IncrementalEventCheck and the per-user SyncUser. Each run holds a named
// advisory lock, processes users sequentially and returns a RunSummary;
// failures of a single user are recorded in the summary instead of aborting
// the run. The Runner and Scheduler start runs in the background for the HTTP
// triggers and the recurring jobs. Finished runs are archived to object
// storage and announced over AMQP when those sinks are configured.
package sync
