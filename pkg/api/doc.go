// Package api contains the observation types shared by the concurrent
// package and its integrations.
//
// Most users interact with the root concurrent package, which re-exports
// the observer types defined here. The api package exists so that metrics
// and logging integrations (see pkg/metrics) can depend on the event model
// without importing the wrapper itself.
//
// # Events
//
// A concurrent.Object reports its lifecycle through an Observer:
//
//   - OnObjectStart / OnObjectStop bracket the life of the background goroutine
//   - OnSubmit / OnReject are reported on the submitting goroutine
//   - OnTaskStart / OnTaskDone bracket each work item on the background goroutine
//
// ObjectInfo identifies the object, TaskInfo the individual work item.
//
// # Built-in observers
//
// NoopObserver discards everything and is the default. LoggingObserver writes
// structured records via log/slog. BasicMetrics keeps in-process counters
// that can be read with Snapshot. NewCompositeObserver fans events out to
// several observers at once.
package api
