package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from a concurrent.Object for logging and
// metrics.
//
// OnSubmit and OnReject run on the submitting goroutine; every other callback
// runs on the object's background goroutine. Implementations should be fast
// and non-blocking, since they delay either the caller or the worker.
type Observer interface {
	// OnObjectStart is called once when the background goroutine starts.
	OnObjectStart(obj ObjectInfo)

	// OnObjectStop is called once when the background goroutine has
	// drained its queue and is about to exit.
	OnObjectStop(obj ObjectInfo)

	// OnSubmit is called after a work item has been queued.
	OnSubmit(task TaskInfo)

	// OnReject is called when a submission hits an empty object and is
	// failed immediately.
	OnReject(task TaskInfo)

	// OnTaskStart is called right before a work item runs.
	OnTaskStart(task TaskInfo)

	// OnTaskDone is called after a work item returns, for both successes and
	// failures (err != nil).
	OnTaskDone(task TaskInfo, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnObjectStart(obj ObjectInfo)                         {}
func (NoopObserver) OnObjectStop(obj ObjectInfo)                          {}
func (NoopObserver) OnSubmit(task TaskInfo)                               {}
func (NoopObserver) OnReject(task TaskInfo)                               {}
func (NoopObserver) OnTaskStart(task TaskInfo)                            {}
func (NoopObserver) OnTaskDone(task TaskInfo, err error, d time.Duration) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnObjectStart(obj ObjectInfo) {
	for _, o := range c.observers {
		o.OnObjectStart(obj)
	}
}

func (c *CompositeObserver) OnObjectStop(obj ObjectInfo) {
	for _, o := range c.observers {
		o.OnObjectStop(obj)
	}
}

func (c *CompositeObserver) OnSubmit(task TaskInfo) {
	for _, o := range c.observers {
		o.OnSubmit(task)
	}
}

func (c *CompositeObserver) OnReject(task TaskInfo) {
	for _, o := range c.observers {
		o.OnReject(task)
	}
}

func (c *CompositeObserver) OnTaskStart(task TaskInfo) {
	for _, o := range c.observers {
		o.OnTaskStart(task)
	}
}

func (c *CompositeObserver) OnTaskDone(task TaskInfo, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnTaskDone(task, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs object and task lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnObjectStart(obj ObjectInfo) {
	o.Logger.Info("object_start",
		slog.String("object", obj.Name),
		slog.String("object_id", obj.ID.String()),
	)
}

func (o *LoggingObserver) OnObjectStop(obj ObjectInfo) {
	o.Logger.Info("object_stop",
		slog.String("object", obj.Name),
		slog.String("object_id", obj.ID.String()),
	)
}

func (o *LoggingObserver) OnSubmit(task TaskInfo) {
	o.Logger.Debug("task_submit", taskAttrs(task)...)
}

func (o *LoggingObserver) OnReject(task TaskInfo) {
	o.Logger.Warn("task_rejected", taskAttrs(task)...)
}

func (o *LoggingObserver) OnTaskStart(task TaskInfo) {
	o.Logger.Debug("task_start",
		append(taskAttrs(task), slog.Duration("queued", time.Since(task.EnqueuedAt)))...,
	)
}

func (o *LoggingObserver) OnTaskDone(task TaskInfo, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(context.Background(), level, "task_done",
		append(taskAttrs(task),
			slog.Duration("duration", d),
			slog.Any("error", err),
		)...,
	)
}

func taskAttrs(task TaskInfo) []any {
	return []any{
		slog.String("object", task.Object.Name),
		slog.String("object_id", task.Object.ID.String()),
		slog.Uint64("seq", task.Seq),
		slog.String("kind", string(task.Kind)),
	}
}

// BasicMetrics collects simple counters and aggregate task durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	submitted     atomic.Int64
	rejected      atomic.Int64
	completed     atomic.Int64
	failed        atomic.Int64
	totalDuration atomic.Int64 // nanoseconds, successful tasks only
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	Submitted int64
	Rejected  int64
	Completed int64
	Failed    int64
	Pending   int64

	AvgTaskDuration time.Duration
}

func (m *BasicMetrics) OnSubmit(task TaskInfo) {
	m.submitted.Add(1)
}

func (m *BasicMetrics) OnReject(task TaskInfo) {
	m.rejected.Add(1)
}

func (m *BasicMetrics) OnTaskDone(task TaskInfo, err error, d time.Duration) {
	if err != nil {
		m.failed.Add(1)
		return
	}
	m.completed.Add(1)
	m.totalDuration.Add(d.Nanoseconds())
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	submitted := m.submitted.Load()
	completed := m.completed.Load()
	failed := m.failed.Load()
	totalNs := m.totalDuration.Load()

	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		Submitted:       submitted,
		Rejected:        m.rejected.Load(),
		Completed:       completed,
		Failed:          failed,
		Pending:         submitted - completed - failed,
		AvgTaskDuration: avg,
	}
}
