// Package metrics exports concurrent.Object activity to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/KjellKod/concurrent/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer is an api.Observer backed by Prometheus collectors. Series are
// labelled by object name, so objects sharing a name share series.
type Observer struct {
	TasksSubmitted *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TasksRejected  *prometheus.CounterVec
	TasksPending   *prometheus.GaugeVec
	ActiveObjects  prometheus.Gauge
	QueueWait      *prometheus.HistogramVec
	TaskLatency    *prometheus.HistogramVec
}

var _ api.Observer = (*Observer)(nil)

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Observer{
		TasksSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of work items queued.",
		}, []string{"object", "kind"}),
		TasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of work items that returned without error.",
		}, []string{"object"}),
		TasksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_failed_total",
			Help:      "Total number of work items that returned an error or panicked.",
		}, []string{"object"}),
		TasksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_rejected_total",
			Help:      "Total number of dispatches on an empty object.",
		}, []string{"object"}),
		TasksPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_pending",
			Help:      "Work items queued but not yet finished.",
		}, []string{"object"}),
		ActiveObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_objects",
			Help:      "Number of objects with a running background goroutine.",
		}),
		QueueWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_queue_wait_seconds",
			Help:      "Time between queueing a work item and starting it.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"object"}),
		TaskLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_latency_seconds",
			Help:      "Histogram of work item execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"object"}),
	}

	for _, c := range []prometheus.Collector{
		m.TasksSubmitted,
		m.TasksCompleted,
		m.TasksFailed,
		m.TasksRejected,
		m.TasksPending,
		m.ActiveObjects,
		m.QueueWait,
		m.TaskLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return m, nil
}

// MustNew is New that panics on registration failure.
func MustNew(namespace string, reg prometheus.Registerer) *Observer {
	m, err := New(namespace, reg)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Observer) OnObjectStart(obj api.ObjectInfo) {
	m.ActiveObjects.Inc()
}

func (m *Observer) OnObjectStop(obj api.ObjectInfo) {
	m.ActiveObjects.Dec()
}

func (m *Observer) OnSubmit(task api.TaskInfo) {
	m.TasksSubmitted.WithLabelValues(task.Object.Name, string(task.Kind)).Inc()
	m.TasksPending.WithLabelValues(task.Object.Name).Inc()
}

func (m *Observer) OnReject(task api.TaskInfo) {
	m.TasksRejected.WithLabelValues(task.Object.Name).Inc()
}

func (m *Observer) OnTaskStart(task api.TaskInfo) {
	m.QueueWait.WithLabelValues(task.Object.Name).Observe(time.Since(task.EnqueuedAt).Seconds())
}

func (m *Observer) OnTaskDone(task api.TaskInfo, err error, d time.Duration) {
	name := task.Object.Name
	m.TasksPending.WithLabelValues(name).Dec()
	m.TaskLatency.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.TasksFailed.WithLabelValues(name).Inc()
		return
	}
	m.TasksCompleted.WithLabelValues(name).Inc()
}
