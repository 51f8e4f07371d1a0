package concurrent

import (
	"github.com/KjellKod/concurrent/pkg/api"
	"github.com/KjellKod/concurrent/pkg/future"
	"github.com/KjellKod/concurrent/pkg/moveonly"
)

// Re-export key types so users don't need to dig into pkg/.

type (
	Future[T any]   = future.Future[T]
	Promise[T any]  = future.Promise[T]
	MoveOnly[T any] = moveonly.Value[T]

	Observer             = api.Observer
	ObjectInfo           = api.ObjectInfo
	TaskInfo             = api.TaskInfo
	TaskKind             = api.TaskKind
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export task kinds for convenience.

const (
	TaskKindClosure = api.TaskKindClosure
	TaskKindCall    = api.TaskKindCall
	TaskKindFire    = api.TaskKindFire
	TaskKindStop    = api.TaskKindStop
)

// Move wraps v so it can be handed to exactly one work item.
//
//	f := concurrent.Call1(obj, (*Sink).Consume, concurrent.Move(conn))
func Move[T any](v T) *MoveOnly[T] {
	return moveonly.New(v)
}
