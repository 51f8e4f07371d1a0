package api

import (
	"time"

	"github.com/google/uuid"
)

// TaskKind tags the shape of a queued work item.
type TaskKind string

const (
	// TaskKindClosure is a closure receiving the worker (Submit, Lambda, Exec).
	TaskKindClosure TaskKind = "closure"

	// TaskKindCall is a bound method call with captured arguments (Call*).
	TaskKindCall TaskKind = "call"

	// TaskKindFire is a closure or call whose result nobody waits for.
	TaskKindFire TaskKind = "fire"

	// TaskKindStop is the terminal item pushed by Close.
	TaskKindStop TaskKind = "stop"
)

// ObjectInfo identifies a concurrent.Object in observer callbacks.
type ObjectInfo struct {
	ID   uuid.UUID
	Name string
}

// TaskInfo describes a single work item.
type TaskInfo struct {
	Object ObjectInfo

	// Seq is the per-object submission number, starting at 1. Rejected
	// submissions have Seq 0.
	Seq uint64

	Kind       TaskKind
	EnqueuedAt time.Time
}
