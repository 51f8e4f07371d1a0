package concurrent

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KjellKod/concurrent/internal/taskqueue"
	"github.com/KjellKod/concurrent/pkg/api"
	"github.com/google/uuid"
)

// State is the lifecycle phase of an Object.
type State int32

const (
	// Active: worker present, background goroutine serving the queue.
	Active State = iota

	// Draining: Close has queued the stop item; earlier items still run.
	Draining

	// Stopped: background goroutine exited and the worker is released.
	Stopped
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// task is one queued work item. A stop task carries no run func.
type task[T any] struct {
	info api.TaskInfo
	run  func(*T) error
	stop bool
}

// Object owns a worker of type T and runs every access to it on a single
// background goroutine, in the order the accesses were submitted.
//
// The zero value is not usable; construct with New, Wrap or Of. An Object
// must be closed to release its goroutine:
//
//	obj := concurrent.Of(Counter{})
//	defer obj.Close()
type Object[T any] struct {
	id       uuid.UUID
	name     string
	logger   *slog.Logger
	observer api.Observer

	// gate orders submissions against the release of the worker slot.
	// Submitters push under RLock; the background goroutine clears worker
	// under Lock, so every accepted item is in the queue before the slot
	// goes away.
	gate   sync.RWMutex
	worker *T

	queue taskqueue.Queue[task[T]]
	seq   atomic.Uint64
	state atomic.Int32

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}

	// Owned by whichever goroutine is serving the queue. A goroutine that
	// resumes after runtime.Goexit picks up at the same phase.
	released     bool
	workerClosed bool
	late         int
}

// New builds the worker with newWorker and starts serving it. A constructor
// error is returned before any goroutine is started. A constructor that
// returns (nil, nil) yields an empty Object.
func New[T any](newWorker func() (*T, error), opts ...Option) (*Object[T], error) {
	if newWorker == nil {
		return nil, ErrNilConstructor
	}
	w, err := newWorker()
	if err != nil {
		return nil, fmt.Errorf("concurrent: construct worker: %w", err)
	}
	return Wrap(w, opts...), nil
}

// Wrap takes ownership of worker. The caller must not touch worker
// afterwards. A nil worker yields an empty Object that fails every dispatch
// with ErrEmpty.
func Wrap[T any](worker *T, opts ...Option) *Object[T] {
	cfg := buildConfig(opts)

	o := &Object[T]{
		id:       uuid.New(),
		name:     cfg.Name,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		worker:   worker,
		done:     make(chan struct{}),
	}
	if o.name == "" {
		o.name = strings.TrimPrefix(fmt.Sprintf("%T", worker), "*")
	}

	if worker == nil {
		o.state.Store(int32(Stopped))
		close(o.done)
		return o
	}

	o.state.Store(int32(Active))
	o.logger.Debug("concurrent: object started", "object", o.name, "object_id", o.id)
	o.observer.OnObjectStart(o.info())
	go o.serve(worker)
	return o
}

// Of copies value into a fresh worker owned by the returned Object.
func Of[T any](value T, opts ...Option) *Object[T] {
	return Wrap(&value, opts...)
}

// ID returns the object's unique identifier.
func (o *Object[T]) ID() uuid.UUID { return o.id }

// Name returns the object's name.
func (o *Object[T]) Name() string { return o.name }

// Done is closed once the background goroutine has exited and the worker
// has been released. It is closed from the start for an empty Object.
func (o *Object[T]) Done() <-chan struct{} { return o.done }

// State reports the current lifecycle phase.
func (o *Object[T]) State() State { return State(o.state.Load()) }

// Empty reports whether the worker slot is absent. Once true it stays true.
func (o *Object[T]) Empty() bool {
	o.gate.RLock()
	defer o.gate.RUnlock()
	return o.worker == nil
}

// Len returns the number of queued work items. The value is a snapshot.
func (o *Object[T]) Len() int {
	return o.queue.Len()
}

// Close queues the stop item, waits until everything submitted before it has
// run, and releases the worker. If the worker implements io.Closer it is
// closed on the background goroutine and its error is returned.
//
// Close is idempotent and safe to call from several goroutines. It must not
// be called from inside a work item of the same Object.
func (o *Object[T]) Close() error {
	o.closeOnce.Do(func() {
		o.gate.RLock()
		defer o.gate.RUnlock()
		if o.worker == nil {
			return
		}
		o.state.Store(int32(Draining))
		o.queue.Push(task[T]{
			info: api.TaskInfo{Object: o.info(), Kind: api.TaskKindStop, EnqueuedAt: time.Now()},
			stop: true,
		})
	})
	<-o.done
	return o.closeErr
}

// Clear is Close without the error.
func (o *Object[T]) Clear() {
	_ = o.Close()
}

func (o *Object[T]) info() api.ObjectInfo {
	return api.ObjectInfo{ID: o.id, Name: o.name}
}

// enqueue pushes run unless the worker slot is absent.
func (o *Object[T]) enqueue(kind api.TaskKind, run func(*T) error) bool {
	o.gate.RLock()
	defer o.gate.RUnlock()

	if o.worker == nil {
		o.observer.OnReject(api.TaskInfo{Object: o.info(), Kind: kind, EnqueuedAt: time.Now()})
		return false
	}

	info := api.TaskInfo{
		Object:     o.info(),
		Seq:        o.seq.Add(1),
		Kind:       kind,
		EnqueuedAt: time.Now(),
	}
	o.observer.OnSubmit(info)
	o.queue.Push(task[T]{info: info, run: run})
	return true
}

// serve runs the queue on the current goroutine. If a work item ends the
// goroutine with runtime.Goexit, serving resumes on a new one.
func (o *Object[T]) serve(w *T) {
	returned := false
	defer func() {
		if !returned {
			o.logger.Warn("concurrent: work item exited the serving goroutine, resuming",
				"object", o.name,
				"object_id", o.id)
			go o.serve(w)
		}
	}()
	o.loop(w)
	returned = true
}

func (o *Object[T]) loop(w *T) {
	if !o.released {
		for {
			t := o.queue.WaitPop()
			if t.stop {
				break
			}
			o.execute(w, t)
		}

		o.gate.Lock()
		o.worker = nil
		o.gate.Unlock()
		o.released = true
	}

	// Items accepted between the stop item and the release above.
	for {
		t, ok := o.queue.TryPop()
		if !ok {
			break
		}
		if !t.stop {
			o.late++
			o.execute(w, t)
		}
	}

	if c, ok := any(w).(io.Closer); ok && !o.workerClosed {
		o.workerClosed = true
		if err := c.Close(); err != nil {
			o.closeErr = fmt.Errorf("concurrent: close worker: %w", err)
		}
	}

	o.state.Store(int32(Stopped))
	o.observer.OnObjectStop(o.info())
	o.logger.Debug("concurrent: object stopped",
		"object", o.name,
		"object_id", o.id,
		"submitted", o.seq.Load(),
		"late", o.late,
	)
	close(o.done)
}

func (o *Object[T]) execute(w *T, t task[T]) {
	o.observer.OnTaskStart(t.info)
	start := time.Now()

	// Stays ErrGoexit unless run returns.
	err := ErrGoexit
	defer func() {
		o.observer.OnTaskDone(t.info, err, time.Since(start))

		var pe *PanicError
		switch {
		case errors.As(err, &pe):
			o.logger.Error("concurrent: work item panicked",
				"object", o.name,
				"seq", t.info.Seq,
				"kind", string(t.info.Kind),
				"panic", fmt.Sprint(pe.Value),
				"stack", string(pe.Stack),
			)
		case errors.Is(err, ErrGoexit):
			o.logger.Error("concurrent: work item called runtime.Goexit",
				"object", o.name,
				"seq", t.info.Seq,
				"kind", string(t.info.Kind),
			)
		}
	}()

	err = t.run(w)
}

// invoke runs fn against w and passes the outcome to complete, if non-nil,
// exactly once. A panic becomes a *PanicError; runtime.Goexit becomes
// ErrGoexit and still unwinds the goroutine afterwards.
func invoke[T, R any](w *T, fn func(*T) (R, error), complete func(R, error)) (err error) {
	var v R
	normalReturn := false
	defer func() {
		if !normalReturn {
			var zero R
			v = zero
			if r := recover(); r != nil {
				err = &PanicError{Value: r, Stack: debug.Stack()}
			} else {
				err = ErrGoexit
			}
		}
		if complete != nil {
			complete(v, err)
		}
	}()

	v, err = fn(w)
	normalReturn = true
	return err
}
