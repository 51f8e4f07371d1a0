package concurrent

import (
	"github.com/KjellKod/concurrent/pkg/api"
	"github.com/KjellKod/concurrent/pkg/future"
)

// Closure form

// Submit queues fn to run against the worker and returns a future for its
// result. An error returned by fn is delivered unchanged; a panic is
// delivered as *PanicError. On an empty Object the future fails with
// ErrEmpty and nothing is queued.
//
// Several operations inside one fn run without any other submission
// interleaving between them.
func Submit[T, R any](o *Object[T], fn func(*T) (R, error)) *future.Future[R] {
	return submit(o, api.TaskKindClosure, fn)
}

// Lambda is Submit for closures that cannot fail.
func Lambda[T, R any](o *Object[T], fn func(*T) R) *future.Future[R] {
	return submit(o, api.TaskKindClosure, func(w *T) (R, error) {
		return fn(w), nil
	})
}

// Exec is Submit for closures that produce only an error.
func Exec[T any](o *Object[T], fn func(*T) error) *future.Future[struct{}] {
	return submit(o, api.TaskKindClosure, func(w *T) (struct{}, error) {
		return struct{}{}, fn(w)
	})
}

// Bound-call form. Arguments are captured by value when the call is made;
// pass a *moveonly.Value for arguments that must have a single owner.
//
//	greeting := concurrent.Call1(obj, (*Greeter).Hello, "world")

// Call queues method(worker).
func Call[T, R any](o *Object[T], method func(*T) R) *future.Future[R] {
	return submit(o, api.TaskKindCall, func(w *T) (R, error) {
		return method(w), nil
	})
}

// Call1 queues method(worker, a).
func Call1[T, A, R any](o *Object[T], method func(*T, A) R, a A) *future.Future[R] {
	return submit(o, api.TaskKindCall, func(w *T) (R, error) {
		return method(w, a), nil
	})
}

// Call2 queues method(worker, a, b).
func Call2[T, A, B, R any](o *Object[T], method func(*T, A, B) R, a A, b B) *future.Future[R] {
	return submit(o, api.TaskKindCall, func(w *T) (R, error) {
		return method(w, a, b), nil
	})
}

// Call3 queues method(worker, a, b, c).
func Call3[T, A, B, C, R any](o *Object[T], method func(*T, A, B, C) R, a A, b B, c C) *future.Future[R] {
	return submit(o, api.TaskKindCall, func(w *T) (R, error) {
		return method(w, a, b, c), nil
	})
}

// CallErr queues a method returning (R, error).
func CallErr[T, R any](o *Object[T], method func(*T) (R, error)) *future.Future[R] {
	return submit(o, api.TaskKindCall, method)
}

// CallErr1 queues method(worker, a) for a method returning (R, error).
func CallErr1[T, A, R any](o *Object[T], method func(*T, A) (R, error), a A) *future.Future[R] {
	return submit(o, api.TaskKindCall, func(w *T) (R, error) {
		return method(w, a)
	})
}

// CallErr2 queues method(worker, a, b) for a method returning (R, error).
func CallErr2[T, A, B, R any](o *Object[T], method func(*T, A, B) (R, error), a A, b B) *future.Future[R] {
	return submit(o, api.TaskKindCall, func(w *T) (R, error) {
		return method(w, a, b)
	})
}

// Fire-and-forget

// Fire queues fn without a result handle. It reports false when the Object is
// empty. A panic in fn reaches only the logger and the observer.
func Fire[T any](o *Object[T], fn func(*T)) bool {
	return o.enqueue(api.TaskKindFire, func(w *T) error {
		return invoke(w, func(w *T) (struct{}, error) {
			fn(w)
			return struct{}{}, nil
		}, nil)
	})
}

// Fire1 queues method(worker, a) without a result handle.
func Fire1[T, A any](o *Object[T], method func(*T, A), a A) bool {
	return Fire(o, func(w *T) {
		method(w, a)
	})
}

func submit[T, R any](o *Object[T], kind api.TaskKind, fn func(*T) (R, error)) *future.Future[R] {
	p, f := future.New[R]()

	queued := o.enqueue(kind, func(w *T) error {
		return invoke(w, fn, func(v R, err error) {
			_ = p.Complete(v, err)
		})
	})
	if !queued {
		_ = p.Reject(ErrEmpty)
	}
	return f
}
