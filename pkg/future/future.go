// Package future implements a one-shot promise/future pair.
//
// The Promise side is held by whoever produces the result (typically the
// background goroutine of a concurrent.Object); the Future side is handed to
// the caller immediately. Exactly one of a value or an error is stored, once,
// after which the Future is ready and every waiter is released.
package future

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyCompleted is returned when a Promise is completed a second time.
var ErrAlreadyCompleted = errors.New("future: promise already completed")

// Future is the read side of a one-shot result channel. It is safe for use
// by multiple goroutines.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Promise is the write side of a one-shot result channel.
type Promise[T any] struct {
	once   sync.Once
	future *Future[T]
}

// New returns a connected Promise and Future.
func New[T any]() (*Promise[T], *Future[T]) {
	f := &Future[T]{done: make(chan struct{})}
	return &Promise[T]{future: f}, f
}

// Resolved returns a Future that is already ready with v.
func Resolved[T any](v T) *Future[T] {
	p, f := New[T]()
	_ = p.Resolve(v)
	return f
}

// Failed returns a Future that is already ready with err.
func Failed[T any](err error) *Future[T] {
	p, f := New[T]()
	_ = p.Reject(err)
	return f
}

// Future returns the read side connected to p.
func (p *Promise[T]) Future() *Future[T] {
	return p.future
}

// Resolve stores v and releases all waiters.
func (p *Promise[T]) Resolve(v T) error {
	return p.Complete(v, nil)
}

// Reject stores err and releases all waiters. A nil err resolves the promise
// with the zero value.
func (p *Promise[T]) Reject(err error) error {
	var zero T
	return p.Complete(zero, err)
}

// Complete stores either v (err == nil) or err. Only the first call has an
// effect; later calls return ErrAlreadyCompleted.
func (p *Promise[T]) Complete(v T, err error) error {
	completed := false
	p.once.Do(func() {
		if err == nil {
			p.future.value = v
		} else {
			p.future.err = err
		}
		close(p.future.done)
		completed = true
	})
	if !completed {
		return ErrAlreadyCompleted
	}
	return nil
}

// Done returns a channel that is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the result is available without blocking.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the result is available and returns it.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// Wait is Get bounded by ctx. If ctx ends first, Wait returns ctx.Err(); the
// pending work is unaffected and the result can still be retrieved later.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Err blocks until the result is available and returns only its error.
func (f *Future[T]) Err() error {
	<-f.done
	return f.err
}
