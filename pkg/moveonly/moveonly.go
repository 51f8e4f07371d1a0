// Package moveonly carries values that must have exactly one owner.
//
// Go copies values freely, so a resource such as an open file or a one-shot
// token can end up reachable from two places. A Value makes the hand-over
// explicit: whoever calls Take owns the payload and every later Take reports
// that it is gone. Copying the *Value handle is harmless; it is the payload
// that moves.
//
// Typical use is passing a single-owner argument into concurrent.Call1 so the
// background goroutine becomes its only owner.
package moveonly

import "sync"

// Value holds at most one instance of T.
type Value[T any] struct {
	mu    sync.Mutex
	v     T
	valid bool
}

// New wraps v. The caller must not use v directly afterwards.
func New[T any](v T) *Value[T] {
	return &Value[T]{v: v, valid: true}
}

// Valid reports whether the payload has not been taken yet.
func (m *Value[T]) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valid
}

// Get returns a pointer to the payload, or nil once it has been taken. The
// pointer aliases m's storage and is not guarded by m's lock: once Take or
// Move runs, a pointer obtained earlier reads the zero value. Use With when
// the access may race with a Take.
func (m *Value[T]) Get() *T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.valid {
		return nil
	}
	return &m.v
}

// With runs fn on the payload while holding m's lock, so it cannot
// interleave with Take or Move. It reports false, without calling fn, once
// the payload has been taken.
func (m *Value[T]) With(fn func(*T)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.valid {
		return false
	}
	fn(&m.v)
	return true
}

// Take moves the payload out, leaving m empty.
func (m *Value[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	if !m.valid {
		return zero, false
	}
	v := m.v
	m.v = zero
	m.valid = false
	return v, true
}

// Move transfers the payload into a new Value, leaving m empty. Moving an
// empty Value yields an empty Value.
func (m *Value[T]) Move() *Value[T] {
	v, ok := m.Take()
	if !ok {
		return &Value[T]{}
	}
	return New(v)
}
