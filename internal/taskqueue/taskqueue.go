// Package taskqueue provides the unbounded FIFO queue that backs every
// concurrent.Object.
//
// Producers may push from any number of goroutines. Consumers either poll with
// TryPop or park inside WaitPop until an item arrives. Waiting uses a condition
// variable bound to the same mutex that guards the items, so a parked consumer
// costs nothing while the queue is empty.
package taskqueue

import "sync"

// compactThreshold is the number of consumed head slots tolerated before the
// backing slice is shifted down.
const compactThreshold = 64

// Queue is a goroutine-safe, unbounded FIFO queue.
//
// The zero value is an empty queue ready for use. A Queue must not be copied
// after first use.
type Queue[T any] struct {
	mu    sync.Mutex
	cond  sync.Cond
	items []T
	head  int
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// init binds the condition variable to the queue mutex. Callers hold q.mu.
func (q *Queue[T]) init() {
	if q.cond.L == nil {
		q.cond.L = &q.mu
	}
}

// Push appends item at the tail and wakes one waiting consumer. It never
// blocks beyond the internal critical section.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.init()
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.cond.Signal()
}

// TryPop removes and returns the head item. ok is false when the queue is
// empty; TryPop never blocks.
func (q *Queue[T]) TryPop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.lenLocked() == 0 {
		return item, false
	}
	return q.popLocked(), true
}

// WaitPop removes and returns the head item, blocking until one is
// available.
func (q *Queue[T]) WaitPop() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.init()
	for q.lenLocked() == 0 {
		q.cond.Wait()
	}
	return q.popLocked()
}

// Empty reports whether the queue held no items at the moment of the call.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of queued items at the moment of the call. Under
// concurrent pushes and pops the value is only a snapshot.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *Queue[T]) lenLocked() int {
	return len(q.items) - q.head
}

func (q *Queue[T]) popLocked() T {
	var zero T
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return item
}
