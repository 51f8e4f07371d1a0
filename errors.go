package concurrent

import (
	"errors"
	"fmt"
)

// ErrEmpty is delivered through the returned future when work is dispatched
// to an Object whose worker is absent, either because it was constructed
// without one or because it has been closed.
var ErrEmpty = errors.New("concurrent: object has no backing worker")

// ErrNilConstructor is returned by New when no constructor is given.
var ErrNilConstructor = errors.New("concurrent: nil worker constructor")

// ErrGoexit is delivered for a work item that called runtime.Goexit, for
// example through testing.T.FailNow. The Object resumes serving its queue on
// a new goroutine.
var ErrGoexit = errors.New("concurrent: work item called runtime.Goexit")

// PanicError is the failure delivered for a work item that panicked. The
// background goroutine recovers the panic and keeps serving the queue.
type PanicError struct {
	// Value is the value passed to panic.
	Value any

	// Stack is the goroutine stack captured at the point of recovery.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("concurrent: work item panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error, so errors.Is and
// errors.As see through the panic.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
