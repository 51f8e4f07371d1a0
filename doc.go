// Package concurrent implements the active-object pattern for Go.
//
// An Object takes exclusive ownership of an arbitrary value (the "worker")
// and runs every access to it on one dedicated background goroutine, in
// strict submission order. Callers never block on submission: each call
// returns a Future that becomes ready once the work has run.
//
// # Core Concepts
//
//  1. Object
//  2. Dispatch: closures and bound calls
//  3. Future
//  4. Teardown
//
// # Object
//
// An Object is created from a constructor, from an already built worker, or
// from a value:
//
//	obj, err := concurrent.New(func() (*Account, error) { return OpenAccount(id) })
//	obj := concurrent.Wrap(&Account{})
//	obj := concurrent.Of(Account{})
//
// A constructor error is returned synchronously and no goroutine is started.
// A nil worker produces an empty Object: it is Stopped from the start and
// every dispatch fails with ErrEmpty.
//
// # Dispatch
//
// The closure form hands the worker to a function. Everything inside one
// closure runs without any other submission interleaving:
//
//	f := concurrent.Submit(obj, func(a *Account) (int, error) {
//		if err := a.Withdraw(10); err != nil {
//			return 0, err
//		}
//		return a.Balance(), nil
//	})
//	balance, err := f.Get()
//
// Lambda and Exec are shorthands for closures that cannot fail or that
// return only an error.
//
// The bound-call form queues a method with captured arguments. Method
// expressions make this read naturally:
//
//	f := concurrent.Call1(obj, (*Account).Deposit, 100)
//
// Arguments are copied when the call is made. An argument that must have a
// single owner travels in a MoveOnly value (see Move).
//
// Fire and Fire1 queue work without a result handle.
//
// # Failures
//
// All failures are delivered through the Future of the submission that
// caused them:
//
//   - ErrEmpty: the Object had no worker when the call was made
//   - the error returned by the closure or method, unchanged
//   - *PanicError: the work item panicked; the Object keeps running
//   - ErrGoexit: the work item called runtime.Goexit (t.FailNow does this);
//     the Object resumes on a new goroutine
//
// There is no global error channel. A failed Future that nobody reads is
// simply dropped.
//
// # Teardown
//
// Close queues a stop item behind all pending work, waits for the background
// goroutine to run everything before it, then releases the worker. Go has no
// destructors, so the end of an Object's scope is spelled
//
//	defer obj.Close()
//
// Close is idempotent. After it returns, Empty reports true and every
// dispatch fails with ErrEmpty. If the worker implements io.Closer it is
// closed on the background goroutine and Close returns its error.
//
// The lifecycle is Active → Draining → Stopped and never goes back.
//
// # Observability
//
// WithLogger and WithObserver attach structured logging and metrics. See
// pkg/api for the built-in observers and pkg/metrics for Prometheus.
package concurrent
