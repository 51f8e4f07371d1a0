package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/KjellKod/concurrent"
	"github.com/KjellKod/concurrent/pkg/future"
)

// session is the worker owned by the Store's object. Close is promoted from
// Backend, so closing the object closes the backend.
type session struct {
	Backend
}

// Store serializes access to a Backend. All methods are safe for concurrent
// use and return immediately; results arrive through futures.
type Store struct {
	obj *concurrent.Object[session]
}

// Open takes ownership of b. A nil backend yields a Store whose operations
// all fail with concurrent.ErrEmpty.
func Open(b Backend, opts ...concurrent.Option) *Store {
	if b == nil {
		return &Store{obj: concurrent.Wrap[session](nil, opts...)}
	}
	return &Store{obj: concurrent.Wrap(&session{Backend: b}, opts...)}
}

// Get fetches the value stored under key.
func (s *Store) Get(ctx context.Context, key string) *future.Future[[]byte] {
	if err := validateKey(key); err != nil {
		return future.Failed[[]byte](err)
	}
	return concurrent.Submit(s.obj, func(c *session) ([]byte, error) {
		return c.Get(ctx, key)
	})
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) *future.Future[struct{}] {
	if err := validateKey(key); err != nil {
		return future.Failed[struct{}](err)
	}
	v := append([]byte(nil), value...)
	return concurrent.Exec(s.obj, func(c *session) error {
		return c.Put(ctx, key, v)
	})
}

// Delete removes key. It fails with ErrNotFound if key does not exist.
func (s *Store) Delete(ctx context.Context, key string) *future.Future[struct{}] {
	if err := validateKey(key); err != nil {
		return future.Failed[struct{}](err)
	}
	return concurrent.Exec(s.obj, func(c *session) error {
		return c.Delete(ctx, key)
	})
}

// Keys lists all keys in ascending order.
func (s *Store) Keys(ctx context.Context) *future.Future[[]string] {
	return concurrent.Submit(s.obj, func(c *session) ([]string, error) {
		return c.Keys(ctx)
	})
}

// UpdateFunc computes a new value from the current one. found is false when
// the key does not exist yet.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Update reads key, applies fn and writes the result back as one unit: no
// other operation on the Store runs in between. If fn fails nothing is
// written.
func (s *Store) Update(ctx context.Context, key string, fn UpdateFunc) *future.Future[[]byte] {
	if err := validateKey(key); err != nil {
		return future.Failed[[]byte](err)
	}
	return concurrent.Submit(s.obj, func(c *session) ([]byte, error) {
		return c.update(ctx, key, fn)
	})
}

// Incr adds delta to the decimal integer stored under key, treating a
// missing key as zero, and returns the new value.
func (s *Store) Incr(ctx context.Context, key string, delta int64) *future.Future[int64] {
	if err := validateKey(key); err != nil {
		return future.Failed[int64](err)
	}
	return concurrent.Submit(s.obj, func(c *session) (int64, error) {
		var n int64
		_, err := c.update(ctx, key, func(current []byte, found bool) ([]byte, error) {
			if found {
				v, err := strconv.ParseInt(string(current), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("store: value of %q is not an integer: %w", key, err)
				}
				n = v
			}
			n += delta
			return strconv.AppendInt(nil, n, 10), nil
		})
		return n, err
	})
}

func (c *session) update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error) {
	current, err := c.Get(ctx, key)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	next, err := fn(current, found)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Pending returns the number of queued operations.
func (s *Store) Pending() int {
	return s.obj.Len()
}

// Closed reports whether the Store has released its backend.
func (s *Store) Closed() bool {
	return s.obj.Empty()
}

// Close waits for every queued operation to finish, then closes the backend.
func (s *Store) Close() error {
	return s.obj.Close()
}

// PutValue gob-encodes v and stores it under key.
func PutValue[V any](ctx context.Context, s *Store, key string, v V) *future.Future[struct{}] {
	data, err := EncodeValue(v)
	if err != nil {
		return future.Failed[struct{}](err)
	}
	return s.Put(ctx, key, data)
}

// GetValue fetches key and gob-decodes it into V.
func GetValue[V any](ctx context.Context, s *Store, key string) *future.Future[V] {
	if err := validateKey(key); err != nil {
		return future.Failed[V](err)
	}
	return concurrent.Submit(s.obj, func(c *session) (V, error) {
		data, err := c.Get(ctx, key)
		if err != nil {
			var zero V
			return zero, err
		}
		return DecodeValue[V](data)
	})
}
