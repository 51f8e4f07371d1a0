package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis is a Backend over a single dedicated *redis.Conn.
//
// Keys are stored as plain Redis strings under a prefix:
//
//	<prefix><key>  => value
//
// Keys is implemented with SCAN, so it only sees keys under the prefix.
type Redis struct {
	conn   *redis.Conn
	prefix string
}

var _ Backend = (*Redis)(nil)

// NewRedis checks out a dedicated connection from client. prefix is
// optional but recommended (e.g. "kv:"). Close returns the connection but
// leaves client open.
func NewRedis(ctx context.Context, client *redis.Client, prefix string) (*Redis, error) {
	if prefix == "" {
		prefix = "concurrent:kv:"
	}
	if err := validateName("prefix", prefix, "required,keyprefix"); err != nil {
		return nil, err
	}

	conn := client.Conn()
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}
	return &Redis{conn: conn, prefix: prefix}, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.conn.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	return r.conn.Set(ctx, r.key(key), value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	n, err := r.conn.Del(ctx, r.key(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	iter := r.conn.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	// SCAN may report a key more than once.
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

func (r *Redis) Close() error {
	return r.conn.Close()
}
