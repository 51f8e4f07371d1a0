package store

import (
	"context"
	"testing"

	"github.com/KjellKod/concurrent/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

const redisTestPrefix = "concurrent:test:"

type RedisBackendTestSuite struct {
	suite.Suite
	endpoint string
	client   *redis.Client
}

func TestRedisBackendTestSuite(t *testing.T) {
	testsuite := new(RedisBackendTestSuite)
	testsuite.endpoint = testutil.GetRedisAddress(t)

	client := redis.NewClient(&redis.Options{Addr: testsuite.endpoint})
	t.Cleanup(func() {
		_ = client.Close()
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping failed: %v", err)
	}
	testsuite.client = client

	suite.Run(t, testsuite)
}

func (r *RedisBackendTestSuite) SetupTest() {
	ctx := context.Background()

	// Clean up all keys with this prefix.
	iter := r.client.Scan(ctx, 0, redisTestPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		err := r.client.Del(ctx, iter.Val()).Err()
		r.NoErrorf(err, "redis DEL %q failed: %v", iter.Val(), err)
	}
	r.NoError(iter.Err(), "redis SCAN failed")
}

func (r *RedisBackendTestSuite) TestBackendContract() {
	b, err := NewRedis(context.Background(), r.client, redisTestPrefix)
	r.Require().NoError(err)
	testBackend(r.T(), b)
}

func (r *RedisBackendTestSuite) TestKeysIgnoreOtherPrefixes() {
	ctx := context.Background()
	r.Require().NoError(r.client.Set(ctx, "unrelated:key", "x", 0).Err())
	defer r.client.Del(ctx, "unrelated:key")

	b, err := NewRedis(ctx, r.client, redisTestPrefix)
	r.Require().NoError(err)
	s := Open(b)
	defer s.Close()

	r.Require().NoError(s.Put(ctx, "mine", []byte("1")).Err())
	keys, err := s.Keys(ctx).Get()
	r.Require().NoError(err)
	r.Equal([]string{"mine"}, keys)
}

func (r *RedisBackendTestSuite) TestRejectsGlobPrefix() {
	_, err := NewRedis(context.Background(), r.client, "kv:*")
	r.ErrorIs(err, ErrInvalidName)
}
