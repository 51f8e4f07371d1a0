package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KjellKod/concurrent/internal/config"
	"github.com/KjellKod/concurrent/pkg/store"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"
)

// openBackend connects the configured backend. release frees the shared
// client (pool, redis client, mongo client) and must run after the Store
// wrapping the backend has been closed.
func openBackend(ctx context.Context, cfg config.StoreConfig) (store.Backend, func() error, error) {
	noop := func() error { return nil }

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.Backend {
	case "memory":
		return store.NewMemory(), noop, nil

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		b, err := store.NewSQLite(connectCtx, db, cfg.Table)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return b, db.Close, nil

	case "postgres":
		b, err := store.DialPostgres(connectCtx, cfg.PostgresURL, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		b, err := store.NewRedis(connectCtx, client, cfg.Prefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return b, client.Close, nil

	case "mongo":
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		disconnect := func() error { return client.Disconnect(context.Background()) }
		b, err := store.NewMongo(connectCtx, client, cfg.Database, cfg.Table)
		if err != nil {
			_ = disconnect()
			return nil, nil, err
		}
		return b, disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
