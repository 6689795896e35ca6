package kv

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// Storage driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// redisKeyPrefix namespaces every key this application writes to Redis.
const redisKeyPrefix = "babysteps:"

// Options selects and configures a backend.
type Options struct {
	Driver string

	// Dir is the directory used by the file driver.
	Dir string

	// DatabaseURL is the Postgres connection string used by the postgres driver.
	DatabaseURL string

	// Redis settings used by the redis driver.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects the backend selected by opts.Driver.
// The returned close function releases any connections and is never nil.
// For the postgres driver, pending migrations are applied before returning.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), func() {}, nil

	case DriverFile:
		s, err := NewFile(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case DriverPostgres:
		// New() does not open connections immediately — the first query does.
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("kv.Open: create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("kv.Open: connect to database: %w", err)
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		err = Migrate(ctx, sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return NewPostgres(pool), pool.Close, nil

	case DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("kv.Open: connect to redis: %w", err)
		}
		return NewRedis(rdb, redisKeyPrefix), func() { _ = rdb.Close() }, nil
	}

	return nil, nil, fmt.Errorf("kv.Open: unknown storage driver %q", opts.Driver)
}
