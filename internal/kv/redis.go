package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// RedisStore keeps each blob as a plain string value under prefix+key.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis returns a RedisStore that namespaces its keys with prefix.
func NewRedis(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// Get returns the blob stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("kv.RedisStore.Get: %w", err)
	}
	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("kv.RedisStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("kv.RedisStore.Get: %w", err)
	}
	return v, nil
}

// Set stores value under key with no expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("kv.RedisStore.Set: %w", err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv.RedisStore.Set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("kv.RedisStore.Delete: %w", err)
	}
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("kv.RedisStore.Delete: %w", err)
	}
	return nil
}
