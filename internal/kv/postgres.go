package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps blobs in the kv_blobs table (see migrations/).
// Values are stored as bytea, not jsonb, so a corrupt blob is kept verbatim
// and the list store can fall back to seed data on read.
type PostgresStore struct {
	db db
}

// NewPostgres constructs a PostgresStore backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgres(db db) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the blob stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("kv.PostgresStore.Get: %w", err)
	}
	const q = `SELECT value FROM kv_blobs WHERE key = @key`

	var value []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("kv.PostgresStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("kv.PostgresStore.Get: %w", err)
	}
	return value, nil
}

// Set upserts the blob for key.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("kv.PostgresStore.Set: %w", err)
	}
	const q = `
		INSERT INTO kv_blobs (key, value)
		VALUES (@key, @value)
		ON CONFLICT (key) DO UPDATE
		SET value      = EXCLUDED.value,
		    updated_at = now()`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "value": value}); err != nil {
		return fmt.Errorf("kv.PostgresStore.Set: %w", err)
	}
	return nil
}

// Delete removes the row for key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("kv.PostgresStore.Delete: %w", err)
	}
	const q = `DELETE FROM kv_blobs WHERE key = @key`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("kv.PostgresStore.Delete: %w", err)
	}
	return nil
}
