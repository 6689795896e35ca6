package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/pkordes/babysteps/backend/migrations"
)

// Migrate applies all pending migrations from the embedded migrations.FS.
// goose needs a database/sql handle; callers holding a pgxpool can obtain one
// with stdlib.OpenDBFromPool.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("kv.Migrate: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("kv.Migrate: run migrations: %w", err)
	}
	return nil
}
