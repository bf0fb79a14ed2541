// Package migrations holds the schema history of the store database.  Each
// file is named <timestamp>_<name>.go and registers its Up/Down pair in
// init(); bun derives the migration name from that file name, so the call
// to Migrations.MustRegister must stay in the migration's own file.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all database migrations.
var Migrations = migrate.NewMigrations()

// execer is satisfied by *bun.DB, *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type stepFunc func(ctx context.Context, db execer) error

// bunStep adapts a step written against execer to bun's MigrationFunc.
func bunStep(step stepFunc) migrate.MigrationFunc {
	return func(ctx context.Context, db *bun.DB) error {
		return step(ctx, db)
	}
}

// execAll runs each statement in order.  MySQL rejects multi-statement
// strings without multiStatements=true, so statements are sent one by one.
func execAll(ctx context.Context, db execer, what string, queries ...string) error {
	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to %s: %w", what, err)
		}
	}
	return nil
}

// noop is used where a migration has nothing to undo.
func noop(context.Context, execer) error { return nil }
