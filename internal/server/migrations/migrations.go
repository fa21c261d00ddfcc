// Package migrations embeds the goose SQL migrations of the server schema,
// one directory per SQL dialect, and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS

// Source returns the goose dialect and the migration files for driver
// ("pgx" or "sqlite").
func Source(driver string) (goose.Dialect, fs.FS, error) {
	switch driver {
	case "pgx", "postgres":
		sub, err := fs.Sub(Postgres, "postgres")
		return goose.DialectPostgres, sub, err
	case "sqlite", "sqlite3":
		sub, err := fs.Sub(SQLite, "sqlite")
		return goose.DialectSQLite3, sub, err
	default:
		return "", nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Up applies all pending migrations for driver and returns how many ran.
func Up(ctx context.Context, db *sql.DB, driver string) (int, error) {
	dialect, fsys, err := Source(driver)
	if err != nil {
		return 0, err
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate up: %w", err)
	}
	return len(results), nil
}
