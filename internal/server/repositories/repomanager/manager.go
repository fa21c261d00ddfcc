// Package repomanager vends repository implementations for the configured SQL
// backend and owns the database lifecycle: opening the pool and migrating
// the schema.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophforum/internal/dbx"
	"github.com/dmitrijs2005/gophforum/internal/server/migrations"
	"github.com/dmitrijs2005/gophforum/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophforum/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}

// New returns the RepositoryManager for a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// migrateUp is a seam for testing migrations.Up.
var migrateUp = func(ctx context.Context, db *sql.DB, driver string) error {
	_, err := migrations.Up(ctx, db, driver)
	return err
}
