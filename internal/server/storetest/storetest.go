// Package storetest opens migrated throwaway databases for tests.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/gophforum/internal/server/migrations"
)

// SQLiteDSN returns a DSN for a private in-memory database with foreign keys on.
func SQLiteDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
}

// NewSQLite opens a fresh in-memory SQLite database with the server schema
// applied. It is closed when the test ends.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", SQLiteDSN())
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Up(context.Background(), db, "sqlite")
	require.NoError(t, err)

	return db
}
