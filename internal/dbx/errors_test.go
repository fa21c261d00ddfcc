package dbx

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation_Postgres(t *testing.T) {
	err := fmt.Errorf("db error: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
}

func TestIsForeignKeyViolation_Postgres(t *testing.T) {
	err := fmt.Errorf("db error: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestConstraintHelpers_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", "file:dbx_constraints?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE parent (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE);
		CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parent (id));
	`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO parent (name) VALUES ('a')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO parent (name) VALUES ('a')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(fmt.Errorf("db error: %w", err)))
	assert.False(t, IsForeignKeyViolation(err))

	_, err = db.Exec(`INSERT INTO child (parent_id) VALUES (42)`)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestConstraintHelpers_OtherErrors(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("duplicate key")))
	assert.False(t, IsForeignKeyViolation(sql.ErrNoRows))
}
