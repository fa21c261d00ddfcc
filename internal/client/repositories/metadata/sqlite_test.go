package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophforum/internal/client/client"
	"github.com/dmitrijs2005/gophforum/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyToken, []byte("abc")))

	v, err := r.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)
}

func TestGet_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), "absent")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", nil))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestDeleteAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))

	require.NoError(t, r.Delete(ctx, "a"))
	_, err := r.Get(ctx, "a")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.Delete(ctx, "never-there"))

	require.NoError(t, r.Clear(ctx))
	_, err = r.Get(ctx, "b")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT value FROM metadata").WithArgs("k").WillReturnError(sql.ErrConnDone)
	_, err = r.Get(ctx, "k")
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectExec("INSERT INTO metadata").WillReturnError(sql.ErrConnDone)
	require.ErrorIs(t, r.Set(ctx, "k", []byte("v")), sql.ErrConnDone)

	mock.ExpectExec("DELETE FROM metadata WHERE key").WillReturnError(sql.ErrConnDone)
	require.ErrorIs(t, r.Delete(ctx, "k"), sql.ErrConnDone)

	mock.ExpectExec("DELETE FROM metadata").WillReturnError(sql.ErrConnDone)
	require.ErrorIs(t, r.Clear(ctx), sql.ErrConnDone)

	require.NoError(t, mock.ExpectationsWereMet())
}
