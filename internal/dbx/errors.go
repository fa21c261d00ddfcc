package dbx

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsUniqueViolation reports whether err (or anything it wraps) is a unique
// constraint violation raised by PostgreSQL or SQLite.
func IsUniqueViolation(err error) bool {
	return hasPgCode(err, pgerrcode.UniqueViolation) ||
		hasSQLiteCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
// SQLite only raises it when the connection has foreign_keys enabled.
func IsForeignKeyViolation(err error) bool {
	return hasPgCode(err, pgerrcode.ForeignKeyViolation) ||
		hasSQLiteCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func hasSQLiteCode(err error, codes ...int) bool {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return false
	}
	for _, c := range codes {
		if sqErr.Code() == c {
			return true
		}
	}
	return false
}
