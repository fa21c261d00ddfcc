package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/gophforum/internal/logging"
)

// OpenOptions tunes Open. Zero values fall back to the defaults below.
type OpenOptions struct {
	PingAttempts uint64
	PingBackoff  time.Duration
}

const (
	defaultPingAttempts = 5
	defaultPingBackoff  = 200 * time.Millisecond
)

// Open opens a pool for driver/dsn and pings it with exponential backoff
// until the database answers or the attempts run out. SQLite pools are
// limited to a single connection.
func Open(ctx context.Context, driver, dsn string, opts OpenOptions, logger logging.Logger) (*sql.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if opts.PingAttempts == 0 {
		opts.PingAttempts = defaultPingAttempts
	}
	if opts.PingBackoff <= 0 {
		opts.PingBackoff = defaultPingBackoff
	}

	attempt := 0
	b := retry.WithMaxRetries(opts.PingAttempts-1, retry.NewExponential(opts.PingBackoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "driver", driver, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}
