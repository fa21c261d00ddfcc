// Package users declares the server-side repository contract for registered
// identities and its PostgreSQL and SQLite implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

type Repository interface {
	// Create stores a new identity and sets user.ID. A username or email
	// collision returns common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByUsername returns common.ErrorNotFound when no identity matches.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUsernameByID returns common.ErrorNotFound when no identity matches.
	GetUsernameByID(ctx context.Context, id int64) (string, error)
}
