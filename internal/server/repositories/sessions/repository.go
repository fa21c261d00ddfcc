// Package sessions declares the server-side repository contract for session
// token bindings and its PostgreSQL and SQLite implementations.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

// Repository stores and looks up session bindings. The token column is not
// unique, so FindByToken may return more than one binding.
type Repository interface {
	// Create stores the binding and sets session.ID. An unknown UserID
	// returns common.ErrorNotFound.
	Create(ctx context.Context, session *models.Session) error
	// FindByToken returns every binding for token, possibly none.
	FindByToken(ctx context.Context, token string) ([]models.Session, error)
}
