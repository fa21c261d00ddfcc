package sessions

import (
	"context"

	"github.com/dmitrijs2005/gophforum/internal/dbx"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, session *models.Session) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		session.UserID, session.Token, session.ExpiresAt.UTC(), session.CreatedAt.UTC())
	if err != nil {
		return mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return mapError(err)
	}
	session.ID = id
	return nil
}

func (r *SQLiteRepository) FindByToken(ctx context.Context, token string) ([]models.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at
		 FROM sessions
		 WHERE token = ?`, token)
	if err != nil {
		return nil, mapError(err)
	}
	return scanSessions(rows)
}
