package sessions

import (
	"context"

	"github.com/dmitrijs2005/gophforum/internal/dbx"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query :=
		`INSERT INTO sessions (user_id, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		session.UserID, session.Token, session.ExpiresAt.UTC(), session.CreatedAt.UTC()).Scan(&session.ID)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) ([]models.Session, error) {
	query :=
		`SELECT id, user_id, token, expires_at, created_at
		 FROM sessions
		 WHERE token = $1`

	rows, err := r.db.QueryContext(ctx, query, token)
	if err != nil {
		return nil, mapError(err)
	}
	return scanSessions(rows)
}
