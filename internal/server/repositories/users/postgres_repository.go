package users

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, password_salt, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, nullableEmail(user.Email),
		user.Credential.Hash, user.Credential.Salt, user.CreatedAt.UTC()).Scan(&user.ID)
	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, password_salt, created_at
		 FROM users
		 WHERE username = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetUsernameByID(ctx context.Context, id int64) (string, error) {
	query := `SELECT username FROM users WHERE id = $1`

	var username string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&username); err != nil {
		return "", mapError(err)
	}
	return username, nil
}
