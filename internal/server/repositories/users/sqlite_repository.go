package users

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

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, password_salt, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.UserName, nullableEmail(user.Email),
		user.Credential.Hash, user.Credential.Salt, user.CreatedAt.UTC())
	if err != nil {
		return nil, mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError(err)
	}
	user.ID = id

	return user, nil
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, password_salt, created_at
		 FROM users
		 WHERE username = ?`, username))
}

func (r *SQLiteRepository) GetUsernameByID(ctx context.Context, id int64) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id = ?`, id).Scan(&username)
	if err != nil {
		return "", mapError(err)
	}
	return username, nil
}
