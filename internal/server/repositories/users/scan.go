package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophforum/internal/common"
	"github.com/dmitrijs2005/gophforum/internal/dbx"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

func nullableEmail(email string) sql.NullString {
	return sql.NullString{String: email, Valid: email != ""}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user  models.User
		email sql.NullString
	)
	err := row.Scan(&user.ID, &user.UserName, &email,
		&user.Credential.Hash, &user.Credential.Salt, &user.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	user.Email = email.String
	return &user, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", common.ErrorConflict, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
