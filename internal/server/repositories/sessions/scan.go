package sessions

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophforum/internal/common"
	"github.com/dmitrijs2005/gophforum/internal/dbx"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

func mapError(err error) error {
	if dbx.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %w", common.ErrorNotFound, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func scanSessions(rows *sql.Rows) ([]models.Session, error) {
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
