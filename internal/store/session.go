package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const activeUserKey = "active_user"

type sessionRepo struct {
	db *sqlx.DB
}

func (r *sessionRepo) SetActive(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		activeUserKey, userID)
	if err != nil {
		return fmt.Errorf("set active user: %w", err)
	}
	return nil
}

func (r *sessionRepo) ActiveID(ctx context.Context) (string, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT value FROM session WHERE key = ?`, activeUserKey)
	if err != nil {
		return "", notFound(err, "active user")
	}
	return id, nil
}

func (r *sessionRepo) ClearActive(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, activeUserKey); err != nil {
		return fmt.Errorf("clear active user: %w", err)
	}
	return nil
}
