package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aischool/aischool/internal/logger"
	"github.com/aischool/aischool/internal/progression"
)

type userRow struct {
	ID        string         `db:"id"`
	Email     sql.NullString `db:"email"`
	Data      string         `db:"data"`
	UpdatedAt int64          `db:"updated_at"`
}

// userRepo stores each record as a JSON document alongside its lookup keys.
type userRepo struct {
	db     dbtx
	log    *logger.Logger
	levels progression.LevelTable
}

func (r *userRepo) Get(ctx context.Context, id string) (progression.Progress, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT id, email, data, updated_at FROM users WHERE id = ?`, id)
	if err != nil {
		return progression.Progress{}, notFound(err, "user %s", id)
	}
	return r.decode(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (progression.Progress, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, email, data, updated_at FROM users WHERE email = ?`, strings.TrimSpace(email))
	if err != nil {
		return progression.Progress{}, notFound(err, "user with email")
	}
	return r.decode(row)
}

func (r *userRepo) Save(ctx context.Context, p progression.Progress) error {
	if p.ID == "" {
		return errors.New("save user: empty id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", p.ID, err)
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, data, updated_at)
		VALUES (:id, :email, :data, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(excluded.email, users.email),
			data = excluded.data,
			updated_at = excluded.updated_at`,
		// An empty e-mail stores NULL and keeps any address already on the row.
		userRow{
			ID:        p.ID,
			Email:     sql.NullString{String: p.Email, Valid: p.Email != ""},
			Data:      string(data),
			UpdatedAt: time.Now().UnixMilli(),
		},
	)
	if err != nil {
		// id conflicts are absorbed by the upsert, so a unique violation is
		// always the e-mail index.
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("save user %s: %w", p.ID, err)
	}
	return nil
}

func (r *userRepo) List(ctx context.Context) ([]progression.Progress, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, email, data, updated_at FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]progression.Progress, 0, len(rows))
	for _, row := range rows {
		p, err := r.decode(row)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepo) decode(row userRow) (progression.Progress, error) {
	var p progression.Progress
	if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
		r.log.Warn("discarding undecodable user record", "user_id", row.ID, "error", err)
		return progression.New(row.ID, "", row.Email.String, progression.RoleStudent),
			fmt.Errorf("user %s: %w", row.ID, ErrCorrupt)
	}
	p.ID = row.ID
	return progression.Normalize(p, r.levels), nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf("query "+format+": %w", append(args, err)...)
}
