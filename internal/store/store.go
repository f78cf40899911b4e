package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/aischool/aischool/internal/logger"
	"github.com/aischool/aischool/internal/progression"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned when a stored record cannot be decoded. It
	// matches ErrNotFound so callers can fall back to a default record.
	ErrCorrupt = fmt.Errorf("%w: corrupt record", ErrNotFound)
	// ErrDuplicateEmail is returned when saving a record whose e-mail
	// belongs to another user.
	ErrDuplicateEmail = errors.New("email already registered")
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db     *sqlx.DB
	seq    *sequenceCounter
	log    *logger.Logger
	levels progression.LevelTable
}

// Option configures Open.
type Option func(*Store)

// WithLogger sets the logger used for recoverable storage problems.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithLevels sets the level table used to normalize loaded records.
func WithLevels(t progression.LevelTable) Option {
	return func(s *Store) { s.levels = t }
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, seq: seq, log: logger.Nop(), levels: progression.DefaultLevels()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UserRepo returns a UserRepo backed by this store.
func (s *Store) UserRepo() UserRepo {
	return &userRepo{db: s.db, log: s.log, levels: s.levels}
}

// SessionRepo returns a SessionRepo backed by this store.
func (s *Store) SessionRepo() SessionRepo {
	return &sessionRepo{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// InTx runs fn with user and event repositories bound to one transaction.
// It commits when fn returns nil and rolls back otherwise. fn must not use
// repositories obtained outside the transaction: the pool holds a single
// connection.
func (s *Store) InTx(ctx context.Context, fn func(users UserRepo, events EventRepo) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	users := &userRepo{db: tx, log: s.log, levels: s.levels}
	events := &eventRepo{db: tx, seq: s.seq}
	if err := fn(users, events); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. AISCHOOL_DB environment variable
// 2. $XDG_DATA_HOME/aischool/aischool.db
// 3. ~/.local/share/aischool/aischool.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("AISCHOOL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "aischool", "aischool.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
