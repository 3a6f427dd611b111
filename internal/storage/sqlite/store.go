package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"scrum/internal/storage"
)

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("sqlite store ready", slog.String("path", dbPath))
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            is_active BOOLEAN NOT NULL DEFAULT 1
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username) WHERE username <> '';`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email) WHERE email <> '';`,
		`CREATE TABLE IF NOT EXISTS sprints (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            end_date DATE NOT NULL UNIQUE
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            sprint_id INTEGER NULL REFERENCES sprints(id) ON DELETE SET NULL,
            status INTEGER NOT NULL DEFAULT 1,
            sort_order INTEGER NOT NULL DEFAULT 0,
            assigned_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
            started DATE NULL,
            due DATE NULL,
            completed DATE NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_sprint ON tasks(sprint_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assigned ON tasks(assigned_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func notFound(kind string) error {
	return fmt.Errorf("%s %w", kind, storage.ErrNotFound)
}

func checkAffected(res sql.Result, kind string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound(kind)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
