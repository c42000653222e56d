// Package sqlite implements the store.Store contract over a local
// sqlite database, the fast cache side of the sync pair.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tasksync/internal/store"
)

const dbFile = "tasksync.db"

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
`

// Store implements store.Store over one sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the task database under dataDir.
// The database is opened with WAL mode and a single writer connection.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns all tasks in insertion order.
func (s *Store) List(ctx context.Context) ([]store.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, completed FROM tasks ORDER BY rowid`)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	var result []store.Task
	for rows.Next() {
		var t store.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed); err != nil {
			return nil, wrapError(err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// Get returns the task with the given id.
func (s *Store) Get(ctx context.Context, id string) (store.Task, error) {
	if id == "" {
		return store.Task{}, store.ErrEmptyID
	}

	var t store.Task
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, completed FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Task{}, store.ErrNotFound
	}
	if err != nil {
		return store.Task{}, wrapError(err)
	}
	return t, nil
}

// Save inserts the task or merges it over an existing row with the
// same id. A merged row keeps its original insertion position.
func (s *Store) Save(ctx context.Context, t store.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, completed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			completed = excluded.completed`,
		t.ID, t.Title, t.Description, t.Completed)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// SetCompleted sets the completed flag on the given task.
func (s *Store) SetCompleted(ctx context.Context, t store.Task, completed bool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.SetCompletedByID(ctx, t.ID, completed)
}

// SetCompletedByID sets the completed flag on the task with the given id.
func (s *Store) SetCompletedByID(ctx context.Context, id string, completed bool) error {
	if id == "" {
		return store.ErrEmptyID
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapError(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteAllCompleted removes every completed task in one indexed delete.
func (s *Store) DeleteAllCompleted(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE completed = 1`)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteAll removes every task.
func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// Delete removes the task with the given id. Deleting an absent id
// is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrEmptyID
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// RefreshAll is a no-op: the cache holds whatever the repository last
// reconciled into it.
func (s *Store) RefreshAll(ctx context.Context) error {
	return nil
}

// RefreshOne is a no-op, see RefreshAll.
func (s *Store) RefreshOne(ctx context.Context, id string) error {
	return nil
}

func wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: sqlite: %v", store.ErrUnavailable, err)
}
