// Package store defines the backend-agnostic contract for task stores.
package store

import "github.com/google/uuid"

// Task represents a single synchronized task.
// Identity and equality are by ID only.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
}

// New creates a Task with a freshly assigned id.
// The id is immutable from this point on.
func New(title, description string) Task {
	return Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
	}
}

// Validate reports whether the task may be persisted.
// A task with an empty id must never reach a store.
func (t Task) Validate() error {
	if t.ID == "" {
		return ErrEmptyID
	}
	return nil
}
