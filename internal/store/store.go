package store

import "context"

// Store defines the interface for task store operations.
// Both the remote adapters and the local cache implement it.
// The repository never imports a backend SDK directly.
type Store interface {
	// List returns the store's full current task collection.
	List(ctx context.Context) ([]Task, error)

	// Get returns the task with the given id.
	// Returns ErrNotFound if no such task exists.
	Get(ctx context.Context, id string) (Task, error)

	// Save creates the task or merges it over an existing task
	// with the same id.
	Save(ctx context.Context, t Task) error

	// SetCompleted sets the completed flag on the given task.
	SetCompleted(ctx context.Context, t Task, completed bool) error

	// SetCompletedByID sets the completed flag on the task with the
	// given id.
	SetCompletedByID(ctx context.Context, id string, completed bool) error

	// DeleteAllCompleted removes every task whose completed flag is set.
	DeleteAllCompleted(ctx context.Context) error

	// DeleteAll removes every task.
	DeleteAll(ctx context.Context) error

	// Delete removes the task with the given id.
	Delete(ctx context.Context, id string) error

	// RefreshAll re-pulls the store's backing data without returning it.
	// Stores whose backing data is already authoritative treat this as
	// a no-op; cross-store reconciliation lives in the repository.
	RefreshAll(ctx context.Context) error

	// RefreshOne re-pulls a single task without returning it.
	RefreshOne(ctx context.Context, id string) error
}
