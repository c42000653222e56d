package repo

import (
	"context"
	"fmt"
	"sync"

	"tasksync/internal/store"
)

// WriteError reports a fan-out write that failed on at least one
// store. Exactly the failed sides carry a non-nil error; the side
// that succeeded is not rolled back.
type WriteError struct {
	Op     string
	Remote error
	Local  error
}

func (e *WriteError) Error() string {
	switch {
	case e.Remote != nil && e.Local != nil:
		return fmt.Sprintf("%s failed on both stores: remote: %v; local: %v", e.Op, e.Remote, e.Local)
	case e.Remote != nil:
		return fmt.Sprintf("%s failed on remote store: %v", e.Op, e.Remote)
	default:
		return fmt.Sprintf("%s failed on local store: %v", e.Op, e.Local)
	}
}

// Unwrap exposes the per-side errors to errors.Is / errors.As.
func (e *WriteError) Unwrap() []error {
	var errs []error
	if e.Remote != nil {
		errs = append(errs, e.Remote)
	}
	if e.Local != nil {
		errs = append(errs, e.Local)
	}
	return errs
}

// Save propagates the task to both stores.
func (r *Repository) Save(ctx context.Context, t store.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return r.fanOut(ctx, "save", func(ctx context.Context, s store.Store) error {
		return s.Save(ctx, t)
	})
}

// SetCompleted sets the completed flag on the given task in both stores.
func (r *Repository) SetCompleted(ctx context.Context, t store.Task, completed bool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return r.fanOut(ctx, "set completed", func(ctx context.Context, s store.Store) error {
		return s.SetCompleted(ctx, t, completed)
	})
}

// SetCompletedByID resolves the task from the local store, then
// delegates to the task form.
func (r *Repository) SetCompletedByID(ctx context.Context, id string, completed bool) error {
	t, err := r.local.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.SetCompleted(ctx, t, completed)
}

// ClearCompleted removes completed tasks from both stores. Each store
// applies its own elimination logic against its own current state;
// the two runs are not coordinated and may diverge under a concurrent
// completion race until the next refresh.
func (r *Repository) ClearCompleted(ctx context.Context) error {
	return r.fanOut(ctx, "clear completed", func(ctx context.Context, s store.Store) error {
		return s.DeleteAllCompleted(ctx)
	})
}

// DeleteAll empties both stores.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.fanOut(ctx, "delete all", func(ctx context.Context, s store.Store) error {
		return s.DeleteAll(ctx)
	})
}

// Delete removes the task with the given id from both stores.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrEmptyID
	}
	return r.fanOut(ctx, "delete", func(ctx context.Context, s store.Store) error {
		return s.Delete(ctx, id)
	})
}

// fanOut runs the operation on both stores concurrently and waits for
// both to settle. Either side may fail independently; a *WriteError
// distinguishes which did. The successful side keeps its write.
func (r *Repository) fanOut(ctx context.Context, op string, fn func(context.Context, store.Store) error) error {
	var (
		wg                  sync.WaitGroup
		remoteErr, localErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		remoteErr = fn(ctx, r.remote)
	}()
	go func() {
		defer wg.Done()
		localErr = fn(ctx, r.local)
	}()
	wg.Wait()

	if localErr == nil {
		// Local state changed even if the remote side failed.
		r.notify()
	}

	if remoteErr == nil && localErr == nil {
		return nil
	}
	return &WriteError{Op: op, Remote: remoteErr, Local: localErr}
}
