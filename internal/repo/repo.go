// Package repo implements the task repository that reconciles a slow
// remote store with a fast local cache behind one read/write API.
package repo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"tasksync/internal/store"
)

// Repository owns one remote and one local store for its lifetime.
// Reads are always served from the local store; the remote store is
// only consulted during a refresh, whose result is written into the
// local store before being re-read.
type Repository struct {
	remote store.Store
	local  store.Store
	log    *slog.Logger

	// Concurrent refresh callers share one in-flight reconciliation.
	flights singleflight.Group

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// New creates a repository over the given stores. A nil logger falls
// back to slog.Default().
func New(remote, local store.Store, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{
		remote: remote,
		local:  local,
		log:    log,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Tasks returns the current task collection from the local store.
//
// With forceRefresh set, a full refresh runs first. A refresh failure
// is logged and swallowed, and the read proceeds against whatever the
// local store holds; callers that need the failure call RefreshAll
// directly. Silent degradation to cached data on a failed forced
// refresh mirrors pull-to-refresh UX and is intentional.
func (r *Repository) Tasks(ctx context.Context, forceRefresh bool) ([]store.Task, error) {
	if forceRefresh {
		if err := r.RefreshAll(ctx); err != nil {
			r.log.Warn("task refresh failed, serving cached tasks", "err", err)
		}
	}
	return r.local.List(ctx)
}

// TaskByID returns one task from the local store, optionally
// refreshing it from the remote first. Like Tasks, a refresh failure
// is logged and swallowed.
func (r *Repository) TaskByID(ctx context.Context, id string, forceRefresh bool) (store.Task, error) {
	if id == "" {
		return store.Task{}, store.ErrEmptyID
	}
	if forceRefresh {
		if err := r.RefreshOne(ctx, id); err != nil {
			r.log.Warn("task refresh failed, serving cached task", "id", id, "err", err)
		}
	}
	return r.local.Get(ctx, id)
}

// RefreshAll replaces the local store's contents with the full remote
// snapshot: remote list, local delete-all, then one local save per
// task in snapshot order.
//
// The replacement is not atomic. A failure partway through leaves the
// local store torn (truncated or partially repopulated) and no prior
// snapshot is restored; the error reports how far it got.
//
// Concurrent callers coalesce onto a single flight running on a
// detached context: cancelling ctx abandons the await, but the flight
// completes and its result still lands in the local store.
func (r *Repository) RefreshAll(ctx context.Context) error {
	ch := r.flights.DoChan("all", func() (interface{}, error) {
		return nil, r.refreshAll(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		// Flight keeps running; a late result is applied to the
		// local store and discarded here.
		return ctx.Err()
	}
}

func (r *Repository) refreshAll(ctx context.Context) error {
	snapshot, err := r.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("remote snapshot: %w", err)
	}

	if err := r.local.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing local store: %w", err)
	}

	for i, t := range snapshot {
		if err := r.local.Save(ctx, t); err != nil {
			return fmt.Errorf("repopulating local store (%d of %d applied): %w",
				i, len(snapshot), err)
		}
	}

	r.notify()
	return nil
}

// RefreshOne fetches one task from the remote store and upserts it
// into the local store. Callers coalesce per id the same way
// RefreshAll coalesces globally.
func (r *Repository) RefreshOne(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrEmptyID
	}

	ch := r.flights.DoChan("one:"+id, func() (interface{}, error) {
		return nil, r.refreshOne(context.WithoutCancel(ctx), id)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Repository) refreshOne(ctx context.Context, id string) error {
	t, err := r.remote.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("remote task %s: %w", id, err)
	}

	if err := r.local.Save(ctx, t); err != nil {
		return fmt.Errorf("caching task %s: %w", id, err)
	}

	r.notify()
	return nil
}
