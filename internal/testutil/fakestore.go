// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"tasksync/internal/store"
)

// Calls counts how many times each store operation was invoked.
type Calls struct {
	List               int
	Get                int
	Save               int
	SetCompleted       int
	SetCompletedByID   int
	DeleteAllCompleted int
	DeleteAll          int
	Delete             int
	RefreshAll         int
	RefreshOne         int
}

// Total returns the sum of all operation counts.
func (c Calls) Total() int {
	return c.List + c.Get + c.Save + c.SetCompleted + c.SetCompletedByID +
		c.DeleteAllCompleted + c.DeleteAll + c.Delete + c.RefreshAll + c.RefreshOne
}

// FakeStore is an in-memory implementation of store.Store for testing.
// It keeps tasks in insertion order, counts every invocation and
// supports per-method error injection.
type FakeStore struct {
	mu    sync.RWMutex
	tasks []store.Task
	calls Calls

	// Error injection for testing
	ListErr               error
	GetErr                error
	SaveErr               error
	SetCompletedErr       error
	DeleteAllCompletedErr error
	DeleteAllErr          error
	DeleteErr             error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Seed replaces the store's contents without counting as an operation.
func (f *FakeStore) Seed(tasks ...store.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append([]store.Task(nil), tasks...)
}

// Snapshot returns a copy of the current contents in order.
func (f *FakeStore) Snapshot() []store.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]store.Task(nil), f.tasks...)
}

// Calls returns a copy of the invocation counters.
func (f *FakeStore) Calls() Calls {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls
}

// List implements store.Store.
func (f *FakeStore) List(ctx context.Context) ([]store.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.List++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]store.Task(nil), f.tasks...), nil
}

// Get implements store.Store.
func (f *FakeStore) Get(ctx context.Context, id string) (store.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Get++
	if f.GetErr != nil {
		return store.Task{}, f.GetErr
	}
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return store.Task{}, store.ErrNotFound
}

// Save implements store.Store.
func (f *FakeStore) Save(ctx context.Context, t store.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Save++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	if err := t.Validate(); err != nil {
		return err
	}
	for i, existing := range f.tasks {
		if existing.ID == t.ID {
			f.tasks[i] = t
			return nil
		}
	}
	f.tasks = append(f.tasks, t)
	return nil
}

// SetCompleted implements store.Store.
func (f *FakeStore) SetCompleted(ctx context.Context, t store.Task, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.SetCompleted++
	if f.SetCompletedErr != nil {
		return f.SetCompletedErr
	}
	return f.setCompletedLocked(t.ID, completed)
}

// SetCompletedByID implements store.Store.
func (f *FakeStore) SetCompletedByID(ctx context.Context, id string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.SetCompletedByID++
	if f.SetCompletedErr != nil {
		return f.SetCompletedErr
	}
	return f.setCompletedLocked(id, completed)
}

func (f *FakeStore) setCompletedLocked(id string, completed bool) error {
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Completed = completed
			return nil
		}
	}
	return store.ErrNotFound
}

// DeleteAllCompleted implements store.Store.
func (f *FakeStore) DeleteAllCompleted(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.DeleteAllCompleted++
	if f.DeleteAllCompletedErr != nil {
		return f.DeleteAllCompletedErr
	}
	var remaining []store.Task
	for _, t := range f.tasks {
		if !t.Completed {
			remaining = append(remaining, t)
		}
	}
	f.tasks = remaining
	return nil
}

// DeleteAll implements store.Store.
func (f *FakeStore) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.DeleteAll++
	if f.DeleteAllErr != nil {
		return f.DeleteAllErr
	}
	f.tasks = nil
	return nil
}

// Delete implements store.Store.
func (f *FakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Delete++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

// RefreshAll implements store.Store.
func (f *FakeStore) RefreshAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.RefreshAll++
	return nil
}

// RefreshOne implements store.Store.
func (f *FakeStore) RefreshOne(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.RefreshOne++
	return nil
}
