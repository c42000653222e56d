package sqlite

import (
	"context"
	"errors"
	"testing"

	"tasksync/internal/store"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustSave(t *testing.T, s *Store, tasks ...store.Task) {
	t.Helper()
	for _, task := range tasks {
		if err := s.Save(context.Background(), task); err != nil {
			t.Fatalf("failed to save %s: %v", task.ID, err)
		}
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	want := store.Task{ID: "1", Title: "A", Description: "details", Completed: true}
	mustSave(t, s, want)

	got, err := s.Get(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveRejectsEmptyID(t *testing.T) {
	s := openStore(t)

	err := s.Save(context.Background(), store.Task{Title: "no id"})
	if !errors.Is(err, store.ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	s := openStore(t)
	mustSave(t, s,
		store.Task{ID: "b", Title: "second"},
		store.Task{ID: "a", Title: "first"},
		store.Task{ID: "c", Title: "third"},
	)

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"b", "a", "c"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d tasks, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("position %d: expected id %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestSaveMergesByID(t *testing.T) {
	s := openStore(t)
	mustSave(t, s,
		store.Task{ID: "1", Title: "old"},
		store.Task{ID: "2", Title: "B"},
	)
	mustSave(t, s, store.Task{ID: "1", Title: "new", Completed: true})

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("merge must not add a row, got %d tasks", len(got))
	}
	// Merged row keeps its position.
	if got[0].ID != "1" || got[0].Title != "new" || !got[0].Completed {
		t.Errorf("unexpected merged row: %+v", got[0])
	}
}

func TestSetCompletedByID(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	mustSave(t, s, store.Task{ID: "1", Title: "A"})

	if err := s.SetCompletedByID(ctx, "1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := s.Get(ctx, "1")
	if !got.Completed {
		t.Error("expected completed flag set")
	}

	if err := s.SetCompletedByID(ctx, "1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.Get(ctx, "1")
	if got.Completed {
		t.Error("expected completed flag cleared")
	}

	if err := s.SetCompletedByID(ctx, "missing", true); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAllCompleted(t *testing.T) {
	s := openStore(t)
	mustSave(t, s,
		store.Task{ID: "1", Title: "A", Completed: false},
		store.Task{ID: "2", Title: "B", Completed: true},
		store.Task{ID: "3", Title: "C", Completed: true},
	)

	if err := s.DeleteAllCompleted(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.List(context.Background())
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("expected only the active task to survive, got %+v", got)
	}
}

func TestDeleteAll(t *testing.T) {
	s := openStore(t)
	mustSave(t, s, store.Task{ID: "1"}, store.Task{ID: "2"})

	if err := s.DeleteAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.List(context.Background())
	if len(got) != 0 {
		t.Errorf("expected empty store, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	mustSave(t, s, store.Task{ID: "1"}, store.Task{ID: "2"})

	if err := s.Delete(ctx, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, "1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected deleted task to be gone, got %v", err)
	}

	// Deleting an absent id is not an error.
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := s.Delete(ctx, ""); !errors.Is(err, store.ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	mustSave(t, s, store.Task{ID: "1", Title: "A"})
	if err := s.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "A" {
		t.Errorf("expected persisted task, got %+v", got)
	}
}
