package store

import "testing"

func TestNewAssignsID(t *testing.T) {
	a := New("Buy milk", "two liters")
	b := New("Buy milk", "two liters")

	if a.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if a.ID == b.ID {
		t.Errorf("expected distinct ids, both got %q", a.ID)
	}
	if a.Title != "Buy milk" || a.Description != "two liters" {
		t.Errorf("unexpected fields: %+v", a)
	}
	if a.Completed {
		t.Error("new task should not be completed")
	}
}

func TestValidate(t *testing.T) {
	if err := (Task{ID: "1"}).Validate(); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := (Task{Title: "no id"}).Validate(); err != ErrEmptyID {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}
