package store

import "errors"

var (
	// ErrNotFound is returned by Get, and by single-task writes on backends
	// that can detect absence, when no task with the given id exists.
	ErrNotFound = errors.New("task not found")

	// ErrUnavailable is returned when the store's backend cannot be reached
	// or rejects the request for transport-level reasons.
	ErrUnavailable = errors.New("store unavailable")

	// ErrEmptyID is returned when a task with an empty id is about to be
	// persisted or deleted by id.
	ErrEmptyID = errors.New("task id is empty")
)
