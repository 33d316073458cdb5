package service

import "errors"

var (
	// ErrNotFound is returned when an operation targets a nonexistent document.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a name matches more than one list.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrRemoteUnavailable wraps network or service failures of the remote store.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrCacheCorrupt marks a cache entry that failed to parse. Store reads
	// recover from it by re-deriving from the remote store.
	ErrCacheCorrupt = errors.New("cache entry corrupt")

	// ErrInvalid is returned when input fails validation.
	ErrInvalid = errors.New("invalid input")

	// ErrInvalidParent is returned when a parent task would break the
	// one-level hierarchy.
	ErrInvalidParent = errors.New("invalid parent task")

	// ErrNoTaskLists is returned when no task list exists to operate on.
	ErrNoTaskLists = errors.New("no task lists")

	// ErrNothingToUndo is returned by Undo on an empty log.
	ErrNothingToUndo = errors.New("nothing to undo")
)
