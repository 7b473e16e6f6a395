package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Import returns this when a book with the same content hash is present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidBook indicates a file is not a readable EPUB container.
	ErrInvalidBook = errors.New("invalid book file")

	// Position Tracking Errors.

	// ErrPositionInvalid indicates a position identifier the rendering
	// engine cannot resolve against the current document content.
	// Recovery treats this as a fallthrough, not a failure.
	ErrPositionInvalid = errors.New("position not resolvable")

	// ErrRecoveryFailed indicates no restore target worked, including the
	// document start. The document cannot be displayed at all.
	ErrRecoveryFailed = errors.New("position recovery failed")

	// ErrSessionClosed indicates an operation on a closed reader session.
	ErrSessionClosed = errors.New("reader session closed")

	// ErrEngineClosed indicates the rendering engine has been closed.
	ErrEngineClosed = errors.New("rendering engine closed")

	// Backend Errors.

	// ErrBackendUnavailable indicates the progress backend cannot be
	// reached. Reads fall back to start-of-document semantics; writes are
	// retried on the next navigation event.
	ErrBackendUnavailable = errors.New("progress backend unavailable")

	// ErrStaleWrite indicates a progress write carried a timestamp at or
	// before the stored one and was ignored by the backend.
	ErrStaleWrite = errors.New("stale progress write")

	// ErrWatcherClosed indicates the library watcher has been closed.
	ErrWatcherClosed = errors.New("library watcher closed")
)
