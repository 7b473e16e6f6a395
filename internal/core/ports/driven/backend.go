package driven

import (
	"context"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

// ProgressBackend persists reading progress. Local SQLite and the
// remote sync API both implement it; the core never knows which one it
// is talking to.
type ProgressBackend interface {
	// ReadProgress retrieves the progress record for a book, including
	// the cached locations index when one exists. A book that exists
	// but has never been read yields a record with no position, not an
	// error. Returns domain.ErrNotFound for an unknown book.
	ReadProgress(ctx context.Context, bookID string) (*domain.ProgressRecord, error)

	// WriteProgress applies a single progress update. Backends compare
	// upd.StagedAt against the stored timestamp and ignore older
	// writes, returning domain.ErrStaleWrite; this is what makes
	// out-of-order write completion harmless.
	WriteProgress(ctx context.Context, upd domain.ProgressUpdate) error

	// DeleteProgress removes the record and cached locations index for
	// a book. Deleting a record that does not exist is not an error;
	// the record lives and dies with the book itself.
	DeleteProgress(ctx context.Context, bookID string) error
}
