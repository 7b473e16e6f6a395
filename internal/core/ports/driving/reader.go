package driving

import (
	"context"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// PositionUpdate is a live progress notification delivered as positions
// settle. ChunkIndex and Fraction are nil while no locations index is
// available.
type PositionUpdate struct {
	// PositionID is the settled engine position.
	PositionID string

	// ChunkIndex is the derived locations chunk, nil without an index.
	ChunkIndex *int

	// Fraction is the derived completion fraction, nil with ChunkIndex.
	Fraction *float64

	// Chapter is the spine index, -1 when the engine does not report one.
	Chapter int
}

// PositionSettledFunc receives live position updates. Called from the
// session's tracking goroutine; implementations must not block.
type PositionSettledFunc func(update PositionUpdate)

// ReaderService opens books for reading, restoring the last position.
type ReaderService interface {
	// OpenForReading runs position recovery for the book against the
	// given rendering engine and returns a tracking session. The
	// renderer ends up displaying the best restorable position; the
	// only fatal failure is being unable to display even the document
	// start (domain.ErrRecoveryFailed).
	OpenForReading(ctx context.Context, bookID string, renderer driven.Renderer) (ReaderSession, error)
}

// ReaderSession is one open book: it watches the engine's relocations
// and persists them, debounced and ordered, until closed.
type ReaderSession interface {
	// Book returns the book being read.
	Book() *domain.Book

	// State returns the current session state.
	State() domain.RecoveryState

	// Progress returns the most recently settled position.
	Progress() PositionUpdate

	// OnPositionSettled registers a callback invoked on every settled
	// position. Safe to call at any point in the session lifetime.
	OnPositionSettled(fn PositionSettledFunc)

	// Close flushes any pending progress write, stops tracking, and
	// releases the session. The renderer itself stays open; the caller
	// owns it.
	Close() error
}
