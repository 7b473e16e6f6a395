package driving

import (
	"context"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// ProgressService inspects and maintains stored reading progress
// outside of a live reader session.
type ProgressService interface {
	// Progress returns the stored record for a book, including the
	// cached locations index when one exists. Returns
	// domain.ErrNotFound for an unknown book.
	Progress(ctx context.Context, bookID string) (*domain.ProgressRecord, error)

	// ClearProgress removes the stored record and cached index. The
	// book itself is untouched.
	ClearProgress(ctx context.Context, bookID string) error

	// RebuildLocations builds a fresh locations index through the given
	// engine, synchronously, and persists it without moving the stored
	// reading position.
	RebuildLocations(ctx context.Context, bookID string, renderer driven.Renderer) (*domain.LocationsIndex, error)
}
