package domain

import "time"

// ProgressRecord is the persisted reading position for a book.
// PositionID is the precise pointer; ChunkIndex and Fraction are the
// resilient approximations derived through the locations index. Any of
// the three may be absent independently.
type ProgressRecord struct {
	// BookID links to the Book this progress belongs to.
	BookID string

	// PositionID is the engine-specific position identifier at the last
	// settled position. Opaque to everything except the engine that
	// minted it. Empty means never read.
	PositionID string

	// ChunkIndex is the locations-index chunk containing the position.
	// Nil when no index was available at write time.
	ChunkIndex *int

	// Fraction is the completion fraction in [0, 1] derived from
	// ChunkIndex. Nil exactly when ChunkIndex is nil.
	Fraction *float64

	// Chapter is the spine index of the chapter being read, when the
	// engine reports one.
	Chapter *int

	// LastReadAt is the staging time of the most recent accepted write.
	// Writes carrying an older timestamp are ignored by the backend.
	LastReadAt time.Time

	// Locations is the cached locations index for the book's current
	// content, nil when none has been built yet.
	Locations *LocationsIndex
}

// HasPosition returns true if the record carries any restore target.
func (r *ProgressRecord) HasPosition() bool {
	return r.PositionID != "" || r.ChunkIndex != nil
}

// ProgressUpdate is a single write against the progress backend.
// Absent fields keep their stored values; StagedAt orders competing
// writes.
type ProgressUpdate struct {
	// BookID links to the Book being updated.
	BookID string

	// PositionID is the settled position identifier.
	PositionID string

	// ChunkIndex is the derived chunk, nil when no index was available.
	ChunkIndex *int

	// Fraction is the derived completion fraction, nil with ChunkIndex.
	Fraction *float64

	// Chapter is the spine index reported with the relocation.
	Chapter *int

	// StagedAt is when this state was observed. The backend ignores the
	// write if it already holds a newer timestamp.
	StagedAt time.Time

	// LocationsIfNew carries a freshly built locations index to cache
	// alongside the record. Nil on the overwhelming majority of writes;
	// set exactly once after a build completes.
	LocationsIfNew *LocationsIndex
}

// ClampFraction forces f into [0, 1]. NaN clamps to 0.
func ClampFraction(f float64) float64 {
	if f != f || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
