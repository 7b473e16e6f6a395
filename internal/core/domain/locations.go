package domain

import "time"

// DefaultChunkSize is the number of characters per location chunk.
// The historic default for EPUB location generation; changing it
// invalidates nothing (indexes carry their own chunk size) but new
// builds use it.
const DefaultChunkSize = 1600

// LocationsIndex partitions a book's content into fixed-size chunks and
// records the position identifier of each chunk boundary, in reading
// order. It is the bridge between precise engine positions and stable
// fractional progress: the index is immutable for a given content hash
// and chunk size.
type LocationsIndex struct {
	// BookID links to the Book the index was built for.
	BookID string

	// ContentHash is the SHA-256 of the content the index was built
	// from. An index is only ever used for matching content.
	ContentHash string

	// ChunkSize is the character count per chunk used by the build.
	ChunkSize int

	// Positions holds one position identifier per chunk boundary,
	// monotonically increasing in reading order. Positions[0] is the
	// document start. Empty means the build failed or never ran:
	// fractional tracking is simply unavailable.
	Positions []string

	// BuiltAt is when the build completed.
	BuiltAt time.Time
}

// Len returns the number of chunk boundaries.
func (x *LocationsIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.Positions)
}

// IsEmpty returns true for a nil or zero-boundary index.
func (x *LocationsIndex) IsEmpty() bool {
	return x.Len() == 0
}

// Matches returns true if the index was built from content with the
// given hash. A stale index never matches; it must be rebuilt, not
// reinterpreted.
func (x *LocationsIndex) Matches(contentHash string) bool {
	return x != nil && contentHash != "" && x.ContentHash == contentHash
}
