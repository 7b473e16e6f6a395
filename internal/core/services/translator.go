package services

import (
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// Translator converts between engine position identifiers and
// locations-index coordinates. It is pure lookup over an immutable
// index: every conversion either succeeds or answers false. A failed
// lookup is an expected condition (stale identifier, no index yet),
// never an error.
//
// The completion fraction is chunk-index-proportional: boundary i of n
// maps to i/(n-1). The boundaries are the only calibrated points the
// index has; interpolating inside a chunk would invent precision.
type Translator struct {
	index *domain.LocationsIndex
	cmp   driven.PositionComparer
}

// NewTranslator creates a translator over the given index. A nil or
// empty index, or a nil comparer, yields a translator that answers
// false to everything.
func NewTranslator(index *domain.LocationsIndex, cmp driven.PositionComparer) *Translator {
	return &Translator{index: index, cmp: cmp}
}

// Ready returns true if the translator can answer lookups at all.
// Nil-safe so callers can hold "no translator yet" as nil.
func (t *Translator) Ready() bool {
	return t != nil && t.cmp != nil && !t.index.IsEmpty()
}

// ChunkFromPosition returns the index of the last chunk boundary at or
// before the position, the chunk that contains it. Answers false for
// an identifier the comparer cannot order, an identifier sorting
// before the document start, or a translator that is not ready.
func (t *Translator) ChunkFromPosition(positionID string) (int, bool) {
	if !t.Ready() || positionID == "" {
		return 0, false
	}

	positions := t.index.Positions
	found := -1
	lo, hi := 0, len(positions)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		order, err := t.cmp.ComparePositions(positions[mid], positionID)
		if err != nil {
			return 0, false
		}
		if order <= 0 {
			found = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if found < 0 {
		// Sorts before the first boundary: the index does not cover it.
		return 0, false
	}
	return found, true
}

// FractionFromPosition returns the completion fraction for a position.
// The first boundary maps to 0.0 and the last to 1.0.
func (t *Translator) FractionFromPosition(positionID string) (float64, bool) {
	chunk, ok := t.ChunkFromPosition(positionID)
	if !ok {
		return 0, false
	}
	return t.FractionFromChunk(chunk)
}

// FractionFromChunk returns the completion fraction for a chunk index.
func (t *Translator) FractionFromChunk(chunk int) (float64, bool) {
	if !t.Ready() || chunk < 0 || chunk >= t.index.Len() {
		return 0, false
	}
	n := t.index.Len()
	if n == 1 {
		// One boundary covers the whole document.
		return 0, true
	}
	return domain.ClampFraction(float64(chunk) / float64(n-1)), true
}

// PositionFromChunk returns the position identifier of a chunk
// boundary. Answers false for an out-of-range index.
func (t *Translator) PositionFromChunk(chunk int) (string, bool) {
	if !t.Ready() || chunk < 0 || chunk >= t.index.Len() {
		return "", false
	}
	return t.index.Positions[chunk], true
}
