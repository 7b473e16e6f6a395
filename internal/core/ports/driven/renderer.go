package driven

import (
	"context"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

// PositionComparer orders position identifiers within one document.
// Identifiers are engine-specific; only the engine that minted them can
// compare them.
type PositionComparer interface {
	// ComparePositions returns a negative, zero, or positive value as a
	// sorts before, equal to, or after b in reading order. Returns an
	// error when either identifier cannot be parsed, which callers must
	// treat as "not resolvable", never as a crash.
	ComparePositions(a, b string) (int, error)
}

// Renderer is the rendering engine the core drives: it owns document
// content, display, and the position identifier scheme. Position
// identifiers are opaque strings everywhere outside the engine.
type Renderer interface {
	PositionComparer

	// Capabilities returns what this engine supports.
	Capabilities() RendererCapabilities

	// StartPosition returns the identifier of the document start.
	// Always resolvable while the engine is open.
	StartPosition() string

	// DisplayAt resolves the identifier and renders the document there,
	// in one step. Returns domain.ErrPositionInvalid when the
	// identifier cannot be resolved against the current content (stale,
	// malformed, out of range).
	DisplayAt(ctx context.Context, positionID string) error

	// CurrentPosition returns the identifier of the position currently
	// displayed.
	CurrentPosition(ctx context.Context) (string, error)

	// Relocations returns the settled-position event stream. The engine
	// drops events rather than block when the consumer lags; the stream
	// stays open until Close.
	Relocations() <-chan domain.Relocation

	// BuildLocations partitions the full document content into
	// chunkSize-character chunks in one linear pass and returns the
	// position identifier of each chunk boundary, monotonically
	// increasing, first element the document start. Expensive for large
	// documents; callers keep it off the interactive path.
	BuildLocations(ctx context.Context, chunkSize int) ([]string, error)

	// Close releases the engine. The relocation stream ends.
	Close() error
}

// RendererCapabilities describes what a rendering engine supports.
type RendererCapabilities struct {
	// SupportsPaginated indicates discrete page navigation.
	SupportsPaginated bool

	// SupportsScroll indicates continuous scrolling.
	SupportsScroll bool

	// ReportsChapters indicates relocations carry a spine index.
	ReportsChapters bool

	// SupportsLocationBuild indicates BuildLocations is implemented.
	// Without it, fractional progress is never available.
	SupportsLocationBuild bool
}
