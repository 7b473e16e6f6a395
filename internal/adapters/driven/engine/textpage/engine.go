package textpage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.Renderer = (*Engine)(nil)

const (
	// DefaultWidth and DefaultHeight size the viewport until the
	// display reports real dimensions.
	DefaultWidth  = 80
	DefaultHeight = 24

	// relocationBuffer bounds the settled-position stream. A consumer
	// that lags loses the oldest events, never the newest.
	relocationBuffer = 16
)

// Engine paginates extracted chapter text and tracks the displayed
// position. It mints vibe:// position identifiers from the spine index
// and the rune offset within the chapter, so a position survives
// re-wrapping at any viewport size.
type Engine struct {
	chapters []chapterContent

	mu          sync.Mutex
	width       int
	height      int
	spine       int
	top         int
	wrapped     []viewLine
	relocations chan domain.Relocation
	closed      bool
}

// chapterContent is one spine entry prepared for display.
type chapterContent struct {
	title string
	runes []rune
}

// PageView is one renderable window of the document.
type PageView struct {
	// ChapterTitle is the heading of the displayed chapter, possibly
	// empty.
	ChapterTitle string

	// ChapterIndex is the spine index of the displayed chapter.
	ChapterIndex int

	// ChapterCount is the number of chapters in the document.
	ChapterCount int

	// Lines holds the visible rows, at most the viewport height.
	Lines []string
}

// NewEngine creates an engine over extracted book content. Content
// with no chapters cannot be displayed at all, not even the start.
func NewEngine(content *domain.BookContent) (*Engine, error) {
	if content == nil || len(content.Chapters) == 0 {
		return nil, fmt.Errorf("%w: no chapters to display", domain.ErrInvalidBook)
	}

	chapters := make([]chapterContent, len(content.Chapters))
	for i, chapter := range content.Chapters {
		chapters[i] = chapterContent{
			title: chapter.Title,
			runes: []rune(chapter.Text),
		}
	}

	e := &Engine{
		chapters:    chapters,
		width:       DefaultWidth,
		height:      DefaultHeight,
		relocations: make(chan domain.Relocation, relocationBuffer),
	}
	e.wrapped = wrapRunes(e.chapters[0].runes, e.width)
	return e, nil
}

// Capabilities returns what this engine supports.
func (e *Engine) Capabilities() driven.RendererCapabilities {
	return driven.RendererCapabilities{
		SupportsPaginated:     true,
		SupportsScroll:        true,
		ReportsChapters:       true,
		SupportsLocationBuild: true,
	}
}

// StartPosition returns the identifier of the document start.
func (e *Engine) StartPosition() string {
	return formatPosition(0, 0)
}

// DisplayAt resolves the identifier and renders the document there.
func (e *Engine) DisplayAt(ctx context.Context, positionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	spine, offset, err := parsePosition(positionID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEngineClosed
	}

	if spine >= len(e.chapters) {
		return fmt.Errorf("%w: spine %d beyond %d chapters", domain.ErrPositionInvalid, spine, len(e.chapters))
	}
	if length := len(e.chapters[spine].runes); offset >= length && !(offset == 0 && length == 0) {
		return fmt.Errorf("%w: offset %d beyond chapter %d", domain.ErrPositionInvalid, offset, spine)
	}

	e.spine = spine
	e.rewrap(offset)
	e.emit()
	return nil
}

// CurrentPosition returns the identifier of the first visible rune.
func (e *Engine) CurrentPosition(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", domain.ErrEngineClosed
	}
	return formatPosition(e.spine, e.wrapped[e.top].start), nil
}

// Relocations returns the settled-position event stream.
func (e *Engine) Relocations() <-chan domain.Relocation {
	return e.relocations
}

// BuildLocations walks every chapter's runes once and returns the
// position of each chunkSize boundary, the document start first. A
// boundary landing exactly on a chapter end belongs to the next
// chapter's first rune.
func (e *Engine) BuildLocations(ctx context.Context, chunkSize int) ([]string, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	positions := []string{e.StartPosition()}
	global := 0
	boundary := chunkSize
	for spine := range e.chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		length := len(e.chapters[spine].runes)
		for boundary < global+length {
			positions = append(positions, formatPosition(spine, boundary-global))
			boundary += chunkSize
		}
		global += length
	}
	return positions, nil
}

// Close releases the engine. The relocation stream ends.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	close(e.relocations)
	return nil
}

// ==================== Display Control ====================

// SetViewport resizes the display window. The chapter re-wraps around
// the first visible rune, so the reading position survives a resize.
// Dimensions below one are ignored.
func (e *Engine) SetViewport(width, height int) {
	if width < 1 || height < 1 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || (width == e.width && height == e.height) {
		return
	}

	offset := e.wrapped[e.top].start
	e.width = width
	e.height = height
	e.rewrap(offset)
}

// NextPage advances one viewport, rolling into the next chapter at the
// end of the current one. Returns false at the end of the document.
func (e *Engine) NextPage() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}

	switch {
	case e.top+e.height < len(e.wrapped):
		e.top += e.height
	case e.spine+1 < len(e.chapters):
		e.spine++
		e.wrapped = wrapRunes(e.chapters[e.spine].runes, e.width)
		e.top = 0
	default:
		return false
	}
	e.emit()
	return true
}

// PrevPage goes back one viewport, rolling onto the last page of the
// previous chapter from a chapter start. Returns false at the document
// start.
func (e *Engine) PrevPage() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}

	switch {
	case e.top > 0:
		e.top -= e.height
		if e.top < 0 {
			e.top = 0
		}
	case e.spine > 0:
		e.spine--
		e.wrapped = wrapRunes(e.chapters[e.spine].runes, e.width)
		e.top = ((len(e.wrapped) - 1) / e.height) * e.height
	default:
		return false
	}
	e.emit()
	return true
}

// Scroll moves the window by delta rows, negative for up, crossing
// chapter boundaries as needed. Returns false when already at the
// edge the delta pushes toward.
func (e *Engine) Scroll(delta int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}

	moved := false
	for ; delta > 0; delta-- {
		if e.top+1 < len(e.wrapped) {
			e.top++
		} else if e.spine+1 < len(e.chapters) {
			e.spine++
			e.wrapped = wrapRunes(e.chapters[e.spine].runes, e.width)
			e.top = 0
		} else {
			break
		}
		moved = true
	}
	for ; delta < 0; delta++ {
		if e.top > 0 {
			e.top--
		} else if e.spine > 0 {
			e.spine--
			e.wrapped = wrapRunes(e.chapters[e.spine].runes, e.width)
			e.top = len(e.wrapped) - 1
		} else {
			break
		}
		moved = true
	}

	if moved {
		e.emit()
	}
	return moved
}

// Page returns the currently visible window.
func (e *Engine) Page() PageView {
	e.mu.Lock()
	defer e.mu.Unlock()

	end := e.top + e.height
	if end > len(e.wrapped) {
		end = len(e.wrapped)
	}
	lines := make([]string, 0, end-e.top)
	for _, row := range e.wrapped[e.top:end] {
		lines = append(lines, row.text)
	}
	return PageView{
		ChapterTitle: e.chapters[e.spine].title,
		ChapterIndex: e.spine,
		ChapterCount: len(e.chapters),
		Lines:        lines,
	}
}

// ==================== Internals ====================

// rewrap wraps the current chapter at the current width and lands the
// window on the row containing offset. Callers hold the lock.
func (e *Engine) rewrap(offset int) {
	e.wrapped = wrapRunes(e.chapters[e.spine].runes, e.width)
	e.top = e.rowFor(offset)
}

// rowFor returns the index of the row whose span contains the offset.
// Callers hold the lock.
func (e *Engine) rowFor(offset int) int {
	// First row whose start is past the offset; the row before it
	// contains the offset.
	i := sort.Search(len(e.wrapped), func(i int) bool {
		return e.wrapped[i].start > offset
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// emit publishes the displayed position, dropping the oldest queued
// event when the consumer lags. Callers hold the lock.
func (e *Engine) emit() {
	if e.closed {
		return
	}
	rel := domain.Relocation{
		PositionID: formatPosition(e.spine, e.wrapped[e.top].start),
		Chapter:    e.spine,
		At:         time.Now(),
	}
	for {
		select {
		case e.relocations <- rel:
			return
		default:
		}
		select {
		case <-e.relocations:
		default:
		}
	}
}
