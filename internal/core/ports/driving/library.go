package driving

import (
	"context"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// ChapterInfo identifies one spine entry for display.
type ChapterInfo struct {
	// Index is the spine position, starting at 0.
	Index int

	// Title is the chapter heading, best effort.
	Title string
}

// LibraryService manages the book catalogue.
type LibraryService interface {
	// Import adds an EPUB to the library: hashes the file, rejects
	// duplicates (domain.ErrAlreadyExists), stores a copy under the
	// library directory, and extracts metadata and cover.
	Import(ctx context.Context, path string) (*domain.Book, error)

	// List returns all books, most recently imported first.
	List(ctx context.Context) ([]domain.Book, error)

	// Get retrieves a book by ID.
	Get(ctx context.Context, id string) (*domain.Book, error)

	// Find resolves a book by ID, unambiguous ID prefix, or
	// case-insensitive title match, in that order.
	Find(ctx context.Context, ref string) (*domain.Book, error)

	// Delete removes a book: record, stored file, cover, progress, and
	// cached locations index.
	Delete(ctx context.Context, id string) error

	// Content parses the stored file and returns the full extracted
	// content: metadata, chapters, cover. This is what a rendering
	// engine is built over.
	Content(ctx context.Context, id string) (*domain.BookContent, error)

	// Chapters lists the spine entries of a book.
	Chapters(ctx context.Context, id string) ([]ChapterInfo, error)

	// ChapterText returns the plain text of one spine entry.
	ChapterText(ctx context.Context, id string, chapter int) (string, error)

	// Watch consumes the watcher's event stream and imports each
	// settled file, skipping duplicates quietly. Blocks until ctx is
	// cancelled or the stream ends.
	Watch(ctx context.Context, watcher driven.ImportWatcher) error
}
