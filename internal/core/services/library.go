package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages the book catalogue: import, lookup, and
// removal. The stored file is keyed by content hash, so the catalogue
// never holds two copies of the same bytes.
type LibraryService struct {
	books   driven.BookStore
	backend driven.ProgressBackend
	parser  driven.BookParser
	archive driven.BookArchive
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	books driven.BookStore,
	backend driven.ProgressBackend,
	parser driven.BookParser,
	archive driven.BookArchive,
) *LibraryService {
	return &LibraryService{
		books:   books,
		backend: backend,
		parser:  parser,
		archive: archive,
	}
}

// Import adds an EPUB to the library. The file is fingerprinted first:
// content already in the library is rejected with
// domain.ErrAlreadyExists before any parsing or copying happens.
func (s *LibraryService) Import(ctx context.Context, path string) (*domain.Book, error) {
	hash, size, err := s.archive.Fingerprint(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if existing, err := s.books.GetBookByHash(ctx, hash); err == nil {
		return nil, fmt.Errorf("%w: identical content already imported as %q",
			domain.ErrAlreadyExists, existing.Title)
	}

	content, err := s.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	storedPath, err := s.archive.StoreBook(path, hash)
	if err != nil {
		return nil, fmt.Errorf("storing book: %w", err)
	}

	coverPath := ""
	if content.Cover != nil {
		coverPath, err = s.archive.StoreCover(hash, content.Cover)
		if err != nil {
			// A book without its cover is still a book.
			logger.Warn("Storing cover for %s failed: %v", filepath.Base(path), err)
			coverPath = ""
		}
	}

	now := time.Now()
	book := &domain.Book{
		ID:          uuid.New().String(),
		Title:       bookTitle(content.Metadata.Title, path),
		Author:      content.Metadata.Author,
		Publisher:   content.Metadata.Publisher,
		Language:    content.Metadata.Language,
		Description: content.Metadata.Description,
		ISBN:        content.Metadata.ISBN,
		FilePath:    storedPath,
		FileSize:    size,
		FileHash:    hash,
		CoverPath:   coverPath,
		ImportedAt:  now,
		UpdatedAt:   now,
	}

	if err := s.books.SaveBook(ctx, book); err != nil {
		// Do not leave orphaned files behind a failed import.
		//nolint:errcheck // Intentionally ignore errors to continue cleanup
		_ = s.archive.Remove(storedPath)
		if coverPath != "" {
			//nolint:errcheck // Intentionally ignore errors to continue cleanup
			_ = s.archive.Remove(coverPath)
		}
		return nil, fmt.Errorf("saving book: %w", err)
	}

	logger.Info("Imported %q (%d chapters, %d bytes)", book.Title, len(content.Chapters), size)
	return book, nil
}

// bookTitle prefers the declared metadata title, falling back to the
// source filename.
func bookTitle(declared, path string) string {
	if declared != "" {
		return declared
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// List returns all books, most recently imported first.
func (s *LibraryService) List(ctx context.Context) ([]domain.Book, error) {
	return s.books.ListBooks(ctx)
}

// Get retrieves a book by ID.
func (s *LibraryService) Get(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.GetBook(ctx, id)
}

// Find resolves a book reference: exact ID, unambiguous ID prefix,
// then case-insensitive title match.
func (s *LibraryService) Find(ctx context.Context, ref string) (*domain.Book, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty book reference", domain.ErrInvalidInput)
	}

	if book, err := s.books.GetBook(ctx, ref); err == nil {
		return book, nil
	}

	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*domain.Book
	for i := range books {
		if strings.HasPrefix(books[i].ID, ref) {
			matches = append(matches, &books[i])
		}
	}
	if len(matches) == 0 {
		lower := strings.ToLower(ref)
		for i := range books {
			if strings.Contains(strings.ToLower(books[i].Title), lower) {
				matches = append(matches, &books[i])
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no book matches %q", domain.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d books", domain.ErrInvalidInput, ref, len(matches))
	}
}

// Delete removes a book, its stored files, and its progress record.
func (s *LibraryService) Delete(ctx context.Context, id string) error {
	book, err := s.books.GetBook(ctx, id)
	if err != nil {
		return err
	}

	// Cleanup: progress record, stored files, then the catalogue row.
	if s.backend != nil {
		//nolint:errcheck // Intentionally ignore errors to continue cleanup
		_ = s.backend.DeleteProgress(ctx, id)
	}
	if book.FilePath != "" {
		//nolint:errcheck // Intentionally ignore errors to continue cleanup
		_ = s.archive.Remove(book.FilePath)
	}
	if book.CoverPath != "" {
		//nolint:errcheck // Intentionally ignore errors to continue cleanup
		_ = s.archive.Remove(book.CoverPath)
	}
	return s.books.DeleteBook(ctx, id)
}

// Content parses the stored file and returns the full extracted
// content.
func (s *LibraryService) Content(ctx context.Context, id string) (*domain.BookContent, error) {
	return s.contentFor(ctx, id)
}

// Chapters lists the spine entries of a book.
func (s *LibraryService) Chapters(ctx context.Context, id string) ([]driving.ChapterInfo, error) {
	content, err := s.contentFor(ctx, id)
	if err != nil {
		return nil, err
	}

	infos := make([]driving.ChapterInfo, len(content.Chapters))
	for i := range content.Chapters {
		title := content.Chapters[i].Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		infos[i] = driving.ChapterInfo{Index: i, Title: title}
	}
	return infos, nil
}

// ChapterText returns the plain text of one spine entry.
func (s *LibraryService) ChapterText(ctx context.Context, id string, chapter int) (string, error) {
	content, err := s.contentFor(ctx, id)
	if err != nil {
		return "", err
	}

	if chapter < 0 || chapter >= len(content.Chapters) {
		return "", fmt.Errorf("%w: chapter %d of %d", domain.ErrInvalidInput, chapter, len(content.Chapters))
	}
	return content.Chapters[chapter].Text, nil
}

// contentFor parses the stored file of a book.
func (s *LibraryService) contentFor(ctx context.Context, id string) (*domain.BookContent, error) {
	book, err := s.books.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.parser.ParseFile(ctx, book.FilePath)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", book.Title, err)
	}
	return content, nil
}

// Watch imports every file the watcher reports until the context is
// cancelled or the stream ends. Duplicates are skipped quietly; other
// import failures are logged and do not stop the watch.
func (s *LibraryService) Watch(ctx context.Context, watcher driven.ImportWatcher) error {
	events, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			book, err := s.Import(ctx, event.Path)
			switch {
			case errors.Is(err, domain.ErrAlreadyExists):
				logger.Debug("Skipping %s: already in library", event.Path)
			case err != nil:
				logger.Warn("Import of %s failed: %v", event.Path, err)
			default:
				logger.Info("Imported %q from watch directory", book.Title)
			}
		}
	}
}
