package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/storage/memory"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

type libraryHarness struct {
	store   *memory.BookStore
	backend *fakeBackend
	parser  *fakeParser
	archive *fakeArchive
	svc     *LibraryService
}

func newLibraryHarness() *libraryHarness {
	h := &libraryHarness{
		store:   memory.NewBookStore(),
		backend: newFakeBackend(),
		parser:  newFakeParser(),
		archive: newFakeArchive(),
	}
	h.svc = NewLibraryService(h.store, h.backend, h.parser, h.archive)
	return h
}

// addImportable scripts one parseable EPUB at path.
func (h *libraryHarness) addImportable(path, hash string, content *domain.BookContent) {
	h.archive.addFile(path, hash, 4096)
	h.parser.script(path, content)
}

func sampleContent(title string) *domain.BookContent {
	return &domain.BookContent{
		Metadata: domain.BookMetadata{
			Title:    title,
			Author:   "Ann Author",
			Language: "en",
		},
		Chapters: []domain.Chapter{
			{Title: "One", Text: "First chapter text."},
			{Title: "", Text: "Second chapter text."},
		},
		Cover: &domain.CoverImage{Name: "cover.jpg", Data: []byte{0xFF, 0xD8}},
	}
}

func TestLibraryService_Import(t *testing.T) {
	h := newLibraryHarness()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))

	book, err := h.svc.Import(context.Background(), "/drop/novel.epub")

	require.NoError(t, err)
	require.NotNil(t, book)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "A Novel", book.Title)
	assert.Equal(t, "Ann Author", book.Author)
	assert.Equal(t, "h1", book.FileHash)
	assert.Equal(t, int64(4096), book.FileSize)
	assert.Equal(t, "/library/h1.epub", book.FilePath)
	assert.Equal(t, "/library/covers/h1.jpg", book.CoverPath)
	assert.False(t, book.ImportedAt.IsZero())

	stored, err := h.store.GetBookByHash(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, book.ID, stored.ID)
}

func TestLibraryService_Import_TitleFallsBackToFilename(t *testing.T) {
	h := newLibraryHarness()
	content := sampleContent("")
	content.Cover = nil
	h.addImportable("/drop/My Novel.epub", "h1", content)

	book, err := h.svc.Import(context.Background(), "/drop/My Novel.epub")

	require.NoError(t, err)
	assert.Equal(t, "My Novel", book.Title)
	assert.Empty(t, book.CoverPath)
}

func TestLibraryService_Import_DuplicateContentRejected(t *testing.T) {
	h := newLibraryHarness()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))
	_, err := h.svc.Import(context.Background(), "/drop/novel.epub")
	require.NoError(t, err)

	// Same bytes under a different name.
	h.archive.addFile("/drop/copy.epub", "h1", 4096)
	parsesBefore := h.parser.parseCalls()

	_, err = h.svc.Import(context.Background(), "/drop/copy.epub")

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, parsesBefore, h.parser.parseCalls(), "duplicates are rejected before parsing")

	books, err := h.store.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestLibraryService_Import_ParseFailureStoresNothing(t *testing.T) {
	h := newLibraryHarness()
	h.archive.addFile("/drop/broken.epub", "h1", 512)
	h.parser.parseErr = domain.ErrInvalidBook

	_, err := h.svc.Import(context.Background(), "/drop/broken.epub")

	assert.ErrorIs(t, err, domain.ErrInvalidBook)
	assert.Zero(t, h.archive.storedCount(), "nothing is copied for an unparseable file")
}

func TestLibraryService_Import_SaveFailureCleansUp(t *testing.T) {
	h := newLibraryHarness()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))
	store := &failingBookStore{BookStore: h.store, saveErr: errors.New("disk full")}
	svc := NewLibraryService(store, h.backend, h.parser, h.archive)

	_, err := svc.Import(context.Background(), "/drop/novel.epub")

	require.Error(t, err)
	assert.Zero(t, h.archive.storedCount(), "a failed import leaves no files behind")
	assert.Contains(t, h.archive.removedPaths(), "/library/h1.epub")
	assert.Contains(t, h.archive.removedPaths(), "/library/covers/h1.jpg")
}

func TestLibraryService_Import_CoverFailureIsNotFatal(t *testing.T) {
	h := newLibraryHarness()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))
	h.archive.coverErr = errors.New("no space")

	book, err := h.svc.Import(context.Background(), "/drop/novel.epub")

	require.NoError(t, err)
	assert.Empty(t, book.CoverPath)
}

func TestLibraryService_Find(t *testing.T) {
	h := newLibraryHarness()
	ctx := context.Background()
	require.NoError(t, h.store.SaveBook(ctx, &domain.Book{ID: "aaaa-1111", Title: "Moby Dick"}))
	require.NoError(t, h.store.SaveBook(ctx, &domain.Book{ID: "bbbb-2222", Title: "Dracula"}))
	require.NoError(t, h.store.SaveBook(ctx, &domain.Book{ID: "bbbb-3333", Title: "Frankenstein"}))

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{name: "exact id", ref: "aaaa-1111", wantID: "aaaa-1111"},
		{name: "unambiguous prefix", ref: "aaaa", wantID: "aaaa-1111"},
		{name: "ambiguous prefix", ref: "bbbb", wantErr: domain.ErrInvalidInput},
		{name: "title case-insensitive", ref: "moby", wantID: "aaaa-1111"},
		{name: "title substring", ref: "Frank", wantID: "bbbb-3333"},
		{name: "no match", ref: "zzzz", wantErr: domain.ErrNotFound},
		{name: "empty ref", ref: "", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := h.svc.Find(ctx, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, book.ID)
		})
	}
}

func TestLibraryService_Delete(t *testing.T) {
	h := newLibraryHarness()
	ctx := context.Background()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))
	book, err := h.svc.Import(ctx, "/drop/novel.epub")
	require.NoError(t, err)
	h.backend.seed(domain.ProgressRecord{BookID: book.ID, PositionID: "42", LastReadAt: time.Now()})

	require.NoError(t, h.svc.Delete(ctx, book.ID))

	_, err = h.store.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, h.backend.record(book.ID), "progress dies with the book")
	assert.Zero(t, h.archive.storedCount(), "stored file and cover are removed")
}

func TestLibraryService_Delete_UnknownBook(t *testing.T) {
	h := newLibraryHarness()

	err := h.svc.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLibraryService_Chapters(t *testing.T) {
	h := newLibraryHarness()
	ctx := context.Background()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))
	book, err := h.svc.Import(ctx, "/drop/novel.epub")
	require.NoError(t, err)
	// Chapter lookups parse the stored copy, not the import source.
	h.parser.script(book.FilePath, sampleContent("A Novel"))

	chapters, err := h.svc.Chapters(ctx, book.ID)

	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, 0, chapters[0].Index)
	assert.Equal(t, "One", chapters[0].Title)
	assert.Equal(t, "Chapter 2", chapters[1].Title, "untitled spine entries get a numbered placeholder")
}

func TestLibraryService_ChapterText(t *testing.T) {
	h := newLibraryHarness()
	ctx := context.Background()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))
	book, err := h.svc.Import(ctx, "/drop/novel.epub")
	require.NoError(t, err)
	h.parser.script(book.FilePath, sampleContent("A Novel"))

	text, err := h.svc.ChapterText(ctx, book.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Second chapter text.", text)

	_, err = h.svc.ChapterText(ctx, book.ID, 7)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLibraryService_Watch_ImportsAndSkipsDuplicates(t *testing.T) {
	h := newLibraryHarness()
	h.addImportable("/drop/novel.epub", "h1", sampleContent("A Novel"))
	h.archive.addFile("/drop/copy.epub", "h1", 4096)

	watcher := newFakeWatcher()
	watcher.events <- driven.ImportEvent{Path: "/drop/novel.epub"}
	watcher.events <- driven.ImportEvent{Path: "/drop/copy.epub"}
	close(watcher.events)

	err := h.svc.Watch(context.Background(), watcher)

	require.NoError(t, err, "a closed stream ends the watch cleanly")
	books, err := h.store.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestLibraryService_Watch_StopsOnContextCancel(t *testing.T) {
	h := newLibraryHarness()
	watcher := newFakeWatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := h.svc.Watch(ctx, watcher)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLibraryService_Watch_StartFailure(t *testing.T) {
	h := newLibraryHarness()
	watcher := newFakeWatcher()
	watcher.watchErr = errors.New("directory does not exist")

	err := h.svc.Watch(context.Background(), watcher)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "starting watcher")
}

// failingBookStore wraps a store and fails every save.
type failingBookStore struct {
	driven.BookStore
	saveErr error
}

func (s *failingBookStore) SaveBook(_ context.Context, _ *domain.Book) error {
	return s.saveErr
}
