package cli

import (
	"context"
	"time"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	books       []domain.Book
	book        *domain.Book
	content     *domain.BookContent
	chapters    []driving.ChapterInfo
	chapterText string
	err         error
}

func (m *mockLibraryService) Import(_ context.Context, _ string) (*domain.Book, error) {
	return m.book, m.err
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.Book, error) {
	return m.books, m.err
}

func (m *mockLibraryService) Get(_ context.Context, _ string) (*domain.Book, error) {
	return m.book, m.err
}

func (m *mockLibraryService) Find(_ context.Context, _ string) (*domain.Book, error) {
	return m.book, m.err
}

func (m *mockLibraryService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockLibraryService) Content(_ context.Context, _ string) (*domain.BookContent, error) {
	return m.content, m.err
}

func (m *mockLibraryService) Chapters(_ context.Context, _ string) ([]driving.ChapterInfo, error) {
	return m.chapters, m.err
}

func (m *mockLibraryService) ChapterText(_ context.Context, _ string, _ int) (string, error) {
	return m.chapterText, m.err
}

func (m *mockLibraryService) Watch(_ context.Context, _ driven.ImportWatcher) error {
	return m.err
}

// mockReaderService is a mock implementation of driving.ReaderService.
type mockReaderService struct {
	session driving.ReaderSession
	err     error
}

func (m *mockReaderService) OpenForReading(
	_ context.Context, _ string, _ driven.Renderer,
) (driving.ReaderSession, error) {
	return m.session, m.err
}

// mockProgressService is a mock implementation of driving.ProgressService.
type mockProgressService struct {
	record *domain.ProgressRecord
	index  *domain.LocationsIndex
	err    error
}

func (m *mockProgressService) Progress(_ context.Context, _ string) (*domain.ProgressRecord, error) {
	return m.record, m.err
}

func (m *mockProgressService) ClearProgress(_ context.Context, _ string) error {
	return m.err
}

func (m *mockProgressService) RebuildLocations(
	_ context.Context, _ string, _ driven.Renderer,
) (*domain.LocationsIndex, error) {
	return m.index, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    *domain.AppSettings
	err         error
	validateErr error

	savedTheme    domain.Theme
	savedPageMode domain.PageMode
	savedBackend  domain.BackendMode
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings != nil {
		return m.settings, nil
	}
	settings := domain.DefaultAppSettings()
	return &settings, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error {
	return m.err
}

func (m *mockSettingsService) SetTheme(theme domain.Theme) error {
	m.savedTheme = theme
	return m.err
}

func (m *mockSettingsService) SetPageMode(mode domain.PageMode) error {
	m.savedPageMode = mode
	return m.err
}

func (m *mockSettingsService) SetFont(_ int, _ string, _ float64) error {
	return m.err
}

func (m *mockSettingsService) SetTracking(_, _ int) error {
	return m.err
}

func (m *mockSettingsService) SetBackend(mode domain.BackendMode, _, _ string) error {
	m.savedBackend = mode
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

// setupTestServices installs happy-path mocks for every service and
// returns a cleanup that restores whatever was configured before.
func setupTestServices() func() {
	oldLibrary := libraryService
	oldReader := readerService
	oldProgress := progressService
	oldSettings := settingsService

	imported := time.Date(2026, 7, 15, 9, 30, 0, 0, time.UTC)
	book := domain.Book{
		ID:         "book-1",
		Title:      "Dracula",
		Author:     "Bram Stoker",
		Language:   "en",
		FilePath:   "/library/book-1.epub",
		FileSize:   412000,
		FileHash:   "c3ab8ff13720e8ad9047dd39466b3c89",
		ImportedAt: imported,
	}

	chunk := 3
	fraction := 0.375
	chapter := 2
	lastRead := time.Date(2026, 8, 20, 21, 15, 0, 0, time.UTC)

	libraryService = &mockLibraryService{
		books: []domain.Book{
			book,
			{ID: "book-2", Title: "Frankenstein", Author: "Mary Shelley", ImportedAt: imported},
		},
		book: &book,
		content: &domain.BookContent{
			Metadata: domain.BookMetadata{Title: "Dracula", Author: "Bram Stoker"},
			Chapters: []domain.Chapter{
				{Title: "Jonathan Harker's Journal", Text: "3 May. Bistritz. Left Munich at 8:35 P.M."},
				{Title: "Letters", Text: "Letter from Miss Mina Murray to Miss Lucy Westenra."},
			},
		},
		chapters: []driving.ChapterInfo{
			{Index: 0, Title: "Jonathan Harker's Journal"},
			{Index: 1, Title: "Letters"},
		},
		chapterText: "3 May. Bistritz. Left Munich at 8:35 P.M.",
	}
	readerService = &mockReaderService{}
	progressService = &mockProgressService{
		record: &domain.ProgressRecord{
			BookID:     "book-1",
			PositionID: "vibe://2/40",
			ChunkIndex: &chunk,
			Fraction:   &fraction,
			Chapter:    &chapter,
			LastReadAt: lastRead,
			Locations: &domain.LocationsIndex{
				BookID:      "book-1",
				ContentHash: "c3ab8ff13720e8ad9047dd39466b3c89",
				ChunkSize:   1000,
				Positions:   []string{"vibe://0/0", "vibe://1/12", "vibe://2/40"},
				BuiltAt:     lastRead,
			},
		},
		index: &domain.LocationsIndex{
			BookID:      "book-1",
			ContentHash: "c3ab8ff13720e8ad9047dd39466b3c89",
			ChunkSize:   1000,
			Positions:   []string{"vibe://0/0", "vibe://1/12", "vibe://2/40"},
		},
	}
	settingsService = &mockSettingsService{}

	return func() {
		libraryService = oldLibrary
		readerService = oldReader
		progressService = oldProgress
		settingsService = oldSettings
	}
}
