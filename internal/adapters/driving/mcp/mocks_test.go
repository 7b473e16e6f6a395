package mcp

import (
	"context"

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
