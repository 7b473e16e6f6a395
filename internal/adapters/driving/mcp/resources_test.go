package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

func TestExtractBookID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid book URI",
			uri:      "vibereader://books/book-123",
			expected: "book-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://books/book-123",
			expected: "",
		},
		{
			name:     "chapter URI is not a book URI",
			uri:      "vibereader://books/book-123/chapters/2",
			expected: "",
		},
		{
			name:     "missing ID",
			uri:      "vibereader://books/",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractBookID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractChapterRef(t *testing.T) {
	tests := []struct {
		name         string
		uri          string
		expectedID   string
		expectedIdx  int
		expectedOK   bool
	}{
		{
			name:        "valid chapter URI",
			uri:         "vibereader://books/book-123/chapters/4",
			expectedID:  "book-123",
			expectedIdx: 4,
			expectedOK:  true,
		},
		{
			name:       "invalid prefix",
			uri:        "file://books/book-123/chapters/4",
			expectedOK: false,
		},
		{
			name:       "missing chapter segment",
			uri:        "vibereader://books/book-123",
			expectedOK: false,
		},
		{
			name:       "non-numeric chapter",
			uri:        "vibereader://books/book-123/chapters/four",
			expectedOK: false,
		},
		{
			name:       "negative chapter",
			uri:        "vibereader://books/book-123/chapters/-1",
			expectedOK: false,
		},
		{
			name:       "empty book ID",
			uri:        "vibereader://books//chapters/0",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookID, chapter, ok := extractChapterRef(tt.uri)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, tt.expectedID, bookID)
				assert.Equal(t, tt.expectedIdx, chapter)
			}
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleBooksResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns books successfully", func(t *testing.T) {
		library := &mockLibraryService{
			books: []domain.Book{
				{ID: "book-1", Title: "Dracula", Author: "Bram Stoker"},
				{ID: "book-2", Title: "Frankenstein", Author: "Mary Shelley"},
			},
		}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books")
		result, err := server.handleBooksResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "book-1")
		assert.Contains(t, result.Contents[0].Text, "Dracula")
		assert.Contains(t, result.Contents[0].Text, "Mary Shelley")
	})

	t.Run("handles empty library", func(t *testing.T) {
		library := &mockLibraryService{books: []domain.Book{}}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books")
		result, err := server.handleBooksResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		library := &mockLibraryService{err: errors.New("database error")}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books")
		_, err := server.handleBooksResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing books")
	})
}

func TestServer_handleBookResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns book details with chapters", func(t *testing.T) {
		library := &mockLibraryService{
			book: &domain.Book{
				ID:       "book-1",
				Title:    "Dracula",
				Author:   "Bram Stoker",
				Language: "en",
			},
			chapters: []driving.ChapterInfo{
				{Index: 0, Title: "Jonathan Harker's Journal"},
				{Index: 1, Title: "Letters"},
			},
		}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books/book-1")
		result, err := server.handleBookResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "Dracula")
		assert.Contains(t, result.Contents[0].Text, "Bram Stoker")
		assert.Contains(t, result.Contents[0].Text, "Jonathan Harker's Journal")
		assert.Contains(t, result.Contents[0].Text, "Letters")
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockLibraryService{}, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://invalid/uri")
		_, err := server.handleBookResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("unknown book returns not found", func(t *testing.T) {
		library := &mockLibraryService{err: domain.ErrNotFound}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books/missing")
		_, err := server.handleBookResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns error on get failure", func(t *testing.T) {
		library := &mockLibraryService{err: errors.New("database error")}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books/book-1")
		_, err := server.handleBookResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting book")
	})
}

func TestServer_handleChapterResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns chapter text successfully", func(t *testing.T) {
		library := &mockLibraryService{
			chapterText: "3 May. Bistritz. Left Munich at 8:35 P.M.",
		}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books/book-1/chapters/0")
		result, err := server.handleChapterResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "3 May. Bistritz. Left Munich at 8:35 P.M.", result.Contents[0].Text)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockLibraryService{}, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books/book-1")
		_, err := server.handleChapterResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("unknown chapter returns not found", func(t *testing.T) {
		library := &mockLibraryService{err: domain.ErrNotFound}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books/book-1/chapters/99")
		_, err := server.handleChapterResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns error on read failure", func(t *testing.T) {
		library := &mockLibraryService{err: errors.New("file unreadable")}
		server := newTestServer(t, library, &mockProgressService{})

		req := makeReadResourceRequest("vibereader://books/book-1/chapters/0")
		_, err := server.handleChapterResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting chapter text")
	})
}
