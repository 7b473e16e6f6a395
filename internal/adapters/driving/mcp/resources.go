package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for vibereader resources.
	uriScheme = "vibereader://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing books.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "books",
		Name:        "books",
		Description: "List of all books in the library",
		MIMEType:    "application/json",
	}, s.handleBooksResource)

	// Template for book details.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "books/{bookId}",
		Name:        "book-details",
		Description: "Metadata and chapter list for a specific book",
		MIMEType:    "application/json",
	}, s.handleBookResource)

	// Template for chapter text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "books/{bookId}/chapters/{chapter}",
		Name:        "chapter-text",
		Description: "Plain text of one chapter of a book",
		MIMEType:    "text/plain",
	}, s.handleChapterResource)
}

// handleBooksResource returns a list of all books in the library.
func (s *Server) handleBooksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	books, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	infos := make([]BookInfo, len(books))
	for i := range books {
		infos[i] = BookInfo{
			ID:         books[i].ID,
			Title:      books[i].Title,
			Author:     books[i].DisplayAuthor(),
			Language:   books[i].Language,
			ImportedAt: books[i].ImportedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling books: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleBookResource returns metadata and the chapter list for one book.
func (s *Server) handleBookResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract bookId from URI: vibereader://books/{bookId}
	bookID := extractBookID(req.Params.URI)
	if bookID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	book, err := s.ports.Library.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting book: %w", err)
	}

	chapters, err := s.ports.Library.Chapters(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}

	type chapterInfo struct {
		Index int    `json:"index"`
		Title string `json:"title"`
	}

	type bookDetail struct {
		ID          string        `json:"id"`
		Title       string        `json:"title"`
		Author      string        `json:"author"`
		Publisher   string        `json:"publisher,omitempty"`
		Language    string        `json:"language,omitempty"`
		Description string        `json:"description,omitempty"`
		ISBN        string        `json:"isbn,omitempty"`
		ImportedAt  string        `json:"imported_at"`
		Chapters    []chapterInfo `json:"chapters"`
	}

	detail := bookDetail{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.DisplayAuthor(),
		Publisher:   book.Publisher,
		Language:    book.Language,
		Description: book.Description,
		ISBN:        book.ISBN,
		ImportedAt:  book.ImportedAt.Format(time.RFC3339),
		Chapters:    make([]chapterInfo, len(chapters)),
	}
	for i, ch := range chapters {
		detail.Chapters[i] = chapterInfo{Index: ch.Index, Title: ch.Title}
	}

	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling book: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleChapterResource returns the plain text of one chapter.
func (s *Server) handleChapterResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract refs from URI: vibereader://books/{bookId}/chapters/{chapter}
	bookID, chapter, ok := extractChapterRef(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := s.ports.Library.ChapterText(ctx, bookID, chapter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting chapter text: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// extractBookID extracts the book ID from a URI like vibereader://books/{bookId}.
func extractBookID(uri string) string {
	const prefix = uriScheme + "books/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractChapterRef extracts the book ID and chapter index from a URI like
// vibereader://books/{bookId}/chapters/{chapter}.
func extractChapterRef(uri string) (string, int, bool) {
	const prefix = uriScheme + "books/"
	const marker = "/chapters/"

	if !strings.HasPrefix(uri, prefix) {
		return "", 0, false
	}

	rest := strings.TrimPrefix(uri, prefix)
	idx := strings.Index(rest, marker)
	if idx <= 0 {
		return "", 0, false
	}

	bookID := rest[:idx]
	chapter, err := strconv.Atoi(rest[idx+len(marker):])
	if err != nil || chapter < 0 {
		return "", 0, false
	}

	return bookID, chapter, true
}
