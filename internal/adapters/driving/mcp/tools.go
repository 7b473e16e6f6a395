package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListBooksInput is the input schema for the list_books tool.
type ListBooksInput struct{}

// ListBooksOutput is the output schema for the list_books tool.
type ListBooksOutput struct {
	Books []BookInfo `json:"books"`
	Count int        `json:"count"`
}

// BookInfo represents a single library entry.
type BookInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Language   string `json:"language,omitempty"`
	ImportedAt string `json:"imported_at"`
}

// ReadingProgressInput is the input schema for the reading_progress tool.
type ReadingProgressInput struct {
	Book string `json:"book" jsonschema:"book ID, unambiguous ID prefix, or title"`
}

// ReadingProgressOutput is the output schema for the reading_progress tool.
type ReadingProgressOutput struct {
	BookID      string   `json:"book_id"`
	Title       string   `json:"title"`
	HasPosition bool     `json:"has_position"`
	PositionID  string   `json:"position_id,omitempty"`
	Chapter     *int     `json:"chapter,omitempty"`
	Fraction    *float64 `json:"fraction,omitempty"`
	LastReadAt  string   `json:"last_read_at,omitempty"`
	Locations   int      `json:"locations,omitempty"`
}

// BookTextInput is the input schema for the book_text tool.
type BookTextInput struct {
	Book    string `json:"book" jsonschema:"book ID, unambiguous ID prefix, or title"`
	Chapter int    `json:"chapter" jsonschema:"chapter index in reading order, starting at 0"`
}

// BookTextOutput is the output schema for the book_text tool.
type BookTextOutput struct {
	BookID  string `json:"book_id"`
	Title   string `json:"title"`
	Chapter int    `json:"chapter"`
	Text    string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_books",
		Description: "List all books in the library",
	}, s.handleListBooks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reading_progress",
		Description: "Show the stored reading position and completion for a book",
	}, s.handleReadingProgress)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "book_text",
		Description: "Read the plain text of one chapter of a book",
	}, s.handleBookText)
}

// handleListBooks handles the list_books tool invocation.
func (s *Server) handleListBooks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListBooksInput,
) (*mcp.CallToolResult, ListBooksOutput, error) {
	books, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, ListBooksOutput{}, err
	}

	output := ListBooksOutput{
		Books: make([]BookInfo, len(books)),
		Count: len(books),
	}

	for i := range books {
		output.Books[i] = BookInfo{
			ID:         books[i].ID,
			Title:      books[i].Title,
			Author:     books[i].DisplayAuthor(),
			Language:   books[i].Language,
			ImportedAt: books[i].ImportedAt.Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

// handleReadingProgress handles the reading_progress tool invocation.
func (s *Server) handleReadingProgress(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadingProgressInput,
) (*mcp.CallToolResult, ReadingProgressOutput, error) {
	book, err := s.ports.Library.Find(ctx, input.Book)
	if err != nil {
		return nil, ReadingProgressOutput{}, err
	}

	record, err := s.ports.Progress.Progress(ctx, book.ID)
	if err != nil {
		return nil, ReadingProgressOutput{}, err
	}

	output := ReadingProgressOutput{
		BookID:      book.ID,
		Title:       book.Title,
		HasPosition: record.HasPosition(),
		PositionID:  record.PositionID,
		Chapter:     record.Chapter,
		Fraction:    record.Fraction,
		Locations:   record.Locations.Len(),
	}
	if !record.LastReadAt.IsZero() {
		output.LastReadAt = record.LastReadAt.Format(time.RFC3339)
	}

	return nil, output, nil
}

// handleBookText handles the book_text tool invocation.
func (s *Server) handleBookText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BookTextInput,
) (*mcp.CallToolResult, BookTextOutput, error) {
	book, err := s.ports.Library.Find(ctx, input.Book)
	if err != nil {
		return nil, BookTextOutput{}, err
	}

	text, err := s.ports.Library.ChapterText(ctx, book.ID, input.Chapter)
	if err != nil {
		return nil, BookTextOutput{}, err
	}

	output := BookTextOutput{
		BookID:  book.ID,
		Title:   book.Title,
		Chapter: input.Chapter,
		Text:    text,
	}

	return nil, output, nil
}
