package driven

import (
	"context"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

// BookStore persists the book catalogue.
// Backed by SQLite for metadata storage.
type BookStore interface {
	// SaveBook stores or updates a book record.
	SaveBook(ctx context.Context, book *domain.Book) error

	// GetBook retrieves a book by ID.
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// GetBookByHash retrieves a book by content hash.
	// Used by import to detect duplicates before copying anything.
	GetBookByHash(ctx context.Context, fileHash string) (*domain.Book, error)

	// ListBooks returns all books, most recently imported first.
	ListBooks(ctx context.Context) ([]domain.Book, error)

	// DeleteBook removes a book record along with its progress and
	// cached locations index.
	DeleteBook(ctx context.Context, id string) error
}
