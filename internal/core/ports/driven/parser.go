package driven

import (
	"context"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

// BookParser reads an EPUB container into its content model.
// Parsing is forgiving: individual unreadable chapters are skipped, but
// a broken container yields domain.ErrInvalidBook.
type BookParser interface {
	// ParseFile reads the EPUB at path.
	ParseFile(ctx context.Context, path string) (*domain.BookContent, error)
}
