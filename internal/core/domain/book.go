package domain

import "time"

// Book represents an imported EPUB in the library.
// The file itself lives in the library directory under its content hash;
// the record carries the metadata extracted at import time.
type Book struct {
	// ID is the unique identifier for the book.
	ID string

	// Title is the book title from the package metadata.
	// Falls back to the source filename when the metadata has none.
	Title string

	// Author is the primary creator, if declared.
	Author string

	// Publisher is the publisher, if declared.
	Publisher string

	// Language is the declared language code (e.g., "en").
	Language string

	// Description is the publisher description, if declared.
	Description string

	// ISBN is the ISBN-ish identifier, if one is declared.
	ISBN string

	// FilePath is the absolute path of the stored EPUB file.
	FilePath string

	// FileSize is the stored file size in bytes.
	FileSize int64

	// FileHash is the SHA-256 of the EPUB file, hex encoded.
	// It is the content identity: import dedupe and the locations
	// cache are both keyed on it.
	FileHash string

	// CoverPath is the extracted cover image path, empty if none.
	CoverPath string

	// ImportedAt is when the book was added to the library.
	ImportedAt time.Time

	// UpdatedAt is when the record was last updated.
	UpdatedAt time.Time
}

// DisplayAuthor returns the author or a placeholder for books
// whose package metadata declares none.
func (b *Book) DisplayAuthor() string {
	if b.Author == "" {
		return "Unknown author"
	}
	return b.Author
}
