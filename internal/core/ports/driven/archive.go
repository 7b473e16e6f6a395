package driven

import "github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"

// BookArchive stores imported EPUB files and their covers, keyed by
// content hash. The archive is flat: one stored file per distinct
// content, so re-importing identical bytes never duplicates storage.
type BookArchive interface {
	// Fingerprint reads the file at path and returns its SHA-256 hex
	// digest and size in bytes.
	Fingerprint(path string) (hash string, size int64, err error)

	// StoreBook copies the file at srcPath into the archive under its
	// content hash and returns the stored path.
	StoreBook(srcPath, fileHash string) (string, error)

	// StoreCover writes the cover image under the content hash and
	// returns the stored path.
	StoreCover(fileHash string, cover *domain.CoverImage) (string, error)

	// Remove deletes a stored file by path. Removing a missing file is
	// not an error.
	Remove(path string) error
}
