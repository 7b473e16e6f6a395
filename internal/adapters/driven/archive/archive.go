// Package archive stores imported EPUB files and covers on disk,
// keyed by content hash.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// Ensure FileArchive implements the interface.
var _ driven.BookArchive = (*FileArchive)(nil)

// coversDir is the subdirectory holding extracted cover images.
const coversDir = "covers"

// FileArchive is a filesystem implementation of driven.BookArchive.
// Layout: <root>/<hash>.epub and <root>/covers/<hash><ext>.
type FileArchive struct {
	root string
}

// NewFileArchive creates an archive rooted at dir. If dir is empty,
// defaults to ~/.vibereader/library.
func NewFileArchive(dir string) (*FileArchive, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".vibereader", "library")
	}

	if err := os.MkdirAll(filepath.Join(dir, coversDir), 0700); err != nil {
		return nil, err
	}

	return &FileArchive{root: dir}, nil
}

// Root returns the archive directory.
func (a *FileArchive) Root() string {
	return a.root
}

// Fingerprint returns the SHA-256 hex digest and size of the file at
// path.
func (a *FileArchive) Fingerprint(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// StoreBook copies the file at srcPath into the archive under its
// content hash. The copy goes through a temp file and rename so a
// crash mid-copy never leaves a half-written book at the final path.
func (a *FileArchive) StoreBook(srcPath, fileHash string) (string, error) {
	if fileHash == "" {
		return "", fmt.Errorf("store book: empty content hash")
	}

	dst := filepath.Join(a.root, fileHash+".epub")
	if _, err := os.Stat(dst); err == nil {
		// Same bytes, already archived.
		return dst, nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(a.root, ".import-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("copying %s: %w", srcPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return dst, nil
}

// StoreCover writes the cover image under the content hash, using the
// extension of the manifest filename.
func (a *FileArchive) StoreCover(fileHash string, cover *domain.CoverImage) (string, error) {
	if fileHash == "" {
		return "", fmt.Errorf("store cover: empty content hash")
	}
	if cover == nil || len(cover.Data) == 0 {
		return "", fmt.Errorf("store cover: no image data")
	}

	ext := filepath.Ext(cover.Name)
	if ext == "" {
		ext = ".img"
	}
	dst := filepath.Join(a.root, coversDir, fileHash+ext)
	if err := os.WriteFile(dst, cover.Data, 0600); err != nil {
		return "", err
	}
	return dst, nil
}

// Remove deletes a stored file. Only paths inside the archive are
// touched; anything else is refused.
func (a *FileArchive) Remove(path string) error {
	rel, err := filepath.Rel(a.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("remove %s: outside archive", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
