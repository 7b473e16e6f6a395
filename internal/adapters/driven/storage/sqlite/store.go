package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.vibereader/data/library.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vibereader", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// BookStore returns a BookStore interface backed by this store.
func (s *Store) BookStore() driven.BookStore {
	return &bookStore{store: s}
}

// ProgressBackend returns a ProgressBackend interface backed by this store.
func (s *Store) ProgressBackend() driven.ProgressBackend {
	return &progressBackend{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Book Store ====================

// bookStore implements driven.BookStore.
type bookStore struct {
	store *Store
}

var _ driven.BookStore = (*bookStore)(nil)

// SaveBook stores or updates a book record.
func (s *bookStore) SaveBook(ctx context.Context, book *domain.Book) error {
	now := time.Now().UTC()
	if book.ImportedAt.IsZero() {
		book.ImportedAt = now
	}
	book.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO books
			(id, title, author, publisher, language, description, isbn,
			 file_path, file_size, file_hash, cover_path, imported_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			publisher = excluded.publisher,
			language = excluded.language,
			description = excluded.description,
			isbn = excluded.isbn,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			file_hash = excluded.file_hash,
			cover_path = excluded.cover_path,
			updated_at = excluded.updated_at
	`, book.ID, book.Title, book.Author, book.Publisher, book.Language,
		book.Description, book.ISBN, book.FilePath, book.FileSize,
		book.FileHash, book.CoverPath, book.ImportedAt, book.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *bookStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, author, publisher, language, description, isbn,
		       file_path, file_size, file_hash, cover_path, imported_at, updated_at
		FROM books WHERE id = ?
	`, id)

	return scanBook(row)
}

// GetBookByHash retrieves a book by content hash.
func (s *bookStore) GetBookByHash(ctx context.Context, fileHash string) (*domain.Book, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, author, publisher, language, description, isbn,
		       file_path, file_size, file_hash, cover_path, imported_at, updated_at
		FROM books WHERE file_hash = ?
	`, fileHash)

	return scanBook(row)
}

// ListBooks returns all books, most recently imported first.
func (s *bookStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, author, publisher, language, description, isbn,
		       file_path, file_size, file_hash, cover_path, imported_at, updated_at
		FROM books ORDER BY imported_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book //nolint:prealloc // size unknown from query
	for rows.Next() {
		book, err := scanBookRows(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}

	return books, nil
}

// DeleteBook removes a book record. Progress and cached locations go
// with it through the foreign key cascade.
func (s *bookStore) DeleteBook(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Progress Backend ====================

// progressBackend implements driven.ProgressBackend.
type progressBackend struct {
	store *Store
}

var _ driven.ProgressBackend = (*progressBackend)(nil)

// ReadProgress retrieves the progress record for a book. A book with
// no progress row yields an empty record, not an error.
func (s *progressBackend) ReadProgress(ctx context.Context, bookID string) (*domain.ProgressRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT b.id, p.position_id, p.chunk_idx, p.fraction, p.chapter, p.last_read_at
		FROM books b
		LEFT JOIN progress p ON p.book_id = b.id
		WHERE b.id = ?
	`, bookID)

	var record domain.ProgressRecord
	var positionID sql.NullString
	var chunkIdx, chapter sql.NullInt64
	var fraction sql.NullFloat64
	var lastReadAt sql.NullInt64
	if err := row.Scan(&record.BookID, &positionID, &chunkIdx, &fraction,
		&chapter, &lastReadAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning progress: %w", err)
	}

	record.PositionID = positionID.String
	if chunkIdx.Valid {
		idx := int(chunkIdx.Int64)
		record.ChunkIndex = &idx
	}
	if fraction.Valid {
		f := fraction.Float64
		record.Fraction = &f
	}
	if chapter.Valid {
		ch := int(chapter.Int64)
		record.Chapter = &ch
	}
	if lastReadAt.Valid && lastReadAt.Int64 != 0 {
		record.LastReadAt = time.Unix(0, lastReadAt.Int64).UTC()
	}

	locations, err := s.loadLocations(ctx, bookID)
	if err != nil {
		return nil, err
	}
	record.Locations = locations

	return &record, nil
}

// WriteProgress applies an update through a conditional upsert. The
// row only changes when the staged timestamp is newer than the stored
// one; otherwise nothing moves and the caller gets ErrStaleWrite.
func (s *progressBackend) WriteProgress(ctx context.Context, upd domain.ProgressUpdate) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `
		INSERT INTO progress (book_id, position_id, chunk_idx, fraction, chapter, last_read_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			position_id = excluded.position_id,
			chunk_idx = excluded.chunk_idx,
			fraction = excluded.fraction,
			chapter = excluded.chapter,
			last_read_at = excluded.last_read_at
		WHERE excluded.last_read_at > progress.last_read_at
	`, upd.BookID, upd.PositionID, nullInt(upd.ChunkIndex),
		nullFloat(upd.Fraction), nullInt(upd.Chapter), upd.StagedAt.UnixNano())

	if err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking write result: %w", err)
	}
	if affected == 0 {
		return domain.ErrStaleWrite
	}

	if upd.LocationsIfNew != nil {
		if err := saveLocations(ctx, tx, upd.BookID, upd.LocationsIfNew); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing progress: %w", err)
	}
	return nil
}

// DeleteProgress removes the progress row and cached locations index.
func (s *progressBackend) DeleteProgress(ctx context.Context, bookID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM progress WHERE book_id = ?", bookID); err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM locations WHERE book_id = ?", bookID); err != nil {
		return fmt.Errorf("deleting locations: %w", err)
	}
	return nil
}

// loadLocations returns the cached index for a book, nil when none is
// stored.
func (s *progressBackend) loadLocations(ctx context.Context, bookID string) (*domain.LocationsIndex, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT book_id, content_hash, chunk_size, positions, built_at
		FROM locations WHERE book_id = ?
	`, bookID)

	var index domain.LocationsIndex
	var positionsJSON string
	var builtAt int64
	if err := row.Scan(&index.BookID, &index.ContentHash, &index.ChunkSize,
		&positionsJSON, &builtAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning locations: %w", err)
	}

	if err := json.Unmarshal([]byte(positionsJSON), &index.Positions); err != nil {
		return nil, fmt.Errorf("unmarshaling positions: %w", err)
	}
	if builtAt != 0 {
		index.BuiltAt = time.Unix(0, builtAt).UTC()
	}

	return &index, nil
}

// saveLocations upserts the cached index inside the write transaction.
func saveLocations(ctx context.Context, tx *sql.Tx, bookID string, index *domain.LocationsIndex) error {
	positionsJSON, err := json.Marshal(index.Positions)
	if err != nil {
		return fmt.Errorf("marshalling positions: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO locations (book_id, content_hash, chunk_size, positions, built_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			content_hash = excluded.content_hash,
			chunk_size = excluded.chunk_size,
			positions = excluded.positions,
			built_at = excluded.built_at
	`, bookID, index.ContentHash, index.ChunkSize, string(positionsJSON),
		index.BuiltAt.UnixNano())

	if err != nil {
		return fmt.Errorf("saving locations: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanBook scans a single book row.
func scanBook(row *sql.Row) (*domain.Book, error) {
	var book domain.Book
	var importedAt, updatedAt sql.NullTime

	if err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Publisher,
		&book.Language, &book.Description, &book.ISBN, &book.FilePath,
		&book.FileSize, &book.FileHash, &book.CoverPath,
		&importedAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning book: %w", err)
	}

	if importedAt.Valid {
		book.ImportedAt = importedAt.Time
	}
	if updatedAt.Valid {
		book.UpdatedAt = updatedAt.Time
	}

	return &book, nil
}

// scanBookRows scans a book from *sql.Rows.
func scanBookRows(rows *sql.Rows) (*domain.Book, error) {
	var book domain.Book
	var importedAt, updatedAt sql.NullTime

	if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Publisher,
		&book.Language, &book.Description, &book.ISBN, &book.FilePath,
		&book.FileSize, &book.FileHash, &book.CoverPath,
		&importedAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning book: %w", err)
	}

	if importedAt.Valid {
		book.ImportedAt = importedAt.Time
	}
	if updatedAt.Valid {
		book.UpdatedAt = updatedAt.Time
	}

	return &book, nil
}

// nullInt returns nil for a nil pointer, otherwise the value.
func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullFloat returns nil for a nil pointer, otherwise the value.
func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
