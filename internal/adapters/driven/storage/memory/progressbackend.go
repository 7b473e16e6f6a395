package memory

import (
	"context"
	"sync"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// Ensure ProgressBackend implements the interface.
var _ driven.ProgressBackend = (*ProgressBackend)(nil)

// ProgressBackend is an in-memory implementation of
// driven.ProgressBackend. It enforces the same staged-timestamp write
// guard the persistent backends do, so tests exercise real ordering
// semantics.
type ProgressBackend struct {
	mu      sync.RWMutex
	records map[string]domain.ProgressRecord
}

// NewProgressBackend creates a new in-memory progress backend.
func NewProgressBackend() *ProgressBackend {
	return &ProgressBackend{
		records: make(map[string]domain.ProgressRecord),
	}
}

// ReadProgress retrieves the progress record for a book.
func (b *ProgressBackend) ReadProgress(_ context.Context, bookID string) (*domain.ProgressRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	record, ok := b.records[bookID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// WriteProgress applies an update, ignoring writes staged at or before
// the stored timestamp.
func (b *ProgressBackend) WriteProgress(_ context.Context, upd domain.ProgressUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.records[upd.BookID]
	if ok && !upd.StagedAt.After(record.LastReadAt) {
		return domain.ErrStaleWrite
	}
	if !ok {
		record = domain.ProgressRecord{BookID: upd.BookID}
	}

	record.PositionID = upd.PositionID
	record.ChunkIndex = upd.ChunkIndex
	record.Fraction = upd.Fraction
	record.Chapter = upd.Chapter
	record.LastReadAt = upd.StagedAt
	if upd.LocationsIfNew != nil {
		record.Locations = upd.LocationsIfNew
	}
	b.records[upd.BookID] = record
	return nil
}

// DeleteProgress removes the record for a book.
func (b *ProgressBackend) DeleteProgress(_ context.Context, bookID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, bookID)
	return nil
}

// Seed installs a record directly, bypassing the write guard.
// Test setup helper.
func (b *ProgressBackend) Seed(record domain.ProgressRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[record.BookID] = record
}
