package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/logger"
)

// Ensure ProgressService implements the interface.
var _ driving.ProgressService = (*ProgressService)(nil)

// ProgressService inspects and maintains stored progress outside of a
// live reader session: showing records, clearing them, and forcing
// index rebuilds.
type ProgressService struct {
	books     driven.BookStore
	backend   driven.ProgressBackend
	locations *LocationsService
}

// NewProgressService creates a new progress service.
func NewProgressService(
	books driven.BookStore,
	backend driven.ProgressBackend,
	locations *LocationsService,
) *ProgressService {
	return &ProgressService{
		books:     books,
		backend:   backend,
		locations: locations,
	}
}

// Progress returns the stored record for a book.
func (s *ProgressService) Progress(ctx context.Context, bookID string) (*domain.ProgressRecord, error) {
	return s.backend.ReadProgress(ctx, bookID)
}

// ClearProgress removes the stored record and cached index.
func (s *ProgressService) ClearProgress(ctx context.Context, bookID string) error {
	return s.backend.DeleteProgress(ctx, bookID)
}

// RebuildLocations builds and persists a fresh index synchronously.
// The persisted record keeps its position fields; only the index and
// the write timestamp change.
func (s *ProgressService) RebuildLocations(ctx context.Context, bookID string, renderer driven.Renderer) (*domain.LocationsIndex, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	started := time.Now()
	positions, err := renderer.BuildLocations(ctx, s.locations.ChunkSize())
	if err != nil {
		return nil, fmt.Errorf("building locations: %w", err)
	}
	if len(positions) == 0 {
		return nil, errors.New("locations build produced no boundaries")
	}

	index := &domain.LocationsIndex{
		BookID:      book.ID,
		ContentHash: book.FileHash,
		ChunkSize:   s.locations.ChunkSize(),
		Positions:   positions,
		BuiltAt:     time.Now(),
	}
	logger.Debug("Rebuilt %d location boundaries for %s in %s",
		len(positions), book.ID, time.Since(started).Round(time.Millisecond))

	record, err := s.backend.ReadProgress(ctx, bookID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		record = &domain.ProgressRecord{BookID: bookID}
	case err != nil:
		return nil, fmt.Errorf("reading progress: %w", err)
	}

	// Re-stage the stored position as-is so the index rides an ordinary
	// write without moving the reader.
	upd := domain.ProgressUpdate{
		BookID:         bookID,
		PositionID:     record.PositionID,
		ChunkIndex:     record.ChunkIndex,
		Fraction:       record.Fraction,
		Chapter:        record.Chapter,
		StagedAt:       time.Now(),
		LocationsIfNew: index,
	}
	if err := s.backend.WriteProgress(ctx, upd); err != nil {
		return nil, fmt.Errorf("persisting index: %w", err)
	}

	s.locations.remember(index)
	return index, nil
}
