package services

import (
	"context"
	"sync"
	"time"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/logger"
)

// LocationsService decides between reusing a cached locations index and
// building a fresh one. Builds are linear over the whole document, so
// they run asynchronously and never on the interactive path; a build
// failure degrades to "no fractional tracking" and is retried on a
// later open rather than surfaced.
//
// At most one build runs per content hash at a time, and completed
// builds are kept in memory so closing a session before its index was
// persisted does not waste the work.
type LocationsService struct {
	chunkSize int

	mu       sync.Mutex
	inflight map[string]*locationsBuild
	built    map[string]*domain.LocationsIndex
}

// locationsBuild is one in-progress build, shared by everyone waiting
// on the same content hash.
type locationsBuild struct {
	done  chan struct{}
	index *domain.LocationsIndex
}

// NewLocationsService creates a locations service. chunkSize values
// below 1 fall back to the default.
func NewLocationsService(chunkSize int) *LocationsService {
	if chunkSize < 1 {
		chunkSize = domain.DefaultChunkSize
	}
	return &LocationsService{
		chunkSize: chunkSize,
		inflight:  make(map[string]*locationsBuild),
		built:     make(map[string]*domain.LocationsIndex),
	}
}

// ChunkSize returns the configured characters-per-chunk.
func (s *LocationsService) ChunkSize() int {
	return s.chunkSize
}

// Resolve returns the index to use for the book's current content, or
// nil when none is usable and a build is needed. A persisted index is
// reused unconditionally when its content hash matches; otherwise an
// index built earlier in this process may still apply.
func (s *LocationsService) Resolve(book *domain.Book, cached *domain.LocationsIndex) *domain.LocationsIndex {
	if cached.Matches(book.FileHash) && !cached.IsEmpty() {
		s.remember(cached)
		return cached
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if index, ok := s.built[book.FileHash]; ok {
		return index
	}
	return nil
}

// Build schedules an asynchronous index build and returns a channel
// that receives the result exactly once, then closes. The result is an
// empty index when the build fails. Concurrent calls for the same
// content share a single build.
//
// The build runs detached from any session context: a generous build
// is allowed to finish after the caller has moved on, so the index is
// there next time.
func (s *LocationsService) Build(book *domain.Book, renderer driven.Renderer) <-chan *domain.LocationsIndex {
	s.mu.Lock()
	build, running := s.inflight[book.FileHash]
	if !running {
		build = &locationsBuild{done: make(chan struct{})}
		s.inflight[book.FileHash] = build
	}
	s.mu.Unlock()

	if !running {
		go s.run(build, book, renderer)
	}

	result := make(chan *domain.LocationsIndex, 1)
	go func() {
		<-build.done
		result <- build.index
		close(result)
	}()
	return result
}

// run performs one build and publishes the result.
func (s *LocationsService) run(build *locationsBuild, book *domain.Book, renderer driven.Renderer) {
	started := time.Now()
	positions, err := renderer.BuildLocations(context.Background(), s.chunkSize)

	index := &domain.LocationsIndex{
		BookID:      book.ID,
		ContentHash: book.FileHash,
		ChunkSize:   s.chunkSize,
		BuiltAt:     time.Now(),
	}
	switch {
	case err != nil:
		logger.Warn("Locations build failed for %s: %v", book.ID, err)
	case len(positions) == 0:
		logger.Warn("Locations build for %s produced no boundaries", book.ID)
	default:
		index.Positions = positions
		logger.Debug("Built %d location boundaries for %s in %s",
			len(positions), book.ID, time.Since(started).Round(time.Millisecond))
	}

	s.mu.Lock()
	build.index = index
	delete(s.inflight, book.FileHash)
	if !index.IsEmpty() {
		// Failed builds are not remembered; the next open retries.
		s.built[book.FileHash] = index
	}
	s.mu.Unlock()

	close(build.done)
}

// remember keeps a usable index available for sessions that open the
// same content before it is persisted.
func (s *LocationsService) remember(index *domain.LocationsIndex) {
	if index.IsEmpty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.built[index.ContentHash]; !ok {
		s.built[index.ContentHash] = index
	}
}
