package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/logger"
)

// Ensure ReaderService implements the interface.
var _ driving.ReaderService = (*ReaderService)(nil)

// closeFlushTimeout bounds the final progress write during Close.
const closeFlushTimeout = 5 * time.Second

// ReaderService opens reader sessions: position recovery on the way
// in, debounced tracking once open.
type ReaderService struct {
	books     driven.BookStore
	backend   driven.ProgressBackend
	locations *LocationsService
	debounce  time.Duration
}

// NewReaderService creates a reader service. The locations service is
// shared across sessions so concurrent opens of the same content share
// index builds.
func NewReaderService(
	books driven.BookStore,
	backend driven.ProgressBackend,
	locations *LocationsService,
	debounce time.Duration,
) *ReaderService {
	return &ReaderService{
		books:     books,
		backend:   backend,
		locations: locations,
		debounce:  debounce,
	}
}

// OpenForReading restores the best available position for the book and
// returns a tracking session. The restore chain runs strictly in
// order: stored position, then stored chunk through the locations
// index, then document start. Only failure to display the start is
// fatal.
func (s *ReaderService) OpenForReading(ctx context.Context, bookID string, renderer driven.Renderer) (driving.ReaderSession, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	sess := &readerSession{
		book:      book,
		renderer:  renderer,
		backend:   s.backend,
		locations: s.locations,
		writer:    NewProgressWriter(s.backend, book.ID, s.debounce),
		state:     domain.RecoveryIdle,
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	if err := sess.open(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// Ensure readerSession implements the interface.
var _ driving.ReaderSession = (*readerSession)(nil)

// readerSession is one open book. It owns the recovery state machine
// and the tracking loop; the renderer and backend are collaborators it
// drives. All session state lives here, never in package globals, so
// concurrent sessions cannot interfere.
type readerSession struct {
	book      *domain.Book
	renderer  driven.Renderer
	backend   driven.ProgressBackend
	locations *LocationsService
	writer    *ProgressWriter

	mu         sync.RWMutex
	state      domain.RecoveryState
	translator *Translator
	last       driving.PositionUpdate
	callbacks  []driving.PositionSettledFunc
	closed     bool

	buildCh  <-chan *domain.LocationsIndex
	done     chan struct{}
	loopDone chan struct{}
}

// open runs the recovery machine to completion and starts tracking.
func (s *readerSession) open(ctx context.Context) error {
	// Load index. The persisted record is the source for both the
	// restore targets and the cached index.
	s.setState(domain.RecoveryLoadIndex)
	record, err := s.backend.ReadProgress(ctx, s.book.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		record = &domain.ProgressRecord{BookID: s.book.ID}
	case err != nil:
		// Unreadable progress must never block opening the book; it
		// just means recovery falls through to the document start.
		logger.Warn("Progress read failed for %s, starting fresh: %v", s.book.ID, err)
		record = &domain.ProgressRecord{BookID: s.book.ID}
	}

	cachedMatches := record.Locations.Matches(s.book.FileHash) && !record.Locations.IsEmpty()
	if index := s.locations.Resolve(s.book, record.Locations); index != nil {
		s.translator = NewTranslator(index, s.renderer)
		s.writer.SetTranslator(s.translator)
		if !cachedMatches {
			// Built earlier but never persisted; ride the next write.
			s.writer.AttachIndex(index)
		}
	} else if s.renderer.Capabilities().SupportsLocationBuild {
		// Build off the interactive path; the session opens without
		// fractional tracking and picks the index up on completion.
		s.buildCh = s.locations.Build(s.book, s.renderer)
	}

	// Restore by position.
	s.setState(domain.RecoveryRestoreByPosition)
	restored := false
	if record.PositionID != "" {
		if err := s.renderer.DisplayAt(ctx, record.PositionID); err != nil {
			logger.Debug("Stored position %q for %s not restorable: %v", record.PositionID, s.book.ID, err)
		} else {
			restored = true
		}
	}

	// Restore by chunk. Needs the index now; an async build still
	// running means this rung is unavailable.
	if !restored {
		s.setState(domain.RecoveryRestoreByChunk)
		if record.ChunkIndex != nil {
			if position, ok := s.translator.PositionFromChunk(*record.ChunkIndex); ok {
				if err := s.renderer.DisplayAt(ctx, position); err != nil {
					logger.Debug("Chunk %d for %s not restorable: %v", *record.ChunkIndex, s.book.ID, err)
				} else {
					restored = true
				}
			}
		}
	}

	// Restore to start. The only rung allowed to fail the open.
	if !restored {
		s.setState(domain.RecoveryRestoreToStart)
		if err := s.renderer.DisplayAt(ctx, s.renderer.StartPosition()); err != nil {
			return fmt.Errorf("%w: display start: %w", domain.ErrRecoveryFailed, err)
		}
	}

	// Tracking. Relocations emitted by the restore displays above are
	// stale by definition; drop them before arming so the writer never
	// persists its own restore.
	seed := s.drainRestoreEvents(ctx)
	s.mu.Lock()
	s.last = seed
	s.mu.Unlock()

	s.writer.Arm()
	s.setState(domain.RecoveryTracking)
	go s.track()

	logger.Debug("Tracking %s at %s", s.book.ID, seed.PositionID)
	return nil
}

// drainRestoreEvents discards relocations emitted during restore and
// returns the update describing where the book actually landed.
func (s *readerSession) drainRestoreEvents(ctx context.Context) driving.PositionUpdate {
	var lastDrained *domain.Relocation
	for {
		select {
		case rel := <-s.renderer.Relocations():
			lastDrained = &rel
			continue
		default:
		}
		break
	}

	if lastDrained != nil {
		return s.writer.Derive(lastDrained.PositionID, lastDrained.Chapter)
	}
	if current, err := s.renderer.CurrentPosition(ctx); err == nil {
		return s.writer.Derive(current, -1)
	}
	return driving.PositionUpdate{Chapter: -1}
}

// track is the session's only long-lived goroutine: it feeds settled
// positions into the writer and callbacks, and swaps the translator in
// when an asynchronous index build lands.
func (s *readerSession) track() {
	defer close(s.loopDone)
	for {
		select {
		case rel, ok := <-s.renderer.Relocations():
			if !ok {
				return
			}
			update := s.writer.Observe(rel)
			s.notify(update)

		case index := <-s.buildChan():
			s.clearBuildChan()
			if index.IsEmpty() {
				continue
			}
			translator := NewTranslator(index, s.renderer)
			s.mu.Lock()
			s.translator = translator
			s.mu.Unlock()
			s.writer.SetTranslator(translator)
			s.writer.AttachIndex(index)
			logger.Debug("Locations index ready for %s (%d chunks)", s.book.ID, index.Len())

			// The displayed position has not moved, but its fraction
			// just became known; let live consumers repaint.
			s.mu.RLock()
			positionID, chapter := s.last.PositionID, s.last.Chapter
			s.mu.RUnlock()
			if positionID != "" {
				s.notify(s.writer.Derive(positionID, chapter))
			}

		case <-s.done:
			return
		}
	}
}

// buildChan returns the pending build channel, or nil (blocking
// forever in select) when there is none.
func (s *readerSession) buildChan() <-chan *domain.LocationsIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildCh
}

func (s *readerSession) clearBuildChan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildCh = nil
}

// notify records the update and fans it out to callbacks.
func (s *readerSession) notify(update driving.PositionUpdate) {
	s.mu.Lock()
	s.last = update
	callbacks := make([]driving.PositionSettledFunc, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	for _, callback := range callbacks {
		callback(update)
	}
}

// Book returns the book being read.
func (s *readerSession) Book() *domain.Book {
	return s.book
}

// State returns the current session state.
func (s *readerSession) State() domain.RecoveryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Progress returns the most recently settled position.
func (s *readerSession) Progress() driving.PositionUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// OnPositionSettled registers a callback for settled positions.
func (s *readerSession) OnPositionSettled(fn driving.PositionSettledFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Close stops tracking and flushes any pending write so a quit inside
// the debounce window still persists the final position. A failed
// final write is logged, not returned; closing must always succeed.
func (s *readerSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	<-s.loopDone

	// Relocations that raced the shutdown still count: the final
	// settled position must be the one flushed, not the last one the
	// loop happened to consume.
	for draining := true; draining; {
		select {
		case rel, ok := <-s.renderer.Relocations():
			if !ok {
				draining = false
				break
			}
			s.writer.Observe(rel)
		default:
			draining = false
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeFlushTimeout)
	defer cancel()
	if err := s.writer.Flush(ctx); err != nil {
		logger.Warn("Final progress write failed for %s: %v", s.book.ID, err)
	}
	s.writer.Disarm()

	if s.writer.Failing() {
		logger.Warn("No progress writes succeeded for %s this session; progress was not saved", s.book.ID)
	}

	s.setState(domain.RecoveryClosed)
	return nil
}

func (s *readerSession) setState(state domain.RecoveryState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
