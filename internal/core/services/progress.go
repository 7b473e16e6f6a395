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

// DefaultDebounce is the quiescence window before a settled position is
// written.
const DefaultDebounce = 500 * time.Millisecond

// writeTimeout bounds a single backend write. A write that exceeds it
// counts as failed; the next navigation event retries.
const writeTimeout = 10 * time.Second

// ProgressWriter persists settled positions with three disciplines:
//
//   - Debounce: a write happens only after the debounce window passes
//     with no new relocation. Bursts collapse to one write carrying the
//     newest state; superseded candidates are discarded, never queued.
//   - Ordering: every write carries its staging time. A write for an
//     older state that completes late is ignored by the backend, so
//     writes are never reordered, only dropped.
//   - Arming: the writer is dormant until Arm. Relocations emitted
//     while the session is still restoring must not overwrite the very
//     record being restored from.
//
// Write failures are logged and dropped; the next relocation is the
// retry. Losing the odd write is acceptable, corrupting order is not.
type ProgressWriter struct {
	backend  driven.ProgressBackend
	bookID   string
	debounce time.Duration

	mu           sync.Mutex
	armed        bool
	translator   *Translator
	pending      *domain.ProgressUpdate
	timer        *time.Timer
	attachIndex  *domain.LocationsIndex
	lastAccepted time.Time
	successes    int
	failures     int

	inflight sync.WaitGroup
}

// NewProgressWriter creates a dormant writer for one book. A debounce
// of zero or below falls back to the default window.
func NewProgressWriter(backend driven.ProgressBackend, bookID string, debounce time.Duration) *ProgressWriter {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ProgressWriter{
		backend:  backend,
		bookID:   bookID,
		debounce: debounce,
	}
}

// SetTranslator swaps the translator used to derive chunk index and
// fraction. Nil (or a not-ready translator) means positions persist
// without fractional coordinates.
func (w *ProgressWriter) SetTranslator(t *Translator) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.translator = t
}

// AttachIndex queues a freshly built locations index to ride the next
// commit, persisting it alongside the record. Re-queued automatically
// if that commit fails.
func (w *ProgressWriter) AttachIndex(index *domain.LocationsIndex) {
	if index.IsEmpty() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attachIndex = index
}

// Arm enables persistence. Relocations observed before Arm derive but
// do not stage.
func (w *ProgressWriter) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armed = true
}

// Disarm disables persistence and discards any pending candidate.
func (w *ProgressWriter) Disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armed = false
	w.pending = nil
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Derive converts a position into a live update through the current
// translator, tolerating its absence.
func (w *ProgressWriter) Derive(positionID string, chapter int) driving.PositionUpdate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deriveLocked(positionID, chapter)
}

func (w *ProgressWriter) deriveLocked(positionID string, chapter int) driving.PositionUpdate {
	update := driving.PositionUpdate{PositionID: positionID, Chapter: chapter}
	if chunk, ok := w.translator.ChunkFromPosition(positionID); ok {
		if fraction, ok := w.translator.FractionFromChunk(chunk); ok {
			update.ChunkIndex = &chunk
			update.Fraction = &fraction
		}
	}
	return update
}

// Observe takes one relocation: derives its coordinates and, when
// armed, stages it as the sole write candidate, restarting the
// debounce window. Returns the derived update for live consumers.
func (w *ProgressWriter) Observe(rel domain.Relocation) driving.PositionUpdate {
	w.mu.Lock()
	defer w.mu.Unlock()

	update := w.deriveLocked(rel.PositionID, rel.Chapter)
	if !w.armed {
		return update
	}

	stagedAt := rel.At
	if stagedAt.IsZero() {
		stagedAt = time.Now()
	}

	var chapter *int
	if rel.Chapter >= 0 {
		c := rel.Chapter
		chapter = &c
	}
	w.pending = &domain.ProgressUpdate{
		BookID:     w.bookID,
		PositionID: rel.PositionID,
		ChunkIndex: update.ChunkIndex,
		Fraction:   update.Fraction,
		Chapter:    chapter,
		StagedAt:   stagedAt,
	}

	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.commitPending)
	} else {
		w.timer.Reset(w.debounce)
	}
	return update
}

// commitPending fires when the debounce window closes: the surviving
// candidate goes to the backend on its own goroutine. The commit is
// never cancelled; if a newer write overtakes it, the timestamp guard
// makes the late completion a no-op.
func (w *ProgressWriter) commitPending() {
	w.mu.Lock()
	update := w.takePendingLocked()
	w.mu.Unlock()
	if update == nil {
		return
	}

	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		w.send(ctx, *update)
	}()
}

// takePendingLocked removes and returns the write candidate, attaching
// a queued locations index if one is waiting.
func (w *ProgressWriter) takePendingLocked() *domain.ProgressUpdate {
	if !w.armed || w.pending == nil {
		return nil
	}
	update := w.pending
	w.pending = nil
	if w.attachIndex != nil {
		update.LocationsIfNew = w.attachIndex
		w.attachIndex = nil
	}
	return update
}

// send performs one backend write and accounts for the outcome.
func (w *ProgressWriter) send(ctx context.Context, update domain.ProgressUpdate) {
	w.mu.Lock()
	if !update.StagedAt.After(w.lastAccepted) {
		// A newer state was already accepted; this one is history.
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	err := w.backend.WriteProgress(ctx, update)

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case err == nil:
		if update.StagedAt.After(w.lastAccepted) {
			w.lastAccepted = update.StagedAt
		}
		w.successes++
		if update.LocationsIfNew != nil {
			logger.Debug("Cached %d location boundaries with progress for %s",
				update.LocationsIfNew.Len(), w.bookID)
		}
	case errors.Is(err, domain.ErrStaleWrite):
		logger.Debug("Backend ignored out-of-date write for %s", w.bookID)
	default:
		w.failures++
		if update.LocationsIfNew != nil {
			// Keep the index for the next commit.
			w.attachIndex = update.LocationsIfNew
		}
		logger.Warn("Progress write failed for %s: %v", w.bookID, err)
	}
}

// Flush commits a pending candidate immediately, after any in-flight
// write finishes. Called on session close so a quit inside the
// debounce window still lands the final position.
func (w *ProgressWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	update := w.takePendingLocked()
	w.mu.Unlock()

	w.inflight.Wait()
	if update == nil {
		return nil
	}

	w.mu.Lock()
	stale := !update.StagedAt.After(w.lastAccepted)
	w.mu.Unlock()
	if stale {
		return nil
	}

	if err := w.backend.WriteProgress(ctx, *update); err != nil {
		w.mu.Lock()
		if !errors.Is(err, domain.ErrStaleWrite) {
			w.failures++
		}
		w.mu.Unlock()
		if errors.Is(err, domain.ErrStaleWrite) {
			return nil
		}
		return fmt.Errorf("flush progress: %w", err)
	}

	w.mu.Lock()
	if update.StagedAt.After(w.lastAccepted) {
		w.lastAccepted = update.StagedAt
	}
	w.successes++
	w.mu.Unlock()
	return nil
}

// Stats returns accepted and failed write counts for this writer.
func (w *ProgressWriter) Stats() (successes, failures int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.successes, w.failures
}

// Failing reports whether every write this session has failed. Used to
// surface a single non-blocking warning at close.
func (w *ProgressWriter) Failing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures > 0 && w.successes == 0
}
