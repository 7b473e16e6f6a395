package services

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// fakeRenderer is a scriptable rendering engine. Position identifiers
// are plain integers so tests can reason about reading order without a
// real document.
type fakeRenderer struct {
	numericComparer

	mu             sync.Mutex
	closed         bool
	caps           driven.RendererCapabilities
	current        string
	startID        string
	displayed      []string
	invalid        map[string]bool
	displayErr     error
	buildPositions []string
	buildErr       error
	buildDelay     time.Duration
	buildCalls     int
	reloc          chan domain.Relocation
}

var _ driven.Renderer = (*fakeRenderer)(nil)

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		startID: "0",
		current: "0",
		invalid: make(map[string]bool),
		caps: driven.RendererCapabilities{
			SupportsPaginated:     true,
			ReportsChapters:       true,
			SupportsLocationBuild: true,
		},
		reloc: make(chan domain.Relocation, 32),
	}
}

func (r *fakeRenderer) Capabilities() driven.RendererCapabilities {
	return r.caps
}

func (r *fakeRenderer) StartPosition() string {
	return r.startID
}

func (r *fakeRenderer) DisplayAt(_ context.Context, positionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.ErrEngineClosed
	}
	if r.displayErr != nil {
		return r.displayErr
	}
	if r.invalid[positionID] {
		return domain.ErrPositionInvalid
	}
	if _, err := strconv.Atoi(positionID); err != nil {
		return domain.ErrPositionInvalid
	}
	r.current = positionID
	r.displayed = append(r.displayed, positionID)
	r.emitLocked(positionID)
	return nil
}

func (r *fakeRenderer) CurrentPosition(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", domain.ErrEngineClosed
	}
	return r.current, nil
}

func (r *fakeRenderer) Relocations() <-chan domain.Relocation {
	return r.reloc
}

func (r *fakeRenderer) BuildLocations(_ context.Context, _ int) ([]string, error) {
	if r.buildDelay > 0 {
		time.Sleep(r.buildDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildCalls++
	if r.buildErr != nil {
		return nil, r.buildErr
	}
	return r.buildPositions, nil
}

func (r *fakeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// settle simulates user navigation: the displayed position moves and a
// relocation event is emitted.
func (r *fakeRenderer) settle(positionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = positionID
	r.emitLocked(positionID)
}

func (r *fakeRenderer) emitLocked(positionID string) {
	rel := domain.Relocation{PositionID: positionID, Chapter: 0, At: time.Now()}
	select {
	case r.reloc <- rel:
	default:
	}
}

func (r *fakeRenderer) builds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildCalls
}

func (r *fakeRenderer) displayedPositions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.displayed))
	copy(out, r.displayed)
	return out
}

// fakeBackend is an in-memory progress backend with the same
// stale-write guard real backends enforce. Per-write delays can be
// scripted to exercise out-of-order completion.
type fakeBackend struct {
	mu          sync.Mutex
	records     map[string]*domain.ProgressRecord
	attempts    []domain.ProgressUpdate
	readErr     error
	writeErr    error
	writeDelays []time.Duration
}

var _ driven.ProgressBackend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{records: make(map[string]*domain.ProgressRecord)}
}

func (b *fakeBackend) ReadProgress(_ context.Context, bookID string) (*domain.ProgressRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return nil, b.readErr
	}
	rec, ok := b.records[bookID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (b *fakeBackend) WriteProgress(_ context.Context, upd domain.ProgressUpdate) error {
	b.mu.Lock()
	var delay time.Duration
	if len(b.writeDelays) > 0 {
		delay = b.writeDelays[0]
		b.writeDelays = b.writeDelays[1:]
	}
	b.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = append(b.attempts, upd)
	if b.writeErr != nil {
		return b.writeErr
	}

	stored, ok := b.records[upd.BookID]
	if ok && !upd.StagedAt.After(stored.LastReadAt) {
		return domain.ErrStaleWrite
	}
	if !ok {
		stored = &domain.ProgressRecord{BookID: upd.BookID}
		b.records[upd.BookID] = stored
	}

	stored.PositionID = upd.PositionID
	stored.ChunkIndex = upd.ChunkIndex
	stored.Fraction = upd.Fraction
	stored.Chapter = upd.Chapter
	stored.LastReadAt = upd.StagedAt
	if upd.LocationsIfNew != nil {
		stored.Locations = upd.LocationsIfNew
	}
	return nil
}

func (b *fakeBackend) DeleteProgress(_ context.Context, bookID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, bookID)
	return nil
}

func (b *fakeBackend) setWriteErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeErr = err
}

func (b *fakeBackend) setReadErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readErr = err
}

// seed installs a pre-existing record.
func (b *fakeBackend) seed(rec domain.ProgressRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[rec.BookID] = &rec
}

func (b *fakeBackend) record(bookID string) *domain.ProgressRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[bookID]
	if !ok {
		return nil
	}
	clone := *rec
	return &clone
}

func (b *fakeBackend) attemptCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.attempts)
}

func (b *fakeBackend) attemptAt(i int) domain.ProgressUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts[i]
}

func testBook(id, hash string) *domain.Book {
	return &domain.Book{
		ID:       id,
		Title:    "Test Book",
		FileHash: hash,
	}
}

// fakeParser serves scripted book content keyed by path.
type fakeParser struct {
	mu       sync.Mutex
	contents map[string]*domain.BookContent
	parseErr error
	calls    int
}

var _ driven.BookParser = (*fakeParser)(nil)

func newFakeParser() *fakeParser {
	return &fakeParser{contents: make(map[string]*domain.BookContent)}
}

func (p *fakeParser) ParseFile(_ context.Context, path string) (*domain.BookContent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	content, ok := p.contents[path]
	if !ok {
		return nil, domain.ErrInvalidBook
	}
	return content, nil
}

func (p *fakeParser) script(path string, content *domain.BookContent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contents[path] = content
}

func (p *fakeParser) parseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakeArchive is an in-memory book archive with scripted fingerprints.
type fakeArchive struct {
	mu           sync.Mutex
	fingerprints map[string]string
	sizes        map[string]int64
	stored       map[string]bool
	removed      []string
	storeErr     error
	coverErr     error
}

var _ driven.BookArchive = (*fakeArchive)(nil)

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		fingerprints: make(map[string]string),
		sizes:        make(map[string]int64),
		stored:       make(map[string]bool),
	}
}

// addFile scripts a source file the archive can fingerprint.
func (a *fakeArchive) addFile(path, hash string, size int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fingerprints[path] = hash
	a.sizes[path] = size
}

func (a *fakeArchive) Fingerprint(path string) (string, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	hash, ok := a.fingerprints[path]
	if !ok {
		return "", 0, errors.New("no such file")
	}
	return hash, a.sizes[path], nil
}

func (a *fakeArchive) StoreBook(_, fileHash string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.storeErr != nil {
		return "", a.storeErr
	}
	path := "/library/" + fileHash + ".epub"
	a.stored[path] = true
	return path, nil
}

func (a *fakeArchive) StoreCover(fileHash string, cover *domain.CoverImage) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.coverErr != nil {
		return "", a.coverErr
	}
	path := "/library/covers/" + fileHash + filepath.Ext(cover.Name)
	a.stored[path] = true
	return path, nil
}

func (a *fakeArchive) Remove(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.stored, path)
	a.removed = append(a.removed, path)
	return nil
}

func (a *fakeArchive) storedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.stored)
}

func (a *fakeArchive) removedPaths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.removed))
	copy(out, a.removed)
	return out
}

// fakeWatcher feeds a scripted event stream.
type fakeWatcher struct {
	events   chan driven.ImportEvent
	watchErr error
	closed   bool
}

var _ driven.ImportWatcher = (*fakeWatcher)(nil)

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{events: make(chan driven.ImportEvent, 8)}
}

func (w *fakeWatcher) Watch(_ context.Context) (<-chan driven.ImportEvent, error) {
	if w.watchErr != nil {
		return nil, w.watchErr
	}
	return w.events, nil
}

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}
