// Package libwatch watches a drop directory for incoming EPUB files.
//
// Copying a book into the directory produces a burst of filesystem
// events; the watcher holds each path until it has been quiet for the
// settle window, then emits one import event for it. A file removed
// before it settles is forgotten. Hidden files and non-EPUB files are
// ignored outright.
package libwatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ImportWatcher = (*Watcher)(nil)

const (
	// DefaultSettle is how long a file must stay quiet before it is
	// considered fully copied.
	DefaultSettle = 2 * time.Second

	// minSweep bounds how often the pending set is checked.
	minSweep = 25 * time.Millisecond
)

// Watcher emits an ImportEvent for each EPUB that settles in the
// watched directory. Watch is single-shot; create a new Watcher to
// watch again.
type Watcher struct {
	dir       string
	settle    time.Duration
	fsw       *fsnotify.Watcher
	events    chan driven.ImportEvent
	closeOnce sync.Once
}

// NewWatcher creates a watcher over dir, creating the directory if
// needed. If dir is empty, defaults to ~/.vibereader/inbox. A settle
// of zero or less means DefaultSettle.
func NewWatcher(dir string, settle time.Duration) (*Watcher, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".vibereader", "inbox")
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating watch directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close() //nolint:errcheck // Intentionally ignore errors to continue cleanup
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		dir:    dir,
		settle: settle,
		fsw:    fsw,
		events: make(chan driven.ImportEvent, 16),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Watch begins watching and returns the event stream. The channel
// closes when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan driven.ImportEvent, error) {
	go w.run(ctx)
	return w.events, nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

// run owns all watcher state: the pending set is only ever touched
// here, so shutdown cannot race an emission.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)

	sweep := w.settle / 4
	if sweep < minSweep {
		sweep = minSweep
	}
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	// Paths waiting out their settle window, by deadline.
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if path, ok := candidate(event); ok {
				pending[path] = time.Now().Add(w.settle)
			} else if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				delete(pending, event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error on %s: %v", w.dir, err)

		case now := <-ticker.C:
			for path, due := range pending {
				if now.Before(due) {
					continue
				}
				delete(pending, path)
				if !regularFile(path) {
					continue
				}
				logger.Debug("File settled: %s", path)
				select {
				case w.events <- driven.ImportEvent{Path: path}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// candidate reports whether an event is a write to an EPUB worth
// tracking.
func candidate(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return "", false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(name), ".epub") {
		return "", false
	}
	return event.Name, true
}

// regularFile reports whether the path still names a regular file.
// A candidate may be gone again by the time it settles.
func regularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
