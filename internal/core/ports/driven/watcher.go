package driven

import "context"

// ImportEvent is a file in the watched drop directory that has settled
// and is ready to import.
type ImportEvent struct {
	// Path is the absolute path of the settled file.
	Path string
}

// ImportWatcher watches a drop directory for new EPUB files.
// Writes are debounced per path so a file still being copied is not
// imported half-written.
type ImportWatcher interface {
	// Watch begins watching and returns the event stream. The channel
	// closes when ctx is cancelled or the watcher is closed.
	Watch(ctx context.Context) (<-chan ImportEvent, error)

	// Close stops watching and releases resources.
	Close() error
}
