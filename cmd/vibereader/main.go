// Command vibereader is a terminal EPUB reader with persistent reading
// positions. It wires the concrete adapters to the core services and
// hands control to the CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/archive"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/backend/remote"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/config/file"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/storage/sqlite"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/cli"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/services"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/epub"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening library database: %w", err)
	}
	defer store.Close() //nolint:errcheck // Intentionally ignore errors during cleanup

	bookArchive, err := archive.NewFileArchive("")
	if err != nil {
		return fmt.Errorf("opening library archive: %w", err)
	}

	backend, err := progressBackend(settings, store)
	if err != nil {
		return err
	}

	books := store.BookStore()
	locations := services.NewLocationsService(settings.Tracking.ChunkSize)
	debounce := time.Duration(settings.Tracking.DebounceMillis) * time.Millisecond

	cli.SetServices(cli.Services{
		Library:  services.NewLibraryService(books, backend, epub.New(), bookArchive),
		Reader:   services.NewReaderService(books, backend, locations, debounce),
		Progress: services.NewProgressService(books, backend, locations),
		Settings: settingsService,
	})

	return cli.Execute()
}

// progressBackend picks where reading progress is persisted. Remote
// mode without a base URL falls back to the local database; 'settings
// show' surfaces the misconfiguration.
func progressBackend(settings *domain.AppSettings, store *sqlite.Store) (driven.ProgressBackend, error) {
	if settings.Backend.Mode != domain.BackendModeRemote || !settings.Backend.IsConfigured() {
		return store.ProgressBackend(), nil
	}

	backend, err := remote.NewBackend(remote.Config{
		BaseURL:           settings.Backend.BaseURL,
		APIKey:            settings.Backend.APIKey,
		RequestsPerSecond: settings.Backend.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring remote backend: %w", err)
	}
	return backend, nil
}
