package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/libwatch"
)

var (
	watchDir    string
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and import new EPUBs",
	Long: `Watches a directory and imports every EPUB file dropped into it.

A file is imported once it has stopped changing for the settle window,
so partially copied files are never picked up. Books already in the
library are skipped. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "directory to watch (default ~/.vibereader/inbox)")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", libwatch.DefaultSettle, "how long a file must stay unchanged before import")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	watcher, err := libwatch.NewWatcher(watchDir, watchSettle)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Intentionally ignore errors during cleanup

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for EPUB files. Press Ctrl+C to stop.\n", watcher.Dir())

	if err := libraryService.Watch(ctx, watcher); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Watch stopped.")
	return nil
}
