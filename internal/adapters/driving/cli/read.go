package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/engine/textpage"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui"
)

// readCmd represents the read command.
var readCmd = &cobra.Command{
	Use:   "read [book]",
	Short: "Read a book in the terminal",
	Long: `Opens a book in the full-screen terminal reader.

The book can be referenced by ID, ID prefix, or title. Reading resumes
at the last saved position; progress is saved automatically while you
read.

Controls:
  space/→  - Next page
  ←        - Previous page
  ↓/↑, j/k - Scroll
  g        - Back to the start
  ?        - Toggle help
  q        - Quit (progress is saved)`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in reader: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if libraryService == nil {
		return errors.New("library service not configured")
	}
	if readerService == nil {
		return errors.New("reader service not configured")
	}

	ctx := context.Background()

	book, err := libraryService.Find(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find book: %w", err)
	}

	content, err := libraryService.Content(ctx, book.ID)
	if err != nil {
		return fmt.Errorf("failed to open book: %w", err)
	}

	engine, err := textpage.NewEngine(content)
	if err != nil {
		return fmt.Errorf("failed to prepare book for display: %w", err)
	}
	defer engine.Close() //nolint:errcheck // Intentionally ignore errors during cleanup

	ports := tui.NewPorts(readerService, settingsService)

	app, err := tui.NewApp(ports, book, engine)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}

	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("reader error: %w", err)
	}

	return nil
}
