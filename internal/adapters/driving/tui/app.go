package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/engine/textpage"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/keymap"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/messages"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/styles"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/views/reader"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

// positionBuffer bounds settled positions queued between frames. The
// relay drops when full; the next settle carries fresher data anyway.
const positionBuffer = 8

// App is the reading TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles for the configured theme.
	styles *styles.Styles

	// keys holds the keybindings.
	keys *keymap.KeyMap

	// book is the book being read.
	book *domain.Book

	// engine renders the book. The caller owns it; the app never
	// closes it.
	engine *textpage.Engine

	// readerView is the page view component.
	readerView *reader.View

	// session is the open tracking session, nil until recovery
	// completes.
	session driving.ReaderSession

	// updates relays settled positions from the session's tracking
	// goroutine into the program.
	updates chan driving.PositionUpdate

	// spin is shown while the session opens.
	spin spinner.Model

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new reading TUI for the given book over an already
// open engine. The theme and page mode come from the settings service.
func NewApp(ports *Ports, book *domain.Book, engine *textpage.Engine) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if book == nil {
		return nil, ErrMissingBook
	}
	if engine == nil {
		return nil, ErrMissingEngine
	}

	theme := domain.ThemeDark
	pageMode := domain.PageModePaginated
	if settings, err := ports.Settings.Get(); err == nil && settings != nil {
		theme = settings.Reader.Theme
		pageMode = settings.Reader.PageMode
	}

	s := stylesFor(theme)
	keys := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keys:        keys,
		book:        book,
		engine:      engine,
		readerView:  reader.NewView(s, keys, book, engine, pageMode),
		updates:     make(chan driving.PositionUpdate, positionBuffer),
		spin:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
		currentView: messages.ViewLoading,
	}, nil
}

// stylesFor maps the persisted theme preference onto a style set.
func stylesFor(theme domain.Theme) *styles.Styles {
	switch theme {
	case domain.ThemeLight:
		return styles.NewStyles(styles.LightTheme())
	case domain.ThemeSepia:
		return styles.NewStyles(styles.SepiaTheme())
	default:
		return styles.NewStyles(styles.DarkTheme())
	}
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It starts position recovery and the loading spinner.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("vibereader - "+a.book.Title),
		a.spin.Tick,
		a.openSession(),
	)
}

// openSession runs position recovery off the update loop.
func (a *App) openSession() tea.Cmd {
	return func() tea.Msg {
		session, err := a.ports.Reader.OpenForReading(a.ctx, a.book.ID, a.engine)
		return messages.SessionOpened{Session: session, Err: err}
	}
}

// waitForPosition relays the next settled position into the program.
// Re-issued after every PositionSettled message.
func (a *App) waitForPosition() tea.Cmd {
	return func() tea.Msg {
		return messages.PositionSettled{Update: <-a.updates}
	}
}

// relayPosition forwards settled positions into the update channel.
// Called from the session's tracking goroutine, so it must not block.
func (a *App) relayPosition(update driving.PositionUpdate) {
	select {
	case a.updates <- update:
	default:
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.readerView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		if a.currentView == messages.ViewLoading {
			a.spin, cmd = a.spin.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewLoading:
			if keymap.Matches(msg.String(), a.keys.Quit) {
				return a, tea.Quit
			}
			return a, nil

		case messages.ViewReader:
			a.readerView, cmd = a.readerView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			k := msg.String()
			switch {
			case keymap.Matches(k, a.keys.Back), keymap.Matches(k, a.keys.Help):
				a.currentView = messages.ViewReader
			case keymap.Matches(k, a.keys.Quit):
				return a, tea.Quit
			}
			return a, nil
		}
		return a, nil

	case messages.SessionOpened:
		if msg.Err != nil {
			a.err = msg.Err
			a.currentView = messages.ViewReader
			a.readerView, _ = a.readerView.Update(messages.ErrorOccurred{Err: msg.Err})
			return a, nil
		}
		a.session = msg.Session
		a.session.OnPositionSettled(a.relayPosition)
		a.readerView.SetProgress(a.session.Progress())
		a.currentView = messages.ViewReader
		return a, a.waitForPosition()

	case messages.PositionSettled:
		a.readerView, _ = a.readerView.Update(msg)
		return a, a.waitForPosition()

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.readerView, cmd = a.readerView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the reader view.
	if a.currentView == messages.ViewReader {
		a.readerView, cmd = a.readerView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewLoading:
		return a.viewLoading()
	case messages.ViewReader:
		return a.readerView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.readerView.View()
	}
}

// viewLoading renders the spinner shown while recovery runs.
func (a *App) viewLoading() string {
	title := a.styles.Title.Render(a.book.Title)
	line := fmt.Sprintf("%s %s", a.spin.View(), a.styles.Muted.Render("Restoring reading position..."))
	return fmt.Sprintf("\n  %s\n\n  %s\n", title, line)
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Reading:
  space/→/l/pgdn   Next page
  ←/h/pgup         Previous page
  ↓/↑, j/k         Scroll line by line
  g, home          Back to the start

Other:
  ?                Toggle this help
  esc              Back to the book
  q, ctrl+c        Quit (progress is saved)

[esc] back to the book`
}

// Run starts the TUI application and blocks until it exits. The
// tracking session is closed afterwards, flushing any pending progress
// write.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	if cerr := a.CloseSession(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// CloseSession flushes and releases the tracking session. Safe to call
// when no session was opened.
func (a *App) CloseSession() error {
	if a.session == nil {
		return nil
	}
	err := a.session.Close()
	a.session = nil
	return err
}

// Session returns the open tracking session, nil before recovery
// completes.
func (a *App) Session() driving.ReaderSession {
	return a.session
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.readerView.SetDimensions(width, height)
}
