// Package reader provides the page view over an open book for the TUI.
package reader

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/engine/textpage"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/components/status"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/keymap"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/messages"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/styles"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

// View is the reading view. It renders the engine's current page and a
// status bar fed by the tracking session's settled positions.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	book     *domain.Book
	engine   *textpage.Engine
	pageMode domain.PageMode
	bar      *status.Bar

	progress    driving.PositionUpdate
	hasProgress bool
	width       int
	height      int
	ready       bool
	err         error
}

// NewView creates a new reading view over an open engine.
func NewView(
	s *styles.Styles, km *keymap.KeyMap,
	book *domain.Book, engine *textpage.Engine, pageMode domain.PageMode,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:   s,
		keys:     km,
		book:     book,
		engine:   engine,
		pageMode: pageMode,
		bar:      status.NewBar(s, km),
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the reading view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.PositionSettled:
		v.SetProgress(msg.Update)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.bar.SetState(status.StateError)
		v.bar.SetMessage(msg.Err.Error())
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keys.NextPage):
		v.pageForward()
	case keymap.Matches(k, v.keys.PrevPage):
		v.pageBackward()
	case keymap.Matches(k, v.keys.ScrollDown):
		if v.pageMode == domain.PageModeScroll {
			v.engine.Scroll(1)
		} else {
			v.pageForward()
		}
	case keymap.Matches(k, v.keys.ScrollUp):
		if v.pageMode == domain.PageModeScroll {
			v.engine.Scroll(-1)
		} else {
			v.pageBackward()
		}
	case keymap.Matches(k, v.keys.Top):
		if err := v.engine.DisplayAt(context.Background(), v.engine.StartPosition()); err != nil {
			v.err = err
		}
	case keymap.Matches(k, v.keys.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(k, v.keys.Quit):
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	v.syncBar()
	return v, nil
}

// pageForward advances by one viewport, page turn or full-window scroll
// depending on the page mode.
func (v *View) pageForward() {
	if v.pageMode == domain.PageModeScroll {
		v.engine.Scroll(v.contentHeight())
		return
	}
	v.engine.NextPage()
}

// pageBackward retreats by one viewport.
func (v *View) pageBackward() {
	if v.pageMode == domain.PageModeScroll {
		v.engine.Scroll(-v.contentHeight())
		return
	}
	v.engine.PrevPage()
}

// SetProgress records a settled position for the status bar. The
// chapter shown is the one on screen, which can be ahead of the settled
// position while a write is pending.
func (v *View) SetProgress(update driving.PositionUpdate) {
	v.progress = update
	v.hasProgress = true
	v.bar.SetState(status.StateTracking)
	v.bar.SetFraction(update.Fraction)
	v.syncBar()
}

// syncBar refreshes the chapter indicator from the engine.
func (v *View) syncBar() {
	page := v.engine.Page()
	v.bar.SetChapter(page.ChapterIndex+1, page.ChapterCount)
}

// contentWidth returns the width available for page text.
func (v *View) contentWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// contentHeight returns the number of page rows that fit between the
// header and the footer.
func (v *View) contentHeight() int {
	// Reserve lines for the header, separator, spacer, status bar, and help.
	reserved := 5
	h := v.height - reserved
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the reading view.
func (v *View) View() string {
	var b strings.Builder

	page := v.engine.Page()

	// Title line
	title := v.book.Title
	if title == "" {
		title = v.book.ID
	}
	b.WriteString(v.styles.Title.Render(title))
	if page.ChapterTitle != "" {
		b.WriteString("  ")
		b.WriteString(v.styles.Muted.Render(page.ChapterTitle))
	}
	b.WriteString("\n")

	// Separator
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", minInt(v.contentWidth(), 72))))
	b.WriteString("\n")

	// Error state
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	// Page content, padded so the footer stays put on short pages
	height := v.contentHeight()
	for i := 0; i < height; i++ {
		if i < len(page.Lines) {
			b.WriteString(v.styles.Normal.Render(page.Lines[i]))
		}
		b.WriteString("\n")
	}

	// Footer
	b.WriteString(v.bar.View())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render(
		"[space/→] next  [←] prev  [j/k] scroll  [g] start  [?] help  [q] quit",
	)
}

// SetDimensions sets the view dimensions and resizes the engine's
// viewport to the content area.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.bar.SetWidth(width)
	v.engine.SetViewport(v.contentWidth(), v.contentHeight())
	v.syncBar()
}

// Book returns the book being read.
func (v *View) Book() *domain.Book {
	return v.book
}

// Progress returns the most recent settled position.
func (v *View) Progress() driving.PositionUpdate {
	return v.progress
}

// Tracking reports whether a settled position has arrived yet.
func (v *View) Tracking() bool {
	return v.hasProgress
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
