// Package status provides the reading status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/keymap"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driving/tui/styles"
)

// State represents the current reading state for display.
type State string

const (
	StateRestoring State = "restoring"
	StateTracking  State = "tracking"
	StateError     State = "error"
)

// Bar displays reading progress and keybinding hints.
type Bar struct {
	styles       *styles.Styles
	keymap       *keymap.KeyMap
	state        State
	message      string
	fraction     *float64
	chapter      int
	chapterCount int
	width        int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateRestoring,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	// Left side: progress
	left := s.renderLeft()

	// Right side: keybinding hints
	right := s.renderRight()

	// Calculate padding
	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := s.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	bar := s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)

	return bar
}

// renderLeft renders the left side of the status bar.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateRestoring:
		return s.styles.Muted.Render("Restoring position...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateTracking:
		return s.styles.Normal.Render(s.renderProgress())
	}
	return s.styles.Muted.Render("Ready")
}

// renderProgress formats the completion percent and chapter position.
// The percent is omitted until a locations index has produced one.
func (s *Bar) renderProgress() string {
	chapter := fmt.Sprintf("Chapter %d of %d", s.chapter, s.chapterCount)
	if s.fraction == nil {
		return chapter
	}
	percent := int(*s.fraction*100 + 0.5)
	return fmt.Sprintf("%d%%  %s", percent, chapter)
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hint := fmt.Sprintf("%s: %s", h.Key, h.Desc)
		hints = append(hints, hint)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetFraction sets the completion fraction, nil when unknown.
func (s *Bar) SetFraction(fraction *float64) {
	s.fraction = fraction
}

// Fraction returns the completion fraction, nil when unknown.
func (s *Bar) Fraction() *float64 {
	return s.fraction
}

// SetChapter sets the displayed chapter position, 1-based.
func (s *Bar) SetChapter(chapter, chapterCount int) {
	s.chapter = chapter
	s.chapterCount = chapterCount
}

// Chapter returns the displayed chapter, 1-based.
func (s *Bar) Chapter() int {
	return s.chapter
}

// ChapterCount returns the total chapter count.
func (s *Bar) ChapterCount() int {
	return s.chapterCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to the restoring state.
func (s *Bar) Clear() {
	s.state = StateRestoring
	s.message = ""
	s.fraction = nil
	s.chapter = 0
	s.chapterCount = 0
}
