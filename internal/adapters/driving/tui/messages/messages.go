// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLoading is shown while the reading session opens.
	ViewLoading ViewType = iota
	// ViewReader is the page view over the open book.
	ViewReader
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewReader:
		return "reader"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SessionOpened carries the outcome of position recovery. On success
// the renderer is already displaying the restored position.
type SessionOpened struct {
	Session driving.ReaderSession
	Err     error
}

// PositionSettled carries a live progress update from the tracking
// session.
type PositionSettled struct {
	Update driving.PositionUpdate
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
