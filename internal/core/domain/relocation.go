package domain

import "time"

// Relocation is emitted by the rendering engine each time the displayed
// position settles (page turn, scroll stop, jump). It carries the
// engine's own position identifier; consumers derive everything else.
type Relocation struct {
	// PositionID is the engine-specific identifier of the settled
	// position.
	PositionID string

	// Chapter is the spine index of the chapter containing the
	// position, -1 when the engine does not report one.
	Chapter int

	// At is when the position settled.
	At time.Time
}
