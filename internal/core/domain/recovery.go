package domain

// RecoveryState identifies where a reader session is in the
// open-and-restore sequence. Transitions run strictly forward:
//
//	load_index → restore_by_position → restore_by_chunk
//	           → restore_to_start → tracking
//
// with the restore states falling through in that order until one
// lands. Only tracking persists progress.
type RecoveryState string

// Session lifecycle states.
const (
	// RecoveryIdle is a session that has not begun opening.
	RecoveryIdle RecoveryState = "idle"

	// RecoveryLoadIndex is loading or scheduling the locations index.
	RecoveryLoadIndex RecoveryState = "load_index"

	// RecoveryRestoreByPosition is attempting the stored position id.
	RecoveryRestoreByPosition RecoveryState = "restore_by_position"

	// RecoveryRestoreByChunk is attempting the stored chunk index
	// through the locations index.
	RecoveryRestoreByChunk RecoveryState = "restore_by_chunk"

	// RecoveryRestoreToStart is falling back to the document start.
	RecoveryRestoreToStart RecoveryState = "restore_to_start"

	// RecoveryTracking is steady state: the position is displayed and
	// navigation is being persisted.
	RecoveryTracking RecoveryState = "tracking"

	// RecoveryClosed is a finished session.
	RecoveryClosed RecoveryState = "closed"
)

// IsValid returns true if the state is recognised.
func (s RecoveryState) IsValid() bool {
	switch s {
	case RecoveryIdle, RecoveryLoadIndex, RecoveryRestoreByPosition,
		RecoveryRestoreByChunk, RecoveryRestoreToStart, RecoveryTracking,
		RecoveryClosed:
		return true
	default:
		return false
	}
}

// IsRestoring returns true while the session is still deciding where to
// land.
func (s RecoveryState) IsRestoring() bool {
	switch s {
	case RecoveryLoadIndex, RecoveryRestoreByPosition,
		RecoveryRestoreByChunk, RecoveryRestoreToStart:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s RecoveryState) String() string {
	return string(s)
}
