package textpage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

// positionScheme prefixes every identifier this engine mints. Other
// engines use other schemes; identifiers never cross engines.
const positionScheme = "vibe://"

// formatPosition encodes a spine index and rune offset as an opaque
// position identifier.
func formatPosition(spine, offset int) string {
	return fmt.Sprintf("%s%d/%d", positionScheme, spine, offset)
}

// parsePosition decodes an identifier minted by formatPosition. The
// returned error wraps domain.ErrPositionInvalid so callers can treat
// any parse failure as "not resolvable".
func parsePosition(positionID string) (spine, offset int, err error) {
	rest, ok := strings.CutPrefix(positionID, positionScheme)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not a text position", domain.ErrPositionInvalid, positionID)
	}

	spinePart, offsetPart, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q has no offset", domain.ErrPositionInvalid, positionID)
	}

	spine, err = strconv.Atoi(spinePart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad spine in %q", domain.ErrPositionInvalid, positionID)
	}
	offset, err = strconv.Atoi(offsetPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad offset in %q", domain.ErrPositionInvalid, positionID)
	}
	if spine < 0 || offset < 0 {
		return 0, 0, fmt.Errorf("%w: negative component in %q", domain.ErrPositionInvalid, positionID)
	}
	return spine, offset, nil
}

// ComparePositions orders two identifiers spine-major, offset-minor.
func (e *Engine) ComparePositions(a, b string) (int, error) {
	aSpine, aOffset, err := parsePosition(a)
	if err != nil {
		return 0, err
	}
	bSpine, bOffset, err := parsePosition(b)
	if err != nil {
		return 0, err
	}

	switch {
	case aSpine != bSpine:
		if aSpine < bSpine {
			return -1, nil
		}
		return 1, nil
	case aOffset != bOffset:
		if aOffset < bOffset {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, nil
	}
}
