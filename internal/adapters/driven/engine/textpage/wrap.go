package textpage

// viewLine is one display row of a wrapped chapter. start is the rune
// offset of the first rune on the row; a row's span runs to the start
// of the next row, so every offset in the chapter maps to exactly one
// row.
type viewLine struct {
	start int
	text  string
}

// wrapRunes wraps chapter text to the given width. Hard breaks at
// newlines are kept; longer lines break at the last space that fits,
// or mid-word when a run has no spaces. Every chapter wraps to at
// least one row so an empty chapter is still displayable.
func wrapRunes(runes []rune, width int) []viewLine {
	if width < 1 {
		width = 1
	}

	var lines []viewLine
	pos := 0
	for pos < len(runes) {
		hard := pos
		for hard < len(runes) && runes[hard] != '\n' {
			hard++
		}

		if hard == pos {
			lines = append(lines, viewLine{start: pos, text: ""})
		}
		for seg := pos; seg < hard; {
			end, next := breakLine(runes, seg, hard, width)
			lines = append(lines, viewLine{start: seg, text: string(runes[seg:end])})
			seg = next
		}

		pos = hard + 1
	}

	if len(lines) == 0 {
		lines = []viewLine{{start: 0, text: ""}}
	}
	return lines
}

// breakLine finds where the row starting at start ends, given the hard
// line runs to limit. end is the exclusive end of the row text; next is
// where the following row starts, past the space consumed by the break.
func breakLine(runes []rune, start, limit, width int) (end, next int) {
	if limit-start <= width {
		return limit, limit
	}

	window := start + width
	if runes[window] == ' ' {
		return window, window + 1
	}
	for k := window - 1; k > start; k-- {
		if runes[k] == ' ' {
			return k, k + 1
		}
	}
	// A run longer than the viewport with no break point.
	return window, window
}
