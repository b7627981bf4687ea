package display

import (
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to width columns, preserving ANSI escape sequences.
// A non-positive width uses DefaultWidth.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(text, width)
}
