// Package terminal erases prompt lines once their answer has been read.
package terminal

import (
	"os"

	"atomicgo.dev/cursor"
	"golang.org/x/term"
)

const fallbackWidth = 80

// Width returns the width of the terminal on stdout, or 80 when unknown.
func Width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackWidth
}

// ClearPreviousLines erases a prompt of textLength characters (prompt plus
// typed answer) together with the empty line the Enter key left the cursor on.
func ClearPreviousLines(textLength int) {
	n := linesToClear(textLength, Width())
	for i := 0; i < n; i++ {
		cursor.StartOfLine()
		cursor.ClearLine()
		if i < n-1 {
			cursor.Up(1)
		}
	}
}

// linesToClear is the number of rows textLength characters wrap onto at the
// given width, plus the row below them.
func linesToClear(textLength, width int) int {
	if width <= 0 {
		width = fallbackWidth
	}
	rows := (textLength + width - 1) / width
	if rows < 1 {
		rows = 1
	}
	return rows + 1
}
