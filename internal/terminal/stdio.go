// Package terminal detects terminals and reads secrets without echo.
package terminal

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ClearLine moves the cursor to the first column and clears the line.
const ClearLine = "\r\x1b[2K"

func InputIsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// CanUpdateStatus returns true if status lines can be redrawn in place, that
// is fd is a terminal which understands ANSI control sequences.
func CanUpdateStatus(fd uintptr) bool {
	if !term.IsTerminal(int(fd)) {
		return false
	}
	t := os.Getenv("TERM")
	return t != "" && t != "dumb"
}

// ClearCurrentLine removes all characters from the current line of wr.
func ClearCurrentLine(wr io.Writer) error {
	_, err := io.WriteString(wr, ClearLine)
	return err
}

// Width returns the number of columns of the terminal fd, or zero.
func Width(fd uintptr) int {
	w, _, err := term.GetSize(int(fd))
	if err != nil {
		return 0
	}
	return w
}
