// Package terminal holds the TTY-facing plumbing: detection, paging,
// status messages, structured output and prompts.
package terminal

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY returns true if the given file descriptor is a TTY.
func IsTTY(fd int) bool {
	return term.IsTerminal(fd)
}

// IsTerminalWriter reports whether w is an *os.File attached to a TTY.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTTY(int(f.Fd()))
}
