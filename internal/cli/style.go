package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// writerTTY reports whether w writes to an interactive terminal.
// Styled output and inline previews are suppressed otherwise.
func writerTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// statusDot returns a colored status indicator for w, plain when w is
// not a terminal.
func statusDot(w io.Writer, ok bool) string {
	out := termenv.NewOutput(w)
	if !writerTTY(w) {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	dot := out.String("●")
	if ok {
		return dot.Foreground(out.Color("2")).String()
	}
	return dot.Foreground(out.Color("1")).String()
}
