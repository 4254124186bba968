package preview

import (
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

const sixelProbeTimeout = 500 * time.Millisecond

// probeSixel asks the terminal for its device attributes and looks for
// sixel support (attribute 4) in the reply. The query needs a real
// controlling terminal in raw mode; any failure along the way is
// treated as "no sixel support".
func probeSixel() bool {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return false
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return false
	}
	defer term.Restore(fd, oldState)

	if _, err := tty.WriteString("\x1b[c"); err != nil {
		return false
	}
	if err := tty.SetReadDeadline(time.Now().Add(sixelProbeTimeout)); err != nil {
		return false
	}

	// Reply looks like ESC [ ? 62 ; 4 ; ... c. Read until the final
	// 'c' or until the deadline fires.
	var reply strings.Builder
	buf := make([]byte, 64)
	for {
		n, err := tty.Read(buf)
		if n > 0 {
			reply.Write(buf[:n])
			if strings.ContainsRune(reply.String(), 'c') {
				break
			}
		}
		if err != nil {
			break
		}
	}

	return hasSixelAttribute(reply.String())
}

// hasSixelAttribute reports whether a primary device-attributes reply
// advertises attribute 4 (sixel graphics).
func hasSixelAttribute(reply string) bool {
	start := strings.Index(reply, "[?")
	if start < 0 {
		return false
	}
	end := strings.IndexRune(reply[start:], 'c')
	if end < 0 {
		return false
	}
	body := reply[start+2 : start+end]
	for _, attr := range strings.Split(body, ";") {
		if attr == "4" {
			return true
		}
	}
	return false
}
