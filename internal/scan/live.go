package scan

import (
	"os"
	"strings"

	"github.com/KooshaPari/KlipDot/internal/imgsig"
)

// LiveTracker is the incremental variant of reference detection: given
// the current input text and cursor offset, it finds the image path
// token under the cursor and tracks whether a floating preview should
// appear or disappear. Exactly one preview is visible at a time.
type LiveTracker struct {
	scanner *Scanner
	current string
}

// NewLiveTracker returns a tracker with no preview showing.
func NewLiveTracker(scanner *Scanner) *LiveTracker {
	if scanner == nil {
		scanner = New()
	}
	return &LiveTracker{scanner: scanner}
}

// Update re-evaluates the token under cursor and reports whether preview
// visibility changed. The candidate check is extension-based, not a
// signature read, to stay cheap on every keystroke.
func (lt *LiveTracker) Update(text string, cursor int) bool {
	candidate := lt.pathAtCursor(text, cursor)

	switch {
	case candidate != "" && candidate != lt.current:
		lt.current = candidate
		return true
	case candidate == "" && lt.current != "":
		lt.current = ""
		return true
	default:
		return false
	}
}

// Current returns the path being previewed, or "" when no preview is
// showing.
func (lt *LiveTracker) Current() string {
	return lt.current
}

// pathAtCursor extracts the whitespace/quote-delimited token containing
// cursor and returns it as a resolved path if it names an existing
// image file.
func (lt *LiveTracker) pathAtCursor(text string, cursor int) string {
	if cursor > len(text) {
		cursor = len(text)
	}
	if cursor < 0 {
		cursor = 0
	}

	isBoundary := func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '"' || r == '\''
	}

	start := 0
	if i := strings.LastIndexFunc(text[:cursor], isBoundary); i >= 0 {
		start = i + 1
	}
	end := len(text)
	if i := strings.IndexFunc(text[cursor:], isBoundary); i >= 0 {
		end = cursor + i
	}
	if start >= end {
		return ""
	}

	token := text[start:end]
	if !imgsig.HasImageExtension(token) {
		return ""
	}

	path := lt.scanner.ExpandPath(token)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
