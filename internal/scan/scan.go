// Package scan finds image references embedded in line-oriented text:
// existing file paths, image URLs, and inline base64 data URIs. Pattern
// matching is context-sensitive to a known host application profile,
// but the profile only governs downstream dispatch and pattern width,
// never detection accuracy.
package scan

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Source identifies where a detection originated.
type Source int

const (
	SourceFilePath Source = iota
	SourceURL
	SourceBase64Data
	SourceStdin
	SourceClipboard
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceFilePath:
		return "file"
	case SourceURL:
		return "url"
	case SourceBase64Data:
		return "base64"
	case SourceStdin:
		return "stdin"
	case SourceClipboard:
		return "clipboard"
	default:
		return "unknown"
	}
}

// Detection is a single image reference found in text. It is immutable
// after construction and carries no links to other detections.
type Detection struct {
	// Path is the resolved filesystem location. Set only for
	// SourceFilePath detections, which are guaranteed to exist on disk
	// at detection time.
	Path string

	// URL is set for SourceURL detections. URLs are reference-only:
	// they are never fetched or materialized here.
	URL string

	// Payload is the raw data URI for SourceBase64Data detections.
	// Decoding is deferred to the decode package.
	Payload string

	Source Source

	// Context is the originating line, kept for diagnostics.
	Context string

	// Line is the 1-based line number within the monitored stream.
	Line int
}

const extPattern = `(?i:png|jpe?g|gif|bmp|webp|svg|tiff?|ico)`

var (
	// Path tokens bounded by whitespace/quotes/start-of-line, beginning
	// with ~, /, ., a drive letter, or a UNC prefix.
	pathPattern = regexp.MustCompile(`(?:^|[\s"'` + "`" + `])((?:[~/.]|[A-Za-z]:[\\/]|\\\\)[^"'\s` + "`" + `]*\.(?:` + extPattern + `))`)

	// Bare filenames without a leading path marker; used by
	// file-manager profiles, which list names column-style.
	barePattern = regexp.MustCompile(`(?:^|[\s"'` + "`" + `])([^"'\s` + "`" + `]+\.(?:` + extPattern + `))`)

	urlPattern = regexp.MustCompile(`https?://[^\s"']+\.(?:` + extPattern + `)(?:\?[^\s"']*)?`)

	dataURIPattern = regexp.MustCompile(`data:image/(?:png|jpe?g|gif|bmp|webp|svg\+xml);base64,[A-Za-z0-9+/=]+`)
)

// Scanner locates image references in lines of text. The zero value is
// not usable; construct with New.
type Scanner struct {
	homeDir string
}

// New returns a scanner. The home directory is resolved once for ~
// expansion; if unavailable, ~ tokens simply fail their existence check.
func New() *Scanner {
	home, _ := os.UserHomeDir()
	return &Scanner{homeDir: home}
}

// Scan finds image references in line. A line may yield several
// detections. File-path candidates that do not exist on disk are
// silently dropped; that is the normal case, not an error.
func (s *Scanner) Scan(line string, profile *Profile) []Detection {
	return s.scanLine(line, profile, 0)
}

// ScanLine is Scan with an explicit line number recorded on each
// detection.
func (s *Scanner) ScanLine(line string, profile *Profile, lineNum int) []Detection {
	return s.scanLine(line, profile, lineNum)
}

func (s *Scanner) scanLine(line string, profile *Profile, lineNum int) []Detection {
	var detected []Detection

	pattern := pathPattern
	if profile != nil && profile.Kind == KindFileManager {
		// File managers print bare names in listings; scan the whole
		// line without requiring a path marker.
		pattern = barePattern
	}

	for _, m := range pattern.FindAllStringSubmatch(line, -1) {
		candidate := s.ExpandPath(m[1])
		if fileExists(candidate) {
			detected = append(detected, Detection{
				Path:    candidate,
				Source:  SourceFilePath,
				Context: line,
				Line:    lineNum,
			})
		}
	}

	// URL detections are always evaluated; they are forwarded as
	// references only and never fetched.
	for _, m := range urlPattern.FindAllString(line, -1) {
		detected = append(detected, Detection{
			URL:     strings.TrimRight(m, `"' `),
			Source:  SourceURL,
			Context: line,
			Line:    lineNum,
		})
	}

	for _, m := range dataURIPattern.FindAllString(line, -1) {
		detected = append(detected, Detection{
			Payload: m,
			Source:  SourceBase64Data,
			Context: line,
			Line:    lineNum,
		})
	}

	return detected
}

// ExpandPath resolves a leading ~ to the user's home directory.
func (s *Scanner) ExpandPath(path string) string {
	if path == "~" {
		return s.homeDir
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(s.homeDir, path[2:])
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
