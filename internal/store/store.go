// Package store materializes detected image bytes as files in the
// screenshot directory and manages their lifecycle: naming, size
// limits, recency listing, and age-based cleanup.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KooshaPari/KlipDot/internal/imgsig"
)

const (
	// DefaultMaxFileSize caps a single materialized image at 10 MiB.
	DefaultMaxFileSize = 10 << 20

	// DefaultCleanupDays is the retention period for Cleanup.
	DefaultCleanupDays = 30

	timestampLayout = "2006-01-02T15-04-05.000Z"
)

var (
	// ErrTooLarge reports image data over the configured size limit.
	ErrTooLarge = errors.New("image exceeds maximum file size")

	// ErrNotImage reports bytes without a recognized image signature.
	ErrNotImage = errors.New("data does not carry an image signature")
)

// Store writes images into a single directory. Construct with New.
type Store struct {
	dir     string
	maxSize int64
	logger  *slog.Logger
}

// New returns a store rooted at dir, creating it if needed. maxSize of
// zero means DefaultMaxFileSize. If logger is nil, slog.Default() is
// used.
func New(dir string, maxSize int64, logger *slog.Logger) (*Store, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create screenshot directory: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize, logger: logger}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string { return s.dir }

// SaveBytes materializes image data as a new file and returns its
// path. The bytes must carry a recognized image signature; the file
// extension follows the detected format, never a caller claim. source
// tags the filename with where the image came from (clipboard, stream,
// intercept).
func (s *Store) SaveBytes(data []byte, source string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("save image: empty data")
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("save image: %d bytes: %w", len(data), ErrTooLarge)
	}

	format := imgsig.Detect(data)
	if format == imgsig.FormatUnknown {
		return "", fmt.Errorf("save image: %w", ErrNotImage)
	}

	path := filepath.Join(s.dir, filename(source, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	s.logger.Info("image materialized",
		"path", path, "format", format.String(), "bytes", len(data))
	return path, nil
}

// SaveFile copies an existing image file into the store under a
// generated name.
func (s *Store) SaveFile(path, source string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("save image file: %w", err)
	}
	if fi.Size() > s.maxSize {
		return "", fmt.Errorf("save image file: %d bytes: %w", fi.Size(), ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("save image file: %w", err)
	}
	return s.SaveBytes(data, source)
}

// List returns the store's image paths, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}

	type item struct {
		path string
		mod  time.Time
	}
	var items []item
	for _, e := range entries {
		if e.IsDir() || !imgsig.HasImageExtension(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, item{filepath.Join(s.dir, e.Name()), info.ModTime()})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].mod.After(items[j].mod) })

	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.path
	}
	return paths, nil
}

// Cleanup deletes images older than the given number of days and
// returns how many were removed. Files that disappear mid-walk are
// skipped, not errors.
func (s *Store) Cleanup(days int) (int, error) {
	if days <= 0 {
		days = DefaultCleanupDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("cleanup screenshots: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !imgsig.HasImageExtension(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("cleanup skip", "path", path, "error", err)
			continue
		}
		removed++
	}

	s.logger.Info("cleanup complete", "removed", removed, "days", days)
	return removed, nil
}

// filename builds {source}-{timestamp}-{id}.{ext} with a UTC
// millisecond timestamp and a short random id to keep burst saves from
// colliding.
func filename(source string, format imgsig.Format) string {
	if source == "" {
		source = "image"
	}
	ts := time.Now().UTC().Format(timestampLayout)
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s.%s", source, ts, id, format.Extension())
}
