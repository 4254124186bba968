package intercept

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KooshaPari/KlipDot/internal/store"
)

// 1x1 transparent PNG.
var testPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func TestIsScreenshotProcess(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"screencapture", true},
		{"scrot", true},
		{"gnome-screenshot", true},
		{"spectacle", true},
		{"flameshot", true},
		{"Flameshot", true},
		{"org.flameshot.Flameshot", true},
		{"bash", false},
		{"firefox", false},
		{"screen", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsScreenshotProcess(tc.name); got != tc.want {
				t.Errorf("IsScreenshotProcess(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func newTestInterceptor(t *testing.T, scanDir string) (*Interceptor, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	i := New(st, 0, nil)
	i.scanDirs = []string{scanDir}
	return i, st
}

func countImages(t *testing.T, st *store.Store) int {
	t.Helper()
	paths, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	return len(paths)
}

func TestScanRecentCapturesFreshImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shot.png"), testPNG, 0644); err != nil {
		t.Fatal(err)
	}

	i, st := newTestInterceptor(t, dir)
	i.ScanRecent()

	if got := countImages(t, st); got != 1 {
		t.Fatalf("captured %d images, want 1", got)
	}

	// A second sweep must not capture the same file again.
	i.ScanRecent()
	if got := countImages(t, st); got != 1 {
		t.Errorf("repeat sweep captured %d images, want 1", got)
	}
}

func TestScanRecentSkipsOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.png")
	if err := os.WriteFile(old, testPNG, 0644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-time.Minute)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	i, st := newTestInterceptor(t, dir)
	i.ScanRecent()

	if got := countImages(t, st); got != 0 {
		t.Errorf("captured %d images, want 0 for files outside the window", got)
	}
}

func TestScanRecentPrunesExpiredSeenFiles(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(shot, testPNG, 0644); err != nil {
		t.Fatal(err)
	}

	i, st := newTestInterceptor(t, dir)
	i.ScanRecent()
	if got := countImages(t, st); got != 1 {
		t.Fatalf("captured %d images, want 1", got)
	}
	if len(i.seenFiles) != 1 {
		t.Fatalf("seenFiles holds %d entries, want 1", len(i.seenFiles))
	}

	// Once the file ages out of the window its entry must go too, so
	// a long-running daemon does not accumulate one entry per capture.
	stale := time.Now().Add(-time.Minute)
	if err := os.Chtimes(shot, stale, stale); err != nil {
		t.Fatal(err)
	}
	i.ScanRecent()
	if len(i.seenFiles) != 0 {
		t.Errorf("seenFiles holds %d entries after expiry, want 0", len(i.seenFiles))
	}
	if got := countImages(t, st); got != 1 {
		t.Errorf("expiry sweep captured %d images, want 1", got)
	}
}

func TestScanRecentRecapturesModifiedFile(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(shot, testPNG, 0644); err != nil {
		t.Fatal(err)
	}

	i, st := newTestInterceptor(t, dir)
	i.ScanRecent()

	// A fresh mtime means new content; it is a new capture.
	bumped := time.Now().Add(time.Second)
	if err := os.Chtimes(shot, bumped, bumped); err != nil {
		t.Fatal(err)
	}
	i.ScanRecent()
	if got := countImages(t, st); got != 2 {
		t.Errorf("captured %d images after re-modification, want 2", got)
	}
}

func TestScanRecentSkipsNonImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}
	// Image extension but no image signature.
	if err := os.WriteFile(filepath.Join(dir, "fake.png"), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	i, st := newTestInterceptor(t, dir)
	i.ScanRecent()

	if got := countImages(t, st); got != 0 {
		t.Errorf("captured %d images, want 0", got)
	}
}

func TestScanRecentMissingDir(t *testing.T) {
	i, st := newTestInterceptor(t, "/nonexistent/dir")
	i.ScanRecent()

	if got := countImages(t, st); got != 0 {
		t.Errorf("captured %d images from a missing directory, want 0", got)
	}
}
