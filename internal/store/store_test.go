package store

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// 1x1 transparent PNG.
var testPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveBytes(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveBytes(testPNG, "clipboard")
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, "clipboard-") {
		t.Errorf("filename %q must start with the source tag", name)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("filename %q must carry the detected extension", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(testPNG) {
		t.Errorf("stored %d bytes, want %d", len(data), len(testPNG))
	}
}

func TestSaveBytesExtensionFollowsSignature(t *testing.T) {
	s := newTestStore(t)

	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("fakejpegbody")...)
	path, err := s.SaveBytes(jpeg, "stream")
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("path = %q, want .jpg from the JPEG signature", path)
	}
}

func TestSaveBytesRejectsNonImage(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveBytes([]byte("just some text"), "clipboard"); !errors.Is(err, ErrNotImage) {
		t.Errorf("err = %v, want ErrNotImage", err)
	}
	if _, err := s.SaveBytes(nil, "clipboard"); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestSaveBytesSizeLimit(t *testing.T) {
	s, err := New(t.TempDir(), 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveBytes(testPNG, "clipboard"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestSaveBytesUniqueNames(t *testing.T) {
	s := newTestStore(t)

	a, err := s.SaveBytes(testPNG, "clipboard")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.SaveBytes(testPNG, "clipboard")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("burst saves must not collide on filename")
	}
}

func TestSaveFile(t *testing.T) {
	s := newTestStore(t)

	src := filepath.Join(t.TempDir(), "input.png")
	if err := os.WriteFile(src, testPNG, 0644); err != nil {
		t.Fatal(err)
	}

	path, err := s.SaveFile(src, "intercept")
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "intercept-") {
		t.Errorf("filename %q missing source tag", filepath.Base(path))
	}

	if _, err := s.SaveFile(filepath.Join(t.TempDir(), "missing.png"), "intercept"); err == nil {
		t.Error("expected error for missing source file")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)

	old, err := s.SaveBytes(testPNG, "a")
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	recent, err := s.SaveBytes(testPNG, "b")
	if err != nil {
		t.Fatal(err)
	}

	// Unrelated files in the directory are not listed.
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(got))
	}
	if got[0] != recent || got[1] != old {
		t.Errorf("List order = %v, want newest first", got)
	}
}

func TestCleanup(t *testing.T) {
	s := newTestStore(t)

	old, err := s.SaveBytes(testPNG, "old")
	if err != nil {
		t.Fatal(err)
	}
	stale := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}
	fresh, err := s.SaveBytes(testPNG, "fresh")
	if err != nil {
		t.Fatal(err)
	}

	removed, err := s.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old file must be deleted")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file must survive cleanup")
	}
}
