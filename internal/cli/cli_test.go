package cli

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KooshaPari/KlipDot/internal/config"
	"github.com/KooshaPari/KlipDot/internal/scan"
)

// testPNG is a minimal 1x1 PNG.
const testPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func testConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestConfigPathCommand(t *testing.T) {
	path := testConfigPath(t)
	out, err := execute(t, "config", "path", "--config", path)
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("expected %q, got %q", path, strings.TrimSpace(out))
	}
}

func TestConfigInit(t *testing.T) {
	path := testConfigPath(t)
	out, err := execute(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected output to mention %s, got %q", path, out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}

	if _, err := execute(t, "config", "init", "--config", path); err == nil {
		t.Error("expected error when config already exists")
	}

	if _, err := execute(t, "config", "init", "--force", "--config", path); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
	configForce = false
}

func TestConfigShowDefaults(t *testing.T) {
	path := testConfigPath(t)
	out, err := execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"screenshot_dir", "poll_interval", "showing defaults"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestConfigSet(t *testing.T) {
	path := testConfigPath(t)
	if _, err := execute(t, "config", "set", "poll_interval", "500ms", "--config", path); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	loader := config.NewLoaderWithPath(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if cfg.PollInterval.Std().Milliseconds() != 500 {
		t.Errorf("expected 500ms poll interval, got %s", cfg.PollInterval.Std())
	}
}

func TestConfigSetUnknownKey(t *testing.T) {
	path := testConfigPath(t)
	if _, err := execute(t, "config", "set", "no.such.key", "1", "--config", path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestCaptureSavesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	shots := filepath.Join(dir, "shots")
	os.WriteFile(path, []byte("screenshot_dir: "+shots+"\n"), 0644)

	data, err := base64.StdEncoding.DecodeString(testPNGBase64)
	if err != nil {
		t.Fatalf("failed to decode test PNG: %v", err)
	}
	src := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(src, data, 0644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}

	out, err := execute(t, "capture", src, "--source", "test", "--config", path)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	saved := strings.TrimSpace(out)
	if !strings.HasPrefix(filepath.Base(saved), "test-") {
		t.Errorf("expected saved name with test- prefix, got %s", saved)
	}
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
	captureSource = "file"
}

func TestCaptureMissingFile(t *testing.T) {
	path := testConfigPath(t)
	t.Setenv("HOME", filepath.Dir(path))
	if _, err := execute(t, "capture", "/nonexistent/image.png", "--config", path); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigPathEnvOverride(t *testing.T) {
	path := testConfigPath(t)
	t.Setenv("KLIPDOT_CONFIG", path)
	rootConfigPath = ""

	out, err := execute(t, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("expected %q from KLIPDOT_CONFIG, got %q", path, strings.TrimSpace(out))
	}

	// The flag wins over the environment.
	other := testConfigPath(t)
	out, err = execute(t, "config", "path", "--config", other)
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if strings.TrimSpace(out) != other {
		t.Errorf("expected flag value %q, got %q", other, strings.TrimSpace(out))
	}
}

func TestWriterTTY(t *testing.T) {
	if writerTTY(new(bytes.Buffer)) {
		t.Error("a bytes.Buffer is not a terminal")
	}
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer devNull.Close()
	if writerTTY(devNull) {
		t.Error("/dev/null is not a terminal")
	}
}

func TestStatusDotPlainForNonTTY(t *testing.T) {
	buf := new(bytes.Buffer)
	for _, ok := range []bool{true, false} {
		if got := statusDot(buf, ok); got != "●" {
			t.Errorf("statusDot(buf, %v) = %q, want plain dot without escapes", ok, got)
		}
	}
}

func TestPreviewPipedOutputPrintsMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data, err := base64.StdEncoding.DecodeString(testPNGBase64)
	if err != nil {
		t.Fatal(err)
	}
	img := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(img, data, 0644); err != nil {
		t.Fatal(err)
	}

	// The command writes to a buffer, not a terminal, so it must emit
	// metadata text rather than graphics escape sequences.
	out, err := execute(t, "preview", img, "--config", path)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !strings.Contains(out, "(1x1)") {
		t.Errorf("expected dimensions in metadata output, got %q", out)
	}
	if strings.Contains(out, "\x1b") {
		t.Errorf("piped output must carry no escape sequences, got %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := execute(t, "no-such-command"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestParseLiveLine(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		text   string
		cursor int
	}{
		{"bare text", "cp shot.png /tmp", "cp shot.png /tmp", 16},
		{"cursor prefix", "3\tcp shot.png", "cp shot.png", 3},
		{"non-numeric prefix", "a\tb", "a\tb", 3},
		{"empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cursor := parseLiveLine(tt.input)
			if text != tt.text || cursor != tt.cursor {
				t.Errorf("parseLiveLine(%q) = (%q, %d), want (%q, %d)",
					tt.input, text, cursor, tt.text, tt.cursor)
			}
		})
	}
}

func TestPreviewAllowed(t *testing.T) {
	cfg := config.DefaultConfig()

	if !previewAllowed(cfg, nil) {
		t.Error("expected previews allowed for stdin monitoring")
	}
	if !previewAllowed(cfg, []string{"w3m"}) {
		t.Error("expected previews allowed for inline-capable hosts")
	}
	if previewAllowed(cfg, []string{"vim"}) {
		t.Error("expected previews suppressed for editors")
	}
	if previewAllowed(cfg, []string{"htop"}) {
		t.Error("expected previews suppressed for DispatchNone hosts")
	}

	cfg.Preview.Enabled = false
	if previewAllowed(cfg, nil) {
		t.Error("expected previews suppressed when disabled in config")
	}
}

func TestLookupProfileDispatchUsedByMonitor(t *testing.T) {
	// monitor relies on profile dispatch to gate rendering; make sure
	// the profiles it branches on stay distinguishable.
	if p := scan.LookupProfile("ranger"); p == nil || p.Dispatch == scan.DispatchInline {
		t.Error("expected ranger profile with non-inline dispatch")
	}
}
