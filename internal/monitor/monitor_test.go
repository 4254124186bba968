package monitor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/KooshaPari/KlipDot/internal/scan"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests spawn sh")
	}
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func collect(ch <-chan scan.Detection) []scan.Detection {
	var all []scan.Detection
	for d := range ch {
		all = append(all, d)
	}
	return all
}

func TestRunPassthroughAndDetection(t *testing.T) {
	requireShell(t)
	img := writeTestImage(t)

	var stdout, stderr bytes.Buffer
	m := New(nil, &stdout, &stderr, nil)

	script := fmt.Sprintf("echo 'Saved to %s'; echo 'just noise'", img)
	if err := m.Run(context.Background(), "sh", "-c", script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := fmt.Sprintf("Saved to %s\njust noise\n", img)
	if stdout.String() != want {
		t.Errorf("passthrough = %q, want %q", stdout.String(), want)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr passthrough: %q", stderr.String())
	}

	detections := collect(m.Detections())
	if len(detections) != 1 {
		t.Fatalf("got %d detections, want 1", len(detections))
	}
	if detections[0].Path != img {
		t.Errorf("path = %q, want %q", detections[0].Path, img)
	}
	if detections[0].Source != scan.SourceFilePath {
		t.Errorf("source = %v, want SourceFilePath", detections[0].Source)
	}
}

func TestRunDeduplicatesRepeatedLines(t *testing.T) {
	requireShell(t)
	img := writeTestImage(t)

	var stdout, stderr bytes.Buffer
	m := New(nil, &stdout, &stderr, nil)

	line := fmt.Sprintf("Saved to %s", img)
	script := fmt.Sprintf("echo '%[1]s'; echo '%[1]s'; echo '%[1]s'", line)
	if err := m.Run(context.Background(), "sh", "-c", script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Passthrough keeps every copy; only the first is scanned.
	want := strings.Repeat(line+"\n", 3)
	if stdout.String() != want {
		t.Errorf("passthrough = %q, want %q", stdout.String(), want)
	}
	detections := collect(m.Detections())
	if len(detections) != 1 {
		t.Fatalf("got %d detections for repeated identical lines, want 1", len(detections))
	}
}

func TestRunRescansAfterInterveningLine(t *testing.T) {
	requireShell(t)
	img := writeTestImage(t)

	var stdout, stderr bytes.Buffer
	m := New(nil, &stdout, &stderr, nil)

	line := fmt.Sprintf("Saved to %s", img)
	script := fmt.Sprintf("echo '%[1]s'; echo 'other'; echo '%[1]s'", line)
	if err := m.Run(context.Background(), "sh", "-c", script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// One slot only: returning to a prior line counts as a change.
	detections := collect(m.Detections())
	if len(detections) != 2 {
		t.Fatalf("got %d detections, want 2", len(detections))
	}
}

func TestRunScansStderr(t *testing.T) {
	requireShell(t)
	img := writeTestImage(t)

	var stdout, stderr bytes.Buffer
	m := New(nil, &stdout, &stderr, nil)

	script := fmt.Sprintf("echo 'error: cannot open %s' >&2", img)
	if err := m.Run(context.Background(), "sh", "-c", script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(stderr.String(), img) {
		t.Errorf("stderr passthrough missing line: %q", stderr.String())
	}
	if got := len(collect(m.Detections())); got != 1 {
		t.Errorf("got %d detections from stderr, want 1", got)
	}
}

func TestRunStripsEscapesForScanOnly(t *testing.T) {
	requireShell(t)
	img := writeTestImage(t)

	var stdout bytes.Buffer
	m := New(nil, &stdout, nil, nil)

	// The path is wrapped in color escapes; passthrough keeps them,
	// scanning must see through them.
	script := fmt.Sprintf(`printf '\033[31m%s\033[0m\n'`, img)
	if err := m.Run(context.Background(), "sh", "-c", script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(stdout.String(), "\x1b[31m") {
		t.Error("escape sequences must survive passthrough")
	}
	if got := len(collect(m.Detections())); got != 1 {
		t.Errorf("got %d detections through escapes, want 1", got)
	}
}

func TestRunReportsExitStatus(t *testing.T) {
	requireShell(t)

	m := New(nil, nil, nil, nil)
	err := m.Run(context.Background(), "sh", "-c", "echo out; exit 3")
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Errorf("err = %v, want exit status 3", err)
	}
	// The channel is still closed cleanly on failure.
	collect(m.Detections())
}

func TestRunStartFailure(t *testing.T) {
	m := New(nil, nil, nil, nil)
	if err := m.Run(context.Background(), "/nonexistent/binary"); err == nil {
		t.Fatal("expected error for unstartable command")
	}
}

func TestRunDropsWithoutConsumer(t *testing.T) {
	requireShell(t)
	img := writeTestImage(t)

	m := New(nil, nil, nil, nil)

	// Emit more detections than the queue holds, with nobody reading.
	// Each line is distinct so none are collapsed as repeats.
	script := fmt.Sprintf("for i in $(seq 1 %d); do echo \"line $i: %s\"; done",
		detectionQueueSize+10, img)
	if err := m.Run(context.Background(), "sh", "-c", script); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(collect(m.Detections())); got != detectionQueueSize {
		t.Errorf("queued detections = %d, want %d with the rest dropped", got, detectionQueueSize)
	}
	if m.dropped != 10 {
		t.Errorf("dropped = %d, want 10", m.dropped)
	}
}

func TestMonitorReader(t *testing.T) {
	img := writeTestImage(t)

	var stdout bytes.Buffer
	m := New(nil, &stdout, nil, nil)

	input := fmt.Sprintf("first\n%s\nlast without newline", img)
	if err := m.MonitorReader(strings.NewReader(input)); err != nil {
		t.Fatalf("MonitorReader: %v", err)
	}

	if stdout.String() != input {
		t.Errorf("passthrough = %q, want input verbatim", stdout.String())
	}
	detections := collect(m.Detections())
	if len(detections) != 1 {
		t.Fatalf("got %d detections, want 1", len(detections))
	}
	if detections[0].Line != 2 {
		t.Errorf("line = %d, want 2", detections[0].Line)
	}
}

func TestRecentContext(t *testing.T) {
	m := New(nil, nil, nil, nil)

	for i := 0; i < 500; i++ {
		m.appendContext(fmt.Sprintf("line %d padded out to some width", i))
	}

	ctxBuf := m.RecentContext()
	if len(ctxBuf) > contextBufferMax {
		t.Errorf("context buffer %d bytes, want <= %d", len(ctxBuf), contextBufferMax)
	}
	if !strings.Contains(ctxBuf, "line 499") {
		t.Error("context buffer must keep the newest lines")
	}
	if strings.Contains(ctxBuf, "line 0 ") {
		t.Error("context buffer must drop the oldest lines")
	}
}
