// Package monitor wraps a child process (or stdin) and watches its
// output for image references. Every byte is passed through to the
// real terminal before any scanning happens; detection never delays or
// alters the stream.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sync/errgroup"

	"github.com/KooshaPari/KlipDot/internal/scan"
	"github.com/KooshaPari/KlipDot/internal/track"
)

const (
	// contextBufferMax bounds the rolling context buffer; when it
	// overflows it is truncated from the front to contextBufferKeep.
	contextBufferMax  = 4096
	contextBufferKeep = 2048

	// detectionQueueSize bounds the detection channel. A slow or
	// absent consumer causes drops, never backpressure on the stream.
	detectionQueueSize = 64
)

// Monitor tees a child's stdout/stderr to the terminal and scans each
// line for image references. Construct with New; run one command per
// Monitor.
type Monitor struct {
	scanner *scan.Scanner
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger

	detections chan scan.Detection
	dropped    int

	mu      sync.Mutex
	context []byte
}

// New returns a monitor teeing passthrough output to stdout and
// stderr. If logger is nil, slog.Default() is used.
func New(scanner *scan.Scanner, stdout, stderr io.Writer, logger *slog.Logger) *Monitor {
	if scanner == nil {
		scanner = scan.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		scanner:    scanner,
		stdout:     stdout,
		stderr:     stderr,
		logger:     logger,
		detections: make(chan scan.Detection, detectionQueueSize),
	}
}

// Detections returns the channel of scan results. It is closed when
// the monitored command (or stdin stream) ends.
func (m *Monitor) Detections() <-chan scan.Detection { return m.detections }

// Run spawns the command and monitors it until exit. The command's
// exit status is always awaited and returned, even when a stream read
// failed along the way. The TUI profile for the command's binary, if
// any, widens scanning and is reported to the consumer via each
// detection.
func (m *Monitor) Run(ctx context.Context, name string, args ...string) error {
	profile := scan.LookupProfile(name)
	if profile != nil {
		m.logger.Info("known terminal application",
			"name", profile.Name, "supports_images", profile.SupportsImages)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		close(m.detections)
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		close(m.detections)
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		close(m.detections)
		return fmt.Errorf("start %s: %w", name, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		m.streamLoop(stdout, m.stdout, "stdout", profile)
		return nil
	})
	g.Go(func() error {
		m.streamLoop(stderr, m.stderr, "stderr", profile)
		return nil
	})
	g.Wait()

	close(m.detections)
	if m.dropped > 0 {
		m.logger.Debug("detections dropped without a consumer", "count", m.dropped)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// MonitorReader scans an already-open stream, teeing it to the
// monitor's stdout. Used for stdin piping.
func (m *Monitor) MonitorReader(r io.Reader) error {
	m.streamLoop(r, m.stdout, "stdin", nil)
	close(m.detections)
	return nil
}

// streamLoop reads one stream to EOF. A read error ends this stream
// only; the sibling stream and the exit-status wait continue.
func (m *Monitor) streamLoop(r io.Reader, out io.Writer, stream string, profile *scan.Profile) {
	br := bufio.NewReaderSize(r, 64*1024)
	lineNum := 0

	// One slot per stream, owned by this goroutine alone. Repeated
	// identical lines pass through but are scanned only once.
	tracker := track.New()

	for {
		line, err := readLine(br)
		if len(line) > 0 {
			lineNum++

			// Verbatim passthrough first, escape sequences intact.
			if out != nil {
				if _, werr := out.Write(line); werr != nil {
					m.logger.Warn("passthrough write failed",
						"stream", stream, "error", werr)
					return
				}
			}

			m.scanLine(string(line), stream, lineNum, profile, tracker)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				m.logger.Warn("stream read failed", "stream", stream, "error", err)
			}
			return
		}
	}
}

// scanLine runs detection on a cleaned copy of the line and queues
// results without ever blocking.
func (m *Monitor) scanLine(line, stream string, lineNum int, profile *scan.Profile, tracker *track.Tracker) {
	clean := strings.TrimRight(ansi.Strip(line), "\r\n")
	m.appendContext(clean)

	if !tracker.ObserveString(clean) {
		return
	}

	for _, d := range m.scanner.ScanLine(clean, profile, lineNum) {
		select {
		case m.detections <- d:
			m.logger.Debug("image reference detected",
				"stream", stream, "source", d.Source.String(), "line", lineNum)
		default:
			m.mu.Lock()
			m.dropped++
			m.mu.Unlock()
		}
	}
}

// RecentContext returns the rolling tail of scanned output, for
// diagnostics around a detection.
func (m *Monitor) RecentContext() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.context)
}

func (m *Monitor) appendContext(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context = append(m.context, line...)
	m.context = append(m.context, '\n')
	if len(m.context) > contextBufferMax {
		m.context = append(m.context[:0], m.context[len(m.context)-contextBufferKeep:]...)
	}
}

// readLine returns the next chunk up to and including '\n'. Lines
// longer than the reader buffer are emitted in pieces so memory stays
// bounded.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		chunk := make([]byte, len(line))
		copy(chunk, line)
		return chunk, nil
	}
	return line, err
}
