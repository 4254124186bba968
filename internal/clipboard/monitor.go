package clipboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KooshaPari/KlipDot/internal/decode"
	"github.com/KooshaPari/KlipDot/internal/store"
	"github.com/KooshaPari/KlipDot/internal/track"
)

// maxPollInterval keeps clipboard polling responsive to screenshots
// even when the configured interval is long.
const maxPollInterval = 250 * time.Millisecond

// Monitor polls the clipboard, materializes image content through the
// store, and replaces the clipboard payload with the saved file path.
type Monitor struct {
	backend Backend
	store   *store.Store
	tracker *track.Tracker
	logger  *slog.Logger

	interval time.Duration
}

// NewMonitor returns a polling monitor. interval is clamped to
// maxPollInterval; zero picks the clamp value. If logger is nil,
// slog.Default() is used.
func NewMonitor(backend Backend, st *store.Store, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 || interval > maxPollInterval {
		interval = maxPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		backend:  backend,
		store:    st,
		tracker:  track.New(),
		logger:   logger,
		interval: interval,
	}
}

// Run polls until ctx is cancelled. Read and decode failures are
// logged per tick and never abort the loop; each observation is
// evaluated independently.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("clipboard monitor started",
		"backend", m.backend.Name(), "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("clipboard monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll runs one observation cycle: read, dedupe, decode, materialize.
func (m *Monitor) poll() {
	content, err := m.backend.Read()
	if err != nil {
		m.logger.Warn("clipboard read failed", "error", err)
		return
	}
	if content == "" {
		return
	}
	if !m.tracker.ObserveString(content) {
		return
	}

	data, format, err := decode.Decode(content)
	if err != nil {
		if !errors.Is(err, decode.ErrNotImage) {
			m.logger.Warn("clipboard decode failed", "error", err)
		}
		return
	}

	path, err := m.store.SaveBytes(data, "clipboard")
	if err != nil {
		m.logger.Warn("clipboard image save failed", "error", err)
		return
	}
	m.logger.Info("clipboard image captured", "path", path, "format", format.String())

	if err := m.backend.Write(path); err != nil {
		m.logger.Warn("clipboard path write-back failed", "error", err)
		return
	}
	// The path we just wrote comes straight back on the next read.
	m.tracker.ObserveString(path)
}
