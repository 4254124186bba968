// Package intercept watches running processes for screenshot tools and
// captures their output files. When a screenshot process is seen, the
// interceptor waits for it to finish, then sweeps the usual output
// directories for images created within the recent-file window.
package intercept

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/KooshaPari/KlipDot/internal/imgsig"
	"github.com/KooshaPari/KlipDot/internal/store"
)

const (
	// recentWindow is how fresh a file must be to count as the
	// screenshot process's output.
	recentWindow = 30 * time.Second

	// exitWait bounds how long we wait for a screenshot process to
	// finish before sweeping anyway.
	exitWait     = 5 * time.Second
	exitWaitStep = 100 * time.Millisecond
)

// screenshotProcesses are matched as lowercase substrings of process
// names.
var screenshotProcesses = []string{
	"screencapture",
	"screenshot",
	"scrot",
	"gnome-screenshot",
	"spectacle",
	"flameshot",
}

// IsScreenshotProcess reports whether a process name looks like a
// screenshot tool.
func IsScreenshotProcess(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range screenshotProcesses {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Interceptor polls the process table and captures screenshot output.
// Construct with New.
type Interceptor struct {
	store    *store.Store
	logger   *slog.Logger
	interval time.Duration
	scanDirs []string

	seenPids  map[int32]struct{}
	seenFiles map[string]time.Time
}

// New returns an interceptor saving captures into st. interval is the
// process poll period; zero means one second. If logger is nil,
// slog.Default() is used.
func New(st *store.Store, interval time.Duration, logger *slog.Logger) *Interceptor {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{
		store:     st,
		logger:    logger,
		interval:  interval,
		scanDirs:  defaultScanDirs(),
		seenPids:  make(map[int32]struct{}),
		seenFiles: make(map[string]time.Time),
	}
}

func defaultScanDirs() []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Pictures"),
		)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	return dirs
}

// Run polls until ctx is cancelled. Poll errors are logged and the
// loop continues; each tick is evaluated independently.
func (i *Interceptor) Run(ctx context.Context) error {
	i.logger.Info("process interceptor started", "interval", i.interval)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			i.logger.Info("process interceptor stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := i.poll(ctx); err != nil {
				i.logger.Warn("process poll failed", "error", err)
			}
		}
	}
}

// poll looks for newly started screenshot processes and handles each
// once.
func (i *Interceptor) poll(ctx context.Context) error {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return err
	}

	live := make(map[int32]struct{}, len(procs))
	for _, p := range procs {
		live[p.Pid] = struct{}{}

		name, err := p.NameWithContext(ctx)
		if err != nil || !IsScreenshotProcess(name) {
			continue
		}
		if _, handled := i.seenPids[p.Pid]; handled {
			continue
		}
		i.seenPids[p.Pid] = struct{}{}

		i.logger.Info("screenshot process detected", "name", name, "pid", p.Pid)
		i.waitForExit(ctx, p)
		i.ScanRecent()
	}

	// Forget exited pids so the table cannot grow unbounded.
	for pid := range i.seenPids {
		if _, ok := live[pid]; !ok {
			delete(i.seenPids, pid)
		}
	}
	return nil
}

// waitForExit blocks until the process exits or the bounded wait runs
// out; sweeping then proceeds either way.
func (i *Interceptor) waitForExit(ctx context.Context, p *process.Process) {
	deadline := time.Now().Add(exitWait)
	for time.Now().Before(deadline) {
		running, err := p.IsRunningWithContext(ctx)
		if err != nil || !running {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(exitWaitStep):
		}
	}
	i.logger.Debug("screenshot process still running after bounded wait", "pid", p.Pid)
}

// ScanRecent sweeps the scan directories and materializes image files
// modified within the recent-file window. Each file is captured at
// most once per interceptor.
func (i *Interceptor) ScanRecent() {
	cutoff := time.Now().Add(-recentWindow)

	// Files whose recorded mtime fell out of the window can no longer
	// pass the filter below; forget them so the map stays bounded.
	for path, mtime := range i.seenFiles {
		if mtime.Before(cutoff) {
			delete(i.seenFiles, path)
		}
	}

	for _, dir := range i.scanDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !imgsig.HasImageExtension(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				delete(i.seenFiles, path)
				continue
			}
			if seen, done := i.seenFiles[path]; done && seen.Equal(info.ModTime()) {
				continue
			}

			saved, err := i.store.SaveFile(path, "screenshot")
			if err != nil {
				i.logger.Warn("screenshot capture failed", "path", path, "error", err)
				continue
			}
			i.seenFiles[path] = info.ModTime()
			i.logger.Info("screenshot captured", "from", path, "to", saved)
		}
	}
}
