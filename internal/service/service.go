// Package service manages the daemon lifecycle: PID file bookkeeping,
// detached start, signalled stop, and status inspection.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

const (
	pidFileName = "klipdot.pid"

	// stopWait bounds how long Stop waits for a graceful exit before
	// escalating to a kill.
	stopWait     = 3 * time.Second
	stopWaitStep = 100 * time.Millisecond
)

// ErrNotRunning reports that no daemon is running.
var ErrNotRunning = errors.New("daemon is not running")

// Status is a point-in-time snapshot of the daemon.
type Status struct {
	Running bool
	PID     int32
	Uptime  time.Duration
	RSS     uint64
}

// Manager owns the PID file under the application directory. Construct
// with NewManager.
type Manager struct {
	pidPath string
	logger  *slog.Logger
}

// NewManager returns a manager with its PID file under dir. If logger
// is nil, slog.Default() is used.
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pidPath: filepath.Join(dir, pidFileName),
		logger:  logger,
	}
}

// PIDPath returns the PID file location.
func (m *Manager) PIDPath() string { return m.pidPath }

// WritePID records the daemon's pid.
func (m *Manager) WritePID(pid int) error {
	if err := os.MkdirAll(filepath.Dir(m.pidPath), 0755); err != nil {
		return fmt.Errorf("create pid directory: %w", err)
	}
	if err := os.WriteFile(m.pidPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// ReadPID returns the recorded pid, or ErrNotRunning when no PID file
// exists.
func (m *Manager) ReadPID() (int32, error) {
	data, err := os.ReadFile(m.pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", m.pidPath, err)
	}
	return int32(pid), nil
}

// RemovePID deletes the PID file; already absent is fine.
func (m *Manager) RemovePID() error {
	if err := os.Remove(m.pidPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// StartDaemon re-executes the current binary detached from the
// terminal and records its pid. args are passed through to the child.
func (m *Manager) StartDaemon(args []string) (int, error) {
	if st, err := m.Status(); err == nil && st.Running {
		return 0, fmt.Errorf("daemon already running with pid %d", st.PID)
	}

	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("locate executable: %w", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start daemon: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		m.logger.Warn("daemon process release failed", "error", err)
	}

	if err := m.WritePID(pid); err != nil {
		return 0, err
	}
	m.logger.Info("daemon started", "pid", pid)
	return pid, nil
}

// Stop terminates the recorded daemon: SIGTERM, a bounded wait, then a
// kill if it is still alive. The PID file is removed either way.
func (m *Manager) Stop() error {
	pid, err := m.ReadPID()
	if err != nil {
		return err
	}

	p, err := process.NewProcess(pid)
	if err != nil {
		// Stale PID file: the process is already gone.
		m.logger.Warn("daemon process not found, cleaning up", "pid", pid)
		return m.RemovePID()
	}

	m.logger.Info("stopping daemon", "pid", pid)
	if err := p.Terminate(); err != nil {
		return fmt.Errorf("terminate daemon: %w", err)
	}

	deadline := time.Now().Add(stopWait)
	for time.Now().Before(deadline) {
		running, err := p.IsRunning()
		if err != nil || !running {
			return m.RemovePID()
		}
		time.Sleep(stopWaitStep)
	}

	m.logger.Warn("daemon did not exit in time, killing", "pid", pid)
	if err := p.Kill(); err != nil {
		return fmt.Errorf("kill daemon: %w", err)
	}
	return m.RemovePID()
}

// Restart stops any running daemon and starts a fresh one.
func (m *Manager) Restart(args []string) (int, error) {
	if err := m.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		m.logger.Warn("stop during restart failed", "error", err)
	}
	return m.StartDaemon(args)
}

// Status inspects the recorded daemon. A missing PID file or dead
// process reports Running false, not an error.
func (m *Manager) Status() (Status, error) {
	pid, err := m.ReadPID()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return Status{}, nil
		}
		return Status{}, err
	}

	p, err := process.NewProcess(pid)
	if err != nil {
		return Status{PID: pid}, nil
	}
	running, err := p.IsRunning()
	if err != nil || !running {
		return Status{PID: pid}, nil
	}

	st := Status{Running: true, PID: pid}
	if created, err := p.CreateTime(); err == nil {
		st.Uptime = time.Since(time.UnixMilli(created)).Truncate(time.Second)
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		st.RSS = mem.RSS
	}
	return st, nil
}
