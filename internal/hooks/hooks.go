// Package hooks generates and installs the shell integration: hook
// functions that feed image files touched by shell commands into the
// interceptor, registered via each shell's native mechanism.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	hooksDirName = "hooks"

	// marker guards the rc source line so install stays idempotent
	// and uninstall knows what to remove.
	marker = "# KlipDot terminal interceptor"
)

// Manager installs hook scripts for one shell. Construct with
// NewManager or NewManagerWithHome.
type Manager struct {
	shell    string
	homeDir  string
	hooksDir string
}

// DetectShell returns the current shell's name from $SHELL, defaulting
// to bash.
func DetectShell() string {
	shell := filepath.Base(os.Getenv("SHELL"))
	switch shell {
	case "zsh", "bash", "fish":
		return shell
	default:
		return "bash"
	}
}

// NewManager returns a manager for the given shell; empty means
// detect.
func NewManager(shell string) (*Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerWithHome(shell, home), nil
}

// NewManagerWithHome is NewManager with an explicit home directory.
func NewManagerWithHome(shell, home string) *Manager {
	if shell == "" {
		shell = DetectShell()
	}
	return &Manager{
		shell:    shell,
		homeDir:  home,
		hooksDir: filepath.Join(home, ".klipdot", hooksDirName),
	}
}

// Shell returns the shell the manager installs for.
func (m *Manager) Shell() string { return m.shell }

// HookPath returns where the hook script is written.
func (m *Manager) HookPath() string {
	switch m.shell {
	case "zsh":
		return filepath.Join(m.hooksDir, "zsh-hooks.zsh")
	case "fish":
		return filepath.Join(m.hooksDir, "fish-hooks.fish")
	default:
		return filepath.Join(m.hooksDir, "bash-hooks.bash")
	}
}

// rcPath returns the shell's startup file.
func (m *Manager) rcPath() string {
	switch m.shell {
	case "zsh":
		return filepath.Join(m.homeDir, ".zshrc")
	case "fish":
		return filepath.Join(m.homeDir, ".config", "fish", "config.fish")
	default:
		return filepath.Join(m.homeDir, ".bashrc")
	}
}

// Install writes the hook script and adds a guarded source line to the
// shell's rc file. Running it again is a no-op.
func (m *Manager) Install() error {
	if err := os.MkdirAll(m.hooksDir, 0755); err != nil {
		return fmt.Errorf("create hooks directory: %w", err)
	}
	if err := os.WriteFile(m.HookPath(), []byte(m.HookScript()), 0644); err != nil {
		return fmt.Errorf("write hook script: %w", err)
	}
	return m.addSourceLine()
}

// Uninstall removes the rc source line and the hooks directory.
func (m *Manager) Uninstall() error {
	if err := m.removeSourceLine(); err != nil {
		return err
	}
	if err := os.RemoveAll(m.hooksDir); err != nil {
		return fmt.Errorf("remove hooks directory: %w", err)
	}
	return nil
}

// Installed reports whether the hook script exists and the rc file
// sources it.
func (m *Manager) Installed() bool {
	if _, err := os.Stat(m.HookPath()); err != nil {
		return false
	}
	content, err := os.ReadFile(m.rcPath())
	if err != nil {
		return false
	}
	return strings.Contains(string(content), m.sourceLine())
}

func (m *Manager) sourceLine() string {
	return fmt.Sprintf("source %q", m.HookPath())
}

func (m *Manager) addSourceLine() error {
	rcPath := m.rcPath()
	if err := os.MkdirAll(filepath.Dir(rcPath), 0755); err != nil {
		return fmt.Errorf("create rc directory: %w", err)
	}

	content, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", rcPath, err)
	}
	if strings.Contains(string(content), m.sourceLine()) {
		return nil
	}

	block := fmt.Sprintf("\n%s\n%s\n", marker, m.sourceLine())
	if err := os.WriteFile(rcPath, append(content, block...), 0644); err != nil {
		return fmt.Errorf("update %s: %w", rcPath, err)
	}
	return nil
}

func (m *Manager) removeSourceLine() error {
	rcPath := m.rcPath()
	content, err := os.ReadFile(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", rcPath, err)
	}

	var kept []string
	skip := false
	for _, line := range strings.Split(string(content), "\n") {
		if strings.Contains(line, marker) {
			skip = true
			continue
		}
		if skip && strings.Contains(line, "klipdot") {
			skip = false
			continue
		}
		skip = false
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	if err := os.WriteFile(rcPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("update %s: %w", rcPath, err)
	}
	return nil
}
