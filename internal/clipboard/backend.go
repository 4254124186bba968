// Package clipboard reads and writes the platform clipboard through
// external tools and polls it for image content. The core pipeline
// only sees the Backend interface; platform specifics stay here.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoBackend reports that no clipboard tool is available.
var ErrNoBackend = errors.New("no clipboard tool available")

// Backend is the platform clipboard contract.
type Backend interface {
	// Read returns the current clipboard text. An empty clipboard is
	// ("", nil), not an error.
	Read() (string, error)

	// Write replaces the clipboard content.
	Write(content string) error

	// Name identifies the underlying tool for logging.
	Name() string
}

// DisplayServer identifies the graphical session type on Linux.
type DisplayServer int

const (
	DisplayUnknown DisplayServer = iota
	DisplayWayland
	DisplayX11
)

// String returns the string representation of the display server.
func (d DisplayServer) String() string {
	switch d {
	case DisplayWayland:
		return "wayland"
	case DisplayX11:
		return "x11"
	default:
		return "unknown"
	}
}

// DetectDisplayServer inspects session environment variables.
// WAYLAND_DISPLAY wins over XDG_SESSION_TYPE wins over DISPLAY.
func DetectDisplayServer() DisplayServer {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return DisplayWayland
	}
	switch strings.ToLower(os.Getenv("XDG_SESSION_TYPE")) {
	case "wayland":
		return DisplayWayland
	case "x11":
		return DisplayX11
	}
	if os.Getenv("DISPLAY") != "" {
		return DisplayX11
	}
	return DisplayUnknown
}

// commandBackend shells out to a paste command for reads and pipes
// content into a copy command for writes.
type commandBackend struct {
	name     string
	readCmd  []string
	writeCmd []string
}

func (b *commandBackend) Name() string { return b.name }

func (b *commandBackend) Read() (string, error) {
	cmd := exec.Command(b.readCmd[0], b.readCmd[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s read: %w", b.name, err)
	}
	return out.String(), nil
}

func (b *commandBackend) Write(content string) error {
	cmd := exec.Command(b.writeCmd[0], b.writeCmd[1:]...)
	cmd.Stdin = strings.NewReader(content)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s write: %w", b.name, err)
	}
	return nil
}

// candidate pairs a backend with the binary whose presence enables it.
type candidate struct {
	binary  string
	backend *commandBackend
}

func platformCandidates() []candidate {
	switch runtime.GOOS {
	case "darwin":
		return []candidate{
			{"pbpaste", &commandBackend{
				name:     "pbcopy",
				readCmd:  []string{"pbpaste"},
				writeCmd: []string{"pbcopy"},
			}},
		}
	case "windows":
		return []candidate{
			{"powershell", &commandBackend{
				name:     "powershell",
				readCmd:  []string{"powershell", "-Command", "Get-Clipboard"},
				writeCmd: []string{"clip"},
			}},
		}
	default:
		var cands []candidate
		server := DetectDisplayServer()
		if server == DisplayWayland || server == DisplayUnknown {
			cands = append(cands, candidate{"wl-paste", &commandBackend{
				name:     "wl-clipboard",
				readCmd:  []string{"wl-paste", "--type", "text/plain"},
				writeCmd: []string{"wl-copy"},
			}})
		}
		cands = append(cands,
			candidate{"xclip", &commandBackend{
				name:     "xclip",
				readCmd:  []string{"xclip", "-selection", "clipboard", "-o"},
				writeCmd: []string{"xclip", "-selection", "clipboard"},
			}},
			candidate{"xsel", &commandBackend{
				name:     "xsel",
				readCmd:  []string{"xsel", "--clipboard", "--output"},
				writeCmd: []string{"xsel", "--clipboard", "--input"},
			}},
		)
		return cands
	}
}

// Detect probes for a usable clipboard backend. A non-empty preferred
// tool name restricts the probe to that tool.
func Detect(preferred string) (Backend, error) {
	for _, c := range platformCandidates() {
		if preferred != "" && c.binary != preferred && c.backend.name != preferred {
			continue
		}
		if _, err := exec.LookPath(c.binary); err == nil {
			return c.backend, nil
		}
	}
	if preferred != "" {
		return nil, fmt.Errorf("clipboard tool %q: %w", preferred, ErrNoBackend)
	}
	return nil, ErrNoBackend
}
