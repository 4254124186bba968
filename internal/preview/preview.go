// Package preview renders images inside the terminal. The rendering
// method is chosen once per process by probing terminal capabilities;
// every subsequent render dispatches on that fixed method without
// re-probing.
package preview

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Method identifies a terminal graphics protocol or fallback strategy.
type Method int

const (
	// MethodNone prints text information only.
	MethodNone Method = iota
	// MethodITerm2 uses the iTerm2 inline-images OSC sequence.
	MethodITerm2
	// MethodKitty shells out to kitten icat.
	MethodKitty
	// MethodSixel shells out to img2sixel.
	MethodSixel
	// MethodExternal shells out to a general image-to-terminal viewer.
	MethodExternal
	// MethodASCII shells out to an ASCII-art converter.
	MethodASCII
)

// String returns the string representation of the method.
func (m Method) String() string {
	switch m {
	case MethodITerm2:
		return "iterm2"
	case MethodKitty:
		return "kitty"
	case MethodSixel:
		return "sixel"
	case MethodExternal:
		return "external"
	case MethodASCII:
		return "ascii"
	case MethodNone:
		return "none"
	default:
		return "unknown"
	}
}

// ErrUnsupported reports that no rendering tool could service a request.
var ErrUnsupported = errors.New("no preview method available")

// RenderError reports a failure of the selected rendering method. The
// method is fixed at startup, so the error is surfaced to the caller
// rather than triggering a fallback to a different method.
type RenderError struct {
	Method Method
	Tool   string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("%s preview via %s failed: %v", e.Method, e.Tool, e.Err)
	}
	return fmt.Sprintf("%s preview failed: %v", e.Method, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Viewers and ASCII converters recognized by the probe, in preference
// order.
var (
	externalViewers = []string{"imgcat", "catimg", "timg", "chafa"}
	asciiTools      = []string{"jp2a", "img2txt"}
)

// Renderer draws image files into a terminal. Construct with New or
// NewWithMethod; the zero value renders nothing.
type Renderer struct {
	method Method
	viewer string
	out    io.Writer
	logger *slog.Logger
}

// New probes terminal capabilities and returns a renderer bound to the
// best available method. Output goes to out; if logger is nil,
// slog.Default() is used.
func New(out io.Writer, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	method, viewer := Detect()
	logger.Info("preview method detected", "method", method.String(), "viewer", viewer)
	return &Renderer{method: method, viewer: viewer, out: out, logger: logger}
}

// NewWithMethod returns a renderer bound to a fixed method, bypassing
// capability detection. viewer names the helper binary for
// MethodExternal and is ignored otherwise.
func NewWithMethod(method Method, viewer string, out io.Writer) *Renderer {
	return &Renderer{method: method, viewer: viewer, out: out, logger: slog.Default()}
}

// Method returns the rendering method selected at construction.
func (r *Renderer) Method() Method { return r.method }

// Viewer returns the external viewer binary, or "" when the method is
// not MethodExternal.
func (r *Renderer) Viewer() string { return r.viewer }

// Detect probes the terminal once and returns the best available
// method. Probe order: iTerm2 by TERM_PROGRAM, Kitty by TERM, sixel by
// a device-attributes query, then helper binaries on PATH.
func Detect() (Method, string) {
	if os.Getenv("TERM_PROGRAM") == "iTerm.app" {
		return MethodITerm2, ""
	}
	if strings.Contains(os.Getenv("TERM"), "kitty") {
		return MethodKitty, ""
	}
	if probeSixel() {
		return MethodSixel, ""
	}
	for _, viewer := range externalViewers {
		if _, err := exec.LookPath(viewer); err == nil {
			return MethodExternal, viewer
		}
	}
	for _, tool := range asciiTools {
		if _, err := exec.LookPath(tool); err == nil {
			return MethodASCII, ""
		}
	}
	return MethodNone, ""
}

// Render draws the image at path. maxWidth and maxHeight bound the
// rendered size in the unit native to the selected method; zero means
// unbounded. A failure of the selected method is returned as a
// *RenderError, never silently downgraded to another method.
func (r *Renderer) Render(path string, maxWidth, maxHeight int) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("image file not found: %w", err)
	}

	switch r.method {
	case MethodITerm2:
		return r.renderITerm2(path, maxWidth, maxHeight)
	case MethodKitty:
		return r.runTool("kitten", kittyArgs(path, maxWidth, maxHeight))
	case MethodSixel:
		return r.runTool("img2sixel", sixelArgs(path, maxWidth, maxHeight))
	case MethodExternal:
		return r.runTool(r.viewer, externalArgs(r.viewer, path, maxWidth, maxHeight))
	case MethodASCII:
		return r.renderASCII(path, maxWidth, maxHeight)
	default:
		return r.renderInfo(path)
	}
}

// renderITerm2 writes the whole file base64-embedded in a single OSC
// 1337 sequence.
func (r *Renderer) renderITerm2(path string, maxWidth, maxHeight int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &RenderError{Method: MethodITerm2, Err: err}
	}

	var opts strings.Builder
	opts.WriteString("inline=1;preserveAspectRatio=1")
	if maxWidth > 0 {
		fmt.Fprintf(&opts, ";width=%dpx", maxWidth)
	}
	if maxHeight > 0 {
		fmt.Fprintf(&opts, ";height=%dpx", maxHeight)
	}

	_, err = fmt.Fprintf(r.out, "\x1b]1337;File=%s;size=%d:%s\x07",
		opts.String(), len(data), base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return &RenderError{Method: MethodITerm2, Err: err}
	}
	return nil
}

// renderASCII tries jp2a first, then img2txt. Both absent is
// ErrUnsupported: the probe saw at least one at startup, so this means
// the environment changed underneath us.
func (r *Renderer) renderASCII(path string, maxWidth, maxHeight int) error {
	if _, err := exec.LookPath("jp2a"); err == nil {
		args := []string{"--colors"}
		if maxWidth > 0 {
			args = append(args, "--width", fmt.Sprint(maxWidth))
		}
		if maxHeight > 0 {
			args = append(args, "--height", fmt.Sprint(maxHeight))
		}
		return r.runTool("jp2a", append(args, path))
	}
	if _, err := exec.LookPath("img2txt"); err == nil {
		var args []string
		if maxWidth > 0 {
			args = append(args, "-W", fmt.Sprint(maxWidth))
		}
		if maxHeight > 0 {
			args = append(args, "-H", fmt.Sprint(maxHeight))
		}
		return r.runTool("img2txt", append(args, path))
	}
	return &RenderError{Method: MethodASCII, Err: ErrUnsupported}
}

func (r *Renderer) runTool(tool string, args []string) error {
	cmd := exec.Command(tool, args...)
	cmd.Stdout = r.out
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return &RenderError{Method: r.method, Tool: tool, Err: err}
	}
	return nil
}

func kittyArgs(path string, maxWidth, maxHeight int) []string {
	args := []string{"icat"}
	if maxWidth > 0 {
		args = append(args, "--cols", fmt.Sprint(maxWidth))
	}
	if maxHeight > 0 {
		args = append(args, "--rows", fmt.Sprint(maxHeight))
	}
	return append(args, path)
}

func sixelArgs(path string, maxWidth, maxHeight int) []string {
	var args []string
	if maxWidth > 0 {
		args = append(args, "-w", fmt.Sprint(maxWidth))
	}
	if maxHeight > 0 {
		args = append(args, "-h", fmt.Sprint(maxHeight))
	}
	return append(args, path)
}

// externalArgs translates the bounding box to each viewer's argument
// syntax. Viewers without size flags get the bare path.
func externalArgs(viewer, path string, maxWidth, maxHeight int) []string {
	var args []string
	switch viewer {
	case "catimg":
		if maxWidth > 0 {
			args = append(args, "-w", fmt.Sprint(maxWidth))
		}
	case "timg":
		if maxWidth > 0 {
			h := maxHeight
			if h == 0 {
				h = maxWidth
			}
			args = append(args, "-g", fmt.Sprintf("%dx%d", maxWidth, h))
		}
	case "chafa":
		if maxWidth > 0 {
			h := maxHeight
			if h == 0 {
				h = maxWidth
			}
			args = append(args, "--size", fmt.Sprintf("%dx%d", maxWidth, h))
		}
	}
	return append(args, path)
}

// renderInfo is the MethodNone path: plain text about the file.
func (r *Renderer) renderInfo(path string) error {
	info, err := Describe(path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, info)
	return err
}
