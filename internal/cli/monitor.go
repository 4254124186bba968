package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/KlipDot/internal/config"
	"github.com/KooshaPari/KlipDot/internal/decode"
	"github.com/KooshaPari/KlipDot/internal/monitor"
	"github.com/KooshaPari/KlipDot/internal/preview"
	"github.com/KooshaPari/KlipDot/internal/scan"
	"github.com/KooshaPari/KlipDot/internal/store"
)

var monitorNoPreview bool

var monitorCmd = &cobra.Command{
	Use:   "monitor [command [args...]]",
	Short: "Wrap a command and intercept image references in its output",
	Long: `Run a command with its stdout and stderr passed through unchanged
while every line is scanned for image file paths, URLs, and inline
base64 data. Detected images are saved to the screenshot directory and,
when the terminal supports it, previewed inline on stderr.

With no command, scans stdin instead:

  some-producer | klipdot monitor`,
	Args: cobra.ArbitraryArgs,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()

	st, err := store.New(cfg.ResolvedScreenshotDir(), cfg.MaxFileSize, logger)
	if err != nil {
		return err
	}

	m := monitor.New(scan.New(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)

	var renderer *preview.Renderer
	if previewAllowed(cfg, args) {
		// Previews go to stderr so the passthrough stream stays clean
		// for pipes reading stdout.
		renderer = preview.New(os.Stderr, logger)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range m.Detections() {
			handleDetection(cfg, st, renderer, logger, d)
		}
	}()

	if len(args) == 0 {
		if !cfg.Intercept.Stdin {
			return errors.New("stdin interception is disabled in the configuration")
		}
		err = m.MonitorReader(cmd.InOrStdin())
	} else {
		if !cfg.Intercept.Terminal {
			return errors.New("terminal interception is disabled in the configuration")
		}
		err = m.Run(cmd.Context(), args[0], args[1:]...)
	}
	<-done
	return err
}

// previewAllowed decides whether inline rendering is appropriate for
// this invocation. Host applications that manage their own screen
// suppress it.
func previewAllowed(cfg *config.Config, args []string) bool {
	if monitorNoPreview || !cfg.Preview.Enabled {
		return false
	}
	if len(args) > 0 {
		if p := scan.LookupProfile(args[0]); p != nil && p.Dispatch != scan.DispatchInline {
			return false
		}
	}
	return true
}

func handleDetection(cfg *config.Config, st *store.Store, renderer *preview.Renderer, logger *slog.Logger, d scan.Detection) {
	switch d.Source {
	case scan.SourceFilePath:
		saved, err := st.SaveFile(d.Path, "terminal")
		if err != nil {
			logger.Warn("failed to save detected image", "path", d.Path, "error", err)
			return
		}
		logger.Info("image detected", "path", d.Path, "saved", saved, "line", d.Line)
		renderDetection(cfg, renderer, d.Path)

	case scan.SourceBase64Data:
		data, _, err := decode.Decode(d.Payload)
		if err != nil {
			logger.Warn("failed to decode inline image", "line", d.Line, "error", err)
			return
		}
		saved, err := st.SaveBytes(data, "terminal")
		if err != nil {
			logger.Warn("failed to save inline image", "line", d.Line, "error", err)
			return
		}
		logger.Info("inline image detected", "saved", saved, "line", d.Line)
		renderDetection(cfg, renderer, saved)

	case scan.SourceURL:
		// URLs are reference-only; never fetched.
		logger.Info("image URL detected", "url", d.URL, "line", d.Line)
	}
}

func renderDetection(cfg *config.Config, renderer *preview.Renderer, path string) {
	if renderer == nil {
		return
	}
	if err := renderer.Render(path, cfg.Preview.MaxWidth, cfg.Preview.MaxHeight); err != nil {
		slog.Default().Debug("inline render failed", "path", path, "error", err)
	}
	fmt.Fprintln(os.Stderr)
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorNoPreview, "no-preview", false, "save detections without rendering previews")
	rootCmd.AddCommand(monitorCmd)
}
