package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/KlipDot/internal/preview"
)

var (
	previewMaxWidth  int
	previewMaxHeight int
)

var previewCmd = &cobra.Command{
	Use:   "preview <image>",
	Short: "Render an image in the terminal",
	Long: `Render an image inline using the best protocol the terminal
supports: iTerm2 inline images, kitty graphics, sixel, an external
viewer, or an ASCII approximation. When no graphics path is available,
prints the image metadata instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	maxWidth := previewMaxWidth
	if maxWidth == 0 {
		maxWidth = cfg.Preview.MaxWidth
	}
	maxHeight := previewMaxHeight
	if maxHeight == 0 {
		maxHeight = cfg.Preview.MaxHeight
	}

	out := cmd.OutOrStdout()
	if !writerTTY(out) {
		// Piped output gets metadata, never escape sequences.
		desc, err := preview.Describe(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, desc)
		return nil
	}

	r := preview.New(out, slog.Default())
	err = r.Render(args[0], maxWidth, maxHeight)
	if err == nil {
		return nil
	}

	var renderErr *preview.RenderError
	if !errors.As(err, &renderErr) {
		return err
	}

	// The chosen method failed at render time. Fall back to metadata
	// rather than hard-failing a preview.
	slog.Default().Warn("preview render failed", "method", renderErr.Method, "error", renderErr.Err)
	desc, descErr := preview.Describe(args[0])
	if descErr != nil {
		return err
	}
	fmt.Fprintln(out, desc)
	return nil
}

func init() {
	previewCmd.Flags().IntVarP(&previewMaxWidth, "max-width", "W", 0, "maximum width in pixels (default from config)")
	previewCmd.Flags().IntVarP(&previewMaxHeight, "max-height", "H", 0, "maximum height in pixels (default from config)")
	rootCmd.AddCommand(previewCmd)
}
