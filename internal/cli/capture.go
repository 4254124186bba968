package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/KlipDot/internal/store"
)

var captureSource string

var captureCmd = &cobra.Command{
	Use:   "capture <file>",
	Short: "Copy an image file into the screenshot directory",
	Long: `Copy an image file into the screenshot directory under a normalized
name. Used by the shell hooks, but also handy standalone.`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.ResolvedScreenshotDir(), cfg.MaxFileSize, slog.Default())
	if err != nil {
		return err
	}

	saved, err := st.SaveFile(args[0], captureSource)
	if err != nil {
		return fmt.Errorf("capture %s: %w", args[0], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), saved)
	return nil
}

func init() {
	captureCmd.Flags().StringVar(&captureSource, "source", "file", "source tag recorded in the saved filename")
	rootCmd.AddCommand(captureCmd)
}
