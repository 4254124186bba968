package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/KlipDot/internal/store"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old screenshots",
	Long:  `Delete screenshots older than the retention period from the screenshot directory.`,
	RunE:  runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	days := cleanupDays
	if days <= 0 {
		days = cfg.CleanupDays
	}

	st, err := store.New(cfg.ResolvedScreenshotDir(), cfg.MaxFileSize, slog.Default())
	if err != nil {
		return err
	}

	removed, err := st.Cleanup(days)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s) older than %d days\n", removed, days)
	return nil
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention period in days (default from config)")
	rootCmd.AddCommand(cleanupCmd)
}
