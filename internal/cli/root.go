// Package cli wires the klipdot commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/KlipDot/internal/config"
)

var (
	rootVerbose    bool
	rootConfigPath string
)

var rootCmd = &cobra.Command{
	Use:   "klipdot",
	Short: "Clipboard and terminal image interceptor",
	Long: `klipdot watches the clipboard, terminal output, and screenshot
processes for images, saves everything it finds into one screenshot
directory, and previews images inline using the best graphics protocol
the terminal supports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(rootVerbose)
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "config file path (default $KLIPDOT_CONFIG, then ~/.klipdot/config.yaml)")
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newLoader honors the --config flag, then the KLIPDOT_CONFIG
// environment variable, then the default location.
func newLoader() (*config.Loader, error) {
	if rootConfigPath != "" {
		return config.NewLoaderWithPath(rootConfigPath), nil
	}
	if path := config.GetEnvOrDefault("KLIPDOT_CONFIG", ""); path != "" {
		return config.NewLoaderWithPath(path), nil
	}
	return config.NewLoader()
}

// loadConfig reads the effective configuration.
func loadConfig() (*config.Config, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if !rootVerbose && cfg.LogLevel == "debug" {
		setupLogging(true)
	}
	return cfg, nil
}

// appDir returns ~/.klipdot, creating it if needed.
func appDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, config.ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create application directory: %w", err)
	}
	return dir, nil
}
