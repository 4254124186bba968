package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KooshaPari/KlipDot/internal/clipboard"
	"github.com/KooshaPari/KlipDot/internal/config"
	"github.com/KooshaPari/KlipDot/internal/intercept"
	"github.com/KooshaPari/KlipDot/internal/preview"
	"github.com/KooshaPari/KlipDot/internal/service"
	"github.com/KooshaPari/KlipDot/internal/store"
)

var startDaemon bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the interception service",
	Long: `Start watching the clipboard and screenshot processes. By default
the service runs in the foreground; use --daemon to detach.`,
	RunE: runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background service",
	RunE:  runStop,
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the background service",
	RunE:  runRestart,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	RunE:  runStatus,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		return errors.New("klipdot is disabled in the configuration (set enabled: true)")
	}

	dir, err := appDir()
	if err != nil {
		return err
	}
	mgr := service.NewManager(dir, slog.Default())

	if startDaemon {
		daemonArgs := []string{"start"}
		if rootConfigPath != "" {
			daemonArgs = append(daemonArgs, "--config", rootConfigPath)
		}
		if rootVerbose {
			daemonArgs = append(daemonArgs, "--verbose")
		}
		pid, err := mgr.StartDaemon(daemonArgs)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started klipdot daemon (pid %d)\n", pid)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mgr.WritePID(os.Getpid()); err != nil {
		return err
	}
	defer mgr.RemovePID()

	return runPipeline(ctx, cfg)
}

// runPipeline runs the configured interceptors until the context is
// cancelled. Cancellation is the normal way to stop, so ctx errors are
// not reported as failures.
func runPipeline(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()

	st, err := store.New(cfg.ResolvedScreenshotDir(), cfg.MaxFileSize, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	started := 0

	if cfg.Intercept.Clipboard {
		backend, err := clipboard.Detect(cfg.Clipboard.PreferredTool)
		if err != nil {
			logger.Warn("clipboard interception disabled", "error", err)
		} else {
			mon := clipboard.NewMonitor(backend, st, cfg.PollInterval.Std(), logger)
			logger.Info("clipboard monitor starting", "backend", backend.Name())
			g.Go(func() error { return mon.Run(ctx) })
			started++
		}
	}

	if cfg.Intercept.ProcessMonitor {
		ic := intercept.New(st, cfg.PollInterval.Std(), logger)
		logger.Info("screenshot process monitor starting")
		g.Go(func() error { return ic.Run(ctx) })
		started++
	}

	if started == 0 {
		return errors.New("nothing to do: all interceptors are disabled or unavailable")
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("service stopped")
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	dir, err := appDir()
	if err != nil {
		return err
	}
	mgr := service.NewManager(dir, slog.Default())

	if err := mgr.Stop(); err != nil {
		if errors.Is(err, service.ErrNotRunning) {
			fmt.Fprintln(cmd.OutOrStdout(), "klipdot daemon is not running")
			return nil
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Stopped klipdot daemon")
	return nil
}

func runRestart(cmd *cobra.Command, args []string) error {
	dir, err := appDir()
	if err != nil {
		return err
	}
	mgr := service.NewManager(dir, slog.Default())

	daemonArgs := []string{"start"}
	if rootConfigPath != "" {
		daemonArgs = append(daemonArgs, "--config", rootConfigPath)
	}
	pid, err := mgr.Restart(daemonArgs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restarted klipdot daemon (pid %d)\n", pid)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := appDir()
	if err != nil {
		return err
	}
	mgr := service.NewManager(dir, slog.Default())

	st, err := mgr.Status()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if st.Running {
		fmt.Fprintf(out, "%s klipdot daemon running (pid %d, up %s",
			statusDot(out, true), st.PID, st.Uptime.Truncate(time.Second))
		if st.RSS > 0 {
			fmt.Fprintf(out, ", rss %s", preview.FormatFileSize(int64(st.RSS)))
		}
		fmt.Fprintln(out, ")")
	} else if st.PID != 0 {
		fmt.Fprintf(out, "%s klipdot daemon not running (stale pid %d)\n", statusDot(out, false), st.PID)
	} else {
		fmt.Fprintf(out, "%s klipdot daemon not running\n", statusDot(out, false))
	}

	screenshotDir := cfg.ResolvedScreenshotDir()
	imgStore, err := store.New(screenshotDir, cfg.MaxFileSize, slog.Default())
	if err != nil {
		return err
	}
	files, err := imgStore.List()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  screenshots: %d in %s\n", len(files), screenshotDir)

	method, viewer := preview.Detect()
	if viewer != "" {
		fmt.Fprintf(out, "  preview:     %s (%s)\n", method, viewer)
	} else {
		fmt.Fprintf(out, "  preview:     %s\n", method)
	}
	return nil
}

func init() {
	startCmd.Flags().BoolVarP(&startDaemon, "daemon", "d", false, "run in the background")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(statusCmd)
}
