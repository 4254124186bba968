package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/KlipDot/internal/hooks"
)

var installShell string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell hooks",
	Long: `Install shell integration hooks that scan command arguments for
image files and notify on screenshot tools. The hook script is written
under ~/.klipdot/hooks and sourced from the shell's rc file.`,
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove shell hooks",
	RunE:  runUninstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	shell := installShell
	if shell == "" {
		shell = hooks.DetectShell()
	}

	mgr, err := hooks.NewManager(shell)
	if err != nil {
		return err
	}
	if err := mgr.Install(); err != nil {
		return fmt.Errorf("install %s hooks: %w", shell, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Installed %s hooks: %s\n", shell, mgr.HookPath())
	fmt.Fprintln(out, "Restart your shell or source your rc file to activate them.")
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	shell := installShell
	if shell == "" {
		shell = hooks.DetectShell()
	}

	mgr, err := hooks.NewManager(shell)
	if err != nil {
		return err
	}
	if !mgr.Installed() {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s hooks installed\n", shell)
		return nil
	}
	if err := mgr.Uninstall(); err != nil {
		return fmt.Errorf("uninstall %s hooks: %w", shell, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s hooks\n", shell)
	return nil
}

func init() {
	installCmd.Flags().StringVar(&installShell, "shell", "", "target shell (bash, zsh, fish; default auto-detect)")
	uninstallCmd.Flags().StringVar(&installShell, "shell", "", "target shell (bash, zsh, fish; default auto-detect)")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
}
