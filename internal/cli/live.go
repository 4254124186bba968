package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/KlipDot/internal/preview"
	"github.com/KooshaPari/KlipDot/internal/scan"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Preview images as the cursor moves over their paths",
	Long: `Read command-line snapshots from stdin and show a preview whenever
the cursor lands on an image path, hiding it when the cursor leaves.

Each input line is either the line text alone (cursor assumed at the
end) or a cursor position and the text separated by a tab:

  12	cp ./shot.png /tmp/

Designed to be fed from a line-editor hook (for example a zsh ZLE
widget reporting $CURSOR and $BUFFER).`,
	Args: cobra.NoArgs,
	RunE: runLive,
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tracker := scan.NewLiveTracker(scan.New())
	renderer := preview.New(cmd.OutOrStdout(), slog.Default())
	out := cmd.OutOrStdout()

	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		text, cursor := parseLiveLine(sc.Text())
		if !tracker.Update(text, cursor) {
			continue
		}

		current := tracker.Current()
		if current == "" {
			fmt.Fprintln(out, "---")
			continue
		}
		if err := renderer.Render(current, cfg.Preview.MaxWidth, cfg.Preview.MaxHeight); err != nil {
			slog.Default().Debug("live render failed", "path", current, "error", err)
			continue
		}
		fmt.Fprintln(out)
	}
	return sc.Err()
}

// parseLiveLine splits an optional tab-separated cursor prefix from the
// snapshot text. Without a prefix the cursor sits at the end.
func parseLiveLine(line string) (string, int) {
	prefix, rest, found := strings.Cut(line, "\t")
	if found {
		if cursor, err := strconv.Atoi(prefix); err == nil {
			return rest, cursor
		}
	}
	return line, len(line)
}

func init() {
	rootCmd.AddCommand(liveCmd)
}
