package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/spritegen/devhost"
	"github.com/teranos/spritegen/logger"
)

// BuildCmd runs one compilation
var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the sprite sheet and regenerate the IconType module",
	Long: `Run one compilation of the dev host with the sprite sheet plugin applied.

The sprite compiler writes the sprite sheet (and the optional symbol manifest)
to the host output path. The IconType module is rewritten only when its
content changes, so repeated builds with unchanged icons leave it untouched.

Examples:
  spritegen build                     # Build using spritegen.toml
  spritegen build -v                  # Also list context dependencies and assets
  spritegen build --config ci.toml    # Merge an explicit config file`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	h, err := s.host()
	if err != nil {
		return err
	}

	stats, err := h.Run(cmd.Context())
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), stats, verbosity(cmd))
	return nil
}

func printStats(w io.Writer, stats *devhost.Stats, v int) {
	pterm.Success.WithWriter(w).Printfln("Build %s completed (%d assets)", shortID(stats.CompilationID), len(stats.Assets))

	if logger.ShouldOutput(v, logger.OutputAssets) {
		for _, dep := range stats.ContextDependencies {
			fmt.Fprintf(w, "  watching %s\n", dep)
		}
		for _, asset := range stats.Assets {
			fmt.Fprintf(w, "  emitted  %s\n", asset)
		}
	}
	if logger.ShouldOutput(v, logger.OutputTiming) {
		fmt.Fprintf(w, "  took     %s\n", stats.Duration)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
