package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/spritegen/logger"
)

// GenerateCmd writes the IconType module without running a compilation
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate the IconType module only",
	Long: `Scan the icons directory and write the IconType module if its content
changed. No sprite sheet is compiled.

Examples:
  spritegen generate
  SPRITEGEN_ICONS_DIR=./assets/icons spritegen generate`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	iconsDir, iconTypeFile := s.paths()
	res, err := s.plugin.Generate(iconsDir, iconTypeFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Written {
		pterm.Success.WithWriter(out).Printfln("Generated %s (%d icons)", res.Path, res.Icons)
	} else {
		pterm.Info.WithWriter(out).Printfln("%s is up to date (%d icons)", res.Path, res.Icons)
	}
	if logger.ShouldOutput(verbosity(cmd), logger.OutputFiles) {
		fmt.Fprintf(out, "  icons    %s\n", iconsDir)
	}
	return nil
}
