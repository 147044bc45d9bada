package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/spritegen/errors"
)

// ErrOutOfDate is returned by check when the IconType module would change
var ErrOutOfDate = errors.New("IconType module is out of date")

// CheckCmd verifies the IconType module without writing it
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Fail if the IconType module is out of date",
	Long: `Render the IconType module for the current icons and compare it with the
file on disk. Nothing is written. Exits non-zero when the file is missing
or differs, listing the identifiers a regeneration would add or remove.

Examples:
  spritegen check           # In CI, after committing IconType.ts`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	iconsDir, iconTypeFile := s.paths()
	res, err := s.plugin.Check(iconsDir, iconTypeFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.UpToDate {
		pterm.Success.WithWriter(out).Printfln("%s is up to date", res.Path)
		return nil
	}

	if res.Missing {
		pterm.Warning.WithWriter(out).Printfln("%s does not exist", res.Path)
	} else {
		pterm.Warning.WithWriter(out).Printfln("%s differs from the icons in %s", res.Path, iconsDir)
	}
	for _, id := range res.Added {
		fmt.Fprintf(out, "  + %s\n", id)
	}
	for _, id := range res.Removed {
		fmt.Fprintf(out, "  - %s\n", id)
	}
	return errors.WithHint(errors.Wrapf(ErrOutOfDate, "%s", res.Path), "run spritegen generate")
}
