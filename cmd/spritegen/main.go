package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/spritegen/cmd/spritegen/commands"
	"github.com/teranos/spritegen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "spritegen",
	Short: "SVG sprite sheet and IconType generator",
	Long: `spritegen - SVG sprite sheet and TypeScript IconType generator.

spritegen compiles a directory of SVG icons into a sprite sheet and keeps a
TypeScript module in sync with it: a string literal union of every icon name,
plus side-effecting imports of each icon file.

Available commands:
  build     - Compile the sprite sheet and regenerate IconType once
  watch     - Rebuild whenever the icons directory changes
  generate  - Regenerate the IconType module only
  check     - Fail if the IconType module is out of date
  config    - Inspect and create configuration
  version   - Show version information

Examples:
  spritegen config init      # Write spritegen.toml with defaults
  spritegen build            # One build
  spritegen watch -v         # Rebuild on change, listing emitted assets
  spritegen check            # Verify IconType.ts in CI`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return commands.InitLogging(cmd)
	},
}

func init() {
	commands.BindGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.BuildCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
