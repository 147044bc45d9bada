package commands

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teranos/spritegen/config"
	"github.com/teranos/spritegen/errors"
)

// ConfigCmd groups configuration commands
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create spritegen configuration",
	Long: `Display, validate and create spritegen configuration.

Configuration sources (in order of precedence):
1. Environment variables (SPRITEGEN_* prefix, e.g. SPRITEGEN_ICONS_DIR)
2. Explicit config file (--config)
3. Project config (spritegen.toml, searched upward from the working directory)
4. User config (~/.config/spritegen/spritegen.toml)
5. Default values

Examples:
  spritegen config show                  # Show effective configuration
  spritegen config show --format json    # ... as JSON
  spritegen config show --sources        # Show where every value came from
  spritegen config validate              # Validate the effective configuration
  spritegen config init                  # Write spritegen.toml with defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a spritegen.toml with default values",
	Long: `Write the default configuration as TOML. The file is created in the
working directory unless a path is given. An existing file is kept unless
--force is passed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	configShowCmd.Flags().String("format", "toml", "Output format: toml, json, yaml")
	configShowCmd.Flags().Bool("sources", false, "List every key with the source it came from")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configInitCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Loaded, error) {
	configFile, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return loaded, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if sources, _ := cmd.Flags().GetBool("sources"); sources {
		data := pterm.TableData{{"KEY", "VALUE", "SOURCE", "FROM"}}
		for _, s := range loaded.Settings() {
			data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(out).Render()
	}

	name, _ := cmd.Flags().GetString("format")
	format, err := config.ParseFormat(name)
	if err != nil {
		return err
	}
	data, err := config.Marshal(loaded.Config, format)
	if err != nil {
		return err
	}
	if format != config.FormatJSON {
		fmt.Fprintln(out, "# spritegen configuration")
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Options files and duplicate policies are only checked when used
	if _, err := loaded.Config.PluginOptions(afero.NewOsFs(), nil); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pterm.Success.WithWriter(out).Println("Configuration is valid")
	if len(loaded.Files) == 0 {
		fmt.Fprintln(out, "  no config files found, using defaults")
	}
	for _, path := range loaded.Files {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ProjectConfigName
	if len(args) == 1 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", path)
	}

	force, _ := cmd.Flags().GetBool("force")
	if err := config.Save(afero.NewOsFs(), abs, config.Default(), force); err != nil {
		return err
	}
	pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", abs)
	return nil
}
