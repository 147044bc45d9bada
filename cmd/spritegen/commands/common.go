package commands

import (
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/teranos/spritegen/config"
	"github.com/teranos/spritegen/devhost"
	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/logger"
	"github.com/teranos/spritegen/spritesheet"
	"github.com/teranos/spritegen/version"
)

// BindGlobalFlags registers the flags every command reads
func BindGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().StringP("config", "c", "", "Config file to merge over user and project config")
	root.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON on stderr")
}

// InitLogging configures the global logger from the global flags
func InitLogging(cmd *cobra.Command) error {
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	if err := logger.Initialize(jsonLogs); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.SetVerbosity(verbosity(cmd))
	return nil
}

// PrintError writes err and its hints to w
func PrintError(w io.Writer, err error) {
	pterm.Error.WithWriter(w).Println(err.Error())
	if hints := errors.FlattenHints(err); hints != "" {
		pterm.Info.WithWriter(w).Println(hints)
	}
}

func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}

// session is the loaded configuration plus the pipeline built from it
type session struct {
	cfg    *config.Config
	fs     afero.Fs
	plugin *spritesheet.Plugin
}

func openSession(cmd *cobra.Command) (*session, error) {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	fsys := afero.NewOsFs()
	opts, err := loaded.Config.PluginOptions(fsys, logger.ComponentLogger("spritesheet"))
	if err != nil {
		return nil, err
	}
	plugin, err := spritesheet.New(opts)
	if err != nil {
		return nil, err
	}

	if v := verbosity(cmd); logger.ShouldOutput(v, logger.OutputConfig) {
		pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("verbosity: %s", logger.LevelName(v))
		for _, path := range loaded.Files {
			pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("config: %s", path)
		}
	}

	return &session{cfg: loaded.Config, fs: fsys, plugin: plugin}, nil
}

// host creates a dev host with the plugin applied
func (s *session) host() (*devhost.Host, error) {
	h, err := devhost.New(s.cfg.HostOptions(s.fs, logger.ComponentLogger("devhost"), version.Get().Version))
	if err != nil {
		return nil, err
	}
	if err := h.Use(s.plugin); err != nil {
		return nil, err
	}
	return h, nil
}

// paths returns the absolute icons directory and IconType file
func (s *session) paths() (iconsDir, iconTypeFile string) {
	return s.plugin.Resolve(s.cfg.Host.Context)
}
