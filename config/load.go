package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/spritegen/errors"
)

// LoadOptions controls where configuration is looked up. Empty fields use
// the process environment.
type LoadOptions struct {
	// WorkDir starts the upward search for spritegen.toml (default: cwd)
	WorkDir string

	// HomeDir locates the user config (default: os.UserHomeDir)
	HomeDir string

	// ConfigFile is an explicit config file (--config). It must exist.
	ConfigFile string
}

// Source is where a configuration value came from
type Source string

const (
	SourceDefault     Source = "default"
	SourceUser        Source = "user"        // ~/.config/spritegen/spritegen.toml
	SourceProject     Source = "project"     // spritegen.toml found upward from the working directory
	SourceExplicit    Source = "explicit"    // --config
	SourceEnvironment Source = "environment" // SPRITEGEN_* env vars
)

// SourceInfo tracks the origin of one key
type SourceInfo struct {
	Source Source
	Path   string // file path or environment variable name
}

// Loaded is a loaded configuration together with where its values came from
type Loaded struct {
	Config *Config

	// ProjectFile is the project spritegen.toml, if one was found
	ProjectFile string

	// Files lists the merged config files in precedence order
	Files []string

	Sources map[string]SourceInfo
	viper   *viper.Viper
	baseDir string
}

// Viper returns the underlying viper instance
func (l *Loaded) Viper() *viper.Viper {
	return l.viper
}

// Load reads configuration with precedence (lowest to highest):
// defaults < user file < project file < explicit file < environment.
func Load(opts LoadOptions) (*Loaded, error) {
	v, loaded, err := newViper(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	// host.context is relative to the project directory, or the working
	// directory when there is no project file
	switch {
	case cfg.Host.Context == "":
		cfg.Host.Context = loaded.baseDir
	case !filepath.IsAbs(cfg.Host.Context):
		cfg.Host.Context = filepath.Join(loaded.baseDir, cfg.Host.Context)
	}

	loaded.Config = cfg
	return loaded, nil
}

// LoadWithViper unmarshals and validates configuration from v
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to unmarshal config"), errors.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a single file over the defaults,
// without user or project files or environment variables.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := mergeFile(v, configPath); err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

func newViper(opts LoadOptions) (*viper.Viper, *Loaded, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	loaded := &Loaded{Sources: make(map[string]SourceInfo), viper: v}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, errors.WrapFilesystem(err, "get", "working directory")
		}
		workDir = wd
	}
	homeDir := opts.HomeDir
	if homeDir == "" {
		homeDir, _ = os.UserHomeDir()
	}

	type layer struct {
		path     string
		source   Source
		required bool
	}
	var layers []layer
	if homeDir != "" {
		layers = append(layers, layer{path: UserConfigPath(homeDir), source: SourceUser})
	}
	loaded.baseDir = workDir
	if project := findProjectConfig(workDir); project != "" {
		loaded.ProjectFile = project
		loaded.baseDir = filepath.Dir(project)
		layers = append(layers, layer{path: project, source: SourceProject})
	}
	if opts.ConfigFile != "" {
		layers = append(layers, layer{path: opts.ConfigFile, source: SourceExplicit, required: true})
	}

	for _, l := range layers {
		if _, err := os.Stat(l.path); err != nil {
			if !l.required && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, nil, errors.WrapFilesystem(err, "read config file", l.path)
		}

		keys, err := mergeFileKeys(v, l.path)
		if err != nil {
			return nil, nil, err
		}
		for _, key := range keys {
			loaded.Sources[key] = SourceInfo{Source: l.source, Path: l.path}
		}
		loaded.Files = append(loaded.Files, l.path)
	}

	for _, key := range v.AllKeys() {
		envKey := EnvVar(key)
		if _, ok := os.LookupEnv(envKey); ok {
			loaded.Sources[key] = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}
	}

	return v, loaded, nil
}

// EnvVar returns the environment variable that overrides key
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// UserConfigPath returns the user-level config file under homeDir
func UserConfigPath(homeDir string) string {
	return filepath.Join(homeDir, ".config", "spritegen", ProjectConfigName)
}

func mergeFile(v *viper.Viper, path string) error {
	_, err := mergeFileKeys(v, path)
	return err
}

// mergeFileKeys merges the TOML file at path into v and returns the
// flattened keys it set.
func mergeFileKeys(v *viper.Viper, path string) ([]string, error) {
	fileViper := viper.New()
	fileViper.SetConfigFile(path)
	fileViper.SetConfigType("toml")

	if err := fileViper.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.WrapFilesystem(err, "read config file", path)
		}
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse config file %s", path), errors.ErrInvalidConfig)
	}

	settings := fileViper.AllSettings()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, errors.Wrapf(err, "failed to merge config file %s", path)
	}

	keys := fileViper.AllKeys()
	sort.Strings(keys)
	return keys, nil
}

// findProjectConfig searches for spritegen.toml by walking up from start.
// Returns the first file found, or "" if none.
func findProjectConfig(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, ProjectConfigName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
