// Package config loads spritegen settings from defaults, TOML files and
// SPRITEGEN_* environment variables.
package config

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/icons"
	"github.com/teranos/spritegen/sprite"
)

// Config is the complete spritegen configuration
type Config struct {
	IconsDir     string   `mapstructure:"icons_dir" toml:"icons_dir" yaml:"icons_dir" json:"icons_dir"`
	IconTypeFile string   `mapstructure:"icon_type_file" toml:"icon_type_file" yaml:"icon_type_file" json:"icon_type_file"`
	Duplicates   string   `mapstructure:"duplicates" toml:"duplicates" yaml:"duplicates" json:"duplicates"`
	Exclude      []string `mapstructure:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	Sprite SpriteConfig `mapstructure:"sprite" toml:"sprite" yaml:"sprite" json:"sprite"`
	Host   HostConfig   `mapstructure:"host" toml:"host" yaml:"host" json:"host"`
	Watch  WatchConfig  `mapstructure:"watch" toml:"watch" yaml:"watch" json:"watch"`
}

// SpriteConfig configures the sprite compiler
type SpriteConfig struct {
	PlainSprite      bool   `mapstructure:"plain_sprite" toml:"plain_sprite" yaml:"plain_sprite" json:"plain_sprite"`
	SpriteFilename   string `mapstructure:"sprite_filename" toml:"sprite_filename" yaml:"sprite_filename" json:"sprite_filename"`
	SymbolIDPrefix   string `mapstructure:"symbol_id_prefix" toml:"symbol_id_prefix" yaml:"symbol_id_prefix" json:"symbol_id_prefix"`
	ManifestFilename string `mapstructure:"manifest_filename" toml:"manifest_filename" yaml:"manifest_filename" json:"manifest_filename"`

	// OptionsFile points at a standalone sprite options TOML file that
	// replaces the fields above. Relative to the host context.
	OptionsFile string `mapstructure:"options_file" toml:"options_file" yaml:"options_file" json:"options_file"`
}

// HostConfig configures the in-process build host
type HostConfig struct {
	Context    string `mapstructure:"context" toml:"context" yaml:"context" json:"context"`
	OutputPath string `mapstructure:"output_path" toml:"output_path" yaml:"output_path" json:"output_path"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS           int     `mapstructure:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
	MaxRebuildsPerSecond float64 `mapstructure:"max_rebuilds_per_second" toml:"max_rebuilds_per_second" yaml:"max_rebuilds_per_second" json:"max_rebuilds_per_second"` // 0 = unlimited
}

// Validate checks that the configuration is usable. Every failure is an
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.IconsDir) == "" {
		return errors.NewInvalidConfigError("icons_dir cannot be empty")
	}
	if strings.TrimSpace(c.IconTypeFile) == "" {
		return errors.NewInvalidConfigError("icon_type_file cannot be empty")
	}
	if _, err := icons.ParseDuplicatePolicy(c.Duplicates); err != nil {
		return err
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.NewInvalidConfigError("exclude pattern %q is not valid", pattern)
		}
	}

	if c.Sprite.SpriteFilename == "" {
		return errors.NewInvalidConfigError("sprite.sprite_filename cannot be empty")
	}
	if sprite.EscapesOutput(c.Sprite.SpriteFilename) {
		return errors.NewInvalidConfigError("sprite.sprite_filename must stay inside host.output_path, got %q", c.Sprite.SpriteFilename)
	}
	if c.Sprite.ManifestFilename != "" && sprite.EscapesOutput(c.Sprite.ManifestFilename) {
		return errors.NewInvalidConfigError("sprite.manifest_filename must stay inside host.output_path, got %q", c.Sprite.ManifestFilename)
	}

	// 0 = no debounce beyond the default, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.NewInvalidConfigError("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.MaxRebuildsPerSecond < 0 {
		return errors.NewInvalidConfigError("watch.max_rebuilds_per_second must be >= 0, got %f", c.Watch.MaxRebuildsPerSecond)
	}
	return nil
}
