package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/spritegen/devhost"
	"github.com/teranos/spritegen/icons"
	"github.com/teranos/spritegen/sprite"
	"github.com/teranos/spritegen/spritesheet"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. SPRITEGEN_ICONS_DIR
	EnvPrefix = "SPRITEGEN"

	// ProjectConfigName is searched for from the working directory upward
	ProjectConfigName = "spritegen.toml"

	// DefaultFilePermissions for files written by config init
	DefaultFilePermissions = 0644
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("icons_dir", spritesheet.DefaultIconsDir)
	v.SetDefault("icon_type_file", spritesheet.DefaultIconTypeFile)
	v.SetDefault("duplicates", string(icons.FirstWins))
	v.SetDefault("exclude", []string{})

	// Sprite compiler defaults match sprite.DefaultOptions
	v.SetDefault("sprite.plain_sprite", true)
	v.SetDefault("sprite.sprite_filename", sprite.DefaultSpriteFilename)
	v.SetDefault("sprite.symbol_id_prefix", "")
	v.SetDefault("sprite.manifest_filename", "")
	v.SetDefault("sprite.options_file", "")

	// Empty context means the project directory, see Load
	v.SetDefault("host.context", "")
	v.SetDefault("host.output_path", devhost.DefaultOutputPath)

	v.SetDefault("watch.debounce_ms", int(devhost.DefaultDebounce.Milliseconds()))
	v.SetDefault("watch.max_rebuilds_per_second", devhost.DefaultMaxRebuildsPerSecond)
}

// Default returns the configuration with nothing but defaults applied
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		panic("default configuration is invalid: " + err.Error())
	}
	return cfg
}
