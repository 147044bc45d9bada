package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/spritegen/devhost"
	"github.com/teranos/spritegen/icons"
	"github.com/teranos/spritegen/sprite"
	"github.com/teranos/spritegen/spritesheet"
)

// SpriteOptions returns the sprite compiler options. When sprite.options_file
// is set it is loaded instead of the inline sprite settings.
func (c *Config) SpriteOptions(fsys afero.Fs) (sprite.Options, error) {
	if c.Sprite.OptionsFile != "" {
		path := c.Sprite.OptionsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Host.Context, path)
		}
		return sprite.LoadOptionsFile(fsys, path)
	}
	return sprite.Options{
		PlainSprite:      c.Sprite.PlainSprite,
		SpriteFilename:   c.Sprite.SpriteFilename,
		SymbolIDPrefix:   c.Sprite.SymbolIDPrefix,
		ManifestFilename: c.Sprite.ManifestFilename,
	}, nil
}

// PluginOptions builds spritesheet options from the configuration
func (c *Config) PluginOptions(fsys afero.Fs, log *zap.SugaredLogger) (spritesheet.Options, error) {
	spriteOpts, err := c.SpriteOptions(fsys)
	if err != nil {
		return spritesheet.Options{}, err
	}
	policy, err := icons.ParseDuplicatePolicy(c.Duplicates)
	if err != nil {
		return spritesheet.Options{}, err
	}
	return spritesheet.Options{
		IconsDir:            c.IconsDir,
		IconTypeFile:        c.IconTypeFile,
		SpriteLoaderOptions: &spriteOpts,
		Duplicates:          policy,
		Exclude:             c.Exclude,
		Fs:                  fsys,
		Logger:              log,
	}, nil
}

// HostOptions builds devhost options from the configuration
func (c *Config) HostOptions(fsys afero.Fs, log *zap.SugaredLogger, version string) devhost.Options {
	return devhost.Options{
		Context:    c.Host.Context,
		OutputPath: c.Host.OutputPath,
		Fs:         fsys,
		Logger:     log,
		Version:    version,
	}
}

// WatchOptions builds devhost watch options from the configuration
func (c *Config) WatchOptions() devhost.WatchOptions {
	return devhost.WatchOptions{
		Debounce:             time.Duration(c.Watch.DebounceMS) * time.Millisecond,
		MaxRebuildsPerSecond: c.Watch.MaxRebuildsPerSecond,
	}
}
