// Package spritesheet is the build plugin that keeps the IconType module in
// sync with an icons directory. It delegates sprite assembly to the sprite
// compiler and regenerates the IconType file in the same process-assets
// stage, after the sprite has been compiled.
package spritesheet

import (
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/host"
	"github.com/teranos/spritegen/icons"
	"github.com/teranos/spritegen/icontype"
	"github.com/teranos/spritegen/logger"
	"github.com/teranos/spritegen/sprite"
)

const (
	// PluginName identifies the plugin's hooks and taps
	PluginName = "SvgSpriteSheetPlugin"

	// DefaultIconsDir is the icons directory relative to the host context
	DefaultIconsDir = "./icons"

	// DefaultIconTypeFile is the generated module relative to the host context
	DefaultIconTypeFile = "./src/components/common/IconType.ts"

	// HostVersionConstraint is the range of host versions the plugin supports
	HostVersionConstraint = ">= 0.1.0-0"
)

// Options configures the plugin. Zero values take the defaults.
type Options struct {
	IconsDir     string
	IconTypeFile string

	// SpriteLoaderOptions are passed to the sprite compiler unchanged.
	// Nil means sprite.DefaultOptions (a plain sprite).
	SpriteLoaderOptions *sprite.Options

	Duplicates icons.DuplicatePolicy
	Exclude    []string

	Fs     afero.Fs
	Logger *zap.SugaredLogger
}

// Plugin coordinates sprite compilation and IconType generation.
type Plugin struct {
	opts      Options
	sprite    *sprite.Plugin
	extractor *icons.Extractor
	emitter   *icontype.Emitter
	logger    *zap.SugaredLogger
}

var _ host.VersionedPlugin = (*Plugin)(nil)

// New validates opts, fills defaults and creates the sprite compiler.
func New(opts Options) (*Plugin, error) {
	if opts.IconsDir == "" {
		opts.IconsDir = DefaultIconsDir
	}
	if opts.IconTypeFile == "" {
		opts.IconTypeFile = DefaultIconTypeFile
	}
	if opts.Duplicates == "" {
		opts.Duplicates = icons.FirstWins
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	log := logger.OrNop(opts.Logger)
	opts.Logger = log

	spriteOpts := sprite.DefaultOptions()
	if opts.SpriteLoaderOptions != nil {
		spriteOpts = *opts.SpriteLoaderOptions
	}
	opts.SpriteLoaderOptions = &spriteOpts

	extractor, err := icons.NewExtractor(opts.Fs, icons.ExtractorOptions{
		Duplicates: opts.Duplicates,
		Exclude:    opts.Exclude,
		Logger:     log.Named("icons"),
	})
	if err != nil {
		return nil, err
	}

	return &Plugin{
		opts:      opts,
		sprite:    sprite.New(spriteOpts, opts.Fs, extractor, log.Named("sprite")),
		extractor: extractor,
		emitter:   icontype.NewEmitter(opts.Fs, log.Named("icontype")),
		logger:    log,
	}, nil
}

// Name implements host.VersionedPlugin
func (p *Plugin) Name() string {
	return PluginName
}

// RequiredHostVersion implements host.VersionedPlugin
func (p *Plugin) RequiredHostVersion() string {
	return HostVersionConstraint
}

// Options returns the effective options after defaults
func (p *Plugin) Options() Options {
	return p.opts
}

// Apply applies the sprite compiler first, so its process-assets tap runs
// before ours in the shared stage, then hooks every new compilation.
func (p *Plugin) Apply(c host.Compiler) error {
	if err := p.sprite.Apply(c); err != nil {
		return errors.Wrap(err, "failed to apply sprite compiler")
	}

	c.OnThisCompilation(PluginName, func(comp host.Compilation) error {
		iconsDir, iconTypeFile := p.Resolve(c.Context())
		comp.AddContextDependency(iconsDir)

		comp.OnProcessAssets(host.Tap{Name: PluginName, Stage: host.StageAdditions}, func() error {
			_, err := p.Generate(iconsDir, iconTypeFile)
			return err
		})
		return nil
	})
	return nil
}

// Resolve returns the icons directory and IconType file as absolute paths,
// resolving relative options against contextDir.
func (p *Plugin) Resolve(contextDir string) (iconsDir, iconTypeFile string) {
	return resolve(contextDir, p.opts.IconsDir), resolve(contextDir, p.opts.IconTypeFile)
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// Generate extracts the icon set from iconsDir and writes iconTypeFile if
// its content changed. Both paths must be absolute.
func (p *Plugin) Generate(iconsDir, iconTypeFile string) (*icontype.Result, error) {
	set, err := p.extractor.Extract(iconsDir)
	if err != nil {
		return nil, err
	}

	res, err := p.emitter.Emit(set, iconsDir, iconTypeFile)
	if err != nil {
		return nil, err
	}

	p.logger.Debugw("IconType regenerated",
		logger.FieldIconsDir, iconsDir,
		logger.FieldOutput, iconTypeFile,
		logger.FieldCount, res.Icons,
		logger.FieldWritten, res.Written)
	return res, nil
}

// Check reports whether iconTypeFile matches what Generate would write,
// without writing.
func (p *Plugin) Check(iconsDir, iconTypeFile string) (*icontype.CheckResult, error) {
	set, err := p.extractor.Extract(iconsDir)
	if err != nil {
		return nil, err
	}
	return icontype.Check(p.opts.Fs, set, iconsDir, iconTypeFile)
}
