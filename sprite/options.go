package sprite

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/teranos/spritegen/errors"
)

// DefaultSpriteFilename is the asset name of the compiled sheet
const DefaultSpriteFilename = "sprite.svg"

// Options configures the sprite compiler. The zero value is an extractable
// sheet with <use> previews; most callers want PlainSprite.
type Options struct {
	// PlainSprite emits only <symbol> definitions, without preview <use> elements
	PlainSprite bool `toml:"plain_sprite" mapstructure:"plain_sprite"`

	// SpriteFilename is the asset name of the sheet (default "sprite.svg")
	SpriteFilename string `toml:"sprite_filename" mapstructure:"sprite_filename"`

	// SymbolIDPrefix is prepended to every symbol id
	SymbolIDPrefix string `toml:"symbol_id_prefix" mapstructure:"symbol_id_prefix"`

	// ManifestFilename, when set, also emits a TOML list of the symbols
	ManifestFilename string `toml:"manifest_filename" mapstructure:"manifest_filename"`
}

// DefaultOptions are the options used when none are given
func DefaultOptions() Options {
	return Options{
		PlainSprite:    true,
		SpriteFilename: DefaultSpriteFilename,
	}
}

func (o Options) withDefaults() Options {
	if o.SpriteFilename == "" {
		o.SpriteFilename = DefaultSpriteFilename
	}
	return o
}

// LoadOptionsFile reads sprite options from a standalone TOML file.
// Keys not listed in Options are rejected.
func LoadOptionsFile(fsys afero.Fs, path string) (Options, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Options{}, errors.WrapFilesystem(err, "read sprite options", path)
	}

	opts := DefaultOptions()
	meta, err := toml.Decode(string(data), &opts)
	if err != nil {
		return Options{}, errors.Wrapf(errors.Mark(err, errors.ErrInvalidConfig), "failed to parse sprite options %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.NewInvalidConfigError("unknown sprite option %q in %s", undecoded[0].String(), path)
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Options{}, errors.Wrapf(err, "sprite options %s", path)
	}
	return opts, nil
}

// Validate checks that every asset name stays inside the host output path
func (o Options) Validate() error {
	if EscapesOutput(o.SpriteFilename) {
		return errors.NewInvalidConfigError("sprite_filename must stay inside the output path, got %q", o.SpriteFilename)
	}
	if o.ManifestFilename != "" && EscapesOutput(o.ManifestFilename) {
		return errors.NewInvalidConfigError("manifest_filename must stay inside the output path, got %q", o.ManifestFilename)
	}
	return nil
}

// EscapesOutput reports whether an asset name is absolute or climbs out of
// the output path.
func EscapesOutput(name string) bool {
	if filepath.IsAbs(name) {
		return true
	}
	clean := filepath.ToSlash(filepath.Clean(name))
	return clean == ".." || strings.HasPrefix(clean, "../")
}
