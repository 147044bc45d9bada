package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/teranos/spritegen/errors"
)

// Format is an output encoding for Marshal
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "toml", "yaml", "yml" or "json"
func ParseFormat(s string) (Format, error) {
	switch s {
	case "toml", "":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.NewInvalidConfigError("unknown format %q (expected toml, yaml or json)", s)
	}
}

// Marshal encodes cfg in the given format
func Marshal(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as TOML")
		}
		return data, nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as YAML")
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as JSON")
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.NewInvalidConfigError("unknown format %q", format)
	}
}

// Save writes cfg as TOML to path. An existing file is only replaced when
// overwrite is set.
func Save(fsys afero.Fs, path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return errors.WrapFilesystem(err, "stat", path)
		}
		if exists {
			return errors.WithHint(errors.Newf("%s already exists", path), "pass --force to overwrite it")
		}
	}

	data, err := Marshal(cfg, FormatTOML)
	if err != nil {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapFilesystem(err, "create directory", filepath.Dir(path))
	}
	if err := afero.WriteFile(fsys, path, data, DefaultFilePermissions); err != nil {
		return errors.WrapFilesystem(err, "write", path)
	}
	return nil
}

// Setting is one effective key with its origin
type Setting struct {
	Key        string      `json:"key" yaml:"key"`
	Value      interface{} `json:"value" yaml:"value"`
	Source     Source      `json:"source" yaml:"source"`
	SourcePath string      `json:"source_path,omitempty" yaml:"source_path,omitempty"`
}

// Settings returns every effective key, sorted, with the source it came from
func (l *Loaded) Settings() []Setting {
	keys := l.viper.AllKeys()
	sort.Strings(keys)

	settings := make([]Setting, 0, len(keys))
	for _, key := range keys {
		info, ok := l.Sources[key]
		if !ok {
			info = SourceInfo{Source: SourceDefault, Path: "built-in default"}
		}
		settings = append(settings, Setting{
			Key:        key,
			Value:      l.viper.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}
