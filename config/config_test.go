package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/icons"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "./icons", cfg.IconsDir)
	assert.Equal(t, "./src/components/common/IconType.ts", cfg.IconTypeFile)
	assert.Equal(t, "first", cfg.Duplicates)
	assert.Empty(t, cfg.Exclude)
	assert.True(t, cfg.Sprite.PlainSprite)
	assert.Equal(t, "sprite.svg", cfg.Sprite.SpriteFilename)
	assert.Equal(t, "dist", cfg.Host.OutputPath)
	assert.Equal(t, 100, cfg.Watch.DebounceMS)
	assert.Equal(t, 2.0, cfg.Watch.MaxRebuildsPerSecond)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero debounce is valid", mutate: func(c *Config) { c.Watch.DebounceMS = 0 }},
		{name: "zero rate is valid (unlimited)", mutate: func(c *Config) { c.Watch.MaxRebuildsPerSecond = 0 }},
		{name: "empty icons dir", mutate: func(c *Config) { c.IconsDir = " " }, wantErr: "icons_dir"},
		{name: "empty output file", mutate: func(c *Config) { c.IconTypeFile = "" }, wantErr: "icon_type_file"},
		{name: "unknown duplicate policy", mutate: func(c *Config) { c.Duplicates = "maybe" }, wantErr: "maybe"},
		{name: "bad exclude pattern", mutate: func(c *Config) { c.Exclude = []string{"{a,b"} }, wantErr: "exclude"},
		{name: "sprite escapes output", mutate: func(c *Config) { c.Sprite.SpriteFilename = "../sprite.svg" }, wantErr: "sprite_filename"},
		{name: "absolute manifest", mutate: func(c *Config) { c.Sprite.ManifestFilename = "/tmp/m.toml" }, wantErr: "manifest_filename"},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.DebounceMS = -1 }, wantErr: "debounce_ms"},
		{name: "negative rate", mutate: func(c *Config) { c.Watch.MaxRebuildsPerSecond = -0.5 }, wantErr: "max_rebuilds_per_second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalidConfigError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Precedence(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "packages", "web")
	require.NoError(t, os.MkdirAll(work, 0755))

	writeFile(t, UserConfigPath(home), `
icons_dir = "user-icons"
duplicates = "last"

[sprite]
symbol_id_prefix = "u-"
`)
	writeFile(t, filepath.Join(project, ProjectConfigName), `
icons_dir = "assets/icons"

[sprite]
plain_sprite = false
`)
	explicit := filepath.Join(t.TempDir(), "ci.toml")
	writeFile(t, explicit, `
[watch]
debounce_ms = 250
`)
	t.Setenv("SPRITEGEN_ICON_TYPE_FILE", "src/generated/IconType.ts")

	loaded, err := Load(LoadOptions{WorkDir: work, HomeDir: home, ConfigFile: explicit})
	require.NoError(t, err)
	cfg := loaded.Config

	assert.Equal(t, "assets/icons", cfg.IconsDir, "project overrides user")
	assert.Equal(t, "last", cfg.Duplicates, "user overrides default")
	assert.Equal(t, "u-", cfg.Sprite.SymbolIDPrefix, "nested user keys survive a project [sprite] table")
	assert.False(t, cfg.Sprite.PlainSprite)
	assert.Equal(t, 250, cfg.Watch.DebounceMS, "explicit file overrides defaults")
	assert.Equal(t, "src/generated/IconType.ts", cfg.IconTypeFile, "environment overrides everything")

	assert.Equal(t, filepath.Join(project, ProjectConfigName), loaded.ProjectFile)
	assert.Equal(t, project, cfg.Host.Context, "context defaults to the project directory")
	assert.Len(t, loaded.Files, 3)

	assert.Equal(t, SourceProject, loaded.Sources["icons_dir"].Source)
	assert.Equal(t, SourceUser, loaded.Sources["duplicates"].Source)
	assert.Equal(t, SourceExplicit, loaded.Sources["watch.debounce_ms"].Source)
	assert.Equal(t, SourceInfo{Source: SourceEnvironment, Path: "SPRITEGEN_ICON_TYPE_FILE"}, loaded.Sources["icon_type_file"])
}

func TestLoad_NoFiles(t *testing.T) {
	work := t.TempDir()

	loaded, err := Load(LoadOptions{WorkDir: work, HomeDir: t.TempDir()})
	require.NoError(t, err)

	assert.Empty(t, loaded.ProjectFile)
	assert.Empty(t, loaded.Files)
	assert.Equal(t, work, loaded.Config.Host.Context)
}

func TestLoad_EnvironmentList(t *testing.T) {
	t.Setenv("SPRITEGEN_EXCLUDE", "drafts/**,legacy/*.svg")

	loaded, err := Load(LoadOptions{WorkDir: t.TempDir(), HomeDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, []string{"drafts/**", "legacy/*.svg"}, loaded.Config.Exclude)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(LoadOptions{WorkDir: t.TempDir(), HomeDir: t.TempDir(), ConfigFile: "/does/not/exist.toml"})
	assert.True(t, errors.IsFilesystemError(err))

	broken := filepath.Join(t.TempDir(), "broken.toml")
	writeFile(t, broken, "icons_dir = ")
	_, err = Load(LoadOptions{WorkDir: t.TempDir(), HomeDir: t.TempDir(), ConfigFile: broken})
	assert.True(t, errors.IsInvalidConfigError(err))

	invalid := filepath.Join(t.TempDir(), "invalid.toml")
	writeFile(t, invalid, `duplicates = "sometimes"`)
	_, err = Load(LoadOptions{WorkDir: t.TempDir(), HomeDir: t.TempDir(), ConfigFile: invalid})
	assert.True(t, errors.IsInvalidConfigError(err))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spritegen.toml")
	writeFile(t, path, `exclude = ["drafts/**"]`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"drafts/**"}, cfg.Exclude)
	assert.Equal(t, "./icons", cfg.IconsDir)
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0755))

	assert.Empty(t, findProjectConfig(deep))

	writeFile(t, filepath.Join(root, "a", ProjectConfigName), "")
	assert.Equal(t, filepath.Join(root, "a", ProjectConfigName), findProjectConfig(deep))

	// a directory with the config name is not a config file
	require.NoError(t, os.Mkdir(filepath.Join(root, "a", "b", ProjectConfigName), 0755))
	assert.Equal(t, filepath.Join(root, "a", ProjectConfigName), findProjectConfig(deep))
}

func TestMarshal_Formats(t *testing.T) {
	cfg := Default()
	cfg.Exclude = []string{"drafts/**"}

	data, err := Marshal(cfg, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "icons_dir: ./icons")
	assert.Contains(t, string(data), "  plain_sprite: true")

	data, err = Marshal(cfg, FormatJSON)
	require.NoError(t, err)
	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, []interface{}{"drafts/**"}, generic["exclude"])

	data, err = Marshal(cfg, FormatTOML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[sprite]")

	_, err = ParseFormat("xml")
	assert.True(t, errors.IsInvalidConfigError(err))
	f, err := ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
}

func TestSave(t *testing.T) {
	fsys := afero.NewMemMapFs()
	cfg := Default()
	cfg.IconsDir = "assets/icons"

	require.NoError(t, Save(fsys, "/project/spritegen.toml", cfg, false))

	err := Save(fsys, "/project/spritegen.toml", cfg, false)
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--force")

	require.NoError(t, Save(fsys, "/project/spritegen.toml", cfg, true))

	data, err := afero.ReadFile(fsys, "/project/spritegen.toml")
	require.NoError(t, err)
	var saved Config
	require.NoError(t, toml.Unmarshal(data, &saved))
	assert.Equal(t, "assets/icons", saved.IconsDir)
}

func TestSavedConfigLoadsBack(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Duplicates = "error"
	cfg.Sprite.SymbolIDPrefix = "icon-"

	require.NoError(t, Save(afero.NewOsFs(), filepath.Join(dir, ProjectConfigName), cfg, false))

	loaded, err := Load(LoadOptions{WorkDir: dir, HomeDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "error", loaded.Config.Duplicates)
	assert.Equal(t, "icon-", loaded.Config.Sprite.SymbolIDPrefix)
	assert.Equal(t, dir, loaded.Config.Host.Context)
}

func TestLoad_RelativeContext(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigName), "[host]\ncontext = \"web\"\n")

	loaded, err := Load(LoadOptions{WorkDir: project, HomeDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, "web"), loaded.Config.Host.Context)
}

func TestSettings(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigName), `icons_dir = "svg"`)

	loaded, err := Load(LoadOptions{WorkDir: project, HomeDir: t.TempDir()})
	require.NoError(t, err)

	byKey := make(map[string]Setting)
	for _, s := range loaded.Settings() {
		byKey[s.Key] = s
	}
	require.Contains(t, byKey, "icons_dir")
	assert.Equal(t, "svg", byKey["icons_dir"].Value)
	assert.Equal(t, SourceProject, byKey["icons_dir"].Source)
	assert.Equal(t, SourceDefault, byKey["sprite.sprite_filename"].Source)
}

func TestPluginOptions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	cfg := Default()
	cfg.Host.Context = "/project"
	cfg.Duplicates = "last"
	cfg.Sprite.SymbolIDPrefix = "i-"

	opts, err := cfg.PluginOptions(fsys, nil)
	require.NoError(t, err)
	assert.Equal(t, icons.LastWins, opts.Duplicates)
	require.NotNil(t, opts.SpriteLoaderOptions)
	assert.Equal(t, "i-", opts.SpriteLoaderOptions.SymbolIDPrefix)
	assert.True(t, opts.SpriteLoaderOptions.PlainSprite)

	require.NoError(t, afero.WriteFile(fsys, "/project/sprite.toml", []byte(`plain_sprite = false`), 0644))
	cfg.Sprite.OptionsFile = "sprite.toml"
	opts, err = cfg.PluginOptions(fsys, nil)
	require.NoError(t, err)
	assert.False(t, opts.SpriteLoaderOptions.PlainSprite)
	assert.Empty(t, opts.SpriteLoaderOptions.SymbolIDPrefix, "options file replaces inline settings")
}

func TestPluginOptions_OptionsFileMustStayInOutput(t *testing.T) {
	fsys := afero.NewMemMapFs()
	cfg := Default()
	cfg.Host.Context = "/project"
	cfg.Sprite.OptionsFile = "sprite.toml"

	require.NoError(t, afero.WriteFile(fsys, "/project/sprite.toml", []byte(`sprite_filename = "../../public/sprite.svg"`), 0644))
	_, err := cfg.PluginOptions(fsys, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfigError(err))
	assert.Contains(t, err.Error(), "sprite_filename")

	require.NoError(t, afero.WriteFile(fsys, "/project/sprite.toml", []byte(`manifest_filename = "/tmp/sprite.toml"`), 0644))
	_, err = cfg.PluginOptions(fsys, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfigError(err))
	assert.Contains(t, err.Error(), "manifest_filename")
}

func TestWatchOptions(t *testing.T) {
	cfg := Default()
	cfg.Watch.DebounceMS = 300
	cfg.Watch.MaxRebuildsPerSecond = 0.5

	opts := cfg.WatchOptions()
	assert.Equal(t, 300*time.Millisecond, opts.Debounce)
	assert.Equal(t, 0.5, opts.MaxRebuildsPerSecond)
}
