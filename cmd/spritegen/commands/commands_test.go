package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/spritegen/errors"
)

const projectConfig = `icons_dir = "icons"
icon_type_file = "src/IconType.ts"

[sprite]
manifest_filename = "sprite.toml"
`

const generatedAB = `import "../icons/a.svg";
import "../icons/b.svg";

type IconType = "a"
    | "b";
export default IconType;
export function loadSvgIcons(){/*dummy function*/}`

const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M0 0h24v24H0z"/></svg>`

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// setupProject creates a project with spritegen.toml and icons a and b,
// and makes it the working directory.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "spritegen.toml"), []byte(projectConfig), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "icons"), 0755))
	for _, name := range []string{"a", "b"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "icons", name+".svg"), []byte(iconSVG), 0644))
	}
	return dir
}

// execute runs args against a fresh root carrying the package commands
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "spritegen", SilenceUsage: true, SilenceErrors: true}
	BindGlobalFlags(root)
	root.AddCommand(BuildCmd, GenerateCmd, CheckCmd, ConfigCmd, VersionCmd)
	defer resetFlags(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default, since the commands are
// package-level and keep parsed values between executions.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestGenerate(t *testing.T) {
	dir := setupProject(t)

	out, err := execute(t, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated")
	assert.Contains(t, out, "2 icons")

	data, err := os.ReadFile(filepath.Join(dir, "src", "IconType.ts"))
	require.NoError(t, err)
	assert.Equal(t, generatedAB, string(data))

	out, err = execute(t, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")
}

func TestCheck(t *testing.T) {
	dir := setupProject(t)

	out, err := execute(t, "check")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfDate))
	assert.Contains(t, errors.FlattenHints(err), "spritegen generate")
	assert.Contains(t, out, "does not exist")
	assert.Contains(t, out, "+ a")
	assert.Contains(t, out, "+ b")

	_, err = execute(t, "generate")
	require.NoError(t, err)

	out, err = execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	require.NoError(t, os.Remove(filepath.Join(dir, "icons", "b.svg")))
	out, err = execute(t, "check")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfDate))
	assert.Contains(t, out, "- b")
}

func TestBuild(t *testing.T) {
	dir := setupProject(t)

	out, err := execute(t, "build", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "completed (2 assets)")
	assert.Contains(t, out, "emitted  sprite.svg")
	assert.Contains(t, out, "emitted  sprite.toml")
	assert.Contains(t, out, "watching "+filepath.Join(dir, "icons"))

	sheet, err := os.ReadFile(filepath.Join(dir, "dist", "sprite.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(sheet), `<symbol id="a"`)
	assert.Contains(t, string(sheet), `<symbol id="b"`)

	data, err := os.ReadFile(filepath.Join(dir, "src", "IconType.ts"))
	require.NoError(t, err)
	assert.Equal(t, generatedAB, string(data))
}

func TestBuild_DuplicatesRejected(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "icons", "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "icons", "nested", "a.svg"), []byte(iconSVG), 0644))
	t.Setenv("SPRITEGEN_DUPLICATES", "error")

	_, err := execute(t, "build")
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateIconError(err))

	_, statErr := os.Stat(filepath.Join(dir, "src", "IconType.ts"))
	assert.True(t, os.IsNotExist(statErr), "a failed build must not write the IconType file")
}

func TestBuild_InvalidConfig(t *testing.T) {
	setupProject(t)
	t.Setenv("SPRITEGEN_DUPLICATES", "sometimes")

	_, err := execute(t, "build")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfigError(err))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+filepath.Join(dir, "spritegen.toml"))

	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--force")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)

	out, err = execute(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, filepath.Join(dir, "spritegen.toml"))
}

func TestConfigShow(t *testing.T) {
	dir := setupProject(t)

	out, err := execute(t, "config", "show", "--format", "json")
	require.NoError(t, err)
	var shown map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "icons", shown["icons_dir"])
	assert.Equal(t, dir, shown["host"].(map[string]interface{})["context"])

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# spritegen configuration")
	assert.Contains(t, out, "icon_type_file")

	_, err = execute(t, "config", "show", "--format", "xml")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfigError(err))
}

func TestConfigShow_Sources(t *testing.T) {
	setupProject(t)
	t.Setenv("SPRITEGEN_WATCH_DEBOUNCE_MS", "250")

	out, err := execute(t, "config", "show", "--sources")
	require.NoError(t, err)
	assert.Contains(t, out, "icons_dir")
	assert.Contains(t, out, "project")
	assert.Contains(t, out, "SPRITEGEN_WATCH_DEBOUNCE_MS")
	assert.Contains(t, out, "built-in default")
}

func TestExplicitConfigFile(t *testing.T) {
	dir := setupProject(t)
	explicit := filepath.Join(t.TempDir(), "ci.toml")
	require.NoError(t, os.WriteFile(explicit, []byte(`icon_type_file = "types/Icons.ts"`), 0644))

	_, err := execute(t, "generate", "--config", explicit)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "types", "Icons.ts"))
	assert.NoError(t, err)

	_, err = execute(t, "generate", "--config", filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsFilesystemError(err))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["go_version"])

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spritegen ")
	assert.Contains(t, out, "Platform: ")
}
