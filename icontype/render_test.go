package icontype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/spritegen/icons"
)

func iconSet(names ...string) *icons.Set {
	list := make([]icons.Icon, len(names))
	for i, n := range names {
		list[i] = icons.Icon{Name: n, Path: n + icons.Extension}
	}
	return icons.NewSet(list...)
}

func TestRender_TwoIcons(t *testing.T) {
	got := string(Render(iconSet("a", "b"), "./icons"))

	want := `import "./icons/a.svg";
import "./icons/b.svg";

type IconType = "a"
    | "b";
export default IconType;
export function loadSvgIcons(){/*dummy function*/}`

	assert.Equal(t, want, got)
}

func TestRender_PreservesSetOrder(t *testing.T) {
	got := string(Render(iconSet("zeta", "alpha"), "."))

	assert.Equal(t, []string{"zeta", "alpha"}, ParseIdentifiers([]byte(got)))
	assert.Less(t, strings.Index(got, `import "./zeta.svg";`), strings.Index(got, `import "./alpha.svg";`))
}

func TestRender_NoIcons(t *testing.T) {
	got := string(Render(icons.NewSet(), "./icons"))

	want := "\n\ntype IconType = never;\nexport default IconType;\nexport function loadSvgIcons(){/*dummy function*/}"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "import")
}

func TestRender_NestedIconUsesItsPath(t *testing.T) {
	set := icons.NewSet(icons.Icon{Name: "home", Path: "nav/home.svg"})

	got := string(Render(set, "../icons"))

	assert.Contains(t, got, `import "../icons/nav/home.svg";`)
	assert.Contains(t, got, `type IconType = "home";`)
}

func TestRender_EscapesLiterals(t *testing.T) {
	set := icons.NewSet(icons.Icon{Name: `say "hi"\now`, Path: `say "hi"\now.svg`})

	got := Render(set, ".")

	assert.Contains(t, string(got), `type IconType = "say \"hi\"\\now";`)
	assert.Equal(t, []string{`say "hi"\now`}, ParseIdentifiers(got))
}

func TestRender_Deterministic(t *testing.T) {
	set := iconSet("c", "a", "b")
	first := Render(set, "./icons")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render(set, "./icons"))
	}
}

func TestImportPrefix(t *testing.T) {
	tests := []struct {
		name     string
		iconsDir string
		output   string
		want     string
	}{
		{
			name:     "default layout",
			iconsDir: "/project/icons",
			output:   "/project/src/components/common/IconType.ts",
			want:     "../../../icons",
		},
		{
			name:     "icons below output directory",
			iconsDir: "/project/src/icons",
			output:   "/project/src/IconType.ts",
			want:     "./icons",
		},
		{
			name:     "same directory",
			iconsDir: "/project/src",
			output:   "/project/src/IconType.ts",
			want:     ".",
		},
		{
			name:     "dot-prefixed directory is not a relative marker",
			iconsDir: "/project/.icons",
			output:   "/project/IconType.ts",
			want:     "./.icons",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImportPrefix(tt.iconsDir, tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportPrefix_DeeperOutputOnlyChangesPrefix(t *testing.T) {
	set := iconSet("a", "b")

	shallow, err := RenderFor(set, "/p/icons", "/p/src/IconType.ts")
	require.NoError(t, err)
	deep, err := RenderFor(set, "/p/icons", "/p/src/components/common/IconType.ts")
	require.NoError(t, err)

	assert.Contains(t, string(shallow), `import "../icons/a.svg";`)
	assert.Contains(t, string(deep), `import "../../../icons/a.svg";`)
	assert.Equal(t, ParseIdentifiers(shallow), ParseIdentifiers(deep))
}

func TestModuleSpecifier_BackslashSeparators(t *testing.T) {
	assert.Equal(t, "../../icons", moduleSpecifier(`..\..\icons`))
	assert.Equal(t, "./assets/icons", moduleSpecifier(`assets\icons`))
	assert.Equal(t, "./icons", moduleSpecifier("icons"))
	assert.Equal(t, "..", moduleSpecifier(".."))
}
