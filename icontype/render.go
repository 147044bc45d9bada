// Package icontype renders the IconType TypeScript module for a set of icons
// and keeps it on disk, rewriting it only when its content changes.
//
// # Generated format
//
//	import "./icons/a.svg";
//	import "./icons/b.svg";
//
//	type IconType = "a"
//	    | "b";
//	export default IconType;
//	export function loadSvgIcons(){/*dummy function*/}
//
// The imports make the bundler pick up every icon file; loadSvgIcons gives
// consumers an explicit side-effecting import. The output is a pure function
// of the icon set and the relative path from the output file to the icons
// directory, so it is byte-identical across runs and platforms.
package icontype

import (
	"path/filepath"
	"strings"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/icons"
)

const (
	// TypeName is the name of the generated union type
	TypeName = "IconType"

	// MarkerFunc is the no-op export consumers import for its side effects
	MarkerFunc = "loadSvgIcons"

	// EmptyUnion is the type emitted when there are no icons
	EmptyUnion = "never"

	unionSeparator = "\n    | "
)

// ImportPrefix returns the module specifier prefix that reaches iconsDir from
// the directory containing outputFile. Both paths must be absolute.
func ImportPrefix(iconsDir, outputFile string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(outputFile), iconsDir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to compute path from %s to %s", outputFile, iconsDir)
	}
	return moduleSpecifier(rel), nil
}

// moduleSpecifier forces forward slashes and makes rel an explicit relative specifier.
func moduleSpecifier(rel string) string {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "./") || strings.HasPrefix(rel, "../") {
		return rel
	}
	return "./" + rel
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// quote renders s as a double-quoted TypeScript string literal
func quote(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}

// Render produces the module source for set using the given import prefix.
func Render(set *icons.Set, prefix string) []byte {
	list := set.Icons()

	var sb strings.Builder
	for i, icon := range list {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("import ")
		sb.WriteString(quote(prefix + "/" + icon.Path))
		sb.WriteString(";")
	}

	sb.WriteString("\n\ntype ")
	sb.WriteString(TypeName)
	sb.WriteString(" = ")
	if len(list) == 0 {
		sb.WriteString(EmptyUnion)
	}
	for i, icon := range list {
		if i > 0 {
			sb.WriteString(unionSeparator)
		}
		sb.WriteString(quote(icon.Name))
	}
	sb.WriteString(";\n")

	sb.WriteString("export default ")
	sb.WriteString(TypeName)
	sb.WriteString(";\n")
	sb.WriteString("export function ")
	sb.WriteString(MarkerFunc)
	sb.WriteString("(){/*dummy function*/}")

	return []byte(sb.String())
}

// RenderFor computes the import prefix for iconsDir/outputFile and renders set.
func RenderFor(set *icons.Set, iconsDir, outputFile string) ([]byte, error) {
	prefix, err := ImportPrefix(iconsDir, outputFile)
	if err != nil {
		return nil, err
	}
	return Render(set, prefix), nil
}
