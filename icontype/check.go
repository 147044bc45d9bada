package icontype

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"

	"github.com/spf13/afero"

	"github.com/teranos/spritegen/icons"
)

// CheckResult holds the result of an up-to-date check
type CheckResult struct {
	Path     string
	UpToDate bool
	Missing  bool     // output file does not exist yet
	Added    []string // identifiers the regenerated file would add
	Removed  []string // identifiers the regenerated file would drop
}

// Check renders set for outputFile and compares it with the file on disk
// without writing anything.
func Check(fsys afero.Fs, set *icons.Set, iconsDir, outputFile string) (*CheckResult, error) {
	content, err := RenderFor(set, iconsDir, outputFile)
	if err != nil {
		return nil, err
	}

	existing, err := ReadExisting(fsys, outputFile)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Path: outputFile}
	if existing == nil {
		result.Missing = true
		result.Added = set.Names()
		return result, nil
	}
	if bytes.Equal(existing, content) {
		result.UpToDate = true
		return result, nil
	}

	result.Added, result.Removed = diffIdentifiers(ParseIdentifiers(existing), set.Names())
	return result, nil
}

// alternativePattern matches one union alternative at the start of a line,
// either the first ("type IconType = "x"") or a continuation ("| "x"").
var alternativePattern = regexp.MustCompile(`^\s*(?:type\s+` + TypeName + `\s*=|\|)\s*("(?:[^"\\]|\\.)*")`)

// ParseIdentifiers extracts the union alternatives from a previously
// generated file. Lines that do not look like alternatives are skipped.
func ParseIdentifiers(content []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		m := alternativePattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name, err := strconv.Unquote(m[1])
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names
}

// diffIdentifiers returns names in next but not prev, and in prev but not next.
func diffIdentifiers(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]bool, len(prev))
	for _, n := range prev {
		prevSet[n] = true
	}
	nextSet := make(map[string]bool, len(next))
	for _, n := range next {
		nextSet[n] = true
		if !prevSet[n] {
			added = append(added, n)
		}
	}
	for _, n := range prev {
		if !nextSet[n] {
			removed = append(removed, n)
		}
	}
	return added, removed
}
