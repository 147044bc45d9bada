// Package icons derives icon identifiers from a directory of SVG files.
//
// Identifiers are file base names with the ".svg" extension removed. The
// namespace is flat: "nav/home.svg" and "home.svg" both yield "home", and a
// DuplicatePolicy decides what happens when that occurs.
package icons

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/logger"
)

// Extension is the recognized icon file suffix (case-sensitive).
const Extension = ".svg"

// DuplicatePolicy decides how two files with the same base name are handled.
type DuplicatePolicy string

const (
	// FirstWins keeps the first file in traversal order and ignores later ones
	FirstWins DuplicatePolicy = "first"
	// LastWins lets a later file replace the earlier one, keeping its position
	LastWins DuplicatePolicy = "last"
	// RejectDuplicates fails extraction with ErrDuplicateIcon
	RejectDuplicates DuplicatePolicy = "error"
)

// ParseDuplicatePolicy validates a policy name. Empty selects FirstWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FirstWins, nil
	case FirstWins, LastWins, RejectDuplicates:
		return p, nil
	default:
		return "", errors.NewInvalidConfigError("unknown duplicate policy %q (supported: first, last, error)", s)
	}
}

// ExtractorOptions configures an Extractor
type ExtractorOptions struct {
	// Duplicates selects the duplicate-name policy (default: FirstWins)
	Duplicates DuplicatePolicy

	// Exclude lists doublestar patterns matched against the slash-separated
	// path relative to the icons directory, e.g. "drafts/**".
	Exclude []string

	Logger *zap.SugaredLogger
}

// Extractor walks an icons directory and builds a Set.
type Extractor struct {
	fs       afero.Fs
	policy   DuplicatePolicy
	excludes []string
	logger   *zap.SugaredLogger
}

// NewExtractor creates an extractor reading from fsys.
// Returns ErrInvalidConfig for an unknown policy or a malformed exclude pattern.
func NewExtractor(fsys afero.Fs, opts ExtractorOptions) (*Extractor, error) {
	policy, err := ParseDuplicatePolicy(string(opts.Duplicates))
	if err != nil {
		return nil, err
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.NewInvalidConfigError("invalid exclude pattern %q", pattern)
		}
	}
	return &Extractor{
		fs:       fsys,
		policy:   policy,
		excludes: append([]string(nil), opts.Exclude...),
		logger:   logger.OrNop(opts.Logger),
	}, nil
}

// Extract reads dir recursively and returns the icons found, in traversal order.
// dir must be an existing, readable directory.
func (e *Extractor) Extract(dir string) (*Set, error) {
	info, err := e.fs.Stat(dir)
	if err != nil {
		return nil, errors.WithHint(
			errors.WrapFilesystem(err, "read icons directory", dir),
			"create the directory or point icons_dir at an existing one")
	}
	if !info.IsDir() {
		return nil, errors.WrapFilesystem(errors.New("not a directory"), "read icons directory", dir)
	}

	set := NewSet()
	walkErr := afero.Walk(e.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.WrapFilesystem(err, "walk icons directory", path)
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), Extension) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.WrapFilesystem(err, "resolve icon path", path)
		}
		rel = filepath.ToSlash(rel)

		if e.excluded(rel) {
			e.logger.Debugw("Icon excluded", logger.FieldPath, rel)
			return nil
		}

		icon := Icon{
			Name: strings.TrimSuffix(info.Name(), Extension),
			Path: rel,
		}
		return e.add(set, icon)
	})
	if walkErr != nil {
		return nil, walkErr
	}

	e.logger.Debugw("Icons extracted", logger.FieldIconsDir, dir, logger.FieldCount, set.Len())
	return set, nil
}

// add applies the duplicate policy
func (e *Extractor) add(set *Set, icon Icon) error {
	if set.add(icon) {
		return nil
	}

	existing, _ := set.Get(icon.Name)
	switch e.policy {
	case RejectDuplicates:
		return errors.NewDuplicateIconError(icon.Name, existing.Path, icon.Path)
	case LastWins:
		e.logger.Warnw("Duplicate icon name, later file wins",
			logger.FieldIcon, icon.Name,
			logger.FieldPath, icon.Path,
			logger.FieldDuplicate, existing.Path)
		set.replace(icon)
	default:
		e.logger.Warnw("Duplicate icon name, ignoring later file",
			logger.FieldIcon, icon.Name,
			logger.FieldPath, icon.Path,
			logger.FieldDuplicate, existing.Path)
	}
	return nil
}

func (e *Extractor) excluded(rel string) bool {
	for _, pattern := range e.excludes {
		// Patterns were validated in NewExtractor
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Extract reads dir from the OS filesystem with the default options.
func Extract(dir string) (*Set, error) {
	e, err := NewExtractor(afero.NewOsFs(), ExtractorOptions{})
	if err != nil {
		return nil, err
	}
	return e.Extract(dir)
}
