// Package errors provides error handling for spritegen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//
// On top of that it defines the build error taxonomy: filesystem failures
// (icons directory, output directory, output file), configuration failures,
// and duplicate icon names rejected by the "error" duplicate policy.
//
// Usage:
//
//	if err := fsys.MkdirAll(dir, 0755); err != nil {
//	    return errors.WrapFilesystem(err, "create output directory", dir)
//	}
//
//	if errors.IsFilesystemError(err) {
//	    // report through the build failure channel
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	FlattenHints = crdb.FlattenHints
	GetAllHints  = crdb.GetAllHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors for the build pipeline.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrFilesystem covers every filesystem failure: missing or unreadable
	// icons directory, uncreatable output directory, unreadable or
	// unwritable output file.
	ErrFilesystem = New("filesystem error")

	// ErrInvalidConfig indicates a configuration value that cannot be used
	ErrInvalidConfig = New("invalid configuration")

	// ErrDuplicateIcon indicates two icon files share a base name
	ErrDuplicateIcon = New("duplicate icon name")
)

// WrapFilesystem marks err as a filesystem error for the given operation and path.
// The original error stays reachable through errors.Is (e.g. fs.ErrNotExist).
func WrapFilesystem(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return Wrapf(Mark(err, ErrFilesystem), "%s %s", op, path)
}

// NewInvalidConfigError creates a configuration error with a formatted message
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidConfig)
}

// NewDuplicateIconError creates a duplicate-name error naming both files
func NewDuplicateIconError(name, first, second string) error {
	err := Newf("icon %q defined by both %s and %s", name, first, second)
	return WithHint(Mark(err, ErrDuplicateIcon),
		"icon identifiers ignore subdirectories; rename one of the files or set duplicates = \"first\"")
}

// IsFilesystemError checks if an error is or wraps ErrFilesystem
func IsFilesystemError(err error) bool {
	return err != nil && Is(err, ErrFilesystem)
}

// IsInvalidConfigError checks if an error is or wraps ErrInvalidConfig
func IsInvalidConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}

// IsDuplicateIconError checks if an error is or wraps ErrDuplicateIcon
func IsDuplicateIconError(err error) bool {
	return err != nil && Is(err, ErrDuplicateIcon)
}
