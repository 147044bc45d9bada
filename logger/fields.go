package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across spritegen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldPlugin    = "plugin"

	// Build lifecycle
	FieldCompilation = "compilation"
	FieldStage       = "stage"
	FieldTap         = "tap"

	// Files and paths
	FieldPath      = "path"
	FieldIconsDir  = "icons_dir"
	FieldOutput    = "output"
	FieldAsset     = "asset"
	FieldIcon      = "icon"
	FieldWritten   = "written"
	FieldDuplicate = "duplicate"

	// Counts, sizes, timing
	FieldCount      = "count"
	FieldSize       = "size"
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Emitter struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewEmitter() *Emitter {
//	    return &Emitter{logger: logger.ComponentLogger("icontype")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
