package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information the CLI prints regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - Build result, errors with hints
//	1 (-v)      - + Written files, asset summaries
//	2 (-vv)     - + Timing, resolved configuration
//	3 (-vvv)    - + Raw watch events

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota
	OutputErrors

	// Level 1 (-v) - Informational
	OutputFiles
	OutputAssets

	// Level 2 (-vv) - Detailed
	OutputTiming
	OutputConfig

	// Level 3 (-vvv) - Debug
	OutputWatchEvents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:     VerbosityUser,
	OutputErrors:      VerbosityUser,
	OutputFiles:       VerbosityInfo,
	OutputAssets:      VerbosityInfo,
	OutputTiming:      VerbosityDebug,
	OutputConfig:      VerbosityDebug,
	OutputWatchEvents: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}
