// Package host defines the lifecycle contract between a bundling host and
// the plugins it runs.
//
// A host creates one Compilation per build. Plugins register with the
// Compiler during Apply, are told about each new Compilation through
// OnThisCompilation, and do their work in process-assets taps that the
// host runs in stage order.
//
// Lifecycle:
//   - Apply: plugin registers this-compilation hooks
//   - this-compilation: plugin registers context dependencies and taps
//   - process-assets: taps run ordered by Stage, then registration order
//   - the first tap error aborts the compilation
package host

// Stage orders process-assets taps. Lower stages run first.
type Stage int

const (
	// StageAdditional adds assets from outside the build
	StageAdditional Stage = -2000
	// StagePreProcess does basic preprocessing of existing assets
	StagePreProcess Stage = -1000
	// StageDerived derives new assets from existing ones
	StageDerived Stage = -200
	// StageAdditions adds sections or generated files to existing assets
	StageAdditions Stage = -100
	// StageOptimize optimizes assets
	StageOptimize Stage = 100
	// StageSummarize summarizes the list of assets
	StageSummarize Stage = 1000
	// StageReport creates reports from assets
	StageReport Stage = 5000
)

// String returns the stage name used in logs
func (s Stage) String() string {
	switch s {
	case StageAdditional:
		return "additional"
	case StagePreProcess:
		return "pre-process"
	case StageDerived:
		return "derived"
	case StageAdditions:
		return "additions"
	case StageOptimize:
		return "optimize"
	case StageSummarize:
		return "summarize"
	case StageReport:
		return "report"
	default:
		return "custom"
	}
}

// Tap identifies a process-assets hook
type Tap struct {
	Name  string
	Stage Stage
}

// Plugin is anything that can be applied to a Compiler
type Plugin interface {
	Apply(c Compiler) error
}

// VersionedPlugin is an optional interface for plugins that only work with
// a range of host versions.
type VersionedPlugin interface {
	Plugin

	// Name identifies the plugin in errors and logs
	Name() string

	// RequiredHostVersion is a semver constraint (e.g. ">= 0.3.0").
	// Empty means any version.
	RequiredHostVersion() string
}

// Compiler is the long-lived host object plugins are applied to.
type Compiler interface {
	// Context is the absolute base directory relative paths resolve against
	Context() string

	// OnThisCompilation registers fn to run when a compilation is created,
	// before any process-assets tap of that compilation.
	OnThisCompilation(name string, fn func(Compilation) error)
}

// Compilation is one build.
type Compilation interface {
	ID() string

	// AddContextDependency marks dir as an input of this build. Hosts that
	// watch rebuild when anything under it changes.
	AddContextDependency(dir string)
	ContextDependencies() []string

	// OnProcessAssets registers fn to run during asset processing at tap.Stage
	OnProcessAssets(tap Tap, fn func() error)

	// EmitAsset adds or replaces an output asset
	EmitAsset(name string, content []byte)
	Assets() map[string][]byte
}
