// Package devhost is an in-process build host. It applies plugins, runs
// compilations through their lifecycle hooks, writes emitted assets to an
// output directory and can rebuild when context dependencies change.
package devhost

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/host"
	"github.com/teranos/spritegen/logger"
)

// DefaultOutputPath is where assets go when Options.OutputPath is empty
const DefaultOutputPath = "dist"

// Options configures a Host
type Options struct {
	// Context is the base directory; relative paths resolve against it.
	// Defaults to the working directory.
	Context string

	// OutputPath receives emitted assets. Relative to Context.
	OutputPath string

	Fs     afero.Fs
	Logger *zap.SugaredLogger

	// Version is checked against VersionedPlugin constraints
	Version string
}

// Stats summarizes one compilation
type Stats struct {
	CompilationID       string
	ContextDependencies []string
	Assets              []string // names written to the output path, sorted
	Duration            time.Duration
}

type compilationHook struct {
	name string
	fn   func(host.Compilation) error
}

// Host implements host.Compiler
type Host struct {
	context    string
	outputPath string
	version    string
	fs         afero.Fs
	logger     *zap.SugaredLogger

	mu    sync.Mutex
	hooks []compilationHook

	runMu sync.Mutex // one compilation at a time
}

var _ host.Compiler = (*Host)(nil)

// New creates a host
func New(opts Options) (*Host, error) {
	ctxDir := opts.Context
	if ctxDir == "" {
		ctxDir = "."
	}
	ctxDir, err := filepath.Abs(ctxDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve context %s", opts.Context)
	}

	out := opts.OutputPath
	if out == "" {
		out = DefaultOutputPath
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(ctxDir, out)
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Host{
		context:    ctxDir,
		outputPath: filepath.Clean(out),
		version:    opts.Version,
		fs:         fsys,
		logger:     logger.OrNop(opts.Logger),
	}, nil
}

// Context returns the absolute base directory
func (h *Host) Context() string {
	return h.context
}

// OutputPath returns the absolute asset output directory
func (h *Host) OutputPath() string {
	return h.outputPath
}

// OnThisCompilation registers fn to run for every new compilation, in
// registration order.
func (h *Host) OnThisCompilation(name string, fn func(host.Compilation) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, compilationHook{name: name, fn: fn})
}

// Use applies plugins in order. A VersionedPlugin whose constraint does not
// match the host version is rejected before Apply.
func (h *Host) Use(plugins ...host.Plugin) error {
	for _, p := range plugins {
		name := pluginName(p)
		if vp, ok := p.(host.VersionedPlugin); ok {
			if err := h.validateVersion(vp); err != nil {
				return err
			}
		}
		if err := p.Apply(h); err != nil {
			return errors.Wrapf(err, "failed to apply plugin %s", name)
		}
		h.logger.Debugw("Plugin applied", logger.FieldPlugin, name)
	}
	return nil
}

func pluginName(p host.Plugin) string {
	if vp, ok := p.(host.VersionedPlugin); ok {
		return vp.Name()
	}
	return fmt.Sprintf("%T", p)
}

func (h *Host) validateVersion(p host.VersionedPlugin) error {
	required := p.RequiredHostVersion()
	if required == "" {
		return nil
	}

	hostVer, err := semver.NewVersion(h.version)
	if err != nil {
		// Development builds ("dev", commit hashes) accept every plugin
		h.logger.Debugw("Skipping plugin version check for non-semver host",
			logger.FieldPlugin, p.Name(),
			"host_version", h.version)
		return nil
	}

	constraint, err := semver.NewConstraint(required)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "plugin %s has invalid host version constraint %q", p.Name(), required), errors.ErrInvalidConfig)
	}

	if !constraint.Check(hostVer) {
		return errors.Newf("plugin %s requires host %s, but running %s", p.Name(), required, h.version)
	}
	return nil
}

// Run performs one compilation: this-compilation hooks, process-assets taps
// in stage order, then writes every emitted asset under the output path.
// The first error aborts the compilation and nothing is written. Stats are
// returned even on failure so callers can still see the context
// dependencies that were registered.
func (h *Host) Run(ctx context.Context) (*Stats, error) {
	h.runMu.Lock()
	defer h.runMu.Unlock()

	start := time.Now()
	comp := newCompilation(uuid.NewString())
	stats := &Stats{CompilationID: comp.id}
	log := h.logger.With(logger.FieldCompilation, comp.id)

	h.mu.Lock()
	hooks := append([]compilationHook(nil), h.hooks...)
	h.mu.Unlock()

	finish := func(err error) (*Stats, error) {
		stats.ContextDependencies = comp.ContextDependencies()
		stats.Duration = time.Since(start)
		if err != nil {
			log.Debugw("Compilation failed", logger.FieldError, err)
		}
		return stats, err
	}

	for _, hook := range hooks {
		if err := hook.fn(comp); err != nil {
			return finish(errors.Wrapf(err, "%s failed in this-compilation", hook.name))
		}
	}

	for _, t := range comp.orderedTaps() {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		log.Debugw("Running process-assets tap",
			logger.FieldTap, t.tap.Name,
			logger.FieldStage, t.tap.Stage.String())
		if err := t.fn(); err != nil {
			return finish(errors.Wrapf(err, "%s failed in process-assets (%s)", t.tap.Name, t.tap.Stage))
		}
	}

	written, err := h.writeAssets(comp)
	stats.Assets = written
	if err != nil {
		return finish(err)
	}

	log.Infow("Compilation finished",
		logger.FieldCount, len(written),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return finish(nil)
}

func (h *Host) writeAssets(comp *compilation) ([]string, error) {
	assets := comp.Assets()
	var written []string
	for _, name := range comp.assetNames() {
		path := filepath.Join(h.outputPath, filepath.FromSlash(name))
		if err := h.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, errors.WrapFilesystem(err, "create asset directory", filepath.Dir(path))
		}
		if err := afero.WriteFile(h.fs, path, assets[name], 0644); err != nil {
			return written, errors.WrapFilesystem(err, "write asset", path)
		}
		h.logger.Debugw("Asset written",
			logger.FieldAsset, name,
			logger.FieldPath, path,
			logger.FieldSize, len(assets[name]))
		written = append(written, name)
	}
	return written, nil
}
