package devhost

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/logger"
)

const (
	// DefaultDebounce coalesces bursts of file events into one rebuild
	DefaultDebounce = 100 * time.Millisecond

	// DefaultMaxRebuildsPerSecond caps rebuild frequency in watch mode
	DefaultMaxRebuildsPerSecond = 2.0
)

// WatchOptions configures Watch
type WatchOptions struct {
	Debounce time.Duration

	// MaxRebuildsPerSecond limits rebuilds; zero or negative means unlimited
	MaxRebuildsPerSecond float64
}

// BuildFunc receives the result of every build in watch mode
type BuildFunc func(*Stats, error)

// Watch runs an initial build, then rebuilds whenever something changes
// under a context dependency of the last compilation. Build errors are
// reported to onBuild and do not stop watching. Watch returns when ctx is
// cancelled. It needs the real filesystem, since events come from the OS.
func (h *Host) Watch(ctx context.Context, opts WatchOptions, onBuild BuildFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	limit := rate.Inf
	if opts.MaxRebuildsPerSecond > 0 {
		limit = rate.Limit(opts.MaxRebuildsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	w := &dirWatcher{host: h, watcher: watcher, watched: make(map[string]bool)}

	debounce := time.NewTimer(opts.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	build := func() {
		stats, err := h.Run(ctx)
		if onBuild != nil {
			onBuild(stats, err)
		}
		if err != nil {
			h.logger.Warnw("Build failed", logger.FieldError, err)
		}
		// Files created between the build and the new watch would be missed
		if stats != nil && w.refresh(stats.ContextDependencies) {
			resetTimer(debounce, opts.Debounce)
		}
	}

	build()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			h.logger.Debugw("Watch event",
				logger.FieldPath, event.Name,
				"op", event.Op.String())
			resetTimer(debounce, opts.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warnw("Watcher error", logger.FieldError, err)

		case <-debounce.C:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			build()
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// relevant filters out attribute changes, temp files and the host's own output
func (h *Host) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") && strings.HasSuffix(base, ".tmp") {
		return false
	}
	return !within(event.Name, h.outputPath)
}

// dirWatcher keeps the fsnotify watch list equal to the directory trees
// under the current context dependencies. A dependency that does not exist
// is pending: its nearest existing ancestor is watched instead, so that
// creating it triggers a rebuild.
type dirWatcher struct {
	host    *Host
	watcher *fsnotify.Watcher
	watched map[string]bool
	roots   []string
	pending []string
}

// refresh updates the watch list for deps. It reports whether a dependency
// that was pending now exists.
func (w *dirWatcher) refresh(deps []string) bool {
	wasPending := make(map[string]bool, len(w.pending))
	for _, dep := range w.pending {
		wasPending[dep] = true
	}
	w.roots, w.pending = nil, nil

	appeared := false
	want := make(map[string]bool)
	for _, dep := range deps {
		dirs := w.subdirs(dep)
		if len(dirs) == 0 {
			w.pending = append(w.pending, dep)
			if ancestor := existingAncestor(dep); ancestor != "" {
				want[ancestor] = true
			}
			continue
		}
		w.roots = append(w.roots, dep)
		if wasPending[dep] {
			appeared = true
		}
		for _, dir := range dirs {
			want[dir] = true
		}
	}

	for dir := range w.watched {
		if !want[dir] {
			// Fails for directories that were deleted, which fsnotify already dropped
			_ = w.watcher.Remove(dir)
			delete(w.watched, dir)
		}
	}
	for dir := range want {
		if w.watched[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.host.logger.Warnw("Failed to watch directory",
				logger.FieldPath, dir,
				logger.FieldError, err)
			continue
		}
		w.watched[dir] = true
	}

	if len(w.pending) > 0 {
		w.host.logger.Debugw("Waiting for missing context dependencies",
			logger.FieldCount, len(w.pending))
	}
	return appeared
}

// relevant accepts events inside an existing dependency, and events on the
// path leading to a pending one.
func (w *dirWatcher) relevant(event fsnotify.Event) bool {
	if !w.host.relevant(event) {
		return false
	}
	for _, root := range w.roots {
		if within(event.Name, root) {
			return true
		}
	}
	for _, dep := range w.pending {
		if within(dep, event.Name) {
			return true
		}
	}
	return false
}

// within reports whether path is dir or lies below it
func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// existingAncestor returns the closest parent of path that is a directory,
// or "" when there is none.
func existingAncestor(path string) string {
	dir := filepath.Clean(path)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if info, err := os.Stat(parent); err == nil && info.IsDir() {
			return parent
		}
		dir = parent
	}
}

// subdirs lists root and every directory below it. A missing root, or one
// that is not a directory, yields nothing.
func (w *dirWatcher) subdirs(root string) []string {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		w.host.logger.Warnw("Failed to scan watched directory",
			logger.FieldPath, root,
			logger.FieldError, err)
	}
	return dirs
}
