package icontype

import (
	"bytes"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/icons"
	"github.com/teranos/spritegen/logger"
)

const (
	defaultFileMode fs.FileMode = 0644
	defaultDirMode  fs.FileMode = 0755
)

// Result describes one emission
type Result struct {
	Path    string
	Icons   int
	Written bool
	Content []byte
}

// Emitter writes rendered IconType modules to a filesystem.
type Emitter struct {
	fs     afero.Fs
	logger *zap.SugaredLogger
}

// NewEmitter creates an emitter writing to fsys
func NewEmitter(fsys afero.Fs, log *zap.SugaredLogger) *Emitter {
	return &Emitter{fs: fsys, logger: logger.OrNop(log)}
}

// Emit renders set for outputFile and writes it only if it differs from the
// file's current content. iconsDir and outputFile must be absolute.
func (e *Emitter) Emit(set *icons.Set, iconsDir, outputFile string) (*Result, error) {
	content, err := RenderFor(set, iconsDir, outputFile)
	if err != nil {
		return nil, err
	}

	written, err := WriteIfChanged(e.fs, outputFile, content)
	if err != nil {
		return nil, err
	}

	if written {
		e.logger.Infow("IconType file updated",
			logger.FieldOutput, outputFile,
			logger.FieldCount, set.Len())
	} else {
		e.logger.Debugw("IconType file unchanged", logger.FieldOutput, outputFile)
	}

	return &Result{
		Path:    outputFile,
		Icons:   set.Len(),
		Written: written,
		Content: content,
	}, nil
}

// ReadExisting returns the current content of path, or nil if it does not exist.
// Every other read failure is returned as a filesystem error.
func ReadExisting(fsys afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.WrapFilesystem(err, "read existing output", path)
	}
	return data, nil
}

// WriteIfChanged writes content to path unless the file already holds exactly
// those bytes. Parent directories are created as needed. The new content is
// written to a temporary file and renamed into place, so a failed write
// leaves the previous file untouched. Reports whether a write happened.
func WriteIfChanged(fsys afero.Fs, path string, content []byte) (bool, error) {
	previous, err := ReadExisting(fsys, path)
	if err != nil {
		return false, err
	}
	if previous != nil && bytes.Equal(previous, content) {
		return false, nil
	}

	mode := defaultFileMode
	if info, err := fsys.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, defaultDirMode); err != nil {
		return false, errors.WrapFilesystem(err, "create output directory", dir)
	}

	if err := writeAtomic(fsys, path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}

func writeAtomic(fsys afero.Fs, path string, content []byte, mode fs.FileMode) error {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapFilesystem(err, "create temp file for", path)
	}
	tmpName := tmp.Name()

	cleanup := func() { _ = fsys.Remove(tmpName) }

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		cleanup()
		return errors.WrapFilesystem(err, "write", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.WrapFilesystem(err, "write", path)
	}
	if err := fsys.Chmod(tmpName, mode); err != nil {
		cleanup()
		return errors.WrapFilesystem(err, "set mode on", path)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.WrapFilesystem(err, "replace", path)
	}
	return nil
}
