// Package archivers implements the archive backends: a zip backend that
// writes single-file archives and a tar backend that can additionally split
// an archive into size-bounded volumes and fuse them back into one file.
package archivers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// container is an archive format being written entry by entry.
type container interface {
	AddEntry(name string, size int64, modTime time.Time, data io.Reader) error
	Close() error
}

type containerFactory func(w io.Writer) (container, error)

// base holds the configuration shared by the backends.
type base struct {
	logger    *zap.Logger
	fs        afero.Fs
	outputDir string
	sourceDir string
}

func newBase(logger *zap.Logger, cfg engine.BackendConfig) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return base{
		logger:    logger,
		fs:        fs,
		outputDir: filepath.Clean(cfg.OutputDir),
		sourceDir: filepath.Clean(cfg.SourceDir),
	}
}

// createFromBuffer writes buffer as the single entry innerFilename of target.
func (b base) createFromBuffer(ctx context.Context, newContainer containerFactory, buffer []byte, target, innerFilename string) error {
	if err := validateEntryName(innerFilename); err != nil {
		return err
	}

	return writeArchive(ctx, b.fs, target, newContainer, func(c container) error {
		return c.AddEntry(filepath.ToSlash(innerFilename), int64(len(buffer)), time.Time{}, bytes.NewReader(buffer))
	})
}

// createFromFiles writes every file of files, read from sourceDir, into
// target and removes the sources afterwards when deleteAfter is set.
func (b base) createFromFiles(ctx context.Context, newContainer containerFactory, sourceDir string, files []string, target string, deleteAfter bool) error {
	for _, name := range files {
		if err := validateEntryName(name); err != nil {
			return err
		}
	}

	err := writeArchive(ctx, b.fs, target, newContainer, func(c container) error {
		return addFiles(ctx, b.fs, c, sourceDir, files)
	})
	if err != nil {
		return err
	}

	b.logger.Debug("archive written", zap.String("path", target), zap.Int("entries", len(files)))

	if !deleteAfter {
		return nil
	}
	return deleteFiles(b.fs, sourceDir, files, target)
}

// writeArchive creates target, fills it through a fresh container and
// finalizes it. A target that could not be completed is removed.
func writeArchive(ctx context.Context, fs afero.Fs, target string, newContainer containerFactory, fill func(container) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	dir := filepath.Dir(target)
	if dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := fs.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			_ = fs.Remove(target)
		}
	}()

	c, err := newContainer(f)
	if err != nil {
		return err
	}

	if err := fill(c); err != nil {
		_ = c.Close()
		return err
	}

	if err := c.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	return nil
}

func addFiles(ctx context.Context, fs afero.Fs, c container, sourceDir string, files []string) error {
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}
		if err := addFile(fs, c, sourceDir, name); err != nil {
			return err
		}
	}
	return nil
}

func addFile(fs afero.Fs, c container, sourceDir, name string) (err error) {
	path := filepath.Join(sourceDir, name)

	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", path)
	}

	if err := c.AddEntry(filepath.ToSlash(name), info.Size(), info.ModTime(), f); err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}

	return nil
}

// deleteFiles removes every file of files from dir. All removals are
// attempted; failures are collected into a *engine.PartialDeletionError.
func deleteFiles(fs afero.Fs, dir string, files []string, archive string) error {
	var failed []engine.FileError
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := fs.Remove(path); err != nil {
			failed = append(failed, engine.FileError{Path: path, Err: err})
		}
	}

	if len(failed) > 0 {
		return &engine.PartialDeletionError{Archive: archive, Failed: failed}
	}
	return nil
}

// removeFiles is the best-effort cleanup of temporary files.
func removeFiles(fs afero.Fs, paths []string) error {
	var err error
	for _, path := range paths {
		err = multierr.Append(err, fs.Remove(path))
	}
	return err
}

func validateEntryName(name string) error {
	if name == "" {
		return &engine.InvalidInputError{Reason: "entry name must not be empty"}
	}
	if !filepath.IsLocal(name) {
		return &engine.InvalidInputError{Reason: fmt.Sprintf("entry name %q must be a relative path inside the source directory", name)}
	}
	return nil
}
