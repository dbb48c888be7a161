package archivers

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CreateOneFileFromParts writes payload as a tar stream cut into volumes of
// at most maxSizeMB megabytes in outputDir, then fuses the volumes into the
// single archive outputDir/archiveFilename and deletes them.
//
// A file list payload is read from the backend's source directory. An empty
// outputDir selects the backend's output directory.
func (b *TarBackend) CreateOneFileFromParts(ctx context.Context, outputDir string, payload engine.Payload, archiveFilename string, maxSizeMB int, innerFilename string) error {
	return b.CreateOneFileFromPartsIn(ctx, b.sourceDir, outputDir, payload, archiveFilename, maxSizeMB, innerFilename)
}

// CreateOneFileFromPartsIn is CreateOneFileFromParts reading a file list
// payload from sourceDir. An empty sourceDir selects the backend's source
// directory.
func (b *TarBackend) CreateOneFileFromPartsIn(ctx context.Context, sourceDir, outputDir string, payload engine.Payload, archiveFilename string, maxSizeMB int, innerFilename string) error {
	if sourceDir == "" {
		sourceDir = b.sourceDir
	}
	if err := b.validateParts(payload, archiveFilename, maxSizeMB, innerFilename); err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = b.outputDir
	}

	logger := b.logger.With(
		zap.String("archive", archiveFilename),
		zap.String("volume_size", humanize.IBytes(uint64(maxSizeMB)*engine.MegaByte)),
	)

	if err := b.fs.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	if err := b.checkStaleVolumes(outputDir); err != nil {
		return err
	}

	volumes, err := b.partition(ctx, sourceDir, outputDir, payload, int64(maxSizeMB)*engine.MegaByte, innerFilename)
	if err != nil {
		return fmt.Errorf("failed to partition archive: %w", err)
	}
	logger.Debug("archive partitioned", zap.Strings("volumes", volumes))

	target := filepath.Join(outputDir, archiveFilename)
	if err := b.createFromFilesAt(ctx, outputDir, volumes, target, true); err != nil {
		if engine.IsPartialDeletion(err) {
			logger.Warn("archive fused but temporary volumes remain", zap.Error(err))
			return err
		}

		paths := lo.Map(volumes, func(name string, _ int) string { return filepath.Join(outputDir, name) })
		if cleanupErr := removeFiles(b.fs, paths); cleanupErr != nil {
			logger.Error("failed to remove temporary volumes", zap.Error(cleanupErr))
		}
		return fmt.Errorf("failed to fuse volumes: %w", err)
	}

	logger.Info("archive created from volumes", zap.String("path", target), zap.Int("volumes", len(volumes)))
	return nil
}

func (b *TarBackend) validateParts(payload engine.Payload, archiveFilename string, maxSizeMB int, innerFilename string) error {
	if err := payload.Validate(); err != nil {
		return err
	}
	if maxSizeMB <= 0 {
		return &engine.InvalidInputError{Reason: fmt.Sprintf("max volume size must be a positive number of megabytes, got %d", maxSizeMB)}
	}
	if err := validateEntryName(archiveFilename); err != nil {
		return err
	}
	if strings.HasPrefix(archiveFilename, b.tempBase) {
		return &engine.InvalidInputError{Reason: fmt.Sprintf("archive name %q collides with the temporary volume prefix %q", archiveFilename, b.tempBase)}
	}

	if payload.IsBuffer() {
		return validateEntryName(innerFilename)
	}
	for _, name := range payload.Files {
		if err := validateEntryName(name); err != nil {
			return err
		}
	}
	return nil
}

// checkStaleVolumes fails when dir already holds files with the temporary
// volume prefix, which would otherwise be mistaken for this run's volumes.
func (b *TarBackend) checkStaleVolumes(dir string) error {
	entries, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to list output directory %s: %w", dir, err)
	}

	stale := lo.FilterMap(entries, func(entry os.FileInfo, _ int) (string, bool) {
		return entry.Name(), strings.HasPrefix(entry.Name(), b.tempBase)
	})
	if len(stale) > 0 {
		return &engine.StaleVolumeError{Dir: dir, Prefix: b.tempBase, Found: stale}
	}
	return nil
}

// partition writes the whole payload through a VolumeWriter and returns the
// names of the volumes it created, relative to outputDir and in order. On
// failure the volumes created so far are removed.
func (b *TarBackend) partition(ctx context.Context, sourceDir, outputDir string, payload engine.Payload, volumeSize int64, innerFilename string) (volumes []string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	vw, err := NewVolumeWriter(b.fs, filepath.Join(outputDir, b.tempBase), volumeSize)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		err = errors.Join(err, vw.Close())
		if cleanupErr := removeFiles(b.fs, vw.Volumes()); cleanupErr != nil {
			b.logger.Error("failed to remove partial volumes", zap.Error(cleanupErr))
		}
	}()

	c, err := b.newContainer(vw)
	if err != nil {
		return nil, err
	}

	if payload.IsBuffer() {
		data := payload.Buffer.Bytes()
		err = c.AddEntry(filepath.ToSlash(innerFilename), int64(len(data)), time.Time{}, bytes.NewReader(data))
	} else {
		err = addFiles(ctx, b.fs, c, sourceDir, payload.Files)
	}
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	if err := c.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize volumes: %w", err)
	}
	if err := vw.Close(); err != nil {
		return nil, err
	}

	return lo.Map(vw.Volumes(), func(path string, _ int) string { return filepath.Base(path) }), nil
}

// Reassemble unpacks an archive produced by CreateOneFileFromParts into
// destDir: the volume entries are read back to back and the archive they
// form is extracted. It returns the extracted names in archive order.
func (b *TarBackend) Reassemble(ctx context.Context, archivePath, destDir string) (files []string, err error) {
	f, err := b.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	outer, err := newDecompressor(f, b.compression)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, outer.Close())
	}()

	inner, err := newDecompressor(&volumeStream{tr: tar.NewReader(outer)}, b.compression)
	if err != nil {
		return nil, fmt.Errorf("failed to read volumes: %w", err)
	}
	defer func() {
		err = errors.Join(err, inner.Close())
	}()

	return b.extract(ctx, tar.NewReader(inner), destDir)
}

func (b *TarBackend) extract(ctx context.Context, tr *tar.Reader, destDir string) ([]string, error) {
	var files []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if !filepath.IsLocal(header.Name) {
			return nil, fmt.Errorf("archive entry %q escapes the destination directory", header.Name)
		}

		if err := b.extractFile(tr, filepath.Join(destDir, filepath.FromSlash(header.Name))); err != nil {
			return nil, err
		}
		files = append(files, header.Name)
	}

	return files, nil
}

func (b *TarBackend) extractFile(r io.Reader, path string) (err error) {
	if err := b.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := b.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// volumeStream reads the entries of a fused archive back to back.
type volumeStream struct {
	tr      *tar.Reader
	started bool
}

func (s *volumeStream) Read(p []byte) (int, error) {
	for {
		if s.started {
			n, err := s.tr.Read(p)
			if n > 0 {
				return n, nil
			}
			if err != io.EOF {
				return 0, err
			}
		}

		header, err := s.tr.Next()
		if err != nil {
			return 0, err
		}
		if header.Typeflag != tar.TypeReg {
			return 0, fmt.Errorf("unexpected entry %q in fused archive", header.Name)
		}
		s.started = true
	}
}
