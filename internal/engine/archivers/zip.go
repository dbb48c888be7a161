package archivers

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// ZipBackend writes deflate-compressed zip archives. The zip format is
// written as one file and cannot be split into volumes, so ZipBackend does
// not implement engine.Splitter.
type ZipBackend struct {
	base
	method uint16
}

// NewZipBackend creates a zip backend. Supported compression values are
// "deflate" (the default when empty) and "none", which stores entries as is.
func NewZipBackend(logger *zap.Logger, cfg engine.BackendConfig) (*ZipBackend, error) {
	var method uint16
	switch cfg.Compression {
	case "", "deflate":
		method = zip.Deflate
	case "none":
		method = zip.Store
	default:
		return nil, fmt.Errorf("unsupported zip compression type: %s", cfg.Compression)
	}

	return &ZipBackend{
		base:   newBase(logger, cfg),
		method: method,
	}, nil
}

func (b *ZipBackend) Name() string {
	return fmt.Sprintf("zip(%s)", b.outputDir)
}

func (b *ZipBackend) Kind() string {
	return ZipKind
}

func (b *ZipBackend) Extension() string {
	return ".zip"
}

// CreateFromBuffer writes buffer as the single entry innerFilename of
// archiveFilename in the output directory.
func (b *ZipBackend) CreateFromBuffer(ctx context.Context, buffer []byte, archiveFilename, innerFilename string) error {
	target := filepath.Join(b.outputDir, archiveFilename)
	if err := b.createFromBuffer(ctx, b.newContainer, buffer, target, innerFilename); err != nil {
		return fmt.Errorf("failed to create zip archive %s: %w", target, err)
	}
	return nil
}

// CreateFromFiles adds files from sourceDir to archiveFilename in the output
// directory, preserving their order and relative names.
func (b *ZipBackend) CreateFromFiles(ctx context.Context, sourceDir string, files []string, archiveFilename string, deleteAfter bool) error {
	target := filepath.Join(b.outputDir, archiveFilename)
	if err := b.createFromFiles(ctx, b.newContainer, sourceDir, files, target, deleteAfter); err != nil {
		if engine.IsPartialDeletion(err) {
			return err
		}
		return fmt.Errorf("failed to create zip archive %s: %w", target, err)
	}
	return nil
}

func (b *ZipBackend) newContainer(w io.Writer) (container, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	return &zipContainer{zw: zw, method: b.method}, nil
}

type zipContainer struct {
	zw     *zip.Writer
	method uint16
}

func (c *zipContainer) AddEntry(name string, _ int64, modTime time.Time, data io.Reader) error {
	header := &zip.FileHeader{
		Name:   name,
		Method: c.method,
	}
	if !modTime.IsZero() {
		header.Modified = modTime
	}

	entry, err := c.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", name, err)
	}

	if _, err := io.Copy(entry, data); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", name, err)
	}

	return nil
}

func (c *zipContainer) Close() error {
	return c.zw.Close()
}
