package archivers

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"go.uber.org/zap"
)

var _ engine.SourceSplitter = (*TarBackend)(nil)

// TarBackend writes tar archives with optional compression. Its byte stream
// can be cut at any offset, which makes it the splittable backend.
type TarBackend struct {
	base
	compression CompressionType
	tempBase    string
}

// NewTarBackend creates a tar backend with the compression from cfg.
// Supported compression types: "zstd", "gzip", "none".
// If compression is empty, defaults to "zstd".
func NewTarBackend(logger *zap.Logger, cfg engine.BackendConfig) (*TarBackend, error) {
	ct, err := ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	return &TarBackend{
		base:        newBase(logger, cfg),
		compression: ct,
		tempBase:    "temp" + ct.Extension(),
	}, nil
}

func (b *TarBackend) Name() string {
	return fmt.Sprintf("tar(%s)", b.outputDir)
}

func (b *TarBackend) Kind() string {
	return TarKind
}

// Extension returns the file extension for this archive type.
func (b *TarBackend) Extension() string {
	return b.compression.Extension()
}

// CreateFromBuffer writes buffer as the single entry innerFilename of
// archiveFilename in the output directory.
func (b *TarBackend) CreateFromBuffer(ctx context.Context, buffer []byte, archiveFilename, innerFilename string) error {
	target := filepath.Join(b.outputDir, archiveFilename)
	if err := b.createFromBuffer(ctx, b.newContainer, buffer, target, innerFilename); err != nil {
		return fmt.Errorf("failed to create tar archive %s: %w", target, err)
	}
	return nil
}

// CreateFromFiles adds files from sourceDir to archiveFilename in the output
// directory, preserving their order and relative names.
func (b *TarBackend) CreateFromFiles(ctx context.Context, sourceDir string, files []string, archiveFilename string, deleteAfter bool) error {
	return b.createFromFilesAt(ctx, sourceDir, files, filepath.Join(b.outputDir, archiveFilename), deleteAfter)
}

func (b *TarBackend) createFromFilesAt(ctx context.Context, sourceDir string, files []string, target string, deleteAfter bool) error {
	if err := b.createFromFiles(ctx, b.newContainer, sourceDir, files, target, deleteAfter); err != nil {
		if engine.IsPartialDeletion(err) {
			return err
		}
		return fmt.Errorf("failed to create tar archive %s: %w", target, err)
	}
	return nil
}

func (b *TarBackend) newContainer(w io.Writer) (container, error) {
	compressor, err := newCompressor(w, b.compression)
	if err != nil {
		return nil, err
	}

	return &tarContainer{
		compressor: compressor,
		tarWriter:  tar.NewWriter(compressor),
	}, nil
}

type tarContainer struct {
	compressor io.WriteCloser
	tarWriter  *tar.Writer
	closed     bool
}

func (c *tarContainer) AddEntry(name string, size int64, modTime time.Time, data io.Reader) error {
	if c.closed {
		return fmt.Errorf("archive is closed")
	}

	header := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    size,
		ModTime: modTime,
	}

	if err := c.tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}

	written, err := io.Copy(c.tarWriter, data)
	if err != nil {
		return fmt.Errorf("failed to write tar content: %w", err)
	}
	if written != size {
		return fmt.Errorf("tar entry %s: wrote %d bytes, expected %d", name, written, size)
	}

	return nil
}

// Close finalizes the tar stream and flushes the compressor.
func (c *tarContainer) Close() error {
	if c.closed {
		return fmt.Errorf("archive already closed")
	}
	c.closed = true

	// Close tar writer first
	if err := c.tarWriter.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close tar writer: %w", err), c.compressor.Close())
	}

	if err := c.compressor.Close(); err != nil {
		return fmt.Errorf("failed to close compressor: %w", err)
	}

	return nil
}
