// Package writers serializes generated records to tabular file formats.
package writers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// encodeFunc writes every record of records to w in one format.
type encodeFunc func(ctx context.Context, w io.Writer, records iter.Seq[engine.Record]) error

type base struct {
	logger    *zap.Logger
	fs        afero.Fs
	outputDir string
}

func newBase(logger *zap.Logger, cfg engine.WriterConfig) base {
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
	}
}

// write runs encode into a buffer when filename is empty, or into
// filename+ext in the output directory otherwise.
func (b base) write(ctx context.Context, encode encodeFunc, records iter.Seq[engine.Record], filename, ext string) (engine.Output, error) {
	if filename == "" {
		var buf bytes.Buffer
		if err := encode(ctx, &buf, records); err != nil {
			return engine.Output{}, err
		}
		b.logger.Debug("records written to buffer", zap.String("size", humanize.IBytes(uint64(buf.Len()))))
		return engine.Output{Buffer: &buf}, nil
	}

	name := filename + ext
	if !filepath.IsLocal(name) {
		return engine.Output{}, &engine.InvalidInputError{Reason: fmt.Sprintf("output name %q must be a relative path", name)}
	}

	path := filepath.Join(b.outputDir, name)
	if err := b.writeFile(ctx, encode, records, path); err != nil {
		return engine.Output{}, err
	}

	b.logger.Debug("records written to file", zap.String("path", path))
	return engine.Output{Filename: name}, nil
}

func (b base) writeFile(ctx context.Context, encode encodeFunc, records iter.Seq[engine.Record], path string) (err error) {
	if err := b.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := b.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			_ = b.fs.Remove(path)
		}
	}()

	return encode(ctx, f, records)
}

// each calls fn for every record and stops at the first error or when ctx
// is cancelled.
func each(ctx context.Context, records iter.Seq[engine.Record], fn func(engine.Record) error) error {
	for record := range records {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return nil
}

func formatRecord(record engine.Record) []string {
	values := make([]string, len(record))
	for i, v := range record {
		values[i] = fmt.Sprint(v)
	}
	return values
}
