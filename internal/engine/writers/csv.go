package writers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"iter"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"go.uber.org/zap"
)

// CSVWriter writes one comma-separated line per record.
type CSVWriter struct {
	base
}

func NewCSVWriter(logger *zap.Logger, cfg engine.WriterConfig) *CSVWriter {
	return &CSVWriter{base: newBase(logger, cfg)}
}

func (w *CSVWriter) Name() string {
	return fmt.Sprintf("csv(%s)", w.outputDir)
}

func (w *CSVWriter) Kind() string {
	return CSVKind
}

func (w *CSVWriter) Extension() string {
	return ".csv"
}

func (w *CSVWriter) Write(ctx context.Context, records iter.Seq[engine.Record], filename string) (engine.Output, error) {
	return w.write(ctx, encodeCSV, records, filename, w.Extension())
}

func encodeCSV(ctx context.Context, out io.Writer, records iter.Seq[engine.Record]) error {
	cw := csv.NewWriter(out)

	err := each(ctx, records, func(record engine.Record) error {
		return cw.Write(formatRecord(record))
	})
	if err != nil {
		return fmt.Errorf("failed to write csv record: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
