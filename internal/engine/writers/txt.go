package writers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"go.uber.org/zap"
)

const txtSeparator = ", "

// TextWriter writes one line per record with values joined by ", ".
type TextWriter struct {
	base
}

func NewTextWriter(logger *zap.Logger, cfg engine.WriterConfig) *TextWriter {
	return &TextWriter{base: newBase(logger, cfg)}
}

func (w *TextWriter) Name() string {
	return fmt.Sprintf("txt(%s)", w.outputDir)
}

func (w *TextWriter) Kind() string {
	return TextKind
}

func (w *TextWriter) Extension() string {
	return ".txt"
}

func (w *TextWriter) Write(ctx context.Context, records iter.Seq[engine.Record], filename string) (engine.Output, error) {
	return w.write(ctx, encodeText, records, filename, w.Extension())
}

func encodeText(ctx context.Context, out io.Writer, records iter.Seq[engine.Record]) error {
	bw := bufio.NewWriter(out)

	err := each(ctx, records, func(record engine.Record) error {
		_, err := bw.WriteString(strings.Join(formatRecord(record), txtSeparator) + "\n")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write text record: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush text: %w", err)
	}
	return nil
}
