package writers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const xlsxSheet = "Sheet1"

// XLSXWriter writes records as rows of the first worksheet of a workbook.
// Rows are streamed, so memory stays bounded for large record counts.
type XLSXWriter struct {
	base
}

func NewXLSXWriter(logger *zap.Logger, cfg engine.WriterConfig) *XLSXWriter {
	return &XLSXWriter{base: newBase(logger, cfg)}
}

func (w *XLSXWriter) Name() string {
	return fmt.Sprintf("xlsx(%s)", w.outputDir)
}

func (w *XLSXWriter) Kind() string {
	return XLSXKind
}

func (w *XLSXWriter) Extension() string {
	return ".xlsx"
}

func (w *XLSXWriter) Write(ctx context.Context, records iter.Seq[engine.Record], filename string) (engine.Output, error) {
	return w.write(ctx, encodeXLSX, records, filename, w.Extension())
}

func encodeXLSX(ctx context.Context, out io.Writer, records iter.Seq[engine.Record]) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("failed to create worksheet stream: %w", err)
	}

	row := 0
	err = each(ctx, records, func(record engine.Record) error {
		row++
		if row > excelize.TotalRows {
			return fmt.Errorf("worksheet is limited to %d rows", excelize.TotalRows)
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, []any(record))
	})
	if err != nil {
		return fmt.Errorf("failed to write xlsx row %d: %w", row, err)
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush worksheet: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
