package writers

import (
	"github.com/ivanov-dv/data-generator/internal/engine"
	"go.uber.org/zap"
)

const (
	XLSXKind = "xlsx"
	CSVKind  = "csv"
	TextKind = "txt"
)

// Register registers the xlsx, csv and txt writer factories with the registry.
func Register(r *engine.Registry) {
	r.RegisterWriter(XLSXKind, func(logger *zap.Logger, cfg engine.WriterConfig) (engine.TabularWriter, error) {
		return NewXLSXWriter(logger, cfg), nil
	})
	r.RegisterWriter(CSVKind, func(logger *zap.Logger, cfg engine.WriterConfig) (engine.TabularWriter, error) {
		return NewCSVWriter(logger, cfg), nil
	})
	r.RegisterWriter(TextKind, func(logger *zap.Logger, cfg engine.WriterConfig) (engine.TabularWriter, error) {
		return NewTextWriter(logger, cfg), nil
	})
}
