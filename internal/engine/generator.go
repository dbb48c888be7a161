package engine

import (
	"context"
	"iter"
)

// Record is one generated row. Every record of a sequence has the same shape.
type Record []any

// Generator produces synthetic records.
type Generator interface {
	// Header returns the column names of the produced records.
	Header() []string

	// Generate returns a lazy sequence of count records. The sequence stops
	// early when ctx is cancelled.
	Generate(ctx context.Context, count int) iter.Seq[Record]
}
