package engine

import (
	"bytes"
	"context"
	"iter"
)

// Output is the result of a tabular write: either an in-memory buffer or the
// name of the file written to the output directory.
type Output struct {
	Buffer   *bytes.Buffer
	Filename string
}

// TabularWriter serializes records to a tabular file format.
type TabularWriter interface {
	Named

	// Extension returns the file extension for this format (e.g., ".csv").
	Extension() string

	// Write serializes records. With an empty filename the data is returned
	// in Output.Buffer; otherwise it is written to filename plus Extension()
	// in the output directory and Output.Filename holds the produced name.
	Write(ctx context.Context, records iter.Seq[Record], filename string) (Output, error)
}
