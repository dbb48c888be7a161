package writers

import (
	"bytes"
	"context"
	"encoding/csv"
	"iter"
	"slices"
	"strings"
	"testing"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var testRecords = []engine.Record{
	{"Ann", "Lee", "female", 61, "ann.lee", "ann@example.com", 1.68},
	{"Bob", "Stone, Jr.", "male", 84, "bob", "bob@example.com", 1.82},
}

func newWriters(fs afero.Fs) []engine.TabularWriter {
	cfg := engine.WriterConfig{Fs: fs, OutputDir: "out"}
	return []engine.TabularWriter{
		NewXLSXWriter(nil, cfg),
		NewCSVWriter(nil, cfg),
		NewTextWriter(nil, cfg),
	}
}

// decodeRows reads the rows back in each writer's own format.
func decodeRows(t *testing.T, kind string, data []byte) [][]string {
	t.Helper()

	switch kind {
	case XLSXKind:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer func() {
			require.NoError(t, f.Close())
		}()
		rows, err := f.GetRows(xlsxSheet)
		require.NoError(t, err)
		return rows
	case CSVKind:
		rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		return rows
	case TextKind:
		var rows [][]string
		for line := range strings.Lines(string(data)) {
			rows = append(rows, strings.Split(strings.TrimSuffix(line, "\n"), txtSeparator))
		}
		return rows
	}
	t.Fatalf("unknown kind %s", kind)
	return nil
}

func TestWriters_Buffer(t *testing.T) {
	for _, w := range newWriters(afero.NewMemMapFs()) {
		t.Run(w.Kind(), func(t *testing.T) {
			out, err := w.Write(t.Context(), slices.Values(testRecords), "")
			require.NoError(t, err)
			require.NotNil(t, out.Buffer)
			assert.Empty(t, out.Filename)

			rows := decodeRows(t, w.Kind(), out.Buffer.Bytes())
			require.Len(t, rows, len(testRecords))
			assert.Equal(t, []string{"Ann", "Lee", "female", "61", "ann.lee", "ann@example.com", "1.68"}, rows[0])
			assert.Equal(t, "Bob", rows[1][0])
		})
	}
}

func TestWriters_File(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, w := range newWriters(fs) {
		t.Run(w.Kind(), func(t *testing.T) {
			out, err := w.Write(t.Context(), slices.Values(testRecords), "output")
			require.NoError(t, err)
			assert.Nil(t, out.Buffer)
			assert.Equal(t, "output"+w.Extension(), out.Filename)

			data, err := afero.ReadFile(fs, "out/"+out.Filename)
			require.NoError(t, err)
			assert.Len(t, decodeRows(t, w.Kind(), data), len(testRecords))
		})
	}
}

func TestCSVWriter_Quoting(t *testing.T) {
	out, err := NewCSVWriter(nil, engine.WriterConfig{}).Write(t.Context(), slices.Values(testRecords), "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.Buffer.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `Bob,"Stone, Jr.",male,84,bob,bob@example.com,1.82`, lines[1])
}

func TestTextWriter_Format(t *testing.T) {
	out, err := NewTextWriter(nil, engine.WriterConfig{}).Write(t.Context(), slices.Values(testRecords), "")
	require.NoError(t, err)

	assert.Equal(t,
		"Ann, Lee, female, 61, ann.lee, ann@example.com, 1.68\n"+
			"Bob, Stone, Jr., male, 84, bob, bob@example.com, 1.82\n",
		out.Buffer.String())
}

func TestWriters_Empty(t *testing.T) {
	for _, w := range newWriters(afero.NewMemMapFs()) {
		t.Run(w.Kind(), func(t *testing.T) {
			out, err := w.Write(t.Context(), slices.Values([]engine.Record{}), "")
			require.NoError(t, err)
			assert.Empty(t, decodeRows(t, w.Kind(), out.Buffer.Bytes()))
		})
	}
}

func TestWriters_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx, cancel := context.WithCancel(t.Context())

	var records iter.Seq[engine.Record] = func(yield func(engine.Record) bool) {
		for _, record := range testRecords {
			if !yield(record) {
				return
			}
			cancel()
		}
	}

	for _, w := range newWriters(fs) {
		t.Run(w.Kind(), func(t *testing.T) {
			_, err := w.Write(ctx, records, "cancelled")
			require.ErrorIs(t, err, context.Canceled)

			exists, err := afero.Exists(fs, "out/cancelled"+w.Extension())
			require.NoError(t, err)
			assert.False(t, exists, "partial output is removed")
		})
	}
}

func TestWriters_InvalidFilename(t *testing.T) {
	for _, w := range newWriters(afero.NewMemMapFs()) {
		t.Run(w.Kind(), func(t *testing.T) {
			_, err := w.Write(t.Context(), slices.Values(testRecords), "../escape")
			require.ErrorIs(t, err, engine.ErrInvalidInput)
		})
	}
}

func TestRegister(t *testing.T) {
	registry := engine.NewRegistry(zap.NewNop())
	Register(registry)

	assert.Equal(t, []string{CSVKind, TextKind, XLSXKind}, registry.AvailableWriters())

	w, err := registry.CreateWriter(XLSXKind, engine.WriterConfig{OutputDir: "out"})
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", w.Extension())
	assert.Equal(t, "xlsx(out)", w.Name())

	_, err = registry.CreateWriter("ods", engine.WriterConfig{})
	var unsupported *engine.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
}
