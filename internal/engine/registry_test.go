package engine

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWriter struct {
	name string
	kind string
}

func (m *mockWriter) Name() string      { return m.name }
func (m *mockWriter) Kind() string      { return m.kind }
func (m *mockWriter) Extension() string { return ".mock" }
func (m *mockWriter) Write(context.Context, iter.Seq[Record], string) (Output, error) {
	return Output{}, nil
}

func TestRegistry_CreateBackend(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	t.Run("registered kind is created with its config", func(t *testing.T) {
		expected := &mockBackend{kind: "mock"}
		registry.RegisterBackend("mock", func(_ *zap.Logger, cfg BackendConfig) (Backend, error) {
			assert.Equal(t, "out", cfg.OutputDir)
			assert.Equal(t, "zstd", cfg.Compression)
			return expected, nil
		})

		backend, err := registry.CreateBackend("mock", BackendConfig{OutputDir: "out", Compression: "zstd"})
		require.NoError(t, err)
		assert.Same(t, expected, backend)
	})

	t.Run("factory error is returned", func(t *testing.T) {
		registry.RegisterBackend("broken", func(*zap.Logger, BackendConfig) (Backend, error) {
			return nil, errors.New("boom")
		})

		_, err := registry.CreateBackend("broken", BackendConfig{})
		require.EqualError(t, err, "boom")
	})

	t.Run("unknown kind lists available backends", func(t *testing.T) {
		_, err := registry.CreateBackend("rar", BackendConfig{})

		var unsupported *UnsupportedTypeError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "backend", unsupported.Category)
		assert.Equal(t, "rar", unsupported.Kind)
		assert.Equal(t, []string{"broken", "mock"}, unsupported.Available)
	})
}

func TestRegistry_CreateWriter(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	_, err := registry.CreateWriter("csv", WriterConfig{})
	require.Error(t, err)
	assert.ErrorContains(t, err, `unsupported writer type "csv": no writers registered`)

	registry.RegisterWriter("csv", func(*zap.Logger, WriterConfig) (TabularWriter, error) {
		return &mockWriter{name: "csv", kind: "csv"}, nil
	})
	registry.RegisterWriter("txt", func(*zap.Logger, WriterConfig) (TabularWriter, error) {
		return &mockWriter{name: "txt", kind: "txt"}, nil
	})

	writer, err := registry.CreateWriter("csv", WriterConfig{})
	require.NoError(t, err)
	assert.Equal(t, "csv", writer.Kind())
	assert.Equal(t, []string{"csv", "txt"}, registry.AvailableWriters())
}
