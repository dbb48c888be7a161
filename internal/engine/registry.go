package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// BackendConfig carries the settings shared by every archive backend.
type BackendConfig struct {
	Fs        afero.Fs
	OutputDir string
	SourceDir string
	// Compression selects the stream compression of formats that support
	// several (e.g. "zstd", "gzip", "none"). Empty selects the default.
	Compression string
}

// WriterConfig carries the settings shared by every tabular writer.
type WriterConfig struct {
	Fs        afero.Fs
	OutputDir string
}

type BackendFactory func(logger *zap.Logger, cfg BackendConfig) (Backend, error)
type WriterFactory func(logger *zap.Logger, cfg WriterConfig) (TabularWriter, error)

// UnsupportedTypeError is returned when a backend or writer kind is not registered.
type UnsupportedTypeError struct {
	Category  string   // "backend" or "writer"
	Kind      string   // the requested kind
	Available []string // registered kinds
}

func (e *UnsupportedTypeError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported %s type %q: no %ss registered", e.Category, e.Kind, e.Category)
	}
	return fmt.Sprintf("unsupported %s type %q (available: %v)", e.Category, e.Kind, e.Available)
}

type Registry struct {
	mu       sync.RWMutex
	backends map[string]BackendFactory
	writers  map[string]WriterFactory
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		backends: make(map[string]BackendFactory),
		writers:  make(map[string]WriterFactory),
		logger:   logger,
	}
}

func (r *Registry) RegisterBackend(kind string, factory BackendFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[kind] = factory
}

func (r *Registry) RegisterWriter(kind string, factory WriterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writers[kind] = factory
}

func (r *Registry) CreateBackend(kind string, cfg BackendConfig) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.backends[kind]
	available := r.availableBackends()
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedTypeError{Category: "backend", Kind: kind, Available: available}
	}
	return factory(r.logger.Named(kind), cfg)
}

func (r *Registry) CreateWriter(kind string, cfg WriterConfig) (TabularWriter, error) {
	r.mu.RLock()
	factory, ok := r.writers[kind]
	available := r.availableWriters()
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedTypeError{Category: "writer", Kind: kind, Available: available}
	}
	return factory(r.logger.Named(kind), cfg)
}

func (r *Registry) AvailableBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableBackends()
}

func (r *Registry) availableBackends() []string {
	backends := lo.Keys(r.backends)
	slices.Sort(backends)
	return backends
}

func (r *Registry) AvailableWriters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableWriters()
}

func (r *Registry) availableWriters() []string {
	writers := lo.Keys(r.writers)
	slices.Sort(writers)
	return writers
}
