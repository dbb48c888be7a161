package archivers

import (
	"github.com/ivanov-dv/data-generator/internal/engine"
	"go.uber.org/zap"
)

const (
	ZipKind = "zip"
	TarKind = "tar"
)

// Register registers the zip and tar backend factories with the registry.
func Register(r *engine.Registry) {
	r.RegisterBackend(ZipKind, zipFactory)
	r.RegisterBackend(TarKind, tarFactory)
}

func zipFactory(logger *zap.Logger, cfg engine.BackendConfig) (engine.Backend, error) {
	backend, err := NewZipBackend(logger, cfg)
	if err != nil {
		return nil, err
	}
	return backend, nil
}

func tarFactory(logger *zap.Logger, cfg engine.BackendConfig) (engine.Backend, error) {
	backend, err := NewTarBackend(logger, cfg)
	if err != nil {
		return nil, err
	}
	return backend, nil
}
