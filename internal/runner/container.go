package runner

import (
	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/ivanov-dv/data-generator/internal/engine/archivers"
	"github.com/ivanov-dv/data-generator/internal/engine/writers"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Config holds the directories a runner works in.
type Config struct {
	InputDir  string
	OutputDir string
}

// BuildContainer creates a new DI container with all dependencies registered.
// Dependencies are lazily initialized when first requested.
func BuildContainer(logger *zap.Logger, fs afero.Fs, cfg Config) *do.RootScope {
	injector := do.New()

	// Register logger, filesystem and config (eager - already created)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, fs)
	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i do.Injector) (*engine.Registry, error) {
		return BuildRegistry(do.MustInvoke[*zap.Logger](i)), nil
	})

	return injector
}

// BuildRegistry creates a new registry with all backends and writers registered.
func BuildRegistry(logger *zap.Logger) *engine.Registry {
	registry := engine.NewRegistry(logger)

	archivers.Register(registry)
	writers.Register(registry)

	return registry
}
