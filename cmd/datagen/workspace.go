package main

import (
	"context"
	"fmt"

	"github.com/ivanov-dv/data-generator/internal/runner"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

// prepareWorkspace creates the input, output and log directories, attaches
// the error log and builds the container. Only commands that run jobs call it.
func prepareWorkspace(ctx context.Context, command *cli.Command) (context.Context, error) {
	cfg := runner.Config{
		InputDir:  command.String("input-dir"),
		OutputDir: command.String("output-dir"),
	}
	logDir := command.String("log-dir")

	fs := afero.NewOsFs()
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, logDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	logger, closeLog, err := withErrorLog(getLogger(ctx), logDir)
	if err != nil {
		return nil, err
	}

	syncConsole := loggerDeferFunc
	loggerDeferFunc = func() error {
		_ = logger.Sync()
		closeLog()
		if syncConsole != nil {
			return syncConsole()
		}
		return nil
	}

	ctx = withLogger(ctx, logger)
	return withContainer(ctx, runner.BuildContainer(logger, fs, cfg)), nil
}
