package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const errorLogFilename = "errors.log"

type (
	loggerCtxKeyType    struct{}
	containerCtxKeyType struct{}
)

var (
	loggerCtxKey    = loggerCtxKeyType{}
	containerCtxKey = containerCtxKeyType{}
)

func createLogger(debug bool, logLevel string) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", logLevel, err)
	}

	var loggerCfg zap.Config
	if debug {
		loggerCfg = zap.NewDevelopmentConfig()
		loggerCfg.Level = level
	} else {
		loggerCfg = zap.NewProductionConfig()
		loggerCfg.DisableStacktrace = false
		loggerCfg.Level = level
	}

	logger, err := loggerCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.Named("datagen"), nil
}

// withErrorLog tees every error-level entry of logger as JSON into
// errors.log under logDir. The returned func closes that file.
func withErrorLog(logger *zap.Logger, logDir string) (*zap.Logger, func(), error) {
	errorSink, closeSink, err := zap.Open(filepath.Join(logDir, errorLogFilename))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open error log: %w", err)
	}

	errorCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		errorSink,
		zapcore.ErrorLevel,
	)

	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, errorCore)
	})), closeSink, nil
}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

func tryLogger(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(*zap.Logger)
	if !ok {
		return nil
	}
	return logger
}

func getLogger(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(*zap.Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

func withContainer(ctx context.Context, container *do.RootScope) context.Context {
	return context.WithValue(ctx, containerCtxKey, container)
}

func getContainer(ctx context.Context) *do.RootScope {
	container, ok := ctx.Value(containerCtxKey).(*do.RootScope)
	if !ok {
		panic("container not found in context")
	}
	return container
}
