package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/urfave/cli/v3"
)

var loggerDeferFunc func() error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		if loggerDeferFunc != nil {
			loggerDeferFunc()
		}
	}()

	newApp().Run(ctx, os.Args)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "datagen",
		Usage: "Generate random user data and pack files into archives",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log Level (debug, info, warn, error, fatal)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "input-dir",
				Value:   "input",
				Usage:   "Directory holding the files to pack",
				Sources: cli.EnvVars("DATAGEN_INPUT_DIR"),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Value:   "output",
				Usage:   "Directory receiving generated files and archives",
				Sources: cli.EnvVars("DATAGEN_OUTPUT_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-dir",
				Value:   "logs",
				Usage:   "Directory receiving errors.log",
				Sources: cli.EnvVars("DATAGEN_LOG_DIR"),
			},
		},
		Commands: []*cli.Command{
			generateCommand,
			packCommand,
			runCommand,
			validateCommand,
			interactiveCommand,
			unpackCommand,
			versionCommand,
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			logger, err := createLogger(command.Bool("debug"), command.String("log-level"))
			if err != nil {
				return nil, err
			}

			logger.Debug("logger created", zap.String("log_level", command.String("log-level")))

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			return withInteractive(withLogger(ctx, logger), isInteractiveEnvironment()), nil
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if !isInteractive(ctx) {
				return fmt.Errorf("no command given and stdin is not a terminal; run with --help to list commands")
			}
			ctx, err := prepareWorkspace(ctx, command)
			if err != nil {
				return err
			}
			return runInteractive(ctx, command)
		},
		ExitErrHandler: func(ctx context.Context, command *cli.Command, err error) {
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}

			if logger := tryLogger(ctx); logger != nil {
				logger.Fatal("failed to run application", zap.Error(err))
			}
			log.Fatal(fmt.Errorf("failed to run application: %w", err))
		},
	}
}
