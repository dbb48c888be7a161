package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ivanov-dv/data-generator/internal/runner"
	"github.com/ivanov-dv/data-generator/internal/session"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type interactiveCtxKeyType struct{}

var interactiveCtxKey = interactiveCtxKeyType{}

func isInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func withInteractive(ctx context.Context, interactive bool) context.Context {
	return context.WithValue(ctx, interactiveCtxKey, interactive)
}

func isInteractive(ctx context.Context) bool {
	interactive, ok := ctx.Value(interactiveCtxKey).(bool)
	if !ok {
		return false
	}
	return interactive
}

var interactiveCommand = &cli.Command{
	Name:   "interactive",
	Usage:  "Configure and run jobs through numbered menus",
	Before: prepareWorkspace,
	Action: runInteractive,
}

// runInteractive asks for jobs and runs them until the input ends or the
// context is cancelled. A failed job is reported and the menus start over.
func runInteractive(ctx context.Context, _ *cli.Command) error {
	logger := getLogger(ctx)
	container := getContainer(ctx)
	cfg := do.MustInvoke[runner.Config](container)

	s := session.New(logger.Named("session"), os.Stdin, os.Stdout, do.MustInvoke[afero.Fs](container), cfg.InputDir)
	s.Welcome()

	for {
		job, err := s.Job(ctx)
		if errors.Is(err, session.ErrInputClosed) || errors.Is(err, context.Canceled) {
			fmt.Println("\nExit")
			return nil
		}
		if err != nil {
			return err
		}

		if err := runJob(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("\nExit")
				return nil
			}
			logger.Error("job failed", zap.Error(err))
			fmt.Printf("\nAn error occurred: %s\nLet's start over.\n", err)
		}
	}
}
