package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ivanov-dv/data-generator/internal/runner"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Validate a job file",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "allowed-env",
			Usage: "Environment variables allowed in job configuration (can be repeated)",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "job",
			UsageText: "The job file to validate",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		jobFilename := command.StringArg("job")
		if jobFilename == "" {
			return fmt.Errorf("no job file provided")
		}

		logger = logger.With(zap.String("job_filename", jobFilename))
		logger.Debug("validating job file")

		job, err := loadJob(jobFilename, command.StringSlice("allowed-env"))
		if err != nil {
			fmt.Fprintln(command.Root().ErrWriter, err)
			return fmt.Errorf("job file '%s' is invalid", jobFilename)
		}

		task, err := runner.ResolveTask(job)
		if err != nil {
			return fmt.Errorf("job file '%s' is invalid: %w", jobFilename, err)
		}

		fmt.Fprintf(command.Root().Writer, "✓ Job file '%s' is valid (%s, archive %s)\n", jobFilename, task.Kind, task.Archive)
		return nil
	},
}

// formatValidationError renders validator errors as one line per failed
// field. Other errors are returned unchanged.
func formatValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		line := fmt.Sprintf("  • %s: failed '%s' validation", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			line += fmt.Sprintf(" (param: %s)", fe.Param())
		}
		return line
	})

	return fmt.Errorf("job file has %d validation error(s):\n%s", len(fieldErrs), strings.Join(lines, "\n"))
}
