package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/ivanov-dv/data-generator/internal/runner"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Run a job file",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "allowed-env",
			Usage: "Environment variables allowed in job configuration (can be repeated)",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "job",
			UsageText: "The job file to run, or - for stdin",
		},
	},
	Before: prepareWorkspace,
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		jobFilename := command.StringArg("job")
		if jobFilename == "" {
			return fmt.Errorf("no job file provided")
		}

		job, err := loadJob(jobFilename, command.StringSlice("allowed-env"))
		if err != nil {
			return err
		}

		logger.Debug("job loaded", zap.String("job_filename", jobFilename), zap.String("job_name", job.Metadata.Name))
		return runJob(ctx, job)
	},
}

// loadJob reads, parses and validates a job file, then expands its templates.
func loadJob(jobFilename string, allowedEnv []string) (v1.Job, error) {
	jobFile, err := readJobFile(jobFilename)
	if err != nil {
		return v1.Job{}, fmt.Errorf("failed to read job file '%s': %w", jobFilename, err)
	}

	job, err := runner.ParseJob(jobFile)
	if err != nil {
		return v1.Job{}, formatValidationError(err)
	}

	variables, err := runner.BuildVariables(job, allowedEnv)
	if err != nil {
		return v1.Job{}, fmt.Errorf("failed to build variables: %w", err)
	}

	if err := runner.ExpandTemplates(&job, variables); err != nil {
		return v1.Job{}, fmt.Errorf("failed to expand templates: %w", err)
	}

	return job, nil
}

func readJobFile(jobFilename string) ([]byte, error) {
	if jobFilename == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(jobFilename)
}

// runJob runs a validated job with the dependencies stored in ctx and prints
// what it produced.
func runJob(ctx context.Context, job v1.Job) error {
	container := getContainer(ctx)

	r, err := runner.New(container, job)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	result, err := r.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run job: %w", err)
	}

	printResult(os.Stdout, do.MustInvoke[runner.Config](container).OutputDir, result)
	return nil
}

func printResult(w io.Writer, outputDir string, result runner.Result) {
	fmt.Fprintf(w, "✓ Created %s (%s) in %s\n",
		filepath.Join(outputDir, result.Path),
		humanize.IBytes(uint64(result.Size)),
		result.Elapsed.Round(time.Millisecond),
	)
	if result.Warning != nil {
		fmt.Fprintf(w, "! %s\n", result.Warning)
	}
}
