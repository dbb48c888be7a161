package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// Result describes the file produced by a run.
type Result struct {
	// Path is the produced file, relative to the output directory.
	Path    string
	Size    int64
	Elapsed time.Duration
	// Warning is set when the output was produced but some source files
	// could not be deleted afterwards.
	Warning error
}

type Runner struct {
	logger   *zap.Logger
	fs       afero.Fs
	cfg      Config
	registry *engine.Registry
	job      v1.Job
	task     Task
}

// ParseJob parses a YAML or JSON job file and validates it. It returns a
// validated Job or an error if parsing or validation fails.
func ParseJob(data []byte) (v1.Job, error) {
	var job v1.Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.Job{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := ValidateJob(job); err != nil {
		return v1.Job{}, err
	}

	return job, nil
}

// ValidateJob checks the job against its struct rules and resolves its task.
func ValidateJob(job v1.Job) error {
	if err := defaultValidator.Struct(job); err != nil {
		return fmt.Errorf("failed to validate job: %w", err)
	}
	if _, err := ResolveTask(job); err != nil {
		return fmt.Errorf("failed to validate job: %w", err)
	}
	return nil
}

// New creates a runner for a validated job using the dependencies of i.
func New(i do.Injector, job v1.Job) (*Runner, error) {
	task, err := ResolveTask(job)
	if err != nil {
		return nil, err
	}

	registry, err := do.Invoke[*engine.Registry](i)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	logger := do.MustInvoke[*zap.Logger](i)
	logger.Info("creating runner",
		zap.String("job_name", job.Metadata.Name),
		zap.String("task", task.Kind),
		zap.String("archive", task.Archive),
	)

	return &Runner{
		logger:   logger,
		fs:       do.MustInvoke[afero.Fs](i),
		cfg:      do.MustInvoke[Config](i),
		registry: registry,
		job:      job,
		task:     task,
	}, nil
}

func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	var (
		path    string
		warning error
		err     error
	)
	switch r.task.Kind {
	case TaskGenerate:
		path, err = r.generate(ctx)
	case TaskPack:
		path, err = r.pack(ctx)
		if engine.IsPartialDeletion(err) {
			warning, err = err, nil
		}
	default:
		err = fmt.Errorf("unknown task %q", r.task.Kind)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to %s: %w", r.task.Kind, err)
	}

	info, err := r.fs.Stat(filepath.Join(r.cfg.OutputDir, path))
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat output: %w", err)
	}

	result := Result{
		Path:    path,
		Size:    info.Size(),
		Elapsed: time.Since(start),
		Warning: warning,
	}
	r.logger.Info("job finished",
		zap.String("path", result.Path),
		zap.String("size", humanize.IBytes(uint64(result.Size))),
		zap.Duration("elapsed", result.Elapsed),
	)
	if warning != nil {
		r.logger.Warn("output written with warnings", zap.Error(warning))
	}

	return result, nil
}
