package runner

import (
	"fmt"
	"path/filepath"

	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/samber/lo"
)

const (
	TaskGenerate = "generate"
	TaskPack     = "pack"

	defaultFilename = "output"
)

// compressions lists the compressions each archive kind accepts. An empty
// compression always selects the archive's default.
var compressions = map[string][]string{
	v1.ArchiveNone: {},
	v1.ArchiveZip:  {"deflate", "none"},
	v1.ArchiveTar:  {"zstd", "gzip", "none"},
}

// Task is a job with its defaults applied.
type Task struct {
	Kind     string
	Archive  string
	Filename string
}

// ResolveTask determines the task of a validated job and fills in the
// output defaults: generate jobs are written as is unless an archive is
// requested, pack jobs use zip or, when split into volumes, tar.
func ResolveTask(job v1.Job) (Task, error) {
	out := job.Spec.Output
	task := Task{
		Archive:  out.Archive,
		Filename: out.Filename,
	}
	if task.Filename == "" {
		task.Filename = defaultFilename
	}
	if !filepath.IsLocal(task.Filename) {
		return Task{}, &engine.InvalidInputError{Reason: fmt.Sprintf("output filename %q must be a relative path", task.Filename)}
	}

	switch {
	case job.Spec.Generate != nil:
		task.Kind = TaskGenerate
		if task.Archive == "" {
			task.Archive = v1.ArchiveNone
		}
		if task.Archive == v1.ArchiveNone && out.MaxVolumeSizeMB > 0 {
			return Task{}, &engine.InvalidInputError{Reason: "max volume size requires an archive"}
		}
	case job.Spec.Pack != nil:
		task.Kind = TaskPack
		if task.Archive == "" {
			task.Archive = v1.ArchiveZip
			if out.MaxVolumeSizeMB > 0 {
				task.Archive = v1.ArchiveTar
			}
		}
		if task.Archive == v1.ArchiveNone {
			return Task{}, &engine.InvalidInputError{Reason: "pack jobs require an archive"}
		}
	default:
		return Task{}, fmt.Errorf("job %q has no task specified", job.Metadata.Name)
	}

	if out.Compression != "" && !lo.Contains(compressions[task.Archive], out.Compression) {
		return Task{}, &engine.InvalidInputError{Reason: fmt.Sprintf("compression %q is not available for archive %q (supported: %v)", out.Compression, task.Archive, compressions[task.Archive])}
	}

	return task, nil
}
