package runner

import (
	"context"
	"fmt"
	"iter"
	"os"
	"slices"

	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/ivanov-dv/data-generator/internal/engine/generators"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// generate writes the generated records either straight to a file or, when
// an archive is requested, to a buffer that becomes the archive's only entry.
func (r *Runner) generate(ctx context.Context) (string, error) {
	spec := r.job.Spec.Generate

	writer, err := r.registry.CreateWriter(spec.Format, engine.WriterConfig{Fs: r.fs, OutputDir: r.cfg.OutputDir})
	if err != nil {
		return "", fmt.Errorf("failed to create writer: %w", err)
	}

	var gen engine.Generator = generators.NewPerson(spec.Seed)
	records := gen.Generate(ctx, spec.Records)
	if spec.Header {
		records = withHeader(gen.Header(), records)
	}
	r.logger.Debug("generating records", zap.Int("records", spec.Records), zap.String("writer", writer.Name()))

	if r.task.Archive == v1.ArchiveNone {
		out, err := writer.Write(ctx, records, r.task.Filename)
		if err != nil {
			return "", fmt.Errorf("failed to write records: %w", err)
		}
		return out.Filename, nil
	}

	out, err := writer.Write(ctx, records, "")
	if err != nil {
		return "", fmt.Errorf("failed to write records: %w", err)
	}

	backend, err := r.createBackend("")
	if err != nil {
		return "", err
	}

	archiveFilename := r.task.Filename + backend.Extension()
	err = engine.Create(ctx, backend, engine.Request{
		Payload:         engine.Payload{Buffer: out.Buffer},
		ArchiveFilename: archiveFilename,
		InnerFilename:   r.task.Filename + writer.Extension(),
		OutputDir:       r.cfg.OutputDir,
		MaxVolumeSizeMB: r.job.Spec.Output.MaxVolumeSizeMB,
	})
	if err != nil {
		return "", err
	}

	return archiveFilename, nil
}

// withHeader yields the column names as the first record.
func withHeader(header []string, records iter.Seq[engine.Record]) iter.Seq[engine.Record] {
	return func(yield func(engine.Record) bool) {
		if !yield(lo.ToAnySlice(header)) {
			return
		}
		for record := range records {
			if !yield(record) {
				return
			}
		}
	}
}

// pack archives files of the input directory. On a *engine.PartialDeletionError
// the archive name is still returned since the archive itself is complete.
func (r *Runner) pack(ctx context.Context) (string, error) {
	spec := r.job.Spec.Pack

	files := spec.Files
	if len(files) == 0 {
		listed, err := ListInputFiles(r.fs, r.cfg.InputDir)
		if err != nil {
			return "", err
		}
		files = listed
	}

	backend, err := r.createBackend(r.cfg.InputDir)
	if err != nil {
		return "", err
	}

	archiveFilename := r.task.Filename + backend.Extension()
	r.logger.Debug("packing files", zap.Strings("files", files), zap.String("backend", backend.Name()))

	err = engine.Create(ctx, backend, engine.Request{
		Payload:         engine.FilesPayload(files...),
		ArchiveFilename: archiveFilename,
		SourceDir:       r.cfg.InputDir,
		OutputDir:       r.cfg.OutputDir,
		MaxVolumeSizeMB: r.job.Spec.Output.MaxVolumeSizeMB,
		DeleteAfter:     spec.DeleteAfter,
	})
	if err != nil && !engine.IsPartialDeletion(err) {
		return "", err
	}

	return archiveFilename, err
}

func (r *Runner) createBackend(sourceDir string) (engine.Backend, error) {
	backend, err := r.registry.CreateBackend(r.task.Archive, engine.BackendConfig{
		Fs:          r.fs,
		OutputDir:   r.cfg.OutputDir,
		SourceDir:   sourceDir,
		Compression: r.job.Spec.Output.Compression,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", r.task.Archive, err)
	}
	return backend, nil
}

// ListInputFiles returns the names of the files in dir, sorted. The
// directory must not be empty and must not contain sub-directories.
func ListInputFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input directory: %w", err)
	}

	dirs := lo.FilterMap(entries, func(entry os.FileInfo, _ int) (string, bool) {
		return entry.Name(), entry.IsDir()
	})
	if len(dirs) > 0 {
		return nil, fmt.Errorf("input directory %s must not contain sub-directories (found %v)", dir, dirs)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("input directory %s is empty", dir)
	}

	files := lo.Map(entries, func(entry os.FileInfo, _ int) string { return entry.Name() })
	slices.Sort(files)
	return files, nil
}
