// Package session implements the interactive prompt flow that builds a job
// from numbered menus.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/ivanov-dv/data-generator/internal/runner"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrInputClosed is returned when the input ends before the job is complete.
var ErrInputClosed = errors.New("input closed before the job was complete")

type option struct {
	label string
	value string
}

var (
	taskOptions = []option{
		{label: "Generate random data into a file or archive", value: runner.TaskGenerate},
		{label: "Pack files into an archive", value: runner.TaskPack},
	}
	formatOptions = []option{
		{label: "xlsx", value: "xlsx"},
		{label: "csv", value: "csv"},
		{label: "txt", value: "txt"},
	}
	generateArchiveOptions = []option{
		{label: "zip", value: v1.ArchiveZip},
		{label: "tar (supports splitting into volumes)", value: v1.ArchiveTar},
		{label: "No archive", value: v1.ArchiveNone},
	}
	packArchiveOptions = generateArchiveOptions[:2]
	splitOptions       = []option{
		{label: "Archive into one file", value: "one"},
		{label: "Set the maximum volume size", value: "parts"},
	}
)

// Session asks the user for the parameters of one job.
type Session struct {
	logger   *zap.Logger
	in       *bufio.Scanner
	out      io.Writer
	fs       afero.Fs
	inputDir string
	validate *validator.Validate
}

func New(logger *zap.Logger, in io.Reader, out io.Writer, fs afero.Fs, inputDir string) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		logger:   logger,
		in:       bufio.NewScanner(in),
		out:      out,
		fs:       fs,
		inputDir: inputDir,
		validate: validator.New(),
	}
}

// Welcome prints the greeting shown once per session.
func (s *Session) Welcome() {
	s.printf("Welcome to datagen!\nA tool for generating random user data and packing files.\n")
}

// Job walks the user through the menus and returns the resulting job.
func (s *Session) Job(ctx context.Context) (v1.Job, error) {
	job := v1.Job{Metadata: v1.Metadata{Name: "interactive"}}

	task, err := s.choose(ctx, "What do you want to do?", taskOptions)
	if err != nil {
		return v1.Job{}, err
	}

	switch task {
	case runner.TaskGenerate:
		err = s.generateParameters(ctx, &job)
	case runner.TaskPack:
		err = s.packParameters(ctx, &job)
	}
	if err != nil {
		return v1.Job{}, err
	}

	s.logger.Debug("job configured", zap.String("task", task), zap.Any("output", job.Spec.Output))
	return job, nil
}

func (s *Session) generateParameters(ctx context.Context, job *v1.Job) error {
	records, err := s.number(ctx, "Enter the number of records to generate", 1, v1.MaxRecords)
	if err != nil {
		return err
	}

	format, err := s.choose(ctx, "Choose the file format:", formatOptions)
	if err != nil {
		return err
	}
	job.Spec.Generate = &v1.GenerateSpec{Records: records, Format: format}

	archive, err := s.choose(ctx, "Choose the archive format, if archiving is needed:", generateArchiveOptions)
	if err != nil {
		return err
	}
	job.Spec.Output.Archive = archive

	if archive != v1.ArchiveTar {
		return nil
	}
	return s.splitParameters(ctx, job)
}

func (s *Session) packParameters(ctx context.Context, job *v1.Job) error {
	files, err := s.inputFiles(ctx)
	if err != nil {
		return err
	}
	job.Spec.Pack = &v1.PackSpec{Files: files}

	split, err := s.choose(ctx, "Choose how to archive:", splitOptions)
	if err != nil {
		return err
	}

	if split == "parts" {
		job.Spec.Output.Archive = v1.ArchiveTar
		return s.volumeSize(ctx, job)
	}

	archive, err := s.choose(ctx, "Choose the archive format:", packArchiveOptions)
	if err != nil {
		return err
	}
	job.Spec.Output.Archive = archive
	return nil
}

func (s *Session) splitParameters(ctx context.Context, job *v1.Job) error {
	split, err := s.choose(ctx, "Choose how to archive:", splitOptions)
	if err != nil {
		return err
	}
	if split == "one" {
		return nil
	}
	return s.volumeSize(ctx, job)
}

func (s *Session) volumeSize(ctx context.Context, job *v1.Job) error {
	size, err := s.number(ctx, "Enter the maximum volume size (MB)", 1, v1.MaxVolumeSizeMB)
	if err != nil {
		return err
	}
	job.Spec.Output.MaxVolumeSizeMB = size
	return nil
}

// inputFiles waits until the input directory holds files to pack.
func (s *Session) inputFiles(ctx context.Context) ([]string, error) {
	for {
		if _, err := s.ask(ctx, fmt.Sprintf("\nPut the files to archive into the %q directory and press Enter", s.inputDir)); err != nil {
			return nil, err
		}

		files, err := runner.ListInputFiles(s.fs, s.inputDir)
		if err != nil {
			s.logger.Debug("input directory not ready", zap.Error(err))
			s.printf("%s\n", err)
			continue
		}

		s.printf("The following files will be archived:\n%s\n", strings.Join(files, "\n"))
		return files, nil
	}
}

// choose shows a numbered menu and returns the value of the chosen option.
func (s *Session) choose(ctx context.Context, title string, options []option) (string, error) {
	var menu strings.Builder
	fmt.Fprintf(&menu, "\n%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(&menu, "%d - %s\n", i+1, opt.label)
	}
	menu.WriteString("> ")

	for {
		answer, err := s.ask(ctx, menu.String())
		if err != nil {
			return "", err
		}

		n, err := strconv.Atoi(answer)
		if err == nil && s.validate.Var(n, fmt.Sprintf("min=1,max=%d", len(options))) == nil {
			return options[n-1].value, nil
		}
		s.printf("\nInvalid input. Please enter a number from 1 to %d.\n", len(options))
	}
}

// number asks for an integer in [lo, hi] until a valid one is entered.
func (s *Session) number(ctx context.Context, prompt string, lo, hi int) (int, error) {
	for {
		answer, err := s.ask(ctx, fmt.Sprintf("\n%s\n> ", prompt))
		if err != nil {
			return 0, err
		}

		n, err := strconv.Atoi(answer)
		if err == nil && s.validate.Var(n, fmt.Sprintf("min=%d,max=%d", lo, hi)) == nil {
			return n, nil
		}
		s.logger.Debug("invalid number", zap.String("input", answer))
		s.printf("Invalid input. Please enter a whole number from %d to %d.\n", lo, hi)
	}
}

func (s *Session) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.printf("%s", prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
