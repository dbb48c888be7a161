package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput matches every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCapability matches every *CapabilityError.
	ErrCapability = errors.New("operation not supported")
)

// InvalidInputError is returned when a payload or request argument has an
// unsupported shape. Nothing has been written when it is returned.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// CapabilityError is returned when an operation is invoked on a backend whose
// format cannot support it.
type CapabilityError struct {
	Backend   string
	Operation string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s is not available for %s archives", e.Operation, e.Backend)
}

func (e *CapabilityError) Is(target error) bool {
	return target == ErrCapability
}

// FileError pairs a path with the error raised while handling it.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// PartialDeletionError reports files that could not be removed after the
// archive was built. The archive itself is complete and valid.
type PartialDeletionError struct {
	Archive string
	Failed  []FileError
}

func (e *PartialDeletionError) Error() string {
	msgs := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("archive %s was created but %d file(s) could not be deleted: %s",
		e.Archive, len(e.Failed), strings.Join(msgs, "; "))
}

func (e *PartialDeletionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f)
	}
	return errs
}

// IsPartialDeletion reports whether err only signals failed source deletions,
// meaning the archive was still produced.
func IsPartialDeletion(err error) bool {
	var pde *PartialDeletionError
	return errors.As(err, &pde)
}

// StaleVolumeError is returned when the output directory already holds files
// sharing the temporary volume prefix, typically left by an interrupted run.
type StaleVolumeError struct {
	Dir    string
	Prefix string
	Found  []string
}

func (e *StaleVolumeError) Error() string {
	return fmt.Sprintf("output directory %s already contains temporary volumes with prefix %q (%s); remove them before retrying",
		e.Dir, e.Prefix, strings.Join(e.Found, ", "))
}
