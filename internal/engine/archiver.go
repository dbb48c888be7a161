package engine

import (
	"bytes"
	"context"
	"fmt"
)

// Backend packs a buffer or a list of files into a single archive file.
// Every archive format supports these operations.
type Backend interface {
	Named

	// Extension returns the file extension for this archive type (e.g., ".zip").
	Extension() string

	// CreateFromBuffer wraps buffer as a single entry named innerFilename and
	// writes the archive to archiveFilename under the backend's output directory.
	CreateFromBuffer(ctx context.Context, buffer []byte, archiveFilename, innerFilename string) error

	// CreateFromFiles adds every file of files, read from sourceDir, as an entry
	// named after its relative path, in list order. When deleteAfter is set the
	// source files are removed once the archive has been finalized; failed
	// removals are reported as a *PartialDeletionError.
	CreateFromFiles(ctx context.Context, sourceDir string, files []string, archiveFilename string, deleteAfter bool) error
}

// Splitter is implemented by backends whose container format can be written
// as a sequence of size-bounded volumes.
type Splitter interface {
	Backend

	// CreateOneFileFromParts writes payload as volumes of at most maxSizeMB
	// megabytes into outputDir, then fuses those volumes into the single
	// archive outputDir/archiveFilename. No volume is left behind on success.
	CreateOneFileFromParts(ctx context.Context, outputDir string, payload Payload, archiveFilename string, maxSizeMB int, innerFilename string) error
}

// SourceSplitter is a Splitter that can read a file list payload from a
// directory other than its configured source directory.
type SourceSplitter interface {
	Splitter

	CreateOneFileFromPartsIn(ctx context.Context, sourceDir, outputDir string, payload Payload, archiveFilename string, maxSizeMB int, innerFilename string) error
}

// Payload is the content of an archive: either an in-memory buffer or an
// ordered list of source files. Exactly one of the fields must be set; an
// empty buffer and an empty, non-nil file list are both valid.
type Payload struct {
	Buffer *bytes.Buffer
	Files  []string
}

// BufferPayload returns a payload holding data.
func BufferPayload(data []byte) Payload {
	return Payload{Buffer: bytes.NewBuffer(data)}
}

// FilesPayload returns a payload holding the given relative file names.
func FilesPayload(files ...string) Payload {
	if files == nil {
		files = []string{}
	}
	return Payload{Files: files}
}

// IsBuffer reports whether the payload carries an in-memory buffer.
func (p Payload) IsBuffer() bool {
	return p.Buffer != nil
}

// Validate checks that exactly one payload form is populated.
func (p Payload) Validate() error {
	switch {
	case p.Buffer != nil && p.Files != nil:
		return &InvalidInputError{Reason: "payload must be either a buffer or a file list, not both"}
	case p.Buffer == nil && p.Files == nil:
		return &InvalidInputError{Reason: "payload must be a buffer or a file list"}
	}
	return nil
}

// Request describes a single archiving operation.
type Request struct {
	Payload         Payload
	ArchiveFilename string
	// InnerFilename names the entry of a buffer payload.
	InnerFilename string
	// SourceDir is where the files of a file list payload are read from,
	// split or not. Empty selects the backend's source directory when split.
	SourceDir string
	// OutputDir receives volumes and the fused archive of a partitioned
	// request. Empty selects the backend's own output directory.
	OutputDir string
	// MaxVolumeSizeMB enables volume splitting when positive. Negative
	// values are invalid.
	MaxVolumeSizeMB int
	// DeleteAfter removes the source files of a non-partitioned file list
	// request once the archive is written.
	DeleteAfter bool
}

// Create dispatches req to the backend operation matching its payload.
func Create(ctx context.Context, backend Backend, req Request) error {
	if err := req.Payload.Validate(); err != nil {
		return err
	}

	if req.MaxVolumeSizeMB < 0 {
		return &InvalidInputError{Reason: fmt.Sprintf("max volume size must not be negative, got %d", req.MaxVolumeSizeMB)}
	}

	if req.MaxVolumeSizeMB > 0 {
		return createPartitioned(ctx, backend, req)
	}

	if req.Payload.IsBuffer() {
		return backend.CreateFromBuffer(ctx, req.Payload.Buffer.Bytes(), req.ArchiveFilename, req.InnerFilename)
	}
	return backend.CreateFromFiles(ctx, req.SourceDir, req.Payload.Files, req.ArchiveFilename, req.DeleteAfter)
}

// createPartitioned honours req.SourceDir for file list payloads the same way
// the unsplit path does.
func createPartitioned(ctx context.Context, backend Backend, req Request) error {
	if req.Payload.IsBuffer() || req.SourceDir == "" {
		return CreateOneFileFromParts(ctx, backend, req.OutputDir, req.Payload, req.ArchiveFilename, req.MaxVolumeSizeMB, req.InnerFilename)
	}

	splitter, err := asSplitter(backend)
	if err != nil {
		return err
	}
	sourced, ok := splitter.(SourceSplitter)
	if !ok {
		return &InvalidInputError{Reason: fmt.Sprintf("%s backend cannot read split file lists from %s", backend.Kind(), req.SourceDir)}
	}
	return sourced.CreateOneFileFromPartsIn(ctx, req.SourceDir, req.OutputDir, req.Payload, req.ArchiveFilename, req.MaxVolumeSizeMB, req.InnerFilename)
}

func asSplitter(backend Backend) (Splitter, error) {
	splitter, ok := backend.(Splitter)
	if !ok {
		return nil, &CapabilityError{Backend: backend.Kind(), Operation: "splitting into volumes"}
	}
	return splitter, nil
}

// CreateOneFileFromParts runs a partitioned archive operation on backend.
// Backends that do not implement Splitter fail with a *CapabilityError
// before anything is written.
func CreateOneFileFromParts(ctx context.Context, backend Backend, outputDir string, payload Payload, archiveFilename string, maxSizeMB int, innerFilename string) error {
	splitter, err := asSplitter(backend)
	if err != nil {
		return err
	}
	return splitter.CreateOneFileFromParts(ctx, outputDir, payload, archiveFilename, maxSizeMB, innerFilename)
}
