package archivers

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressionType defines supported compression algorithms for tar streams.
type CompressionType string

const (
	CompressionZstd CompressionType = "zstd"
	CompressionGzip CompressionType = "gzip"
	CompressionNone CompressionType = "none"
)

// ParseCompression validates compression. Empty defaults to zstd.
func ParseCompression(compression string) (CompressionType, error) {
	ct := CompressionType(compression)
	switch ct {
	case "":
		return CompressionZstd, nil
	case CompressionZstd, CompressionGzip, CompressionNone:
		return ct, nil
	default:
		return "", fmt.Errorf("unsupported compression type: %s", compression)
	}
}

// Extension returns the tar file extension for the compression type.
func (ct CompressionType) Extension() string {
	switch ct {
	case CompressionGzip:
		return ".tar.gz"
	case CompressionZstd:
		return ".tar.zst"
	default:
		return ".tar"
	}
}

// CompressionFromFilename infers the compression of a tar archive from its
// extension. Anything that is not .tar.gz, .tgz or .tar.zst is read as plain tar.
func CompressionFromFilename(name string) CompressionType {
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".tar.zst"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

func newCompressor(w io.Writer, ct CompressionType) (io.WriteCloser, error) {
	switch ct {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, nil
	case CompressionNone:
		return &nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", ct)
	}
}

func newDecompressor(r io.Reader, ct CompressionType) (io.ReadCloser, error) {
	switch ct {
	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case CompressionNone:
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", ct)
	}
}

// nopWriteCloser wraps a Writer to provide a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (n *nopWriteCloser) Close() error {
	return nil
}
