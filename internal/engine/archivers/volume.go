package archivers

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/afero"
)

// VolumeName returns the path of the index-th volume (1-based) of base.
func VolumeName(base string, index int) string {
	return fmt.Sprintf("%s.%04d", base, index)
}

// VolumeWriter splits a byte stream into sequential files of at most limit
// bytes each, named by VolumeName. The first volume is created up front, so
// there is always at least one; later volumes are only opened once there is
// data that does not fit, so a stream whose size is an exact multiple of
// limit never ends with an empty volume.
type VolumeWriter struct {
	fs      afero.Fs
	base    string
	limit   int64
	current afero.File
	size    int64
	volumes []string
	closed  bool
}

// NewVolumeWriter creates the first volume of base. Volumes are created
// exclusively: an existing file with a volume name is an error.
func NewVolumeWriter(fs afero.Fs, base string, limit int64) (*VolumeWriter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("volume size must be positive, got %d", limit)
	}

	w := &VolumeWriter{
		fs:    fs,
		base:  base,
		limit: limit,
	}
	if err := w.next(); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *VolumeWriter) Write(p []byte) (n int, err error) {
	if w.closed {
		return 0, fmt.Errorf("volume writer is closed")
	}

	for len(p) > 0 {
		if w.size >= w.limit {
			if err := w.next(); err != nil {
				return n, err
			}
		}

		chunk := p
		if room := w.limit - w.size; int64(len(chunk)) > room {
			chunk = chunk[:room]
		}

		written, err := w.current.Write(chunk)
		n += written
		w.size += int64(written)
		p = p[written:]
		if err != nil {
			return n, fmt.Errorf("failed to write volume %s: %w", w.volumes[len(w.volumes)-1], err)
		}
	}

	return n, nil
}

// Close closes the current volume. Calling Close more than once is a no-op.
func (w *VolumeWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.current == nil {
		return nil
	}
	if err := w.current.Close(); err != nil {
		return fmt.Errorf("failed to close volume %s: %w", w.volumes[len(w.volumes)-1], err)
	}
	return nil
}

// Volumes returns the paths of the volumes created so far, in order.
func (w *VolumeWriter) Volumes() []string {
	return slices.Clone(w.volumes)
}

func (w *VolumeWriter) next() error {
	if w.current != nil {
		if err := w.current.Close(); err != nil {
			return fmt.Errorf("failed to close volume %s: %w", w.volumes[len(w.volumes)-1], err)
		}
		w.current = nil
	}

	name := VolumeName(w.base, len(w.volumes)+1)
	f, err := w.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create volume: %w", err)
	}

	w.current = f
	w.size = 0
	w.volumes = append(w.volumes, name)
	return nil
}
