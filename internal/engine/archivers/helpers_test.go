package archivers

import (
	"archive/tar"
	stdzip "archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name    string
	content string
}

// readTarEntries decompresses a tar stream and returns its entries in order.
func readTarEntries(t *testing.T, data []byte, ct CompressionType) []entry {
	t.Helper()

	r, err := newDecompressor(bytes.NewReader(data), ct)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, r.Close())
	}()

	var entries []entry
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries = append(entries, entry{name: h.Name, content: string(content)})
	}
	return entries
}

// readZipEntries reads a zip archive with the standard library reader.
func readZipEntries(t *testing.T, data []byte) []entry {
	t.Helper()

	zr, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make([]entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries = append(entries, entry{name: f.Name, content: string(content)})
	}
	return entries
}

func writeFiles(t *testing.T, fs afero.Fs, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}

func dirNames(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	infos, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}

// stickyFs refuses to remove the listed paths.
type stickyFs struct {
	afero.Fs
	sticky map[string]bool
}

func (s *stickyFs) Remove(name string) error {
	if s.sticky[name] {
		return &os.PathError{Op: "remove", Path: name, Err: errors.New("permission denied")}
	}
	return s.Fs.Remove(name)
}
