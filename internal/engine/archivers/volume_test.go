package archivers

import (
	"bytes"
	"testing"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeName(t *testing.T) {
	assert.Equal(t, "out/temp.tar.0001", VolumeName("out/temp.tar", 1))
	assert.Equal(t, "temp.tar.zst.0042", VolumeName("temp.tar.zst", 42))
	assert.Equal(t, "temp.tar.12345", VolumeName("temp.tar", 12345))
}

func TestVolumeWriter(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		limit     int64
		wantSizes []int64
	}{
		{name: "empty stream", size: 0, limit: 10, wantSizes: []int64{0}},
		{name: "smaller than limit", size: 7, limit: 10, wantSizes: []int64{7}},
		{name: "exact limit", size: 10, limit: 10, wantSizes: []int64{10}},
		{name: "exact multiple", size: 30, limit: 10, wantSizes: []int64{10, 10, 10}},
		{name: "remainder", size: 25, limit: 10, wantSizes: []int64{10, 10, 5}},
		{name: "one byte volumes", size: 3, limit: 1, wantSizes: []int64{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			data := bytes.Repeat([]byte("x"), tt.size)

			require.NoError(t, fs.MkdirAll("out", 0755))
			vw, err := NewVolumeWriter(fs, "out/temp.tar", tt.limit)
			require.NoError(t, err)

			// Uneven writes cross volume boundaries mid-slice.
			for _, chunk := range lo.Chunk(data, 3) {
				n, err := vw.Write(chunk)
				require.NoError(t, err)
				assert.Equal(t, len(chunk), n)
			}
			require.NoError(t, vw.Close())

			volumes := vw.Volumes()
			require.Len(t, volumes, len(tt.wantSizes))

			joined := []byte{}
			for i, path := range volumes {
				assert.Equal(t, VolumeName("out/temp.tar", i+1), path)

				content, err := afero.ReadFile(fs, path)
				require.NoError(t, err)
				assert.Equal(t, tt.wantSizes[i], int64(len(content)), "volume %s", path)
				assert.LessOrEqual(t, int64(len(content)), tt.limit)
				joined = append(joined, content...)
			}
			assert.Equal(t, data, joined)
		})
	}
}

func TestVolumeWriter_RejectsExistingVolume(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "temp.tar.0001", []byte("stale"), 0644))

	_, err := NewVolumeWriter(fs, "temp.tar", 10)
	require.Error(t, err)

	content, err := afero.ReadFile(fs, "temp.tar.0001")
	require.NoError(t, err)
	assert.Equal(t, "stale", string(content))
}

func TestVolumeWriter_InvalidLimit(t *testing.T) {
	_, err := NewVolumeWriter(afero.NewMemMapFs(), "temp.tar", 0)
	require.Error(t, err)
}

func TestVolumeWriter_Closed(t *testing.T) {
	vw, err := NewVolumeWriter(afero.NewMemMapFs(), "temp.tar", 10)
	require.NoError(t, err)

	require.NoError(t, vw.Close())
	require.NoError(t, vw.Close())

	_, err = vw.Write([]byte("late"))
	require.Error(t, err)
}
