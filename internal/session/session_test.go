package session

import (
	"bytes"
	"context"
	"strings"
	"testing"

	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inputDir = "input"

func newSession(t *testing.T, fs afero.Fs, input ...string) (*Session, *bytes.Buffer) {
	t.Helper()
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(input, "\n") + "\n")
	return New(nil, in, &out, fs, inputDir), &out
}

func TestSession_Generate(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  v1.JobSpec
	}{
		{
			name:  "plain csv",
			input: []string{"1", "100", "2", "3"},
			want: v1.JobSpec{
				Generate: &v1.GenerateSpec{Records: 100, Format: "csv"},
				Output:   v1.OutputSpec{Archive: v1.ArchiveNone},
			},
		},
		{
			name:  "zip xlsx",
			input: []string{"1", "5", "1", "1"},
			want: v1.JobSpec{
				Generate: &v1.GenerateSpec{Records: 5, Format: "xlsx"},
				Output:   v1.OutputSpec{Archive: v1.ArchiveZip},
			},
		},
		{
			name:  "tar in one file",
			input: []string{"1", "2000000", "3", "2", "1"},
			want: v1.JobSpec{
				Generate: &v1.GenerateSpec{Records: 2_000_000, Format: "txt"},
				Output:   v1.OutputSpec{Archive: v1.ArchiveTar},
			},
		},
		{
			name:  "tar split into volumes",
			input: []string{"1", "1000", "2", "2", "2", "7"},
			want: v1.JobSpec{
				Generate: &v1.GenerateSpec{Records: 1000, Format: "csv"},
				Output:   v1.OutputSpec{Archive: v1.ArchiveTar, MaxVolumeSizeMB: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t, nil, tt.input...)

			job, err := s.Job(t.Context())
			require.NoError(t, err)
			assert.Equal(t, "interactive", job.Metadata.Name)
			assert.Equal(t, tt.want, job.Spec)
		})
	}
}

func TestSession_RepromptsOnInvalidInput(t *testing.T) {
	s, out := newSession(t, nil,
		"3", "generate", "1",
		"0", "2000001", "ten", "10",
		"", "4", "2",
		"3",
	)

	job, err := s.Job(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 10, job.Spec.Generate.Records)
	assert.Equal(t, "csv", job.Spec.Generate.Format)
	assert.Equal(t, v1.ArchiveNone, job.Spec.Output.Archive)

	assert.Equal(t, 2, strings.Count(out.String(), "Please enter a number from 1 to 2."))
	assert.Equal(t, 3, strings.Count(out.String(), "Please enter a whole number from 1 to 2000000."))
	assert.Equal(t, 2, strings.Count(out.String(), "Please enter a number from 1 to 3."))
}

func TestSession_VolumeSizeRange(t *testing.T) {
	s, out := newSession(t, nil, "1", "10", "1", "2", "2", "51", "0", "50")

	job, err := s.Job(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 50, job.Spec.Output.MaxVolumeSizeMB)
	assert.Equal(t, 2, strings.Count(out.String(), "Please enter a whole number from 1 to 50."))
}

func TestSession_Pack(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  v1.OutputSpec
	}{
		{
			name:  "one zip file",
			input: []string{"2", "", "1", "1"},
			want:  v1.OutputSpec{Archive: v1.ArchiveZip},
		},
		{
			name:  "one tar file",
			input: []string{"2", "", "1", "2"},
			want:  v1.OutputSpec{Archive: v1.ArchiveTar},
		},
		{
			name:  "volumes",
			input: []string{"2", "", "2", "3"},
			want:  v1.OutputSpec{Archive: v1.ArchiveTar, MaxVolumeSizeMB: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "input/b.txt", []byte("b"), 0o644))
			require.NoError(t, afero.WriteFile(fs, "input/a.txt", []byte("a"), 0o644))

			s, out := newSession(t, fs, tt.input...)

			job, err := s.Job(t.Context())
			require.NoError(t, err)
			require.NotNil(t, job.Spec.Pack)
			assert.Nil(t, job.Spec.Generate)
			assert.Equal(t, []string{"a.txt", "b.txt"}, job.Spec.Pack.Files)
			assert.Equal(t, tt.want, job.Spec.Output)
			assert.Contains(t, out.String(), "a.txt\nb.txt")
		})
	}
}

func TestSession_PackRepromptsUntilInputIsReady(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, fs afero.Fs)
		message string
	}{
		{
			name: "empty directory",
			prepare: func(t *testing.T, fs afero.Fs) {
				require.NoError(t, fs.MkdirAll(inputDir, 0o755))
			},
			message: "is empty",
		},
		{
			name: "sub-directory",
			prepare: func(t *testing.T, fs afero.Fs) {
				require.NoError(t, fs.MkdirAll("input/nested", 0o755))
				require.NoError(t, afero.WriteFile(fs, "input/a.txt", []byte("a"), 0o644))
			},
			message: "must not contain sub-directories",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			tt.prepare(t, fs)

			s, out := newSession(t, fs, "2", "", "")

			_, err := s.Job(t.Context())
			require.ErrorIs(t, err, ErrInputClosed)
			assert.Equal(t, 2, strings.Count(out.String(), tt.message))
		})
	}
}

func TestSession_InputClosed(t *testing.T) {
	s, _ := newSession(t, nil, "1", "100")

	_, err := s.Job(t.Context())
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestSession_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	s, out := newSession(t, nil, "1", "100", "2", "3")

	_, err := s.Job(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
