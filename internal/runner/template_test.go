package runner

import (
	"testing"
	"time"

	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVariables(t *testing.T) {
	job := v1.Job{
		Metadata: v1.Metadata{
			Name: "nightly-export",
		},
	}

	t.Run("built-in variables are set", func(t *testing.T) {
		variables, err := BuildVariables(job, nil)
		require.NoError(t, err)

		assert.Equal(t, "nightly-export", variables["JOB_NAME"])

		_, err = time.Parse("20060102T150405Z", variables["JOB_DATE_ISO8601"])
		require.NoError(t, err, "JOB_DATE_ISO8601 should be valid ISO8601 basic format")

		_, err = time.Parse(time.RFC3339, variables["JOB_DATE_RFC3339"])
		require.NoError(t, err, "JOB_DATE_RFC3339 should be valid RFC3339 format")

		assert.Len(t, variables, 3)
	})

	t.Run("allowed env variables are included", func(t *testing.T) {
		t.Setenv("VAR1", "value1")
		t.Setenv("VAR2", "value2")

		variables, err := BuildVariables(job, []string{"VAR1", "VAR2"})
		require.NoError(t, err)

		assert.Equal(t, "value1", variables["VAR1"])
		assert.Equal(t, "value2", variables["VAR2"])
	})

	t.Run("error accumulates for missing env variables", func(t *testing.T) {
		_, err := BuildVariables(job, []string{"MISSING1", "MISSING2"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `environment variable "MISSING1" is not set`)
		assert.Contains(t, err.Error(), "MISSING2")
	})
}

func TestExpandTemplates_Job(t *testing.T) {
	job := v1.Job{
		Metadata: v1.Metadata{Name: "export"},
		Spec: v1.JobSpec{
			Pack: &v1.PackSpec{Files: []string{"${JOB_NAME}.csv", "static.txt"}},
			Output: v1.OutputSpec{
				Archive:  "${NOT_A_TEMPLATE}",
				Filename: "${JOB_NAME}-${JOB_DATE_ISO8601}",
			},
		},
	}

	err := ExpandTemplates(&job, map[string]string{"JOB_NAME": "export", "JOB_DATE_ISO8601": "20261016T120000Z"})
	require.NoError(t, err)

	assert.Equal(t, "export-20261016T120000Z", job.Spec.Output.Filename)
	assert.Equal(t, []string{"export.csv", "static.txt"}, job.Spec.Pack.Files)
	assert.Equal(t, "${NOT_A_TEMPLATE}", job.Spec.Output.Archive, "untagged fields are left alone")
}

func TestExpandTemplates(t *testing.T) {
	type Inner struct {
		Path string `template:""`
	}
	type S struct {
		Name    string `template:""`
		Skipped string `template:"-"`
		Plain   string
		Names   []string `template:""`
		Count   int
		Inner   Inner
		Ptr     *Inner
		NilPtr  *Inner
	}

	in := S{
		Name:    "${X}",
		Skipped: "${X}",
		Plain:   "${X}",
		Names:   []string{"${X}/a", "b"},
		Count:   42,
		Inner:   Inner{Path: "${X}"},
		Ptr:     &Inner{Path: "${X}.txt"},
	}
	require.NoError(t, ExpandTemplates(&in, map[string]string{"X": "y"}))

	assert.Equal(t, S{
		Name:    "y",
		Skipped: "${X}",
		Plain:   "${X}",
		Names:   []string{"y/a", "b"},
		Count:   42,
		Inner:   Inner{Path: "y"},
		Ptr:     &Inner{Path: "y.txt"},
	}, in)
}

func TestExpandTemplates_Nil(t *testing.T) {
	type S struct {
		Path string `template:""`
	}
	var in *S
	require.NoError(t, ExpandTemplates(in, map[string]string{}))
}

func TestExpandTemplates_NotStruct(t *testing.T) {
	in := []string{"${X}"}
	require.Error(t, ExpandTemplates(&in, map[string]string{"X": "y"}))
}

func TestExpandTemplates_MissingVariable(t *testing.T) {
	type S struct {
		Names []string `template:""`
	}
	in := S{Names: []string{"ok", "${MISSING}"}}
	err := ExpandTemplates(&in, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Names[1]")
	assert.Contains(t, err.Error(), "MISSING")
}

func TestExpand(t *testing.T) {
	variables := map[string]string{
		"JOB_NAME":         "people",
		"JOB_DATE_ISO8601": "20260124T103000Z",
		"SUFFIX":           "eu",
	}

	tests := []struct {
		value   string
		want    string
		wantErr []string
	}{
		{value: "output", want: "output"},
		{value: "${JOB_NAME}-${JOB_DATE_ISO8601}", want: "people-20260124T103000Z"},
		{value: "export_$SUFFIX", want: "export_eu"},
		{value: "${HOME}/output", wantErr: []string{`environment variable "HOME" is not in the allowed list`}},
		{value: "${USER}-${HOSTNAME}", wantErr: []string{`"USER"`, `"HOSTNAME"`}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := Expand(tt.value, variables)
			for _, msg := range tt.wantErr {
				require.ErrorContains(t, err, msg)
			}
			if len(tt.wantErr) > 0 {
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
