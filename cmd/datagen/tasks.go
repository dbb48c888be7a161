package main

import (
	"context"
	"fmt"

	v1 "github.com/ivanov-dv/data-generator/apis/v1"
	"github.com/ivanov-dv/data-generator/internal/runner"
	"github.com/urfave/cli/v3"
)

func outputFlags(defaultArchive string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "archive",
			Aliases: []string{"a"},
			Value:   defaultArchive,
			Usage:   "Archive format (none, zip, tar)",
		},
		&cli.StringFlag{
			Name:  "compression",
			Usage: "Archive compression (deflate or none for zip; zstd, gzip or none for tar)",
		},
		&cli.IntFlag{
			Name:  "max-volume-size",
			Usage: "Split the archive into volumes of at most this many MB, then fuse them (tar only)",
		},
		&cli.StringFlag{
			Name:    "filename",
			Aliases: []string{"o"},
			Usage:   "Output filename without extension",
		},
	}
}

func outputSpec(command *cli.Command) v1.OutputSpec {
	return v1.OutputSpec{
		Archive:         command.String("archive"),
		Compression:     command.String("compression"),
		MaxVolumeSizeMB: command.Int("max-volume-size"),
		Filename:        command.String("filename"),
	}
}

var generateCommand = &cli.Command{
	Name:  "generate",
	Usage: "Generate random user records into a file or archive",
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:     "records",
			Aliases:  []string{"n"},
			Required: true,
			Usage:    fmt.Sprintf("Number of records to generate (1-%d)", v1.MaxRecords),
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "csv",
			Usage:   "File format (xlsx, csv, txt)",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for reproducible records",
		},
		&cli.BoolFlag{
			Name:  "header",
			Usage: "Write the column names as the first row",
		},
	}, outputFlags("")...),
	Before: prepareWorkspace,
	Action: func(ctx context.Context, command *cli.Command) error {
		job := v1.Job{
			Metadata: v1.Metadata{Name: "generate"},
			Spec: v1.JobSpec{
				Generate: &v1.GenerateSpec{
					Records: command.Int("records"),
					Format:  command.String("format"),
					Seed:    command.Uint64("seed"),
					Header:  command.Bool("header"),
				},
				Output: outputSpec(command),
			},
		}
		if err := runner.ValidateJob(job); err != nil {
			return formatValidationError(err)
		}
		return runJob(ctx, job)
	},
}

var packCommand = &cli.Command{
	Name:  "pack",
	Usage: "Pack files of the input directory into an archive",
	Flags: append([]cli.Flag{
		&cli.StringSliceFlag{
			Name:  "file",
			Usage: "File of the input directory to pack (can be repeated, default: every file)",
		},
		&cli.BoolFlag{
			Name:  "delete-after",
			Usage: "Delete the packed files once the archive is written",
		},
	}, outputFlags("")...),
	Before: prepareWorkspace,
	Action: func(ctx context.Context, command *cli.Command) error {
		job := v1.Job{
			Metadata: v1.Metadata{Name: "pack"},
			Spec: v1.JobSpec{
				Pack: &v1.PackSpec{
					Files:       command.StringSlice("file"),
					DeleteAfter: command.Bool("delete-after"),
				},
				Output: outputSpec(command),
			},
		}
		if err := runner.ValidateJob(job); err != nil {
			return formatValidationError(err)
		}
		return runJob(ctx, job)
	},
}
