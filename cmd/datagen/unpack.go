package main

import (
	"context"
	"fmt"

	"github.com/ivanov-dv/data-generator/internal/engine"
	"github.com/ivanov-dv/data-generator/internal/engine/archivers"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var unpackCommand = &cli.Command{
	Name:  "unpack",
	Usage: "Reassemble and extract an archive fused from volumes",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "archive",
			UsageText: "The fused tar archive",
		},
		&cli.StringArg{
			Name:      "dest",
			UsageText: "The directory to extract into",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		archive, dest := command.StringArg("archive"), command.StringArg("dest")
		if archive == "" || dest == "" {
			return fmt.Errorf("usage: unpack <archive> <dest>")
		}

		compression := archivers.CompressionFromFilename(archive)
		backend, err := archivers.NewTarBackend(logger.Named("unpack"), engine.BackendConfig{
			Fs:          afero.NewOsFs(),
			Compression: string(compression),
		})
		if err != nil {
			return err
		}

		logger.Debug("reassembling archive",
			zap.String("archive", archive),
			zap.String("compression", string(compression)),
		)

		files, err := backend.Reassemble(ctx, archive, dest)
		if err != nil {
			return fmt.Errorf("failed to unpack %s: %w", archive, err)
		}

		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	},
}
