package main

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

type buildInfo struct {
	Version   string
	GoVersion string
	Commit    string
	BuildTime string
	Modified  bool
}

// build is populated from debug.ReadBuildInfo at startup.
var build = readBuildInfo()

func readBuildInfo() buildInfo {
	b := buildInfo{Version: "unknown", GoVersion: "unknown"}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}

	b.Version = info.Main.Version
	b.GoVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.Commit = setting.Value
		case "vcs.time":
			b.BuildTime = setting.Value
		case "vcs.modified":
			b.Modified = setting.Value == "true"
		}
	}
	return b
}

func (b buildInfo) print(w io.Writer) {
	fmt.Fprintf(w, "datagen %s (%s)\n", b.Version, b.GoVersion)
	if b.Commit != "" {
		dirty := ""
		if b.Modified {
			dirty = " (dirty)"
		}
		fmt.Fprintf(w, "commit: %s%s\n", b.Commit, dirty)
	}
	if b.BuildTime != "" {
		fmt.Fprintf(w, "built: %s\n", b.BuildTime)
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information",
	Action: func(ctx context.Context, command *cli.Command) error {
		build.print(command.Root().Writer)
		return nil
	},
}
