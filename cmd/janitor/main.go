// Package main is the entry point for the janitor CLI.
package main

import (
	"os"

	"github.com/mrz1836/janitor/internal/cli"
)

// Populated by -ldflags at release time.
//
//nolint:gochecknoglobals // linker-stamped build metadata
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
