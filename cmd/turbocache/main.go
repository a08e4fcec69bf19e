// Package main provides the entry point for the turbocache server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrz1836/turbocache/internal/cli"
	"github.com/mrz1836/turbocache/internal/errors"
)

// Set via ldflags at build time.
var (
	version = "dev"     //nolint:gochecknoglobals // ldflags target
	commit  = "none"    //nolint:gochecknoglobals // ldflags target
	date    = "unknown" //nolint:gochecknoglobals // ldflags target
)

func main() {
	err := cli.Execute(context.Background(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()

	if err != nil {
		msg, action := errors.Actionable(err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if msg != err.Error() {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
		if action != "" {
			fmt.Fprintf(os.Stderr, "  Hint: %s\n", action)
		}
		os.Exit(cli.ExitCodeForError(err))
	}
}
