// Package main provides the entry point for the cadence CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrz1836/cadence/internal/cli"
)

// Build information set via ldflags.
//
//nolint:gochecknoglobals // Set at build time
var (
	version string
	commit  string
	date    string
)

func main() {
	// Ctrl+C or SIGTERM cancels the context; the scheduler honors it at
	// the next session boundary so in-flight work records cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}
