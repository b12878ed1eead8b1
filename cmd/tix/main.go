// Package main provides tix, a task index over a markdown note vault.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/notevault/task-index/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args, os.Environ())

	stop()
	os.Exit(exitCode)
}
