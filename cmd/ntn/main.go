// Package main is the entry point for the ntn CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aidanlsb/ntn/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
