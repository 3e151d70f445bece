// Package main provides the entry point for the icecat CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/icepolcka/icecat/cmd/icecat/cmd"
	"github.com/icepolcka/icecat/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		logging.Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
