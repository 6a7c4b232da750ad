package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chatterwise/chatcheck/internal/cli"
)

func main() {
	// Ctrl-C cancels an in-flight run between cases.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
