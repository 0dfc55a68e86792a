package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ncmkit/vipsweep/internal/shared"
	"github.com/urfave/cli/v3"
)

// Exit codes: 0 success or nothing-to-do, 1 failure, 130 user interrupt.
const exitInterrupted = 130

func main() {
	// Optional .env overlay for credentials (VIPSWEEP_PHONE, VIPSWEEP_CACHE_FILE).
	godotenv.Load()

	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "vipsweep",
		Usage:    "Move VIP-only tracks out of liked songs into a dedicated playlist",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.Run(ctx, os.Args)
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		logger.Warn("interrupted")
		os.Exit(exitInterrupted)
	}

	logger.Error("run failed", "err", err)
	os.Exit(1)
}
