package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

// Exit codes. Quota exhaustion is a clean stop: all state is checkpointed
// and the next scheduled run resumes, so schedulers should not alert on it
// the way they do on a real failure.
const (
	exitOK    = 0
	exitError = 1
	exitQuota = 2
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "playlistarr",
		Usage:    "Keep a YouTube playlist stocked with your artists' official videos",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrQuotaExhausted) {
			logger.Warn("stopped on quota, state checkpointed for the next run", "error", err)
			os.Exit(exitQuota)
		}
		logger.Error("application error", "error", err)
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}
