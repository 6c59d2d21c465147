package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zdhoward/Playlistarr/internal/discover"
	"github.com/zdhoward/Playlistarr/internal/gateway"
	"github.com/zdhoward/Playlistarr/internal/runs"
)

// Discover runs the discovery stage over the roster. A quota stop is
// reported, recorded, and propagated so main can map it to the resumable
// exit code.
func (r *Runner) Discover(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	artists, rosterPath, err := r.rosterFor(cmd, config)
	if err != nil {
		return err
	}
	api, err := r.readAPI(config)
	if err != nil {
		return err
	}

	layout := r.layoutFor(config, rosterPath)
	orchestrator := discover.New(api, r.rulesFor(config), layout, config.Discovery, r.logger)
	orchestrator.Force = cmd.Bool("force")

	ledger, closeLedger := r.ledgerFor(config)
	defer closeLedger()

	finishRun := r.beginRun(ctx, ledger, "discover", layout.Roster, "")

	r.logger.Info("starting discovery", "roster", layout.Roster, "artists", len(artists))
	report, runErr := orchestrator.Run(ctx, artists)

	finishRun(runs.Counts{Accepted: report.Accepted, Review: report.Review, Rejected: report.Rejected}, runErr)

	if gw, ok := api.(*gateway.Gateway); ok {
		r.logger.Info("api usage", "calls", gw.Calls, "keys_remaining", gw.KeysRemaining())
	}

	if err := r.writeJSON(report); err != nil {
		return err
	}
	return runErr
}
