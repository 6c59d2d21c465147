package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zdhoward/Playlistarr/internal/playlist"
	"github.com/zdhoward/Playlistarr/internal/runs"
)

// planSummary is the output document of the plan commands.
type planSummary struct {
	PlanID     string `json:"plan_id"`
	Kind       string `json:"kind"`
	PlaylistID string `json:"playlist_id"`
	Actions    int    `json:"actions"`
}

// SyncPlan refreshes the snapshot if needed and persists the additions plan.
func (r *Runner) SyncPlan(ctx context.Context, cmd *cli.Command) error {
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
	playlistID := cmd.String("playlist")

	cache := playlist.NewCache(api, layout, config.Cache.CacheTTL(), r.logger)
	snapshot, err := cache.Load(ctx, playlistID, cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	maxAdds := config.Discovery.MaxAdditions
	if n := int(cmd.Int("max-adds")); n > 0 {
		maxAdds = n
	}

	planner := playlist.NewPlanner(r.rulesFor(config), layout, maxAdds, r.logger)
	plan, err := planner.BuildSyncPlan(playlistID, artists, snapshot)
	if err != nil {
		return err
	}
	if err := planner.SavePlan(plan); err != nil {
		return err
	}

	r.logger.Info("sync plan written", "plan", plan.ID, "actions", len(plan.Actions))
	return r.writeJSON(planSummary{
		PlanID:     plan.ID,
		Kind:       plan.Kind,
		PlaylistID: plan.PlaylistID,
		Actions:    len(plan.Actions),
	})
}

// SyncApply executes the persisted additions plan.
func (r *Runner) SyncApply(ctx context.Context, cmd *cli.Command) error {
	return r.applyPlan(ctx, cmd, "sync")
}

// applyPlan is the shared applier action behind sync apply and
// invalidate apply.
func (r *Runner) applyPlan(ctx context.Context, cmd *cli.Command, kind string) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	rosterPath := cmd.String("roster")
	layout := r.layoutFor(config, rosterPath)

	mutator, err := r.writeMutator(ctx, config)
	if err != nil {
		return err
	}

	ledger, closeLedger := r.ledgerFor(config)
	defer closeLedger()

	dryRun := cmd.Bool("dry-run")
	var finishRun func(runs.Counts, error)
	if !dryRun {
		finishRun = r.beginRun(ctx, ledger, kind+"-apply", layout.Roster, "")
	}

	applier := playlist.NewApplier(mutator, layout, r.logger)
	report, applyErr := applier.Apply(ctx, kind, dryRun)

	if finishRun != nil {
		counts := runs.Counts{}
		if report != nil {
			counts = runs.Counts{Applied: report.Applied, Failed: report.Failed}
		}
		finishRun(counts, applyErr)
	}
	if report != nil {
		if err := r.writeJSON(report); err != nil {
			return err
		}
	}
	return applyErr
}
