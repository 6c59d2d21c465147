package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/zdhoward/Playlistarr/internal/playlist"
	"github.com/zdhoward/Playlistarr/internal/shared"
)

// InvalidatePlan computes removals purely from the cached snapshot. It
// refuses to run without one rather than silently planning nothing.
func (r *Runner) InvalidatePlan(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	artists, rosterPath, err := r.rosterFor(cmd, config)
	if err != nil {
		return err
	}

	layout := r.layoutFor(config, rosterPath)
	playlistID := cmd.String("playlist")

	// No API surface at all: invalidation planning must cost zero quota.
	cache := playlist.NewCache(nil, layout, config.Cache.CacheTTL(), r.logger)
	snapshot, found, err := cache.Peek(playlistID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: run 'cache refresh' or 'sync plan' first", shared.ErrMissingSnapshot)
	}

	planner := playlist.NewPlanner(r.rulesFor(config), layout, 0, r.logger)
	plan, err := planner.BuildInvalidationPlan(playlistID, artists, snapshot)
	if err != nil {
		return err
	}
	if err := planner.SavePlan(plan); err != nil {
		return err
	}

	r.logger.Info("invalidation plan written", "plan", plan.ID, "actions", len(plan.Actions))
	return r.writeJSON(planSummary{
		PlanID:     plan.ID,
		Kind:       plan.Kind,
		PlaylistID: plan.PlaylistID,
		Actions:    len(plan.Actions),
	})
}

// InvalidateApply executes the persisted removals plan.
func (r *Runner) InvalidateApply(ctx context.Context, cmd *cli.Command) error {
	return r.applyPlan(ctx, cmd, "invalidation")
}
