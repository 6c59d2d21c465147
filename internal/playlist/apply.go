package playlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/shared"
	"github.com/zdhoward/Playlistarr/internal/store"
)

// Mutator is the write surface the applier needs.
type Mutator interface {
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error)
	DeletePlaylistItem(ctx context.Context, playlistItemID string) error
}

// Applier executes a persisted mutation plan action by action. After every
// mutation the plan, the progress checkpoint and the snapshot are written
// back, so a crash or quota stop resumes at the exact next action.
type Applier struct {
	mutator Mutator
	layout  store.Layout
	logger  *log.Logger
	now     func() time.Time
}

// NewApplier builds an applier over the given mutator.
func NewApplier(mutator Mutator, layout store.Layout, logger *log.Logger) *Applier {
	return &Applier{mutator: mutator, layout: layout, logger: logger, now: time.Now}
}

// Apply runs the persisted plan of the given kind. In dry-run mode it
// reports what would happen and writes nothing. A quota stop returns
// shared.ErrQuotaExhausted alongside a report with Interrupted set.
func (a *Applier) Apply(ctx context.Context, kind string, dryRun bool) (*models.ApplyReport, error) {
	plan := &models.MutationPlan{}
	found, err := store.ReadJSON(a.layout.PlanPath(kind), plan)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no %s plan, build one first", shared.ErrMissingPlan, kind)
	}

	progress := &models.MutationProgress{PlanID: plan.ID}
	if _, err := store.ReadJSON(a.layout.ProgressPath(kind), progress); err != nil {
		return nil, err
	}
	if progress.PlanID != plan.ID {
		// Checkpoint belongs to an older plan of the same kind.
		progress = &models.MutationProgress{PlanID: plan.ID}
	}

	snapshot := &models.PlaylistSnapshot{}
	if found, err := store.ReadJSON(a.layout.SnapshotPath(plan.PlaylistID), snapshot); err != nil {
		return nil, err
	} else if !found {
		snapshot = models.NewPlaylistSnapshot(plan.PlaylistID)
	}
	if snapshot.Items == nil {
		snapshot.Items = map[string]models.SnapshotItem{}
	}

	report := &models.ApplyReport{PlanID: plan.ID, DryRun: dryRun}
	a.logger.Info("applying plan", "kind", kind, "plan", plan.ID,
		"pending", plan.Pending(), "dry_run", dryRun)

	for i := progress.NextIndex; i < len(plan.Actions); i++ {
		action := &plan.Actions[i]
		if action.Status != models.StatusPending {
			continue
		}

		if dryRun {
			a.logger.Info("dry run", "action", action.Action, "video", action.VideoID,
				"title", action.Title, "reason", action.Reason)
			report.Applied++
			continue
		}

		err := a.applyAction(ctx, plan, action, snapshot)
		switch {
		case err == nil:
			report.Applied++
		case errors.Is(err, shared.ErrQuotaExhausted):
			// Do not advance past the blocked action.
			report.Interrupted = true
			report.NextIndex = i
			progress.NextIndex = i
			if persistErr := a.checkpoint(plan, progress, snapshot, kind); persistErr != nil {
				return report, errors.Join(err, persistErr)
			}
			a.logger.Warn("mutation budget spent, plan suspended",
				"kind", kind, "applied", report.Applied, "next_index", i)
			return report, err
		case errors.Is(err, shared.ErrNotFound):
			action.Status = models.StatusSkipped
			action.Error = err.Error()
			report.Skipped++
		default:
			action.Status = models.StatusError
			action.Error = err.Error()
			report.Failed++
			a.logger.Error("action failed", "action", action.Action, "video", action.VideoID, "error", err)
		}

		progress.NextIndex = i + 1
		if err := a.checkpoint(plan, progress, snapshot, kind); err != nil {
			return report, err
		}
	}

	if !dryRun {
		progress.NextIndex = len(plan.Actions)
		if err := a.checkpoint(plan, progress, snapshot, kind); err != nil {
			return report, err
		}
	}
	report.NextIndex = progress.NextIndex
	return report, nil
}

func (a *Applier) applyAction(ctx context.Context, plan *models.MutationPlan, action *models.PlanAction, snapshot *models.PlaylistSnapshot) error {
	switch action.Action {
	case models.ActionAdd:
		itemID, err := a.mutator.InsertPlaylistItem(ctx, plan.PlaylistID, action.VideoID)
		if err != nil {
			return err
		}
		action.Status = models.StatusDone
		action.AppliedAt = a.now().UTC().Format(time.RFC3339)
		snapshot.Items[action.VideoID] = models.SnapshotItem{
			PlaylistItemID: itemID,
			Title:          action.Title,
			Artist:         action.Artist,
			SongKey:        action.SongKey,
			AddedByUs:      true,
		}
		a.logger.Info("added", "video", action.VideoID, "title", action.Title)
		return nil

	case models.ActionRemove:
		err := a.mutator.DeletePlaylistItem(ctx, action.PlaylistItemID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if errors.Is(err, shared.ErrNotFound) {
			// Already gone upstream; treat the removal as settled.
			delete(snapshot.Items, action.VideoID)
			return err
		}
		action.Status = models.StatusDone
		action.AppliedAt = a.now().UTC().Format(time.RFC3339)
		delete(snapshot.Items, action.VideoID)
		a.logger.Info("removed", "video", action.VideoID, "title", action.Title, "reason", action.Reason)
		return nil

	default:
		return fmt.Errorf("%w: unknown action %q", shared.ErrValidation, action.Action)
	}
}

// checkpoint writes plan, progress and snapshot. Plan first: action status
// is the source of truth, the progress index only speeds up the scan.
func (a *Applier) checkpoint(plan *models.MutationPlan, progress *models.MutationProgress, snapshot *models.PlaylistSnapshot, kind string) error {
	if err := store.WriteJSON(a.layout.PlanPath(kind), plan); err != nil {
		return err
	}
	progress.UpdatedAt = a.now().UTC()
	if err := store.WriteJSON(a.layout.ProgressPath(kind), progress); err != nil {
		return err
	}
	return store.WriteJSON(a.layout.SnapshotPath(plan.PlaylistID), snapshot)
}
