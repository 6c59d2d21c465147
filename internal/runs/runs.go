// package runs keeps a sqlite ledger of pipeline invocations, so operators
// can see when each stage last ran, how it ended, and what it changed.
package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

// Dispositions a run can end with. QuotaStop is not a failure: the stage
// checkpointed cleanly and will resume on the next invocation.
const (
	DispositionRunning   = "running"
	DispositionSuccess   = "success"
	DispositionQuotaStop = "quota-stop"
	DispositionFailed    = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID          string
	Stage       string
	Roster      string
	PlaylistID  string
	StartedAt   time.Time
	FinishedAt  time.Time
	Disposition string
	Accepted    int
	Review      int
	Rejected    int
	Applied     int
	Failed      int
	Detail      string
}

// Counts carries the per-run totals recorded at completion.
type Counts struct {
	Accepted int
	Review   int
	Rejected int
	Applied  int
	Failed   int
}

// Repository persists runs in the ledger database.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository over an already-migrated database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Begin records the start of a stage invocation and returns its run.
func (r *Repository) Begin(ctx context.Context, stage, roster, playlistID string) (*Run, error) {
	run := &Run{
		ID:          shared.GenerateID(),
		Stage:       stage,
		Roster:      roster,
		PlaylistID:  playlistID,
		StartedAt:   time.Now().UTC(),
		Disposition: DispositionRunning,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, stage, roster, playlist_id, started_at, disposition)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Stage, run.Roster, run.PlaylistID, run.StartedAt, run.Disposition,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}
	return run, nil
}

// Finish closes a run with its disposition, totals, and optional detail.
func (r *Repository) Finish(ctx context.Context, run *Run, disposition string, counts Counts, detail string) error {
	run.FinishedAt = time.Now().UTC()
	run.Disposition = disposition
	run.Accepted = counts.Accepted
	run.Review = counts.Review
	run.Rejected = counts.Rejected
	run.Applied = counts.Applied
	run.Failed = counts.Failed
	run.Detail = detail

	_, err := r.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, disposition = ?, accepted = ?, review = ?, rejected = ?,
		    applied = ?, failed = ?, detail = ?
		WHERE id = ?`,
		run.FinishedAt, run.Disposition, run.Accepted, run.Review, run.Rejected,
		run.Applied, run.Failed, run.Detail, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, stage, roster, COALESCE(playlist_id, ''), started_at,
		       COALESCE(finished_at, started_at), disposition,
		       accepted, review, rejected, applied, failed, COALESCE(detail, '')
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.Stage, &run.Roster, &run.PlaylistID, &run.StartedAt,
			&run.FinishedAt, &run.Disposition,
			&run.Accepted, &run.Review, &run.Rejected, &run.Applied, &run.Failed, &run.Detail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastByStage returns the most recent run of one stage, or nil when the
// stage has never run.
func (r *Repository) LastByStage(ctx context.Context, stage string) (*Run, error) {
	var run Run
	err := r.db.QueryRowContext(ctx, `
		SELECT id, stage, roster, COALESCE(playlist_id, ''), started_at,
		       COALESCE(finished_at, started_at), disposition,
		       accepted, review, rejected, applied, failed, COALESCE(detail, '')
		FROM runs
		WHERE stage = ?
		ORDER BY started_at DESC
		LIMIT 1`, stage,
	).Scan(
		&run.ID, &run.Stage, &run.Roster, &run.PlaylistID, &run.StartedAt,
		&run.FinishedAt, &run.Disposition,
		&run.Accepted, &run.Review, &run.Rejected, &run.Applied, &run.Failed, &run.Detail,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last %s run: %w", stage, err)
	}
	return &run, nil
}
