package runs

import (
	"context"
	"testing"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepository(db)
}

func TestRepository(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	t.Run("records a full run lifecycle", func(t *testing.T) {
		run, err := repo.Begin(ctx, "discover", "bands", "")
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if run.ID == "" || run.Disposition != DispositionRunning {
			t.Fatalf("unexpected run %+v", run)
		}

		counts := Counts{Accepted: 5, Review: 2, Rejected: 9}
		if err := repo.Finish(ctx, run, DispositionSuccess, counts, ""); err != nil {
			t.Fatalf("finish: %v", err)
		}

		recent, err := repo.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(recent) != 1 {
			t.Fatalf("expected 1 run, got %d", len(recent))
		}
		got := recent[0]
		if got.Disposition != DispositionSuccess || got.Accepted != 5 || got.Rejected != 9 {
			t.Errorf("run = %+v", got)
		}
		if got.FinishedAt.Before(got.StartedAt) {
			t.Error("finished before started")
		}
	})

	t.Run("quota stop is recorded distinctly", func(t *testing.T) {
		run, err := repo.Begin(ctx, "sync-apply", "bands", "PL1")
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Finish(ctx, run, DispositionQuotaStop, Counts{Applied: 3}, "all keys spent"); err != nil {
			t.Fatal(err)
		}

		last, err := repo.LastByStage(ctx, "sync-apply")
		if err != nil {
			t.Fatal(err)
		}
		if last == nil || last.Disposition != DispositionQuotaStop || last.Detail != "all keys spent" {
			t.Errorf("last run = %+v", last)
		}
		if last.PlaylistID != "PL1" {
			t.Errorf("playlist id = %q", last.PlaylistID)
		}
	})

	t.Run("unknown stage has no last run", func(t *testing.T) {
		last, err := repo.LastByStage(ctx, "never-ran")
		if err != nil {
			t.Fatal(err)
		}
		if last != nil {
			t.Errorf("expected nil, got %+v", last)
		}
	})
}
