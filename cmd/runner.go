package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/zdhoward/Playlistarr/internal/classify"
	"github.com/zdhoward/Playlistarr/internal/discover"
	"github.com/zdhoward/Playlistarr/internal/gateway"
	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/playlist"
	"github.com/zdhoward/Playlistarr/internal/runs"
	"github.com/zdhoward/Playlistarr/internal/shared"
	"github.com/zdhoward/Playlistarr/internal/store"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action. The api and mutator fields are normally nil and
// built per command from configuration; tests inject stubs.
type Runner struct {
	logger  *log.Logger
	output  io.Writer
	api     discover.API
	mutator playlist.Mutator
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger  *log.Logger
	Output  io.Writer
	API     discover.API
	Mutator playlist.Mutator
}

// NewRunner creates a new Runner with the provided options.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		logger:  opts.Logger,
		output:  opts.Output,
		api:     opts.API,
		mutator: opts.Mutator,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		discoverCommand, syncCommand, invalidateCommand, cacheCommand, runsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadConfig reads the config file named by the command's --config flag.
// A missing file falls back to the embedded defaults so read-only commands
// still work out of the box.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	path := cmd.String("config")

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return shared.DefaultConfig(), nil
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (r *Runner) layoutFor(config *shared.Config, rosterPath string) store.Layout {
	root := config.Discovery.OutDir
	if root == "" {
		root = "out"
	}
	layout := store.NewLayout(root, rosterPath)
	if config.Cache.Dir != "" {
		layout.CacheDir = config.Cache.Dir
	}
	return layout
}

func (r *Runner) rosterFor(cmd *cli.Command, config *shared.Config) ([]models.ArtistRecord, string, error) {
	rosterPath := cmd.String("roster")
	if rosterPath == "" {
		return nil, "", fmt.Errorf("%w: --roster", shared.ErrMissingArgument)
	}
	artists, err := store.LoadRoster(rosterPath, config.Overrides)
	if err != nil {
		return nil, "", err
	}
	return artists, rosterPath, nil
}

// readAPI returns the injected API stub or builds a key-ring gateway.
func (r *Runner) readAPI(config *shared.Config) (discover.API, error) {
	if r.api != nil {
		return r.api, nil
	}
	return gateway.New(config.YouTube, r.logger)
}

// writeMutator returns the injected mutator stub or builds the OAuth one.
func (r *Runner) writeMutator(ctx context.Context, config *shared.Config) (playlist.Mutator, error) {
	if r.mutator != nil {
		return r.mutator, nil
	}
	return gateway.NewMutator(ctx, config.YouTube, config.OAuth, r.logger)
}

// ledgerFor opens the run ledger when one is configured. The ledger is
// advisory: commands run fine without it.
func (r *Runner) ledgerFor(config *shared.Config) (*runs.Repository, func()) {
	if config.Database.Path == "" {
		return nil, func() {}
	}
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		r.logger.Warn("run ledger unavailable", "path", config.Database.Path, "error", err)
		return nil, func() {}
	}
	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run ledger migration failed", "error", err)
		db.Close()
		return nil, func() {}
	}
	return runs.NewRepository(db), func() { db.Close() }
}

// beginRun opens a ledger entry for a stage invocation and returns the
// closer that records its outcome. Both halves tolerate a missing ledger.
func (r *Runner) beginRun(ctx context.Context, ledger *runs.Repository, stage, roster, playlistID string) func(counts runs.Counts, stageErr error) {
	if ledger == nil {
		return func(runs.Counts, error) {}
	}

	run, err := ledger.Begin(ctx, stage, roster, playlistID)
	if err != nil {
		r.logger.Warn("failed to record run", "error", err)
		return func(runs.Counts, error) {}
	}

	return func(counts runs.Counts, stageErr error) {
		disposition := runs.DispositionSuccess
		detail := ""
		switch {
		case errors.Is(stageErr, shared.ErrQuotaExhausted):
			disposition = runs.DispositionQuotaStop
			detail = stageErr.Error()
		case stageErr != nil:
			disposition = runs.DispositionFailed
			detail = stageErr.Error()
		}
		if err := ledger.Finish(ctx, run, disposition, counts, detail); err != nil {
			r.logger.Warn("failed to finalize run record", "error", err)
		}
	}
}

func (r *Runner) rulesFor(config *shared.Config) classify.RuleSet {
	return classify.Rules(config.Rules)
}
