package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

// SetupConfig writes the starter configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config written", "path", path)
	return nil
}

// SetupDatabase creates the run ledger and applies migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}
	r.logger.Info("run ledger ready", "path", config.Database.Path)
	return nil
}

// RunsList prints recent pipeline runs from the ledger.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	ledger, closeLedger := r.ledgerFor(config)
	defer closeLedger()
	if ledger == nil {
		return fmt.Errorf("%w: run ledger unavailable", shared.ErrInvalidConfig)
	}

	recent, err := ledger.Recent(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	return r.writeJSON(recent)
}
