// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

func rosterFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "roster",
		Aliases:  []string{"r"},
		Usage:    "Path to artist roster file",
		Required: true,
	}
}

func playlistFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "playlist",
		Aliases:  []string{"p"},
		Usage:    "Target playlist ID",
		Required: true,
	}
}

// discoverCommand walks the roster and classifies uploads.
func discoverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Resolve artists to channels and classify their uploads",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			rosterFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Discard cached discovery state and reclassify every artist",
			},
		},
		Action: r.Discover,
	}
}

// syncCommand plans and applies playlist additions.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile accepted videos onto the playlist",
		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Compute and persist the additions plan",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					rosterFlag(),
					playlistFlag(),
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Refresh the playlist snapshot even if fresh",
					},
					&cli.IntFlag{
						Name:  "max-adds",
						Usage: "Cap planned additions, overriding the configured limit",
					},
				},
				Action: r.SyncPlan,
			},
			{
				Name:  "apply",
				Usage: "Apply the persisted additions plan",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					rosterFlag(),
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Usage:   "Report what would change without mutating",
					},
				},
				Action: r.SyncApply,
			},
		},
	}
}

// invalidateCommand plans and applies removals of stale entries.
func invalidateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "invalidate",
		Usage: "Remove tracked entries that are no longer justified",
		Commands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Compute removals from the cached snapshot (no API calls)",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					rosterFlag(),
					playlistFlag(),
				},
				Action: r.InvalidatePlan,
			},
			{
				Name:  "apply",
				Usage: "Apply the persisted removals plan",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					rosterFlag(),
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Usage:   "Report what would change without mutating",
					},
				},
				Action: r.InvalidateApply,
			},
		},
	}
}

// cacheCommand inspects and refreshes the playlist snapshot.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Playlist snapshot operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show snapshot age and contents summary",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					rosterFlag(),
					playlistFlag(),
				},
				Action: r.CacheShow,
			},
			{
				Name:  "refresh",
				Usage: "Force a snapshot refresh from the API",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					rosterFlag(),
					playlistFlag(),
				},
				Action: r.CacheRefresh,
			},
		},
	}
}

// runsCommand inspects the run ledger.
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Run ledger operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent pipeline runs",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list",
						Value: 20,
					},
				},
				Action: r.RunsList,
			},
		},
	}
}

// setupCommand handles first-time setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the run ledger and run migrations",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
