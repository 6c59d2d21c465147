package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/zdhoward/Playlistarr/internal/playlist"
)

type cacheSummary struct {
	PlaylistID string `json:"playlist_id"`
	Exists     bool   `json:"exists"`
	Fresh      bool   `json:"fresh"`
	FetchedAt  string `json:"fetched_at,omitempty"`
	Age        string `json:"age,omitempty"`
	Items      int    `json:"items"`
	Tracked    int    `json:"tracked"` // entries this tool added
}

// CacheShow reports snapshot age and contents without touching the API.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	layout := r.layoutFor(config, cmd.String("roster"))
	playlistID := cmd.String("playlist")

	cache := playlist.NewCache(nil, layout, config.Cache.CacheTTL(), r.logger)
	snapshot, found, err := cache.Peek(playlistID)
	if err != nil {
		return err
	}

	summary := cacheSummary{PlaylistID: playlistID, Exists: found}
	if found {
		tracked := 0
		for _, item := range snapshot.Items {
			if item.AddedByUs {
				tracked++
			}
		}
		summary.Fresh = snapshot.Fresh(playlistID, config.Cache.CacheTTL(), time.Now())
		summary.FetchedAt = snapshot.FetchedAt.Format(time.RFC3339)
		summary.Age = time.Since(snapshot.FetchedAt).Round(time.Second).String()
		summary.Items = len(snapshot.Items)
		summary.Tracked = tracked
	}
	return r.writeJSON(summary)
}

// CacheRefresh forces a full snapshot refresh from the API.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	api, err := r.readAPI(config)
	if err != nil {
		return err
	}
	layout := r.layoutFor(config, cmd.String("roster"))
	playlistID := cmd.String("playlist")

	cache := playlist.NewCache(api, layout, config.Cache.CacheTTL(), r.logger)
	snapshot, err := cache.Load(ctx, playlistID, true)
	if err != nil {
		return err
	}
	return r.writeJSON(cacheSummary{
		PlaylistID: playlistID,
		Exists:     true,
		Fresh:      true,
		FetchedAt:  snapshot.FetchedAt.Format(time.RFC3339),
		Items:      len(snapshot.Items),
	})
}
