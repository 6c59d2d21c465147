package playlist

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zdhoward/Playlistarr/internal/classify"
	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/shared"
	"github.com/zdhoward/Playlistarr/internal/store"
)

// Planner turns per-artist discovery documents plus a playlist snapshot
// into persisted mutation plans. Planning never mutates anything.
type Planner struct {
	rules   classify.RuleSet
	layout  store.Layout
	logger  *log.Logger
	maxAdds int
	now     func() time.Time
}

// NewPlanner builds a planner. maxAdds of zero or less means unlimited.
func NewPlanner(rules classify.RuleSet, layout store.Layout, maxAdds int, logger *log.Logger) *Planner {
	return &Planner{rules: rules, layout: layout, logger: logger, maxAdds: maxAdds, now: time.Now}
}

// definitionRank orders video quality for duplicate resolution.
func definitionRank(definition string) int {
	switch definition {
	case "hd":
		return 2
	case "sd":
		return 1
	}
	return 0
}

// sourceRank prefers channel uploads over search-fallback hits.
func sourceRank(source string) int {
	switch source {
	case "original":
		return 2
	case "fallback":
		return 1
	}
	return 0
}

// better reports whether a beats b for the same song: higher definition,
// then more trusted source, then higher score. Ties keep the incumbent so
// discovery order decides.
func better(a, b models.VideoEntry) bool {
	if d := definitionRank(a.Definition) - definitionRank(b.Definition); d != 0 {
		return d > 0
	}
	if d := sourceRank(a.Source) - sourceRank(b.Source); d != 0 {
		return d > 0
	}
	return a.Score > b.Score
}

// BuildSyncPlan computes the additions needed to bring the playlist up to
// the accepted set. Entries already present, region blocked, unavailable,
// excluded versions, and song-key duplicates are all filtered here, so the
// applier never has to decide anything.
func (p *Planner) BuildSyncPlan(playlistID string, artists []models.ArtistRecord, snapshot *models.PlaylistSnapshot) (*models.MutationPlan, error) {
	plan := &models.MutationPlan{
		ID:          shared.GenerateID(),
		PlaylistID:  playlistID,
		Kind:        "sync",
		GeneratedAt: p.now().UTC(),
	}

	onPlaylist := map[string]bool{}
	for videoID, item := range snapshot.Items {
		onPlaylist[videoID] = true
		if item.SongKey != "" {
			onPlaylist[item.SongKey] = true
		}
	}

	type pick struct {
		entry  models.VideoEntry
		artist string
		order  int
	}
	bestBySong := map[string]pick{}
	order := 0

	for _, artist := range artists {
		var doc models.ArtistDoc
		if _, err := store.ReadJSON(p.layout.AcceptedPath(artist.Name), &doc); err != nil {
			return nil, err
		}

		for _, entry := range doc.Entries {
			if entry.Unavailable || entry.RegionBlocked {
				p.logger.Debug("skipping unplayable entry", "artist", artist.Name, "video", entry.VideoID)
				continue
			}
			if excluded, pattern := p.rules.IsExcludedVersion(entry.Title); excluded {
				p.logger.Debug("skipping excluded version",
					"artist", artist.Name, "title", entry.Title, "pattern", pattern)
				continue
			}

			key := entry.SongKey
			if key == "" {
				key = entry.VideoID
			}
			if onPlaylist[entry.VideoID] || onPlaylist[key] {
				continue
			}

			current, exists := bestBySong[key]
			if !exists {
				bestBySong[key] = pick{entry: entry, artist: artist.Name, order: order}
				order++
				continue
			}
			if better(entry, current.entry) {
				// Keep the original position so upgrades do not reshuffle.
				bestBySong[key] = pick{entry: entry, artist: current.artist, order: current.order}
			}
		}
	}

	picks := make([]pick, 0, len(bestBySong))
	for _, pk := range bestBySong {
		picks = append(picks, pk)
	}
	// Roster order, then discovery order: the plan is identical across
	// rebuilds from the same inputs.
	sort.Slice(picks, func(i, j int) bool { return picks[i].order < picks[j].order })

	if p.maxAdds > 0 && len(picks) > p.maxAdds {
		p.logger.Warn("truncating sync plan", "planned", len(picks), "max", p.maxAdds)
		picks = picks[:p.maxAdds]
	}

	for _, pk := range picks {
		plan.Actions = append(plan.Actions, models.PlanAction{
			Action:     models.ActionAdd,
			VideoID:    pk.entry.VideoID,
			Artist:     pk.artist,
			Title:      pk.entry.Title,
			SongKey:    pk.entry.SongKey,
			Definition: pk.entry.Definition,
			Source:     pk.entry.Source,
			Status:     models.StatusPending,
		})
	}
	return plan, nil
}

// SavePlan persists a plan and resets any stale progress checkpoint from a
// previous plan of the same kind.
func (p *Planner) SavePlan(plan *models.MutationPlan) error {
	if err := store.WriteJSON(p.layout.PlanPath(plan.Kind), plan); err != nil {
		return err
	}
	progress := models.MutationProgress{PlanID: plan.ID, NextIndex: 0, UpdatedAt: p.now().UTC()}
	return store.WriteJSON(p.layout.ProgressPath(plan.Kind), progress)
}
