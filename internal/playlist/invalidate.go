package playlist

import (
	"sort"

	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/shared"
	"github.com/zdhoward/Playlistarr/internal/store"
)

// BuildInvalidationPlan computes removals for entries this tool added that
// are no longer justified: their artist left the roster, the video fell out
// of the accepted set, or the title now matches a version exclusion. It
// works purely from the snapshot and the discovery documents, so it costs
// zero API calls. Entries not added by this tool are never touched.
func (p *Planner) BuildInvalidationPlan(playlistID string, artists []models.ArtistRecord, snapshot *models.PlaylistSnapshot) (*models.MutationPlan, error) {
	plan := &models.MutationPlan{
		ID:          shared.GenerateID(),
		PlaylistID:  playlistID,
		Kind:        "invalidation",
		GeneratedAt: p.now().UTC(),
	}

	rostered := map[string]bool{}
	for _, artist := range artists {
		rostered[store.Slug(artist.Name)] = true
	}

	// Accepted video IDs per artist slug, loaded lazily so a large roster
	// with few tracked entries stays cheap.
	acceptedByArtist := map[string]map[string]bool{}
	acceptedFor := func(artist string) (map[string]bool, error) {
		slug := store.Slug(artist)
		if ids, ok := acceptedByArtist[slug]; ok {
			return ids, nil
		}
		var doc models.ArtistDoc
		if _, err := store.ReadJSON(p.layout.AcceptedPath(artist), &doc); err != nil {
			return nil, err
		}
		ids := map[string]bool{}
		for _, entry := range doc.Entries {
			ids[entry.VideoID] = true
		}
		acceptedByArtist[slug] = ids
		return ids, nil
	}

	videoIDs := make([]string, 0, len(snapshot.Items))
	for videoID := range snapshot.Items {
		videoIDs = append(videoIDs, videoID)
	}
	sort.Strings(videoIDs)

	for _, videoID := range videoIDs {
		item := snapshot.Items[videoID]
		if !item.AddedByUs {
			continue
		}

		reason := ""
		switch {
		case item.Artist == "" || !rostered[store.Slug(item.Artist)]:
			reason = models.ReasonArtistRemoved
		default:
			if excluded, _ := p.rules.IsExcludedVersion(item.Title); excluded {
				reason = models.ReasonReclassified
				break
			}
			accepted, err := acceptedFor(item.Artist)
			if err != nil {
				return nil, err
			}
			if !accepted[videoID] {
				reason = models.ReasonNoLongerAccepted
			}
		}
		if reason == "" {
			continue
		}

		plan.Actions = append(plan.Actions, models.PlanAction{
			Action:         models.ActionRemove,
			VideoID:        videoID,
			PlaylistItemID: item.PlaylistItemID,
			Artist:         item.Artist,
			Title:          item.Title,
			SongKey:        item.SongKey,
			Reason:         reason,
			Status:         models.StatusPending,
		})
	}
	return plan, nil
}
