package models

import "time"

// SnapshotVersion guards against loading caches written by an older layout.
const SnapshotVersion = 1

// SnapshotItem is one playlist entry tracked in the cached snapshot.
// SongKey and Artist are only known for items this tool inserted.
type SnapshotItem struct {
	PlaylistItemID string `json:"playlist_item_id"`
	Title          string `json:"title,omitempty"`
	Artist         string `json:"artist,omitempty"`
	SongKey        string `json:"song_key,omitempty"`
	AddedByUs      bool   `json:"added_by_us,omitempty"`
}

// PlaylistSnapshot is the time-bounded cache of live playlist contents.
// Between mutations it is the only authoritative view of the playlist.
type PlaylistSnapshot struct {
	Version    int                     `json:"version"`
	PlaylistID string                  `json:"playlist_id"`
	FetchedAt  time.Time               `json:"fetched_at"`
	Items      map[string]SnapshotItem `json:"items_by_video_id"` // keyed by video ID
}

// NewPlaylistSnapshot returns an empty snapshot for the given playlist.
func NewPlaylistSnapshot(playlistID string) *PlaylistSnapshot {
	return &PlaylistSnapshot{
		Version:    SnapshotVersion,
		PlaylistID: playlistID,
		Items:      map[string]SnapshotItem{},
	}
}

// Fresh reports whether the snapshot can still serve the given playlist
// without a refresh.
func (s *PlaylistSnapshot) Fresh(playlistID string, ttl time.Duration, now time.Time) bool {
	if s == nil || s.Version != SnapshotVersion || s.PlaylistID != playlistID {
		return false
	}
	return now.Sub(s.FetchedAt) <= ttl
}

// Action kinds and removal reasons recorded on plan actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"

	ReasonNoLongerAccepted = "no_longer_accepted"
	ReasonArtistRemoved    = "artist_removed"
	ReasonReclassified     = "reclassified"
)

// Action statuses tracked as a plan is applied.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// PlanAction is one ordered mutation within a persisted plan.
type PlanAction struct {
	Action         string `json:"action"`
	VideoID        string `json:"video_id"`
	PlaylistItemID string `json:"playlist_item_id,omitempty"` // removals only
	Artist         string `json:"artist,omitempty"`
	Title          string `json:"title,omitempty"`
	SongKey        string `json:"song_key,omitempty"`
	Definition     string `json:"definition,omitempty"`
	Source         string `json:"source,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	AppliedAt      string `json:"applied_at,omitempty"`
}

// MutationPlan is a persisted, side-effect-free sequence of playlist
// mutations, generated by the reconciler and consumed later by the applier.
type MutationPlan struct {
	ID          string       `json:"id"`
	PlaylistID  string       `json:"playlist_id"`
	Kind        string       `json:"kind"` // "sync" or "invalidation"
	GeneratedAt time.Time    `json:"generated_at"`
	Actions     []PlanAction `json:"actions"`
}

// Pending counts actions not yet resolved.
func (p *MutationPlan) Pending() int {
	n := 0
	for _, a := range p.Actions {
		if a.Status == StatusPending {
			n++
		}
	}
	return n
}

// MutationProgress is the durable checkpoint for plan application. It is
// persisted after every single mutation, so crash recovery resumes exactly
// after the last resolved action.
type MutationProgress struct {
	PlanID    string    `json:"plan_id"`
	NextIndex int       `json:"next_index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyReport summarizes one applier invocation.
type ApplyReport struct {
	PlanID      string `json:"plan_id"`
	Applied     int    `json:"applied"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	NextIndex   int    `json:"next_index"`
	Interrupted bool   `json:"interrupted"` // quota stop, resumable
	DryRun      bool   `json:"dry_run"`
}
