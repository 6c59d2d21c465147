package models

import "time"

// ChannelTrust classifies how much we trust a channel as an artist's
// canonical source.
type ChannelTrust string

const (
	TrustVevo           ChannelTrust = "vevo"
	TrustOfficialArtist ChannelTrust = "official-artist-channel"
	TrustUnknown        ChannelTrust = "unknown"
)

// ArtistRecord is one immutable roster entry: the artist name plus any
// per-artist overrides merged in from configuration.
type ArtistRecord struct {
	Name           string
	ChannelID      string // manual channel override, empty when unset
	MaxYear        int    // 0 means no year cutoff
	IgnoreKeywords []string
	AllowKeywords  []string
}

// ChannelResolution records the outcome of resolving an artist to a channel.
// Cached in DiscoveryState until a forced refresh.
type ChannelResolution struct {
	Artist            string       `json:"artist"`
	ChannelID         string       `json:"channel_id"`
	ChannelTitle      string       `json:"channel_title"`
	UploadsPlaylistID string       `json:"uploads_playlist_id,omitempty"`
	Trust             ChannelTrust `json:"trust"`
	MatchedVia        string       `json:"matched_via"`
}

// CandidateVideo is a video fetched from the provider, immutable once fetched.
type CandidateVideo struct {
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Duration      int       `json:"duration"` // seconds, 0 when unknown
	PublishedAt   time.Time `json:"published_at"`
	PublishedYear int       `json:"published_year"`
	ChannelID     string    `json:"channel_id"`
	ChannelTitle  string    `json:"channel_title"`
	Definition    string    `json:"definition,omitempty"` // "hd", "sd"
	RegionBlocked bool      `json:"region_blocked,omitempty"`
	Unavailable   bool      `json:"unavailable,omitempty"`
	Source        string    `json:"source"` // "original" or "fallback"
}

// Decision is the classification verdict for one candidate video.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionReview   Decision = "review"
	DecisionRejected Decision = "rejected"
)

// ClassificationResult is the output of the classification engine for one
// (artist, video) pair.
type ClassificationResult struct {
	VideoID  string   `json:"video_id"`
	Decision Decision `json:"decision"`
	Score    int      `json:"score"`
	Reason   string   `json:"reason,omitempty"` // set on rejection
	SongKey  string   `json:"song_key"`
}

// VideoEntry is the persisted form of a classified video, written to the
// per-artist accepted/review/failed documents.
type VideoEntry struct {
	CandidateVideo
	Score   int    `json:"score"`
	Reason  string `json:"reason,omitempty"`
	SongKey string `json:"song_key"`
	URL     string `json:"url"`
}

// Discovery phases. BlockedOnQuota is a suspending state: the artist keeps
// its checkpoint and the next run picks up where it stopped.
const (
	PhaseUnresolved     = "unresolved"
	PhaseResolving      = "resolving-channel"
	PhasePaginating     = "paginating"
	PhaseComplete       = "complete"
	PhaseBlockedOnQuota = "blocked-on-quota"
)

// DiscoveryState is the per-artist resumable checkpoint, persisted after
// every consumed page so a quota abort loses at most one page of work.
type DiscoveryState struct {
	Phase     string             `json:"phase"`
	Channel   *ChannelResolution `json:"channel,omitempty"`
	Processed map[string]string  `json:"processed"` // video ID -> RFC3339 classification time
	PageToken string             `json:"page_token,omitempty"`
	LastRun   string             `json:"last_run,omitempty"`
}

// NewDiscoveryState returns an empty state in the initial phase.
func NewDiscoveryState() *DiscoveryState {
	return &DiscoveryState{
		Phase:     PhaseUnresolved,
		Processed: map[string]string{},
	}
}

// Seen reports whether a video has already been classified for this artist.
func (s *DiscoveryState) Seen(videoID string) bool {
	_, ok := s.Processed[videoID]
	return ok
}

// ArtistDoc is one persisted per-artist result document (accepted, review
// or failed). Entries keep discovery order; appends never reorder.
type ArtistDoc struct {
	Artist    string       `json:"artist"`
	UpdatedAt time.Time    `json:"updated_at"`
	Entries   []VideoEntry `json:"entries"`
}

// Has reports whether the document already holds an entry for the video.
func (d *ArtistDoc) Has(videoID string) bool {
	for _, e := range d.Entries {
		if e.VideoID == videoID {
			return true
		}
	}
	return false
}

// ArtistSummary is the per-artist discovery summary document.
type ArtistSummary struct {
	Artist     string             `json:"artist"`
	Channel    *ChannelResolution `json:"channel,omitempty"`
	MatchedVia string             `json:"matched_via"`
	Accepted   int                `json:"accepted"`
	Review     int                `json:"review"`
	Rejected   int                `json:"rejected"`
}
