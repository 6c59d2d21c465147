package discover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zdhoward/Playlistarr/internal/classify"
	"github.com/zdhoward/Playlistarr/internal/gateway"
	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/shared"
	"github.com/zdhoward/Playlistarr/internal/store"
)

const fallbackSearchSize = 25

// API is the read surface discovery needs from the gateway.
type API interface {
	SearchChannels(ctx context.Context, query string) ([]gateway.ChannelCandidate, error)
	Channel(ctx context.Context, channelID string) (*gateway.ChannelInfo, error)
	PlaylistPage(ctx context.Context, playlistID, pageToken string) ([]gateway.PlaylistItem, string, error)
	SearchVideos(ctx context.Context, query string, maxResults int) ([]string, error)
	VideoDetails(ctx context.Context, ids []string) ([]models.CandidateVideo, error)
}

// Orchestrator runs discovery across the roster, one artist at a time.
type Orchestrator struct {
	api        API
	rules      classify.RuleSet
	layout     store.Layout
	logger     *log.Logger
	minUploads int

	// Force discards each artist's cached state and reclassifies from
	// scratch, including channel re-resolution.
	Force bool

	now func() time.Time
}

// Report aggregates one discovery run.
type Report struct {
	Artists  []models.ArtistSummary `json:"artists"`
	Accepted int                    `json:"accepted"`
	Review   int                    `json:"review"`
	Rejected int                    `json:"rejected"`
	Skipped  int                    `json:"skipped"`
}

// New builds a discovery orchestrator.
func New(api API, rules classify.RuleSet, layout store.Layout, cfg shared.DiscoveryConfig, logger *log.Logger) *Orchestrator {
	minUploads := cfg.MinChannelUploads
	if minUploads <= 0 {
		minUploads = 5
	}
	return &Orchestrator{
		api:        api,
		rules:      rules,
		layout:     layout,
		logger:     shared.WithLogger(logger, "component", "discover"),
		minUploads: minUploads,
		now:        time.Now,
	}
}

// Run processes every artist in roster order. A quota stop checkpoints the
// current artist and returns shared.ErrQuotaExhausted with the partial
// report; any other per-artist failure is logged and the run moves on.
func (o *Orchestrator) Run(ctx context.Context, artists []models.ArtistRecord) (*Report, error) {
	report := &Report{}

	for _, artist := range artists {
		summary, err := o.processArtist(ctx, artist)
		if summary != nil {
			report.Artists = append(report.Artists, *summary)
			report.Accepted += summary.Accepted
			report.Review += summary.Review
			report.Rejected += summary.Rejected
		}
		if err != nil {
			if errors.Is(err, shared.ErrQuotaExhausted) {
				o.logger.Warn("quota exhausted, stopping run", "artist", artist.Name)
				return report, err
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			o.logger.Error("artist failed, continuing", "artist", artist.Name, "error", err)
			continue
		}
		if summary == nil {
			report.Skipped++
		}
	}
	return report, nil
}

// artistRun bundles the mutable documents for one artist while pages are
// consumed.
type artistRun struct {
	artist   models.ArtistRecord
	state    *models.DiscoveryState
	accepted models.ArtistDoc
	review   models.ArtistDoc
	failed   models.ArtistDoc
}

func (o *Orchestrator) loadArtist(artist models.ArtistRecord) (*artistRun, error) {
	run := &artistRun{artist: artist, state: models.NewDiscoveryState()}

	if _, err := store.ReadJSON(o.layout.StatePath(artist.Name), run.state); err != nil {
		return nil, err
	}
	if run.state.Processed == nil {
		run.state.Processed = map[string]string{}
	}
	for doc, path := range map[*models.ArtistDoc]string{
		&run.accepted: o.layout.AcceptedPath(artist.Name),
		&run.review:   o.layout.ReviewPath(artist.Name),
		&run.failed:   o.layout.FailedPath(artist.Name),
	} {
		if _, err := store.ReadJSON(path, doc); err != nil {
			return nil, err
		}
		doc.Artist = artist.Name
	}
	return run, nil
}

// persist checkpoints state and result documents. Called after every page
// so an abort at any point resumes without rework.
func (o *Orchestrator) persist(run *artistRun) error {
	now := o.now().UTC()
	run.state.LastRun = now.Format(time.RFC3339)
	run.accepted.UpdatedAt = now
	run.review.UpdatedAt = now
	run.failed.UpdatedAt = now

	// Documents first, state last: a crash between writes can only leave
	// results ahead of the checkpoint, which a rerun tolerates, never a
	// checkpoint ahead of its results.
	if err := store.WriteJSON(o.layout.AcceptedPath(run.artist.Name), &run.accepted); err != nil {
		return err
	}
	if err := store.WriteJSON(o.layout.ReviewPath(run.artist.Name), &run.review); err != nil {
		return err
	}
	if err := store.WriteJSON(o.layout.FailedPath(run.artist.Name), &run.failed); err != nil {
		return err
	}
	return store.WriteJSON(o.layout.StatePath(run.artist.Name), run.state)
}

// processArtist drives one artist through the phase machine. Returns a nil
// summary when the artist was skipped (already complete).
func (o *Orchestrator) processArtist(ctx context.Context, artist models.ArtistRecord) (*models.ArtistSummary, error) {
	run, err := o.loadArtist(artist)
	if err != nil {
		return nil, err
	}

	if run.state.Phase == models.PhaseComplete && !o.Force {
		o.logger.Debug("artist already complete", "artist", artist.Name)
		return nil, nil
	}
	if o.Force {
		// A forced refresh starts the artist over: the cached resolution,
		// the processed set and the classified documents are all discarded,
		// otherwise Seen and the duplicate guards would skip every video.
		o.logger.Info("forced refresh, discarding artist state", "artist", artist.Name)
		run.state = models.NewDiscoveryState()
		run.accepted.Entries = nil
		run.review.Entries = nil
		run.failed.Entries = nil
	}

	if run.state.Channel == nil {
		run.state.Phase = models.PhaseResolving
		resolution, err := o.resolveChannel(ctx, artist)
		if err != nil {
			return nil, o.suspendOnQuota(run, err)
		}
		if resolution == nil {
			o.logger.Info("no viable channel, using video search fallback", "artist", artist.Name)
			resolution = &models.ChannelResolution{
				Artist:     artist.Name,
				Trust:      models.TrustUnknown,
				MatchedVia: ViaFallback,
			}
		}
		run.state.Channel = resolution
		run.state.Phase = models.PhasePaginating
		if err := o.persist(run); err != nil {
			return nil, err
		}
		o.logger.Info("channel resolved",
			"artist", artist.Name, "channel", resolution.ChannelTitle,
			"trust", resolution.Trust, "via", resolution.MatchedVia)
	}

	if run.state.Channel.UploadsPlaylistID != "" {
		err = o.paginateUploads(ctx, run)
	} else {
		err = o.searchFallback(ctx, run)
	}
	if err != nil {
		return o.summarize(run), o.suspendOnQuota(run, err)
	}

	run.state.Phase = models.PhaseComplete
	run.state.PageToken = ""
	if err := o.persist(run); err != nil {
		return nil, err
	}

	summary := o.summarize(run)
	if err := store.WriteJSON(o.layout.SummaryPath(artist.Name), summary); err != nil {
		return nil, err
	}
	o.logger.Info("artist complete", "artist", artist.Name,
		"accepted", summary.Accepted, "review", summary.Review, "rejected", summary.Rejected)
	return summary, nil
}

// suspendOnQuota converts a quota stop into a blocked checkpoint so the
// next run resumes this artist exactly where it halted.
func (o *Orchestrator) suspendOnQuota(run *artistRun, err error) error {
	if errors.Is(err, shared.ErrQuotaExhausted) {
		run.state.Phase = models.PhaseBlockedOnQuota
		if persistErr := o.persist(run); persistErr != nil {
			return errors.Join(err, persistErr)
		}
	}
	return err
}

func (o *Orchestrator) summarize(run *artistRun) *models.ArtistSummary {
	return &models.ArtistSummary{
		Artist:     run.artist.Name,
		Channel:    run.state.Channel,
		MatchedVia: run.state.Channel.MatchedVia,
		Accepted:   len(run.accepted.Entries),
		Review:     len(run.review.Entries),
		Rejected:   len(run.failed.Entries),
	}
}

// paginateUploads consumes the uploads playlist page by page, classifying
// unseen videos and checkpointing after every page.
func (o *Orchestrator) paginateUploads(ctx context.Context, run *artistRun) error {
	run.state.Phase = models.PhasePaginating

	for {
		items, next, err := o.api.PlaylistPage(ctx, run.state.Channel.UploadsPlaylistID, run.state.PageToken)
		if err != nil {
			return err
		}

		unseen := make([]string, 0, len(items))
		for _, item := range items {
			if item.VideoID != "" && !run.state.Seen(item.VideoID) {
				unseen = append(unseen, item.VideoID)
			}
		}
		if err := o.classifyBatch(ctx, run, unseen); err != nil {
			return err
		}

		run.state.PageToken = next
		if err := o.persist(run); err != nil {
			return err
		}
		if next == "" {
			return nil
		}
	}
}

// searchFallback discovers via free-text search when no channel survived
// the viability check. Single page, no pagination state.
func (o *Orchestrator) searchFallback(ctx context.Context, run *artistRun) error {
	ids, err := o.api.SearchVideos(ctx, run.artist.Name+" official music video", fallbackSearchSize)
	if err != nil {
		return err
	}

	unseen := make([]string, 0, len(ids))
	for _, id := range ids {
		if !run.state.Seen(id) {
			unseen = append(unseen, id)
		}
	}
	if err := o.classifyBatch(ctx, run, unseen); err != nil {
		return err
	}
	return o.persist(run)
}

func (o *Orchestrator) classifyBatch(ctx context.Context, run *artistRun, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	videos, err := o.api.VideoDetails(ctx, ids)
	if err != nil {
		return err
	}

	now := o.now().UTC().Format(time.RFC3339)
	for _, video := range videos {
		// A crash between a document write and its checkpoint leaves the
		// entry recorded but unprocessed; reclassifying it would append a
		// duplicate.
		if run.accepted.Has(video.VideoID) || run.review.Has(video.VideoID) || run.failed.Has(video.VideoID) {
			run.state.Processed[video.VideoID] = now
			continue
		}
		if run.state.Channel.MatchedVia == ViaFallback {
			video.Source = "fallback"
		}

		result := o.rules.Classify(video, run.artist, o.trustFor(run, video))
		entry := o.entry(video, result)

		switch result.Decision {
		case models.DecisionAccepted:
			run.accepted.Entries = append(run.accepted.Entries, entry)
		case models.DecisionReview:
			run.review.Entries = append(run.review.Entries, entry)
		case models.DecisionRejected:
			run.failed.Entries = append(run.failed.Entries, entry)
		}
		run.state.Processed[video.VideoID] = now
	}
	return nil
}

// trustFor grades the channel a video actually came from. Uploads from the
// resolved channel inherit its trust; fallback search hits are graded by
// their own channel title.
func (o *Orchestrator) trustFor(run *artistRun, video models.CandidateVideo) models.ChannelTrust {
	channel := run.state.Channel
	if channel.ChannelID != "" && video.ChannelID == channel.ChannelID {
		return channel.Trust
	}
	return channelTrust(video.ChannelTitle, run.artist.Name)
}

func (o *Orchestrator) entry(video models.CandidateVideo, result models.ClassificationResult) models.VideoEntry {
	songKey := result.SongKey
	if songKey == "" {
		songKey = video.VideoID
	}
	return models.VideoEntry{
		CandidateVideo: video,
		Score:          result.Score,
		Reason:         result.Reason,
		SongKey:        songKey,
		URL:            fmt.Sprintf("https://www.youtube.com/watch?v=%s", video.VideoID),
	}
}
