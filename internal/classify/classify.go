package classify

import (
	"fmt"
	"strings"

	"github.com/zdhoward/Playlistarr/internal/models"
)

// Classify scores one candidate video for one artist and maps the score to
// a decision. Signals stack: a hard exclusion outweighs any single positive
// marker but a strongly trusted channel can still pull a borderline title
// into review rather than rejection.
func (rs RuleSet) Classify(video models.CandidateVideo, artist models.ArtistRecord, trust models.ChannelTrust) models.ClassificationResult {
	title := strings.ToLower(strings.TrimSpace(video.Title))
	channel := strings.ToLower(video.ChannelTitle)

	score := 0
	reason := ""
	note := func(r string) {
		if reason == "" {
			reason = r
		}
	}

	if title == "" {
		score += rs.Weights.EmptyTitle
		note("empty_title")
	}

	if video.Unavailable {
		score += rs.Weights.Hard
		note("unavailable")
	}

	for _, kw := range artist.IgnoreKeywords {
		if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
			score += rs.Weights.Hard
			note("artist_ignore:" + strings.ToLower(kw))
		}
	}
	for _, kw := range artist.AllowKeywords {
		if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
			score += rs.Weights.Strong
		}
	}

	for _, kw := range rs.NegativeHard {
		if strings.Contains(title, kw) {
			score += rs.Weights.Hard
			note("hard_negative:" + kw)
		}
	}
	// Auto-generated art tracks carry this marker in the description.
	if strings.Contains(strings.ToLower(video.Description), "provided to youtube") {
		score += rs.Weights.Hard
		note("audio_only_upload")
	}

	for _, kw := range rs.PositiveStrong {
		if strings.Contains(title, kw) {
			score += rs.Weights.Strong
		}
	}
	for _, kw := range rs.PositiveWeak {
		if strings.Contains(title, kw) {
			score += rs.Weights.Weak
		}
	}
	for _, kw := range rs.NegativeSoft {
		if strings.Contains(title, kw) {
			score += rs.Weights.Soft
		}
	}

	for _, kw := range rs.BlockedChannels {
		if strings.Contains(channel, kw) {
			score += rs.Weights.Hard
			note("bad_channel:" + kw)
		}
	}

	switch {
	case video.Duration == 0:
		score += rs.Weights.MissingDuration
		note("missing_duration")
	case video.Duration < rs.MinDuration:
		score += rs.Weights.DurationBad
		note(fmt.Sprintf("too_short:%ds", video.Duration))
	case video.Duration > rs.MaxDuration:
		score += rs.Weights.DurationBad
		note(fmt.Sprintf("too_long:%ds", video.Duration))
	default:
		score += rs.Weights.DurationOK
	}

	switch trust {
	case models.TrustVevo:
		score += rs.Weights.TrustVevo
	case models.TrustOfficialArtist:
		score += rs.Weights.TrustOfficial
	}

	if artist.MaxYear > 0 && video.PublishedYear > artist.MaxYear {
		score += rs.Weights.YearCutoff
		note(fmt.Sprintf("year_cutoff:%d>%d", video.PublishedYear, artist.MaxYear))
	}

	decision := models.DecisionReview
	switch {
	case score >= rs.AcceptThreshold:
		decision = models.DecisionAccepted
	case score <= rs.RejectThreshold:
		decision = models.DecisionRejected
	}

	result := models.ClassificationResult{
		VideoID:  video.VideoID,
		Decision: decision,
		Score:    score,
		SongKey:  SongKey(artist.Name, video.Title),
	}
	if decision == models.DecisionRejected {
		if reason == "" {
			reason = fmt.Sprintf("low_score:%d", score)
		}
		result.Reason = reason
	}
	return result
}

// IsExcludedVersion reports whether a title names a non-canonical version
// of a song (live, remix, cover, and so on), unless an always-allowed phrase
// vouches for it. Used by the reconciler to keep variants off the playlist
// even when they scored well enough at discovery time.
func (rs RuleSet) IsExcludedVersion(title string) (bool, string) {
	lower := strings.ToLower(title)
	for _, phrase := range rs.AlwaysAllowed {
		if strings.Contains(lower, phrase) {
			return false, ""
		}
	}
	for _, re := range rs.versionPatterns {
		if re.MatchString(title) {
			return true, re.String()
		}
	}
	return false, ""
}
