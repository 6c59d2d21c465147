package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/zdhoward/Playlistarr/internal/models"
)

func video(title string, duration int) models.CandidateVideo {
	return models.CandidateVideo{
		VideoID:       "vid-" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Title:         title,
		Duration:      duration,
		PublishedAt:   time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
		PublishedYear: 2019,
		ChannelTitle:  "ArtistVEVO",
		Source:        "original",
	}
}

func TestClassify(t *testing.T) {
	rules := DefaultRules()
	artist := models.ArtistRecord{Name: "Artist"}

	t.Run("accepts canonical official video on trusted channel", func(t *testing.T) {
		got := rules.Classify(video("Artist - Song (Official Music Video)", 210), artist, models.TrustVevo)

		if got.Decision != models.DecisionAccepted {
			t.Errorf("expected accepted, got %s (score %d)", got.Decision, got.Score)
		}
		if got.Reason != "" {
			t.Errorf("accepted result should carry no reason, got %q", got.Reason)
		}
	})

	t.Run("rejects lyric video even on trusted channel", func(t *testing.T) {
		got := rules.Classify(video("Artist - Song (Official Lyric Video)", 210), artist, models.TrustVevo)

		if got.Decision != models.DecisionRejected {
			t.Errorf("expected rejected, got %s (score %d)", got.Decision, got.Score)
		}
		if !strings.Contains(got.Reason, "lyric") {
			t.Errorf("reason should name the lyric exclusion, got %q", got.Reason)
		}
	})

	t.Run("routes borderline title to review", func(t *testing.T) {
		got := rules.Classify(video("Artist - Song", 210), artist, models.TrustVevo)

		if got.Decision != models.DecisionReview {
			t.Errorf("expected review, got %s (score %d)", got.Decision, got.Score)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		v := video("Artist - Song (Official Music Video)", 210)
		first := rules.Classify(v, artist, models.TrustVevo)
		for range 5 {
			if got := rules.Classify(v, artist, models.TrustVevo); got != first {
				t.Fatalf("classification drifted: %+v vs %+v", got, first)
			}
		}
	})

	t.Run("penalizes duration out of bounds", func(t *testing.T) {
		tests := []struct {
			name     string
			duration int
			want     models.Decision
			reason   string
		}{
			{"too short", 45, models.DecisionRejected, "too_short"},
			{"too long", 1200, models.DecisionRejected, "too_long"},
			{"in bounds", 240, models.DecisionAccepted, ""},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				got := rules.Classify(video("Artist - Song (Official Music Video)", tc.duration), artist, models.TrustUnknown)
				if got.Decision != tc.want {
					t.Errorf("duration %d: expected %s, got %s (score %d)", tc.duration, tc.want, got.Decision, got.Score)
				}
				if tc.reason != "" && !strings.Contains(got.Reason, tc.reason) {
					t.Errorf("expected reason containing %q, got %q", tc.reason, got.Reason)
				}
			})
		}
	})

	t.Run("degrades gracefully on malformed metadata", func(t *testing.T) {
		empty := rules.Classify(video("", 210), artist, models.TrustUnknown)
		if empty.Decision == models.DecisionAccepted {
			t.Errorf("empty title must not be accepted, score %d", empty.Score)
		}

		missing := rules.Classify(video("Artist - Song (Official Music Video)", 0), artist, models.TrustUnknown)
		if missing.Decision == models.DecisionAccepted {
			t.Errorf("missing duration must not auto-accept on untrusted channel, score %d", missing.Score)
		}
	})

	t.Run("applies per-artist year cutoff", func(t *testing.T) {
		capped := models.ArtistRecord{Name: "Artist", MaxYear: 2010}
		got := rules.Classify(video("Artist - Song (Official Music Video)", 210), capped, models.TrustUnknown)

		if got.Decision != models.DecisionRejected {
			t.Errorf("expected rejected past year cutoff, got %s (score %d)", got.Decision, got.Score)
		}
		if !strings.Contains(got.Reason, "year_cutoff") {
			t.Errorf("expected year_cutoff reason, got %q", got.Reason)
		}
	})

	t.Run("applies per-artist ignore keywords", func(t *testing.T) {
		picky := models.ArtistRecord{Name: "Artist", IgnoreKeywords: []string{"reissue"}}
		got := rules.Classify(video("Artist - Song Reissue (Official Music Video)", 210), picky, models.TrustUnknown)

		if got.Decision != models.DecisionRejected {
			t.Errorf("expected rejected via artist ignore list, got %s (score %d)", got.Decision, got.Score)
		}
		if !strings.Contains(got.Reason, "artist_ignore:reissue") {
			t.Errorf("expected artist_ignore reason, got %q", got.Reason)
		}
	})

	t.Run("rejects auto-generated art tracks", func(t *testing.T) {
		v := video("Artist - Song (Official Music Video)", 210)
		v.Description = "Provided to YouTube by Label"
		got := rules.Classify(v, artist, models.TrustUnknown)

		if got.Decision != models.DecisionRejected {
			t.Errorf("expected rejected, got %s (score %d)", got.Decision, got.Score)
		}
	})

	t.Run("penalizes blocked channel keywords", func(t *testing.T) {
		v := video("Artist - Song (Official Music Video)", 210)
		v.ChannelTitle = "Artist - Topic"
		got := rules.Classify(v, artist, models.TrustUnknown)

		if got.Decision != models.DecisionRejected {
			t.Errorf("expected rejected for topic channel, got %s (score %d)", got.Decision, got.Score)
		}
		if !strings.Contains(got.Reason, "bad_channel:topic") {
			t.Errorf("expected bad_channel reason, got %q", got.Reason)
		}
	})
}

func TestIsExcludedVersion(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		title string
		want  bool
	}{
		{"Artist - Song (Live at Wembley)", true},
		{"Artist - Song (Club Mix)", true},
		{"Artist - Song Covered By Somebody", true},
		{"Artist - Song Nightcore", true},
		{"Artist - Song (Official Music Video)", false},
		{"Artist - Deliver Us", false},
		// Always-allowed phrase vouches past the pattern match.
		{"Artist - Alive (Official Video)", false},
	}

	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			got, pattern := rules.IsExcludedVersion(tc.title)
			if got != tc.want {
				t.Errorf("IsExcludedVersion(%q) = %v (pattern %q), want %v", tc.title, got, pattern, tc.want)
			}
			if got && pattern == "" {
				t.Errorf("excluded title %q should report the matched pattern", tc.title)
			}
		})
	}
}
