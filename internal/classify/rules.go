package classify

import (
	"regexp"
	"strings"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

// Weights are the signal contributions summed into a classification score.
type Weights struct {
	Strong          int // per strong positive title marker
	Weak            int // per weak positive title marker
	Hard            int // per hard-exclusion marker (negative)
	Soft            int // per soft penalty marker (negative)
	DurationOK      int
	DurationBad     int // negative
	MissingDuration int // negative
	EmptyTitle      int // negative
	TrustVevo       int
	TrustOfficial   int
	YearCutoff      int // negative
}

// RuleSet is the immutable configuration driving classification and
// version-variant suppression. Build one with Rules and share it freely;
// it is never mutated after construction.
type RuleSet struct {
	AcceptThreshold int
	RejectThreshold int
	MinDuration     int // seconds
	MaxDuration     int // seconds

	PositiveStrong  []string
	PositiveWeak    []string
	NegativeHard    []string
	NegativeSoft    []string
	BlockedChannels []string
	AlwaysAllowed   []string

	Weights Weights

	versionPatterns []*regexp.Regexp
}

var defaultVersionPatterns = []string{
	// Covers
	`\bcover(ed)?\s+by\b`,
	`\b(?:my|our|their)\s+cover\b`,
	// Live
	`\blive\s+(at|from|in)\b`,
	`\blive\s+(performance|session|version)\b`,
	`\(live\)`,
	// Acoustic
	`\bacoustic\s+(version|session)\b`,
	`\(acoustic\)`,
	// Remixes / edits
	`\bre[-\s]?mix\b`,
	`\bremix\b`,
	`\b(extended|club)\s+mix\b`,
	`\bradio\s+edit\b`,
	// Alternate takes
	`\bdemo\b`,
	`\brough\s+mix\b`,
	`\balternate\s+version\b`,
	// Fan / unofficial
	`\bfan\s+(made|video)\b`,
	`\bunofficial\b`,
	// Low-quality reuploads
	`\bsped\s*up\b`,
	`\bslowed\s*down\b`,
	`\bnightcore\b`,
	`\blyrics?\b`,
	// Compilations
	`\bmash\s*up\b`,
	`\bmashup\b`,
	`\bcompilation\b`,
}

// Rules builds a RuleSet from configuration, falling back to the built-in
// defaults for any empty keyword list or zero threshold.
func Rules(cfg shared.RulesConfig) RuleSet {
	rs := RuleSet{
		AcceptThreshold: cfg.AcceptThreshold,
		RejectThreshold: cfg.RejectThreshold,
		MinDuration:     cfg.MinDurationSec,
		MaxDuration:     cfg.MaxDurationSec,
		PositiveStrong:  cfg.PositiveStrong,
		PositiveWeak:    cfg.PositiveWeak,
		NegativeHard:    cfg.NegativeHard,
		NegativeSoft:    cfg.NegativeSoft,
		BlockedChannels: cfg.BlockedChannels,
		AlwaysAllowed:   cfg.AlwaysAllowed,
		Weights: Weights{
			Strong:          4,
			Weak:            2,
			Hard:            -8,
			Soft:            -2,
			DurationOK:      1,
			DurationBad:     -6,
			MissingDuration: -2,
			EmptyTitle:      -4,
			TrustVevo:       4,
			TrustOfficial:   3,
			YearCutoff:      -8,
		},
	}

	if rs.AcceptThreshold == 0 && rs.RejectThreshold == 0 {
		rs.AcceptThreshold = 6
		rs.RejectThreshold = 0
	}
	if rs.MinDuration == 0 {
		rs.MinDuration = 120 // below two minutes reads as teaser or promo
	}
	if rs.MaxDuration == 0 {
		rs.MaxDuration = 450 // above 7.5 minutes reads as short film or compilation
	}

	if len(rs.PositiveStrong) == 0 {
		rs.PositiveStrong = []string{"official music video"}
	}
	if len(rs.PositiveWeak) == 0 {
		rs.PositiveWeak = []string{"music video", "official video"}
	}
	if len(rs.NegativeHard) == 0 {
		rs.NegativeHard = []string{
			// Audio-only
			"official audio", "audio", "lyrics", "lyric video",
			"visualizer", "visualiser", "karaoke",
			// User-generated / alternate
			"reaction", "cover", "remix", "shorts",
			// Promos / previews
			"trailer", "teaser", "promo", "commercial",
			// Behind-the-scenes / non-MV
			"behind the scenes", "making of", "interview", "documentary",
			// Long-form
			"full album", "album stream",
			"(acoustic)",
		}
	}
	if len(rs.NegativeSoft) == 0 {
		rs.NegativeSoft = []string{
			"remastered", "anniversary", "radio edit",
			"clean", "uncensored", "censored", "4k upgrade",
		}
	}
	if len(rs.BlockedChannels) == 0 {
		rs.BlockedChannels = []string{"lyrics", "lyric", "fan", "topic", "archive", "compilation"}
	}
	if len(rs.AlwaysAllowed) == 0 {
		rs.AlwaysAllowed = []string{"official music video", "official video", "vevo"}
	}

	rs.PositiveStrong = lowerAll(rs.PositiveStrong)
	rs.PositiveWeak = lowerAll(rs.PositiveWeak)
	rs.NegativeHard = lowerAll(rs.NegativeHard)
	rs.NegativeSoft = lowerAll(rs.NegativeSoft)
	rs.BlockedChannels = lowerAll(rs.BlockedChannels)
	rs.AlwaysAllowed = lowerAll(rs.AlwaysAllowed)

	for _, p := range defaultVersionPatterns {
		rs.versionPatterns = append(rs.versionPatterns, regexp.MustCompile(`(?i)`+p))
	}

	return rs
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, strings.ToLower(strings.TrimSpace(kw)))
	}
	return out
}

// DefaultRules returns the RuleSet with every list and threshold at its
// built-in default.
func DefaultRules() RuleSet {
	return Rules(shared.RulesConfig{})
}
