package classify

import (
	"regexp"
	"strings"
)

var (
	bracketRe    = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)
	artistSepRe  = regexp.MustCompile(`^\s*.+?\s*[-–—:|]\s*`)
	punctRe      = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// markerRe matches trailing qualifiers stripped so "Song (Official Music
// Video)" and "Song HD" collapse to the same key.
var markerRe = regexp.MustCompile(`\b(official music video|official video|music video|official audio|lyric video|lyrics|remastered|hd|4k|hq)\b`)

// SongKey derives the canonical identity used for duplicate suppression:
// lowercase "artist|title" with bracketed qualifiers, version markers and
// punctuation stripped. Returns "" when the title normalizes to nothing,
// in which case callers fall back to the video ID.
func SongKey(artist, title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}

	t = bracketRe.ReplaceAllString(t, " ")

	// Drop a leading "Artist - " prefix when it matches the roster name,
	// so uploads titled both ways key identically.
	a := normalizeToken(artist)
	if m := artistSepRe.FindString(t); m != "" {
		prefix := normalizeToken(strings.TrimRight(strings.TrimSpace(m), "-–—:| "))
		if prefix == a && prefix != "" {
			t = t[len(m):]
		}
	}

	t = markerRe.ReplaceAllString(t, " ")

	t = normalizeToken(t)
	if t == "" {
		return ""
	}
	return a + "|" + t
}

func normalizeToken(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
