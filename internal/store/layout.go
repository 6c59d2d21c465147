package store

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Layout maps logical documents to paths under one output root. All stage
// outputs for a roster live under <root>/<roster-stem>/ so two rosters never
// share state.
type Layout struct {
	Root     string
	Roster   string // roster file stem, e.g. "bands" for bands.txt
	CacheDir string // snapshot directory under Root, defaults to "cache"
}

// NewLayout builds the layout for a roster file under the given output root.
func NewLayout(root, rosterPath string) Layout {
	stem := strings.TrimSuffix(filepath.Base(rosterPath), filepath.Ext(rosterPath))
	return Layout{Root: root, Roster: Slug(stem), CacheDir: "cache"}
}

func (l Layout) rosterDir() string {
	return filepath.Join(l.Root, l.Roster)
}

// ArtistDir is the directory holding one artist's discovery documents.
func (l Layout) ArtistDir(artist string) string {
	return filepath.Join(l.rosterDir(), "artists", Slug(artist))
}

func (l Layout) AcceptedPath(artist string) string {
	return filepath.Join(l.ArtistDir(artist), "accepted.json")
}

func (l Layout) ReviewPath(artist string) string {
	return filepath.Join(l.ArtistDir(artist), "review.json")
}

func (l Layout) FailedPath(artist string) string {
	return filepath.Join(l.ArtistDir(artist), "failed.json")
}

func (l Layout) SummaryPath(artist string) string {
	return filepath.Join(l.ArtistDir(artist), "summary.json")
}

func (l Layout) StatePath(artist string) string {
	return filepath.Join(l.ArtistDir(artist), "state.json")
}

// SnapshotPath is the cached playlist snapshot, shared across rosters since
// it mirrors the live playlist, not roster-derived state.
func (l Layout) SnapshotPath(playlistID string) string {
	dir := l.CacheDir
	if dir == "" {
		dir = "cache"
	}
	return filepath.Join(l.Root, dir, "playlist_"+Slug(playlistID)+".json")
}

func (l Layout) PlanPath(kind string) string {
	return filepath.Join(l.rosterDir(), "plans", kind+"_plan.json")
}

func (l Layout) ProgressPath(kind string) string {
	return filepath.Join(l.rosterDir(), "plans", kind+"_progress.json")
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug canonicalizes a name into a filesystem-safe directory component.
// "Linkin Park" and "linkin  park" map to the same slug, so roster edits
// that only change casing or spacing keep their saved state.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "unnamed"
	}
	return s
}
