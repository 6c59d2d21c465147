package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zdhoward/Playlistarr/internal/shared"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteReadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "doc.json")

	t.Run("round trips through disk", func(t *testing.T) {
		want := testDoc{Name: "artist", Count: 3}
		if err := WriteJSON(path, want); err != nil {
			t.Fatalf("write: %v", err)
		}

		var got testDoc
		ok, err := ReadJSON(path, &got)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !ok {
			t.Fatal("expected document to exist")
		}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("missing file reads as absent", func(t *testing.T) {
		var got testDoc
		ok, err := ReadJSON(filepath.Join(dir, "nope.json"), &got)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if ok {
			t.Error("expected absent document")
		}
	})

	t.Run("overwrite leaves no temp files behind", func(t *testing.T) {
		if err := WriteJSON(path, testDoc{Name: "updated"}); err != nil {
			t.Fatalf("write: %v", err)
		}

		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.Contains(e.Name(), ".tmp-") {
				t.Errorf("stray temp file %s", e.Name())
			}
		}
	})

	t.Run("corrupt document surfaces a parse error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		var got testDoc
		if _, err := ReadJSON(bad, &got); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLayout(t *testing.T) {
	l := NewLayout("out", "/data/My Bands.txt")

	if l.Roster != "my-bands" {
		t.Errorf("roster stem = %q, want my-bands", l.Roster)
	}
	if got := l.AcceptedPath("Linkin Park"); got != filepath.Join("out", "my-bands", "artists", "linkin-park", "accepted.json") {
		t.Errorf("accepted path = %q", got)
	}
	if got := l.SnapshotPath("PLabc123"); !strings.Contains(got, filepath.Join("out", "cache")) {
		t.Errorf("snapshot path %q should live under the shared cache dir", got)
	}
	if l.PlanPath("sync") == l.PlanPath("invalidation") {
		t.Error("plan kinds must not collide")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Linkin Park", "linkin-park"},
		{"linkin  park", "linkin-park"},
		{"AC/DC", "ac-dc"},
		{"  Trailing  ", "trailing"},
		{"***", "unnamed"},
	}

	for _, tc := range tests {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bands.txt")
	content := strings.Join([]string{
		"# favorites",
		"Linkin Park",
		"",
		"Korn,UCkorn123",
		"linkin  park", // duplicate after canonicalization
		"Deftones",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	overrides := map[string]shared.ArtistOverride{
		"Linkin Park": {MaxYear: 2017, IgnoreKeywords: []string{"reissue"}},
		"Korn":        {ChannelID: "UCignored"},
	}

	artists, err := LoadRoster(path, overrides)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(artists) != 3 {
		t.Fatalf("expected 3 artists, got %d: %+v", len(artists), artists)
	}

	if artists[0].Name != "Linkin Park" || artists[0].MaxYear != 2017 {
		t.Errorf("override not merged: %+v", artists[0])
	}
	// Inline channel pin wins over the configured override.
	if artists[1].ChannelID != "UCkorn123" {
		t.Errorf("Korn channel = %q, want UCkorn123", artists[1].ChannelID)
	}
	if artists[2].Name != "Deftones" {
		t.Errorf("unexpected third artist %+v", artists[2])
	}

	t.Run("empty roster is a validation error", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.txt")
		if err := os.WriteFile(empty, []byte("# nothing\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRoster(empty, nil); err == nil {
			t.Error("expected error for empty roster")
		}
	})
}
