package classify

import "testing"

func TestSongKey(t *testing.T) {
	t.Run("collapses title variants to one key", func(t *testing.T) {
		variants := []string{
			"Artist - Song (Official Music Video)",
			"Artist - Song [Official Video]",
			"Artist - Song HD",
			"artist - song",
			"Song (Remastered)",
			"Song",
		}

		want := SongKey("Artist", "Song")
		if want == "" {
			t.Fatal("baseline key should not be empty")
		}
		for _, title := range variants {
			if got := SongKey("Artist", title); got != want {
				t.Errorf("SongKey(%q) = %q, want %q", title, got, want)
			}
		}
	})

	t.Run("distinct songs key differently", func(t *testing.T) {
		if SongKey("Artist", "One Song") == SongKey("Artist", "Another Song") {
			t.Error("different titles must not collide")
		}
		if SongKey("Artist A", "Song") == SongKey("Artist B", "Song") {
			t.Error("different artists must not collide")
		}
	})

	t.Run("keeps unrelated artist prefix", func(t *testing.T) {
		// "Other - Song" uploaded under Artist's roster entry: the prefix
		// is part of the title, not the artist, so it stays in the key.
		if SongKey("Artist", "Other - Song") == SongKey("Artist", "Song") {
			t.Error("foreign prefix should not be stripped")
		}
	})

	t.Run("empty or marker-only titles normalize to empty", func(t *testing.T) {
		for _, title := range []string{"", "   ", "(Official Music Video)", "[HD]"} {
			if got := SongKey("Artist", title); got != "" {
				t.Errorf("SongKey(%q) = %q, want empty", title, got)
			}
		}
	})
}
