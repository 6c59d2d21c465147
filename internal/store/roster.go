package store

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/shared"
)

// LoadRoster reads the artist roster file and merges per-artist overrides
// from configuration. One artist per line; an optional second comma field
// pins the channel ID. Blank lines and '#' comments are skipped, and
// duplicate names (after canonicalization) keep the first occurrence.
func LoadRoster(path string, overrides map[string]shared.ArtistOverride) ([]models.ArtistRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	byName := map[string]shared.ArtistOverride{}
	for name, o := range overrides {
		byName[Slug(name)] = o
	}

	var artists []models.ArtistRecord
	seen := map[string]bool{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name := line
		channelID := ""
		if before, after, found := strings.Cut(line, ","); found {
			name = strings.TrimSpace(before)
			channelID = strings.TrimSpace(after)
		}
		if name == "" {
			continue
		}

		key := Slug(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		record := models.ArtistRecord{Name: name, ChannelID: channelID}
		if o, ok := byName[key]; ok {
			if record.ChannelID == "" {
				record.ChannelID = o.ChannelID
			}
			record.MaxYear = o.MaxYear
			record.IgnoreKeywords = o.IgnoreKeywords
			record.AllowKeywords = o.AllowKeywords
		}
		artists = append(artists, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	if len(artists) == 0 {
		return nil, fmt.Errorf("%w: roster %s has no artists", shared.ErrValidation, path)
	}
	return artists, nil
}
