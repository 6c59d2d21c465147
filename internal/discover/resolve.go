package discover

import (
	"context"
	"fmt"
	"strings"

	"github.com/zdhoward/Playlistarr/internal/gateway"
	"github.com/zdhoward/Playlistarr/internal/models"
)

// MatchedVia values recorded on a channel resolution.
const (
	ViaManual   = "manual"
	ViaVevo     = "vevo-search"
	ViaExact    = "exact-search"
	ViaFallback = "video-search-fallback"
)

func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// channelTrust grades a channel title against the artist name. A "<Artist>VEVO"
// title is the strongest signal; an exact name match reads as the artist's
// own channel; anything else is untrusted.
func channelTrust(channelTitle, artist string) models.ChannelTrust {
	title := compact(channelTitle)
	name := compact(artist)
	switch {
	case title == name+"vevo":
		return models.TrustVevo
	case title == name || title == name+"official":
		return models.TrustOfficialArtist
	}
	return models.TrustUnknown
}

// resolveChannel finds the artist's canonical channel: a manual pin wins,
// then a VEVO search hit, then an exact-name hit. Channels that fail the
// viability check (too few uploads, or an auto-generated topic channel)
// are passed over. A nil resolution means discovery must fall back to
// free-text video search.
func (o *Orchestrator) resolveChannel(ctx context.Context, artist models.ArtistRecord) (*models.ChannelResolution, error) {
	if artist.ChannelID != "" {
		info, err := o.api.Channel(ctx, artist.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("manual channel for %s: %w", artist.Name, err)
		}
		trust := channelTrust(info.Title, artist.Name)
		if trust == models.TrustUnknown {
			// The operator pinned it, so it is at least the artist's own.
			trust = models.TrustOfficialArtist
		}
		return &models.ChannelResolution{
			Artist:            artist.Name,
			ChannelID:         info.ChannelID,
			ChannelTitle:      info.Title,
			UploadsPlaylistID: info.UploadsPlaylistID,
			Trust:             trust,
			MatchedVia:        ViaManual,
		}, nil
	}

	candidates, err := o.api.SearchChannels(ctx, artist.Name)
	if err != nil {
		return nil, fmt.Errorf("channel search for %s: %w", artist.Name, err)
	}

	pick := func(trust models.ChannelTrust, via string) (*models.ChannelResolution, error) {
		for _, c := range candidates {
			if channelTrust(c.Title, artist.Name) != trust {
				continue
			}
			info, err := o.api.Channel(ctx, c.ChannelID)
			if err != nil {
				return nil, fmt.Errorf("inspect channel %s: %w", c.ChannelID, err)
			}
			if !o.viable(info) {
				o.logger.Debug("channel failed viability check",
					"artist", artist.Name, "channel", info.Title, "uploads", info.VideoCount)
				continue
			}
			return &models.ChannelResolution{
				Artist:            artist.Name,
				ChannelID:         info.ChannelID,
				ChannelTitle:      info.Title,
				UploadsPlaylistID: info.UploadsPlaylistID,
				Trust:             trust,
				MatchedVia:        via,
			}, nil
		}
		return nil, nil
	}

	if res, err := pick(models.TrustVevo, ViaVevo); res != nil || err != nil {
		return res, err
	}
	if res, err := pick(models.TrustOfficialArtist, ViaExact); res != nil || err != nil {
		return res, err
	}
	return nil, nil
}

// viable filters out channels that cannot be an artist's canonical source:
// auto-generated topic channels and near-empty channels.
func (o *Orchestrator) viable(info *gateway.ChannelInfo) bool {
	if strings.Contains(strings.ToLower(info.Title), " - topic") {
		return false
	}
	if info.UploadsPlaylistID == "" {
		return false
	}
	return info.VideoCount >= int64(o.minUploads)
}
