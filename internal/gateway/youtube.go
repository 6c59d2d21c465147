package gateway

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zdhoward/Playlistarr/internal/models"
)

const (
	searchPageSize   = 10
	playlistPageSize = 50
	videoBatchSize   = 50
)

// ChannelCandidate is one search hit when resolving an artist to a channel.
type ChannelCandidate struct {
	ChannelID   string
	Title       string
	Description string
}

// ChannelInfo is the detailed view of one channel, enough to judge
// viability and start paginating its uploads.
type ChannelInfo struct {
	ChannelID         string
	Title             string
	UploadsPlaylistID string
	VideoCount        int64
}

// PlaylistItem is one entry of a playlist page, used both for uploads
// pagination and playlist snapshot refreshes.
type PlaylistItem struct {
	PlaylistItemID string
	VideoID        string
	Title          string
	ChannelTitle   string
}

// SearchChannels returns channel candidates matching the query, in API
// relevance order.
func (g *Gateway) SearchChannels(ctx context.Context, query string) ([]ChannelCandidate, error) {
	var resp struct {
		Items []struct {
			ID struct {
				ChannelID string `json:"channelId"`
			} `json:"id"`
			Snippet struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"snippet"`
		} `json:"items"`
	}

	params := url.Values{
		"part":       {"snippet"},
		"type":       {"channel"},
		"q":          {query},
		"maxResults": {strconv.Itoa(searchPageSize)},
	}
	if err := g.get(ctx, "search", params, &resp); err != nil {
		return nil, fmt.Errorf("search channels %q: %w", query, err)
	}

	candidates := make([]ChannelCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		candidates = append(candidates, ChannelCandidate{
			ChannelID:   item.ID.ChannelID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
		})
	}
	return candidates, nil
}

// Channel fetches channel details by ID.
func (g *Gateway) Channel(ctx context.Context, channelID string) (*ChannelInfo, error) {
	var resp struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
			Statistics struct {
				VideoCount string `json:"videoCount"`
			} `json:"statistics"`
		} `json:"items"`
	}

	params := url.Values{
		"part": {"snippet,contentDetails,statistics"},
		"id":   {channelID},
	}
	if err := g.get(ctx, "channels", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s: no such channel", channelID)
	}

	item := resp.Items[0]
	count, _ := strconv.ParseInt(item.Statistics.VideoCount, 10, 64)
	return &ChannelInfo{
		ChannelID:         item.ID,
		Title:             item.Snippet.Title,
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
		VideoCount:        count,
	}, nil
}

// PlaylistPage fetches one page of a playlist. An empty pageToken starts
// from the beginning; an empty returned token means the playlist is done.
func (g *Gateway) PlaylistPage(ctx context.Context, playlistID, pageToken string) ([]PlaylistItem, string, error) {
	var resp struct {
		NextPageToken string `json:"nextPageToken"`
		Items         []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
				ResourceID   struct {
					VideoID string `json:"videoId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		} `json:"items"`
	}

	params := url.Values{
		"part":       {"snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(playlistPageSize)},
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	if err := g.get(ctx, "playlistItems", params, &resp); err != nil {
		return nil, "", fmt.Errorf("fetch playlist %s page: %w", playlistID, err)
	}

	items := make([]PlaylistItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, PlaylistItem{
			PlaylistItemID: item.ID,
			VideoID:        item.Snippet.ResourceID.VideoID,
			Title:          item.Snippet.Title,
			ChannelTitle:   item.Snippet.ChannelTitle,
		})
	}
	return items, resp.NextPageToken, nil
}

// SearchVideos returns video IDs for a free-text query, used as the
// fallback discovery path when an artist has no viable channel.
func (g *Gateway) SearchVideos(ctx context.Context, query string, maxResults int) ([]string, error) {
	var resp struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}

	params := url.Values{
		"part":       {"id"},
		"type":       {"video"},
		"q":          {query},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	if g.region != "" {
		params.Set("regionCode", g.region)
	}
	if err := g.get(ctx, "search", params, &resp); err != nil {
		return nil, fmt.Errorf("search videos %q: %w", query, err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

// VideoDetails fetches full metadata for the given IDs, batching requests
// at the API's 50-ID limit. IDs the API no longer knows are simply absent
// from the result.
func (g *Gateway) VideoDetails(ctx context.Context, ids []string) ([]models.CandidateVideo, error) {
	videos := make([]models.CandidateVideo, 0, len(ids))

	for start := 0; start < len(ids); start += videoBatchSize {
		end := min(start+videoBatchSize, len(ids))

		batch, err := g.videoBatch(ctx, ids[start:end])
		if err != nil {
			return videos, err
		}
		videos = append(videos, batch...)
	}
	return videos, nil
}

func (g *Gateway) videoBatch(ctx context.Context, ids []string) ([]models.CandidateVideo, error) {
	var resp struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				Description  string `json:"description"`
				ChannelID    string `json:"channelId"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
			} `json:"snippet"`
			ContentDetails struct {
				Duration          string `json:"duration"`
				Definition        string `json:"definition"`
				RegionRestriction struct {
					Blocked []string `json:"blocked"`
					Allowed []string `json:"allowed"`
				} `json:"regionRestriction"`
			} `json:"contentDetails"`
			Status struct {
				UploadStatus  string `json:"uploadStatus"`
				PrivacyStatus string `json:"privacyStatus"`
			} `json:"status"`
		} `json:"items"`
	}

	params := url.Values{
		"part": {"snippet,contentDetails,status"},
		"id":   {strings.Join(ids, ",")},
	}
	if err := g.get(ctx, "videos", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch video details: %w", err)
	}

	videos := make([]models.CandidateVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)

		v := models.CandidateVideo{
			VideoID:       item.ID,
			Title:         item.Snippet.Title,
			Description:   item.Snippet.Description,
			Duration:      ParseISODuration(item.ContentDetails.Duration),
			PublishedAt:   published,
			PublishedYear: published.Year(),
			ChannelID:     item.Snippet.ChannelID,
			ChannelTitle:  item.Snippet.ChannelTitle,
			Definition:    item.ContentDetails.Definition,
			Source:        "original",
		}
		if item.Status.UploadStatus != "" && item.Status.UploadStatus != "processed" {
			v.Unavailable = true
		}
		if item.Status.PrivacyStatus == "private" {
			v.Unavailable = true
		}
		v.RegionBlocked = g.regionBlocked(item.ContentDetails.RegionRestriction.Blocked, item.ContentDetails.RegionRestriction.Allowed)

		videos = append(videos, v)
	}
	return videos, nil
}

func (g *Gateway) regionBlocked(blocked, allowed []string) bool {
	if g.region == "" {
		return false
	}
	for _, r := range blocked {
		if strings.EqualFold(r, g.region) {
			return true
		}
	}
	if len(allowed) > 0 {
		for _, r := range allowed {
			if strings.EqualFold(r, g.region) {
				return false
			}
		}
		return true
	}
	return false
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration like "PT3M42S" into whole
// seconds. Malformed input parses to 0, which classification treats as a
// missing duration rather than an error.
func ParseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	seconds, _ := strconv.Atoi(m[4])
	return ((days*24+hours)*60+minutes)*60 + seconds
}
