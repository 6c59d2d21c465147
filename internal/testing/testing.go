// package testing provides shared mocks for exercising pipeline commands
// and stages without a network.
package testing

import (
	"context"
	"fmt"

	"github.com/zdhoward/Playlistarr/internal/gateway"
	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/shared"
)

// Page is one canned playlist page served by MockAPI.
type Page struct {
	Items []gateway.PlaylistItem
	Next  string
}

// MockAPI implements the discovery and snapshot read surfaces from canned
// data. Setting QuotaAfter to a non-negative call count makes every later
// call fail with quota exhaustion.
type MockAPI struct {
	Channels   map[string][]gateway.ChannelCandidate
	Infos      map[string]*gateway.ChannelInfo
	Pages      map[string]Page // "<playlistID>|<pageToken>" -> page
	Videos     map[string]models.CandidateVideo
	SearchHits []string

	Calls      int
	QuotaAfter int
}

// NewMockAPI returns an empty mock with quota failures disabled.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		Channels:   map[string][]gateway.ChannelCandidate{},
		Infos:      map[string]*gateway.ChannelInfo{},
		Pages:      map[string]Page{},
		Videos:     map[string]models.CandidateVideo{},
		QuotaAfter: -1,
	}
}

func (m *MockAPI) check() error {
	m.Calls++
	if m.QuotaAfter >= 0 && m.Calls > m.QuotaAfter {
		return fmt.Errorf("%w: all keys spent", shared.ErrQuotaExhausted)
	}
	return nil
}

func (m *MockAPI) SearchChannels(_ context.Context, query string) ([]gateway.ChannelCandidate, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	return m.Channels[query], nil
}

func (m *MockAPI) Channel(_ context.Context, channelID string) (*gateway.ChannelInfo, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	info, ok := m.Infos[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: no such channel", channelID)
	}
	return info, nil
}

func (m *MockAPI) PlaylistPage(_ context.Context, playlistID, pageToken string) ([]gateway.PlaylistItem, string, error) {
	if err := m.check(); err != nil {
		return nil, "", err
	}
	page := m.Pages[playlistID+"|"+pageToken]
	return page.Items, page.Next, nil
}

func (m *MockAPI) SearchVideos(_ context.Context, _ string, _ int) ([]string, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	return m.SearchHits, nil
}

func (m *MockAPI) VideoDetails(_ context.Context, ids []string) ([]models.CandidateVideo, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	out := make([]models.CandidateVideo, 0, len(ids))
	for _, id := range ids {
		if v, ok := m.Videos[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// MockMutator records playlist writes. QuotaAfter works like MockAPI's.
type MockMutator struct {
	Inserted   []string
	Deleted    []string
	QuotaAfter int
	NotFound   map[string]bool
}

// NewMockMutator returns an empty mock with quota failures disabled.
func NewMockMutator() *MockMutator {
	return &MockMutator{QuotaAfter: -1, NotFound: map[string]bool{}}
}

func (m *MockMutator) calls() int {
	return len(m.Inserted) + len(m.Deleted)
}

func (m *MockMutator) InsertPlaylistItem(_ context.Context, _, videoID string) (string, error) {
	if m.QuotaAfter >= 0 && m.calls() >= m.QuotaAfter {
		return "", fmt.Errorf("%w: mutation budget spent", shared.ErrQuotaExhausted)
	}
	m.Inserted = append(m.Inserted, videoID)
	return "pli-" + videoID, nil
}

func (m *MockMutator) DeletePlaylistItem(_ context.Context, playlistItemID string) error {
	if m.NotFound[playlistItemID] {
		return fmt.Errorf("%w: playlist item %s", shared.ErrNotFound, playlistItemID)
	}
	if m.QuotaAfter >= 0 && m.calls() >= m.QuotaAfter {
		return fmt.Errorf("%w: mutation budget spent", shared.ErrQuotaExhausted)
	}
	m.Deleted = append(m.Deleted, playlistItemID)
	return nil
}
