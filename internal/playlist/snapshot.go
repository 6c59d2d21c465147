package playlist

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zdhoward/Playlistarr/internal/gateway"
	"github.com/zdhoward/Playlistarr/internal/models"
	"github.com/zdhoward/Playlistarr/internal/store"
)

// Reader is the read surface needed to refresh a playlist snapshot.
type Reader interface {
	PlaylistPage(ctx context.Context, playlistID, pageToken string) ([]gateway.PlaylistItem, string, error)
}

// Cache loads and refreshes the on-disk playlist snapshot. Within its TTL
// the snapshot is authoritative and refreshing costs zero API calls.
type Cache struct {
	reader Reader
	layout store.Layout
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

// NewCache builds a snapshot cache with the given TTL.
func NewCache(reader Reader, layout store.Layout, ttl time.Duration, logger *log.Logger) *Cache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Cache{reader: reader, layout: layout, ttl: ttl, logger: logger, now: time.Now}
}

// Load returns the current snapshot, refreshing from the API only when the
// cached copy is missing, stale, or force is set.
func (c *Cache) Load(ctx context.Context, playlistID string, force bool) (*models.PlaylistSnapshot, error) {
	path := c.layout.SnapshotPath(playlistID)

	cached := &models.PlaylistSnapshot{}
	found, err := store.ReadJSON(path, cached)
	if err != nil {
		return nil, err
	}
	if found && !force && cached.Fresh(playlistID, c.ttl, c.now()) {
		c.logger.Debug("playlist snapshot fresh", "playlist", playlistID, "items", len(cached.Items))
		return cached, nil
	}

	snapshot, err := c.refresh(ctx, playlistID, cached)
	if err != nil {
		return nil, err
	}
	if err := c.Save(snapshot); err != nil {
		return nil, err
	}
	c.logger.Info("playlist snapshot refreshed", "playlist", playlistID, "items", len(snapshot.Items))
	return snapshot, nil
}

// Peek returns the cached snapshot without any refresh, for planners that
// must stay off the network entirely.
func (c *Cache) Peek(playlistID string) (*models.PlaylistSnapshot, bool, error) {
	snapshot := &models.PlaylistSnapshot{}
	found, err := store.ReadJSON(c.layout.SnapshotPath(playlistID), snapshot)
	return snapshot, found, err
}

// Save persists the snapshot atomically.
func (c *Cache) Save(snapshot *models.PlaylistSnapshot) error {
	return store.WriteJSON(c.layout.SnapshotPath(snapshot.PlaylistID), snapshot)
}

// refresh pulls every page of the live playlist. Ownership metadata from
// the previous snapshot carries over: the API does not know which entries
// this tool inserted, only the old snapshot does.
func (c *Cache) refresh(ctx context.Context, playlistID string, old *models.PlaylistSnapshot) (*models.PlaylistSnapshot, error) {
	snapshot := models.NewPlaylistSnapshot(playlistID)
	snapshot.FetchedAt = c.now().UTC()

	token := ""
	for {
		items, next, err := c.reader.PlaylistPage(ctx, playlistID, token)
		if err != nil {
			return nil, fmt.Errorf("refresh snapshot: %w", err)
		}
		for _, item := range items {
			entry := models.SnapshotItem{
				PlaylistItemID: item.PlaylistItemID,
				Title:          item.Title,
			}
			if prev, ok := old.Items[item.VideoID]; ok {
				entry.Artist = prev.Artist
				entry.SongKey = prev.SongKey
				entry.AddedByUs = prev.AddedByUs
			}
			snapshot.Items[item.VideoID] = entry
		}
		if next == "" {
			return snapshot, nil
		}
		token = next
	}
}
