package repositories

import (
	"context"

	"github.com/cliptide/backend/internal/models"
)

// PlaylistRepository defines data access for playlists and their membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, playlistID string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, ownerID, playlistID, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, ownerID, playlistID string) error
	AddVideo(ctx context.Context, playlistID, videoID string) (added bool, err error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}
