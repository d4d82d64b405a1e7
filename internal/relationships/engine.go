package relationships

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cliptide/backend/internal/models"
)

var (
	// ErrForbidden indicates the acting user does not own the mutated resource.
	ErrForbidden = errors.New("caller does not own this resource")
	// ErrSelfSubscription indicates a user tried to subscribe to themself.
	ErrSelfSubscription = errors.New("cannot subscribe to your own channel")
	// ErrInvalidReference indicates a missing or malformed entity reference.
	ErrInvalidReference = errors.New("invalid entity reference")
)

// SubscriptionStore persists subscriber-to-channel edges. Toggle must be
// backed by a unique pair constraint so two racing callers never create a
// duplicate edge.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (subscribed bool, err error)
}

// PlaylistStore persists playlists and their video membership. AddVideo must
// use an insert-if-absent mutation so set semantics hold under concurrency.
type PlaylistStore interface {
	FindByID(ctx context.Context, playlistID string) (models.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID string) (added bool, err error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// VideoFinder resolves video references for ownership checks.
type VideoFinder interface {
	FindByID(ctx context.Context, videoID string) (models.Video, error)
}

// Engine maintains the relationship collections: subscription edges and
// playlist membership. It enforces ownership and idempotence before any
// storage mutation; the storage layer's constraints close the remaining
// races.
type Engine struct {
	subscriptions SubscriptionStore
	playlists     PlaylistStore
	videos        VideoFinder
}

// NewEngine constructs a relationship engine over the provided stores.
func NewEngine(subscriptions SubscriptionStore, playlists PlaylistStore, videos VideoFinder) *Engine {
	return &Engine{subscriptions: subscriptions, playlists: playlists, videos: videos}
}

// ToggleSubscription flips the edge between actor and channel. It reports
// true when the call created the edge and false when it removed it, so the
// operation is its own inverse.
func (e *Engine) ToggleSubscription(ctx context.Context, actorID, channelID string) (bool, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(channelID) == "" {
		return false, ErrInvalidReference
	}
	if actorID == channelID {
		return false, ErrSelfSubscription
	}

	subscribed, err := e.subscriptions.Toggle(ctx, actorID, channelID)
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}

	return subscribed, nil
}

// AddPlaylistVideo inserts a video into a playlist the actor owns. The video
// must also belong to the actor. Adding a video that is already present is a
// no-op, reported through the added flag rather than an error.
func (e *Engine) AddPlaylistVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, bool, error) {
	if strings.TrimSpace(playlistID) == "" || strings.TrimSpace(videoID) == "" {
		return models.Playlist{}, false, ErrInvalidReference
	}

	playlist, err := e.ownedPlaylist(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, false, err
	}

	video, err := e.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Playlist{}, false, err
	}
	if video.OwnerID != actorID {
		return models.Playlist{}, false, ErrForbidden
	}

	added, err := e.playlists.AddVideo(ctx, playlist.ID, video.ID)
	if err != nil {
		return models.Playlist{}, false, fmt.Errorf("add playlist video: %w", err)
	}

	updated, err := e.playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		return models.Playlist{}, false, err
	}

	return updated, added, nil
}

// RemovePlaylistVideo removes a video from a playlist the actor owns.
// Removing a video that is not a member is a harmless no-op.
func (e *Engine) RemovePlaylistVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	if strings.TrimSpace(playlistID) == "" || strings.TrimSpace(videoID) == "" {
		return models.Playlist{}, ErrInvalidReference
	}

	playlist, err := e.ownedPlaylist(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}

	if err := e.playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		return models.Playlist{}, fmt.Errorf("remove playlist video: %w", err)
	}

	return e.playlists.FindByID(ctx, playlist.ID)
}

// ownedPlaylist loads the playlist and verifies ownership, distinguishing a
// missing playlist from one owned by somebody else.
func (e *Engine) ownedPlaylist(ctx context.Context, actorID, playlistID string) (models.Playlist, error) {
	playlist, err := e.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	if playlist.OwnerID != actorID {
		return models.Playlist{}, ErrForbidden
	}
	return playlist, nil
}
