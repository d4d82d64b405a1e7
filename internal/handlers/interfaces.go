package handlers

import (
	"context"
	"io"

	"github.com/cliptide/backend/internal/media"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the account and
// profile handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, userID string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateDetails(ctx context.Context, userID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (models.User, error)
	UpdateCover(ctx context.Context, userID, coverURL string) (models.User, error)
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
}

// SessionManager issues, rotates, and revokes session token pairs.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (models.TokenPair, error)
	Revoke(ctx context.Context, userID string) error
}

// PasswordChanger updates a user's password after re-verifying the old one.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// RelationshipEngine mutates subscription edges and playlist membership.
type RelationshipEngine interface {
	ToggleSubscription(ctx context.Context, actorID, channelID string) (bool, error)
	AddPlaylistVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, bool, error)
	RemovePlaylistVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)
}

// SubscriptionStore exposes subscription reads for the channel endpoints.
type SubscriptionStore interface {
	SubscriberCount(ctx context.Context, channelID string) (int64, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.PublicUser, error)
}

// PlaylistStore captures playlist persistence for the playlist handlers.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, playlistID string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, ownerID, playlistID, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, ownerID, playlistID string) error
}

// VideoStore captures persistence for the video catalog handlers.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, videoID string) (models.Video, error)
	FindWithOwner(ctx context.Context, videoID string) (models.Video, models.PublicUser, error)
	IncrementViews(ctx context.Context, videoID string) error
	UpdateDetails(ctx context.Context, ownerID, videoID, title, description, thumbnailURL string) (models.Video, error)
	Delete(ctx context.Context, ownerID, videoID string) error
	TogglePublish(ctx context.Context, ownerID, videoID string) (models.Video, error)
	List(ctx context.Context, opts repositories.VideoListOptions) ([]models.Video, int64, error)
}

// CommentStore captures persistence for the comment handlers.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, commentID string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, int64, error)
	Update(ctx context.Context, ownerID, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, ownerID, commentID string) error
}

// PostStore captures persistence for the short-form post handlers.
type PostStore interface {
	Create(ctx context.Context, post models.Post) error
	FindByID(ctx context.Context, postID string) (models.Post, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Post, int64, error)
	Update(ctx context.Context, ownerID, postID, content string) (models.Post, error)
	Delete(ctx context.Context, ownerID, postID string) error
}

// ProfileReader resolves aggregated channel profiles and watch history.
type ProfileReader interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}

// MediaPipeline schedules background persistence of uploaded media.
type MediaPipeline interface {
	Enqueue(ctx context.Context, upload media.Upload) error
}

// AssetSaver stores small assets (thumbnails, avatars) synchronously.
type AssetSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
