package repositories

import (
	"context"

	"github.com/cliptide/backend/internal/models"
)

// VideoListOptions controls search, ordering, and pagination for the video
// catalog.
type VideoListOptions struct {
	Query     string
	Username  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// VideoRepository exposes data access for published videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, videoID string) (models.Video, error)
	FindWithOwner(ctx context.Context, videoID string) (models.Video, models.PublicUser, error)
	IncrementViews(ctx context.Context, videoID string) error
	UpdateDetails(ctx context.Context, ownerID, videoID, title, description, thumbnailURL string) (models.Video, error)
	Delete(ctx context.Context, ownerID, videoID string) error
	TogglePublish(ctx context.Context, ownerID, videoID string) (models.Video, error)
	List(ctx context.Context, opts VideoListOptions) ([]models.Video, int64, error)
}
