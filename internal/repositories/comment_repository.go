package repositories

import (
	"context"

	"github.com/cliptide/backend/internal/models"
)

// CommentRepository defines data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, commentID string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, int64, error)
	Update(ctx context.Context, ownerID, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, ownerID, commentID string) error
}
