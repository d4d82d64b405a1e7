package repositories

import (
	"context"

	"github.com/cliptide/backend/internal/models"
)

// PostRepository defines data access for short-form posts.
type PostRepository interface {
	Create(ctx context.Context, post models.Post) error
	FindByID(ctx context.Context, postID string) (models.Post, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Post, int64, error)
	Update(ctx context.Context, ownerID, postID, content string) (models.Post, error)
	Delete(ctx context.Context, ownerID, postID string) error
}
