package repositories

import (
	"context"

	"github.com/cliptide/backend/internal/models"
)

// UserRepository defines the data access contract for user accounts and their
// credential fields.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, userID string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateDetails(ctx context.Context, userID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (models.User, error)
	UpdateCover(ctx context.Context, userID, coverURL string) (models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetRefreshToken(ctx context.Context, userID, token string) error
	SwapRefreshToken(ctx context.Context, userID, old, replacement string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
}
