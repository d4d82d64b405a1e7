package repositories

import (
	"context"

	"github.com/cliptide/backend/internal/models"
)

// SubscriptionRepository defines data access for subscriber-to-channel edges.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (subscribed bool, err error)
	SubscriberCount(ctx context.Context, channelID string) (int64, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.PublicUser, error)
}
