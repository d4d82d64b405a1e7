package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cliptide/backend/internal/models"
)

// ErrInvalidUsername indicates a blank or malformed channel username.
var ErrInvalidUsername = errors.New("username is required")

// ProfileStore exposes the relationship queries the aggregator joins. Counts
// are computed from the subscription edges on every call; nothing is
// materialized, so the views cannot drift.
type ProfileStore interface {
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	SubscriberCount(ctx context.Context, channelID string) (int64, error)
	SubscribedToCount(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}

// Aggregator computes derived relationship views for channel profiles and
// watch history.
type Aggregator struct {
	store ProfileStore
}

// NewAggregator constructs an Aggregator over the provided store.
func NewAggregator(store ProfileStore) *Aggregator {
	if store == nil {
		panic("profiles: store must not be nil")
	}
	return &Aggregator{store: store}
}

// ChannelProfile resolves a channel by username and decorates its public
// fields with subscriber counts and whether the viewer currently subscribes.
func (a *Aggregator) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.ChannelProfile{}, ErrInvalidUsername
	}

	channel, err := a.store.FindUserByUsername(ctx, username)
	if err != nil {
		return models.ChannelProfile{}, err
	}

	subscribers, err := a.store.SubscriberCount(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscribers: %w", err)
	}

	subscribedTo, err := a.store.SubscribedToCount(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscribed channels: %w", err)
	}

	var isSubscribed bool
	if viewerID != "" && viewerID != channel.ID {
		isSubscribed, err = a.store.IsSubscribed(ctx, viewerID, channel.ID)
		if err != nil {
			return models.ChannelProfile{}, fmt.Errorf("check subscription: %w", err)
		}
	}

	return models.ChannelProfile{
		PublicUser:        channel.PublicProfile(),
		SubscriberCount:   subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      isSubscribed,
	}, nil
}

// WatchHistory expands the user's watch log into full video projections with
// each owner's public identity inlined. Order is most-recent-first and
// duplicate entries are preserved: the history is a log, not a set.
func (a *Aggregator) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("profiles: user id is required")
	}
	return a.store.WatchHistory(ctx, userID)
}
