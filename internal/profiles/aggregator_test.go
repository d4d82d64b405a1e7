package profiles_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/profiles"
	"github.com/cliptide/backend/internal/repositories"
)

type fakeProfileStore struct {
	users   map[string]models.User
	edges   map[[2]string]bool
	history map[string][]models.WatchedVideo
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		users:   make(map[string]models.User),
		edges:   make(map[[2]string]bool),
		history: make(map[string][]models.WatchedVideo),
	}
}

func (s *fakeProfileStore) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeProfileStore) SubscriberCount(_ context.Context, channelID string) (int64, error) {
	var n int64
	for edge, ok := range s.edges {
		if ok && edge[1] == channelID {
			n++
		}
	}
	return n, nil
}

func (s *fakeProfileStore) SubscribedToCount(_ context.Context, subscriberID string) (int64, error) {
	var n int64
	for edge, ok := range s.edges {
		if ok && edge[0] == subscriberID {
			n++
		}
	}
	return n, nil
}

func (s *fakeProfileStore) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	return s.edges[[2]string{subscriberID, channelID}], nil
}

func (s *fakeProfileStore) WatchHistory(_ context.Context, userID string) ([]models.WatchedVideo, error) {
	return s.history[userID], nil
}

func TestChannelProfileCountsAndViewerEdge(t *testing.T) {
	store := newFakeProfileStore()
	store.users["alice"] = models.User{ID: "u2", Username: "alice", FullName: "Alice A"}
	store.edges[[2]string{"u1", "u2"}] = true
	store.edges[[2]string{"u3", "u2"}] = true
	store.edges[[2]string{"u2", "u4"}] = true

	aggregator := profiles.NewAggregator(store)

	profile, err := aggregator.ChannelProfile(context.Background(), "Alice", "u1")
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}

	if profile.SubscriberCount != 2 {
		t.Fatalf("expected 2 subscribers, got %d", profile.SubscriberCount)
	}
	if profile.SubscribedToCount != 1 {
		t.Fatalf("expected 1 subscribed channel, got %d", profile.SubscribedToCount)
	}
	if !profile.IsSubscribed {
		t.Fatal("expected viewer u1 to be subscribed")
	}
	if profile.Username != "alice" {
		t.Fatalf("expected public username, got %q", profile.Username)
	}

	// The flag follows the edge exactly: remove it and the profile flips.
	delete(store.edges, [2]string{"u1", "u2"})
	profile, err = aggregator.ChannelProfile(context.Background(), "alice", "u1")
	if err != nil {
		t.Fatalf("channel profile after unsubscribe: %v", err)
	}
	if profile.IsSubscribed {
		t.Fatal("expected isSubscribed to flip to false")
	}
}

func TestChannelProfileUnknownUsername(t *testing.T) {
	aggregator := profiles.NewAggregator(newFakeProfileStore())
	if _, err := aggregator.ChannelProfile(context.Background(), "ghost", "u1"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := aggregator.ChannelProfile(context.Background(), "  ", "u1"); !errors.Is(err, profiles.ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestWatchHistoryPreservesOrderAndDuplicates(t *testing.T) {
	store := newFakeProfileStore()
	now := time.Now().UTC()
	store.history["u1"] = []models.WatchedVideo{
		{Video: models.Video{ID: "v2"}, Owner: models.PublicUser{Username: "alice"}, WatchedAt: now},
		{Video: models.Video{ID: "v1"}, Owner: models.PublicUser{Username: "bob"}, WatchedAt: now.Add(-time.Minute)},
		{Video: models.Video{ID: "v2"}, Owner: models.PublicUser{Username: "alice"}, WatchedAt: now.Add(-time.Hour)},
	}

	aggregator := profiles.NewAggregator(store)

	history, err := aggregator.WatchHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}

	if len(history) != 3 {
		t.Fatalf("expected 3 entries including the duplicate, got %d", len(history))
	}
	if history[0].Video.ID != "v2" || history[1].Video.ID != "v1" || history[2].Video.ID != "v2" {
		t.Fatalf("unexpected order: %+v", history)
	}
	if history[0].Owner.Username != "alice" {
		t.Fatalf("expected owner projection inlined, got %+v", history[0].Owner)
	}
}
