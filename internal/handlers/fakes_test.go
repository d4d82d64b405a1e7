package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/media"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/profiles"
	"github.com/cliptide/backend/internal/repositories"
)

type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func authed(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))
}

func newTestSessionManager(t *testing.T, store auth.CredentialStore) *auth.Manager {
	t.Helper()
	signer, err := auth.NewTokenSigner(auth.SignerConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "cliptide-test",
	})
	if err != nil {
		t.Fatalf("new token signer: %v", err)
	}
	return auth.NewManager(signer, store)
}

// fakeUserStore backs both the HTTP handlers and the session manager.
type fakeUserStore struct {
	mu      sync.Mutex
	users   map[string]models.User
	history map[string][]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[string]models.User),
		history: make(map[string][]string),
	}
}

func (s *fakeUserStore) add(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, userID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	return s.findBy(func(u models.User) bool { return u.Email == email })
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	return s.findBy(func(u models.User) bool { return u.Username == username })
}

func (s *fakeUserStore) findBy(match func(models.User) bool) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if match(user) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) UpdateDetails(_ context.Context, userID, fullName, email string) (models.User, error) {
	return s.mutate(userID, func(u *models.User) {
		u.FullName = fullName
		u.Email = email
	})
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, userID, avatarURL string) (models.User, error) {
	return s.mutate(userID, func(u *models.User) { u.AvatarURL = avatarURL })
}

func (s *fakeUserStore) UpdateCover(_ context.Context, userID, coverURL string) (models.User, error) {
	return s.mutate(userID, func(u *models.User) { u.CoverURL = coverURL })
}

func (s *fakeUserStore) mutate(userID string, apply func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	apply(&user)
	s.users[userID] = user
	return user, nil
}

func (s *fakeUserStore) AppendWatchHistory(_ context.Context, userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	s.history[userID] = append(s.history[userID], videoID)
	return nil
}

func (s *fakeUserStore) SetRefreshToken(_ context.Context, userID, token string) error {
	if _, err := s.mutate(userID, func(u *models.User) { u.RefreshToken = token }); err != nil {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *fakeUserStore) SwapRefreshToken(_ context.Context, userID, old, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	if user.RefreshToken != old {
		return auth.ErrTokenReused
	}
	user.RefreshToken = replacement
	s.users[userID] = user
	return nil
}

func (s *fakeUserStore) ClearRefreshToken(_ context.Context, userID string) error {
	if _, err := s.mutate(userID, func(u *models.User) { u.RefreshToken = "" }); err != nil {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	if _, err := s.mutate(userID, func(u *models.User) { u.Password = passwordHash }); err != nil {
		return auth.ErrUserNotFound
	}
	return nil
}

// fakeVideoStore keeps videos in memory with owner-conditional mutations.
type fakeVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
	owners map[string]models.PublicUser
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{
		videos: make(map[string]models.Video),
		owners: make(map[string]models.PublicUser),
	}
}

func (s *fakeVideoStore) add(video models.Video, owner models.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	s.owners[video.OwnerID] = owner
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, videoID string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) FindWithOwner(_ context.Context, videoID string) (models.Video, models.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return models.Video{}, models.PublicUser{}, repositories.ErrNotFound
	}
	return video, s.owners[video.OwnerID], nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	return nil
}

func (s *fakeVideoStore) UpdateDetails(_ context.Context, ownerID, videoID, title, description, thumbnailURL string) (models.Video, error) {
	return s.mutateOwned(ownerID, videoID, func(v *models.Video) {
		v.Title = title
		v.Description = description
		if thumbnailURL != "" {
			v.ThumbnailURL = thumbnailURL
		}
	})
}

func (s *fakeVideoStore) Delete(_ context.Context, ownerID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok || video.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(s.videos, videoID)
	return nil
}

func (s *fakeVideoStore) TogglePublish(_ context.Context, ownerID, videoID string) (models.Video, error) {
	return s.mutateOwned(ownerID, videoID, func(v *models.Video) { v.Published = !v.Published })
}

func (s *fakeVideoStore) mutateOwned(ownerID, videoID string, apply func(*models.Video)) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	apply(&video)
	s.videos[videoID] = video
	return video, nil
}

func (s *fakeVideoStore) List(_ context.Context, opts repositories.VideoListOptions) ([]models.Video, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Video
	for _, video := range s.videos {
		if !video.Published {
			continue
		}
		if opts.Query != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(opts.Query)) {
			continue
		}
		matched = append(matched, video)
	}
	return matched, int64(len(matched)), nil
}

func (s *fakeVideoStore) MarkAssetReady(_ context.Context, videoID, mediaURL string, duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.AssetStatus = models.AssetStatusReady
	video.MediaURL = mediaURL
	video.Duration = duration
	s.videos[videoID] = video
	return nil
}

func (s *fakeVideoStore) MarkAssetFailed(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.AssetStatus = models.AssetStatusFailed
	s.videos[videoID] = video
	return nil
}

// fakePlaylistStore backs both the playlist handlers and the relationship
// engine.
type fakePlaylistStore struct {
	mu        sync.Mutex
	playlists map[string]models.Playlist
	members   map[string][]string
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]string),
	}
}

func (s *fakePlaylistStore) add(playlist models.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists[playlist.ID] = playlist
	s.members[playlist.ID] = append([]string(nil), playlist.VideoIDs...)
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.add(playlist)
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, playlistID string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.VideoIDs = append([]string(nil), s.members[playlistID]...)
	return playlist, nil
}

func (s *fakePlaylistStore) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var owned []models.Playlist
	for id, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			playlist.VideoIDs = append([]string(nil), s.members[id]...)
			owned = append(owned, playlist)
		}
	}
	return owned, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, ownerID, playlistID, name, description string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[playlistID] = playlist
	playlist.VideoIDs = append([]string(nil), s.members[playlistID]...)
	return playlist, nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, ownerID, playlistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok || playlist.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(s.playlists, playlistID)
	delete(s.members, playlistID)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[playlistID]; !ok {
		return false, repositories.ErrNotFound
	}
	for _, member := range s.members[playlistID] {
		if member == videoID {
			return false, nil
		}
	}
	s.members[playlistID] = append(s.members[playlistID], videoID)
	return true, nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.members[playlistID]
	for i, member := range members {
		if member == videoID {
			s.members[playlistID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeSubscriptionStore keeps subscription edges in memory.
type fakeSubscriptionStore struct {
	mu       sync.Mutex
	edges    map[string]bool
	channels map[string][]models.PublicUser
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{
		edges:    make(map[string]bool),
		channels: make(map[string][]models.PublicUser),
	}
}

func edgeKey(subscriberID, channelID string) string {
	return subscriberID + "->" + channelID
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey(subscriberID, channelID)
	if s.edges[key] {
		delete(s.edges, key)
		return false, nil
	}
	s.edges[key] = true
	return true, nil
}

func (s *fakeSubscriptionStore) SubscriberCount(_ context.Context, channelID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for key := range s.edges {
		if strings.HasSuffix(key, "->"+channelID) {
			count++
		}
	}
	return count, nil
}

func (s *fakeSubscriptionStore) ListSubscribedChannels(_ context.Context, subscriberID string) ([]models.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PublicUser(nil), s.channels[subscriberID]...), nil
}

// fakeProfileReader returns canned channel profiles and watch history.
type fakeProfileReader struct {
	profiles map[string]models.ChannelProfile
	history  map[string][]models.WatchedVideo
}

func newFakeProfileReader() *fakeProfileReader {
	return &fakeProfileReader{
		profiles: make(map[string]models.ChannelProfile),
		history:  make(map[string][]models.WatchedVideo),
	}
}

func (r *fakeProfileReader) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return models.ChannelProfile{}, profiles.ErrInvalidUsername
	}
	profile, ok := r.profiles[strings.ToLower(username)]
	if !ok {
		return models.ChannelProfile{}, repositories.ErrNotFound
	}
	return profile, nil
}

func (r *fakeProfileReader) WatchHistory(_ context.Context, userID string) ([]models.WatchedVideo, error) {
	return append([]models.WatchedVideo(nil), r.history[userID]...), nil
}

// fakePipeline records scheduled uploads.
type fakePipeline struct {
	mu      sync.Mutex
	uploads []media.Upload
	err     error
}

func (p *fakePipeline) Enqueue(_ context.Context, upload media.Upload) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uploads = append(p.uploads, upload)
	return nil
}

// fakeAssetSaver stores asset bytes in memory and returns a CDN-style URL.
type fakeAssetSaver struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func newFakeAssetSaver() *fakeAssetSaver {
	return &fakeAssetSaver{saved: make(map[string][]byte)}
}

func (s *fakeAssetSaver) Save(_ context.Context, name string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[name] = content
	return "https://cdn.test/" + name, nil
}
