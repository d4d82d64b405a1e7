package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/relationships"
)

func newPlaylistHandler(playlists *fakePlaylistStore, videos *fakeVideoStore) PlaylistHandler {
	return PlaylistHandler{
		Playlists: playlists,
		Engine:    relationships.NewEngine(newFakeSubscriptionStore(), playlists, videos),
	}
}

func TestPlaylistHandlerCreate(t *testing.T) {
	playlists := newFakePlaylistStore()
	handler := newPlaylistHandler(playlists, newFakeVideoStore())

	body := `{"name":"Favorites","description":"the good ones"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/playlists", strings.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var playlist models.Playlist
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if playlist.OwnerID != "user-1" || playlist.Name != "Favorites" {
		t.Fatalf("unexpected playlist %+v", playlist)
	}
	if playlist.ID == "" {
		t.Fatal("expected a generated playlist id")
	}
}

func TestPlaylistHandlerCreateRequiresName(t *testing.T) {
	handler := newPlaylistHandler(newFakePlaylistStore(), newFakeVideoStore())

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/playlists", strings.NewReader(`{"name":"  "}`)), "user-1")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestPlaylistHandlerUpdateOwnership(t *testing.T) {
	playlists := newFakePlaylistStore()
	playlists.add(models.Playlist{ID: "list-1", OwnerID: "owner-1", Name: "Mine"})
	handler := newPlaylistHandler(playlists, newFakeVideoStore())

	t.Run("non-owner is forbidden", func(t *testing.T) {
		body := `{"name":"Hijacked"}`
		req := authed(httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/list-1", strings.NewReader(body)), "intruder")
		req.SetPathValue("playlistID", "list-1")
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Message != "only the playlist owner may modify it" {
			t.Fatalf("unexpected message %q", env.Message)
		}
	})

	t.Run("missing playlist is not found", func(t *testing.T) {
		body := `{"name":"Whatever"}`
		req := authed(httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/ghost", strings.NewReader(body)), "owner-1")
		req.SetPathValue("playlistID", "ghost")
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("owner may rename", func(t *testing.T) {
		body := `{"name":"Renamed","description":"still mine"}`
		req := authed(httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/list-1", strings.NewReader(body)), "owner-1")
		req.SetPathValue("playlistID", "list-1")
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
		}

		stored, _ := playlists.FindByID(t.Context(), "list-1")
		if stored.Name != "Renamed" {
			t.Fatalf("expected playlist to be renamed, got %q", stored.Name)
		}
	})
}

func TestPlaylistHandlerDelete(t *testing.T) {
	playlists := newFakePlaylistStore()
	playlists.add(models.Playlist{ID: "list-1", OwnerID: "owner-1", Name: "Mine"})
	handler := newPlaylistHandler(playlists, newFakeVideoStore())

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/list-1", nil), "owner-1")
	req.SetPathValue("playlistID", "list-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, err := playlists.FindByID(t.Context(), "list-1"); err == nil {
		t.Fatal("expected playlist to be deleted")
	}
}

func TestPlaylistHandlerAddVideo(t *testing.T) {
	playlists := newFakePlaylistStore()
	playlists.add(models.Playlist{ID: "list-1", OwnerID: "owner-1", Name: "Mine"})
	videos := newFakeVideoStore()
	videos.add(models.Video{ID: "vid-1", OwnerID: "owner-1", Title: "Clip", Published: true}, models.PublicUser{ID: "owner-1"})
	handler := newPlaylistHandler(playlists, videos)

	addVideo := func(actorID, videoID string) *httptest.ResponseRecorder {
		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/playlists/list-1/videos/"+videoID, nil), actorID)
		req.SetPathValue("playlistID", "list-1")
		req.SetPathValue("videoID", videoID)
		rec := httptest.NewRecorder()
		handler.AddVideo(rec, req)
		return rec
	}

	rec := addVideo("owner-1", "vid-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if env := decodeEnvelope(t, rec); env.Message != "video added to playlist" {
		t.Fatalf("unexpected message %q", env.Message)
	}

	// Adding the same video again succeeds without growing the playlist.
	rec = addVideo("owner-1", "vid-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on duplicate add, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != "video already in playlist" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	var playlist models.Playlist
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if len(playlist.VideoIDs) != 1 {
		t.Fatalf("expected a single membership entry, got %v", playlist.VideoIDs)
	}

	rec = addVideo("intruder", "vid-1")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for non-owner, got %d", rec.Code)
	}

	rec = addVideo("owner-1", "ghost")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown video, got %d", rec.Code)
	}
}

func TestPlaylistHandlerAddForeignVideo(t *testing.T) {
	playlists := newFakePlaylistStore()
	playlists.add(models.Playlist{ID: "list-1", OwnerID: "owner-1", Name: "Mine"})
	videos := newFakeVideoStore()
	videos.add(models.Video{ID: "vid-2", OwnerID: "somebody-else", Title: "Not yours", Published: true}, models.PublicUser{ID: "somebody-else"})
	handler := newPlaylistHandler(playlists, videos)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/playlists/list-1/videos/vid-2", nil), "owner-1")
	req.SetPathValue("playlistID", "list-1")
	req.SetPathValue("videoID", "vid-2")
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestPlaylistHandlerRemoveVideo(t *testing.T) {
	playlists := newFakePlaylistStore()
	playlists.add(models.Playlist{ID: "list-1", OwnerID: "owner-1", Name: "Mine", VideoIDs: []string{"vid-1"}})
	videos := newFakeVideoStore()
	videos.add(models.Video{ID: "vid-1", OwnerID: "owner-1", Title: "Clip", Published: true}, models.PublicUser{ID: "owner-1"})
	handler := newPlaylistHandler(playlists, videos)

	remove := func(videoID string) *httptest.ResponseRecorder {
		req := authed(httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/list-1/videos/"+videoID, nil), "owner-1")
		req.SetPathValue("playlistID", "list-1")
		req.SetPathValue("videoID", videoID)
		rec := httptest.NewRecorder()
		handler.RemoveVideo(rec, req)
		return rec
	}

	rec := remove("vid-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var playlist models.Playlist
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if len(playlist.VideoIDs) != 0 {
		t.Fatalf("expected empty membership, got %v", playlist.VideoIDs)
	}

	// Removing an absent video is a harmless no-op.
	rec = remove("vid-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on absent remove, got %d", rec.Code)
	}
}

func TestPlaylistHandlerListForUser(t *testing.T) {
	playlists := newFakePlaylistStore()
	playlists.add(models.Playlist{ID: "list-1", OwnerID: "owner-1", Name: "Mine"})
	playlists.add(models.Playlist{ID: "list-2", OwnerID: "owner-2", Name: "Theirs"})
	handler := newPlaylistHandler(playlists, newFakeVideoStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/owner-1/playlists", nil)
	req.SetPathValue("userID", "owner-1")
	rec := httptest.NewRecorder()

	handler.ListForUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var owned []models.Playlist
	if err := json.Unmarshal(env.Data, &owned); err != nil {
		t.Fatalf("decode playlists: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != "list-1" {
		t.Fatalf("unexpected playlists %+v", owned)
	}
}
