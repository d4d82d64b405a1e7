package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/logging"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/relationships"
	"github.com/cliptide/backend/internal/repositories"
)

// PlaylistHandler implements the playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Engine    RelationshipEngine
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "playlist name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     identity.UserID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		logger.Error("create playlist", "error", err, "userId", identity.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to create playlist")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created")
}

// Get handles GET /api/v1/playlists/{playlistID} requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return
		}
		logging.FromContext(ctx).Error("load playlist", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist")
}

// ListForUser handles GET /api/v1/users/{userID}/playlists requests.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		respondError(ctx, w, http.StatusBadRequest, "user id is required")
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("list playlists", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list playlists")
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists")
}

// Update handles PATCH /api/v1/playlists/{playlistID} requests. Only the owner
// may rename a playlist.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID := r.PathValue("playlistID")
	if !h.authorizeOwner(ctx, w, playlistID, identity.UserID) {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "playlist name is required")
		return
	}

	playlist, err := h.Playlists.Update(ctx, identity.UserID, playlistID, req.Name, strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return
		}
		logger.Error("update playlist", "error", err, "playlistId", playlistID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated")
}

// Delete handles DELETE /api/v1/playlists/{playlistID} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID := r.PathValue("playlistID")
	if !h.authorizeOwner(ctx, w, playlistID, identity.UserID) {
		return
	}

	if err := h.Playlists.Delete(ctx, identity.UserID, playlistID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return
		}
		logger.Error("delete playlist", "error", err, "playlistId", playlistID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to delete playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo handles POST /api/v1/playlists/{playlistID}/videos/{videoID}
// requests. Adding a video that is already a member succeeds without change.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlist, added, err := h.Engine.AddPlaylistVideo(ctx, identity.UserID, r.PathValue("playlistID"), r.PathValue("videoID"))
	if err != nil {
		h.respondEngineError(ctx, w, err)
		return
	}

	message := "video added to playlist"
	if !added {
		message = "video already in playlist"
	}

	respondData(ctx, w, http.StatusOK, playlist, message)
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistID}/videos/{videoID}
// requests. Removing a video that is not a member succeeds without change.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	playlist, err := h.Engine.RemovePlaylistVideo(ctx, identity.UserID, r.PathValue("playlistID"), r.PathValue("videoID"))
	if err != nil {
		h.respondEngineError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "video removed from playlist")
}

// authorizeOwner resolves missing-versus-foreign playlists so that non-owners
// get a forbidden response rather than a silent not-found.
func (h PlaylistHandler) authorizeOwner(ctx context.Context, w http.ResponseWriter, playlistID, userID string) bool {
	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return false
		}
		logging.FromContext(ctx).Error("load playlist for authorization", "error", err, "playlistId", playlistID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load playlist")
		return false
	}

	if playlist.OwnerID != userID {
		respondError(ctx, w, http.StatusForbidden, "only the playlist owner may modify it")
		return false
	}

	return true
}

func (h PlaylistHandler) respondEngineError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relationships.ErrForbidden):
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this resource")
	case errors.Is(err, relationships.ErrInvalidReference):
		respondError(ctx, w, http.StatusBadRequest, "playlist and video ids are required")
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "playlist or video not found")
	default:
		logging.FromContext(ctx).Error("playlist membership mutation", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update playlist")
	}
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
