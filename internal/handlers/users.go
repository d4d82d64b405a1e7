package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"path"
	"strings"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/logging"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/profiles"
	"github.com/cliptide/backend/internal/repositories"
)

const maxImageUploadBytes = 10 << 20

// UserHandler implements the account profile and channel endpoints.
type UserHandler struct {
	Users    UserStore
	Profiles ProfileReader
	Assets   AssetSaver
}

// CurrentUser handles GET /api/v1/users/me requests.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "account not found")
			return
		}
		logging.FromContext(ctx).Error("load current user", "error", err, "userId", identity.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load account")
		return
	}

	respondData(ctx, w, http.StatusOK, user.PublicProfile(), "current user")
}

// UpdateDetails handles PATCH /api/v1/users/me requests.
func (h UserHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "full name and email are required")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	user, err := h.Users.UpdateDetails(ctx, identity.UserID, req.FullName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, http.StatusNotFound, "account not found")
		case errors.Is(err, repositories.ErrConflict):
			respondError(ctx, w, http.StatusConflict, "email is already in use")
		default:
			logger.Error("update account details", "error", err, "userId", identity.UserID)
			respondError(ctx, w, http.StatusInternalServerError, "unable to update account")
		}
		return
	}

	respondData(ctx, w, http.StatusOK, user.PublicProfile(), "account updated")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar requests with a
// multipart "avatar" file.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars", h.Users.UpdateAvatar)
}

// UpdateCover handles PATCH /api/v1/users/me/cover requests with a multipart
// "coverImage" file.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "covers", h.Users.UpdateCover)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, prefix string, apply imageApplier) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if h.Assets == nil {
		logger.Error("asset storage unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "asset storage unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, fmt.Sprintf("%s file is required", field))
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, fmt.Sprintf("%s file is required", field))
		return
	}
	defer file.Close()

	key := path.Join(prefix, identity.UserID, path.Base(header.Filename))
	location, err := h.Assets.Save(ctx, key, file)
	if err != nil {
		logger.Error("save image asset", "error", err, "userId", identity.UserID, "key", key)
		respondError(ctx, w, http.StatusInternalServerError, "unable to store image")
		return
	}

	user, err := apply(ctx, identity.UserID, location)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "account not found")
			return
		}
		logger.Error("persist image reference", "error", err, "userId", identity.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update account")
		return
	}

	respondData(ctx, w, http.StatusOK, user.PublicProfile(), "image updated")
}

// ChannelProfile handles GET /api/v1/channels/{username} requests. The viewer
// may be anonymous; when authenticated, the response reports whether they
// subscribe to the channel.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var viewerID string
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		viewerID = identity.UserID
	}

	profile, err := h.Profiles.ChannelProfile(ctx, r.PathValue("username"), viewerID)
	if err != nil {
		switch {
		case errors.Is(err, profiles.ErrInvalidUsername):
			respondError(ctx, w, http.StatusBadRequest, "username is required")
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, http.StatusNotFound, "channel not found")
		default:
			logging.FromContext(ctx).Error("load channel profile", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "unable to load channel")
		}
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile")
}

// WatchHistory handles GET /api/v1/users/me/history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	history, err := h.Profiles.WatchHistory(ctx, identity.UserID)
	if err != nil {
		logging.FromContext(ctx).Error("load watch history", "error", err, "userId", identity.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load watch history")
		return
	}

	respondData(ctx, w, http.StatusOK, history, "watch history")
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type imageApplier func(ctx context.Context, userID, url string) (models.User, error)
