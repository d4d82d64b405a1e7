package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/logging"
	"github.com/cliptide/backend/internal/media"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/repositories"
)

const maxVideoUploadBytes = 512 << 20

// VideoHandler implements the video catalog endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Users    UserStore
	Pipeline MediaPipeline
	Assets   AssetSaver
	NowFunc  func() time.Time
}

// Publish handles POST /api/v1/videos requests. The media file is accepted
// immediately and pushed to object storage in the background; the video stays
// in the pending state until the pipeline settles it.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if h.Pipeline == nil {
		logger.Error("media pipeline unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "media processing unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxVideoUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "multipart form with a video file is required")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))

	var duration float64
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(ctx, w, http.StatusBadRequest, "duration must be a non-negative number")
			return
		}
		duration = parsed
	}

	file, header, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
		return
	}
	defer file.Close()

	// Stream the upload to a spool file rather than holding it in memory;
	// the pipeline worker owns the file from the moment Enqueue succeeds.
	spool, err := os.CreateTemp("", "cliptide-upload-*")
	if err != nil {
		logger.Error("create upload spool", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to read uploaded file")
		return
	}

	size, err := io.Copy(spool, file)
	if cerr := spool.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(spool.Name())
		logger.Error("spool video upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to read uploaded file")
		return
	}
	if size == 0 {
		os.Remove(spool.Name())
		respondError(ctx, w, http.StatusBadRequest, "videoFile is empty")
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     identity.UserID,
		Title:       title,
		Description: description,
		Duration:    duration,
		Published:   true,
		AssetStatus: models.AssetStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if thumb, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumb.Close()
		if h.Assets == nil {
			os.Remove(spool.Name())
			respondError(ctx, w, http.StatusInternalServerError, "asset storage unavailable")
			return
		}
		key := path.Join("thumbnails", video.ID, path.Base(thumbHeader.Filename))
		location, err := h.Assets.Save(ctx, key, thumb)
		if err != nil {
			os.Remove(spool.Name())
			logger.Error("save thumbnail", "error", err, "videoId", video.ID)
			respondError(ctx, w, http.StatusInternalServerError, "unable to store thumbnail")
			return
		}
		video.ThumbnailURL = location
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		os.Remove(spool.Name())
		logger.Error("create video", "error", err, "userId", identity.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to publish video")
		return
	}

	upload := media.Upload{
		VideoID:  video.ID,
		Name:     path.Base(header.Filename),
		Source:   spool.Name(),
		Duration: duration,
	}
	if err := h.Pipeline.Enqueue(ctx, upload); err != nil {
		os.Remove(spool.Name())
		logger.Error("enqueue media upload", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusServiceUnavailable, "media processing is temporarily unavailable")
		return
	}

	respondData(ctx, w, http.StatusAccepted, video, "video upload accepted")
}

// Get handles GET /api/v1/videos/{videoID} requests. Each successful view
// bumps the counter and, for authenticated callers, appends a watch history
// entry.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, owner, err := h.Videos.FindWithOwner(ctx, r.PathValue("videoID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("load video", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	var viewerID string
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		viewerID = identity.UserID
	}

	// Drafts are visible to their owner only.
	if !video.Published && viewerID != video.OwnerID {
		respondError(ctx, w, http.StatusNotFound, "video not found")
		return
	}

	if err := h.Videos.IncrementViews(ctx, video.ID); err != nil {
		logger.Warn("increment views", "error", err, "videoId", video.ID)
	} else {
		video.Views++
	}

	if viewerID != "" {
		if err := h.Users.AppendWatchHistory(ctx, viewerID, video.ID); err != nil {
			logger.Warn("append watch history", "error", err, "videoId", video.ID, "userId", viewerID)
		}
	}

	respondData(ctx, w, http.StatusOK, videoResponse{Video: video, Owner: owner}, "video")
}

// List handles GET /api/v1/videos requests with search, sorting, and
// pagination query parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	opts := repositories.VideoListOptions{
		Query:     strings.TrimSpace(query.Get("query")),
		Username:  strings.TrimSpace(query.Get("username")),
		SortBy:    strings.TrimSpace(query.Get("sortBy")),
		SortOrder: strings.TrimSpace(query.Get("sortOrder")),
		Page:      intQueryParam(query.Get("page"), 1),
		Limit:     intQueryParam(query.Get("limit"), 10),
	}

	videos, total, err := h.Videos.List(ctx, opts)
	if err != nil {
		logging.FromContext(ctx).Error("list videos", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list videos")
		return
	}

	respondData(ctx, w, http.StatusOK, videoListResponse{
		Videos: videos,
		Total:  total,
		Page:   opts.Page,
		Limit:  opts.Limit,
	}, "videos")
}

// Update handles PATCH /api/v1/videos/{videoID} requests.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID := r.PathValue("videoID")
	if !h.authorizeOwner(ctx, w, videoID, identity.UserID) {
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	video, err := h.Videos.UpdateDetails(ctx, identity.UserID, videoID, req.Title, strings.TrimSpace(req.Description), strings.TrimSpace(req.ThumbnailURL))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("update video", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update video")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "video updated")
}

// Delete handles DELETE /api/v1/videos/{videoID} requests.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID := r.PathValue("videoID")
	if !h.authorizeOwner(ctx, w, videoID, identity.UserID) {
		return
	}

	if err := h.Videos.Delete(ctx, identity.UserID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("delete video", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to delete video")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/{videoID}/publish requests,
// flipping the publish flag.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID := r.PathValue("videoID")
	if !h.authorizeOwner(ctx, w, videoID, identity.UserID) {
		return
	}

	video, err := h.Videos.TogglePublish(ctx, identity.UserID, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("toggle publish", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to toggle publish state")
		return
	}

	message := "video published"
	if !video.Published {
		message = "video unpublished"
	}
	respondData(ctx, w, http.StatusOK, video, message)
}

func (h VideoHandler) authorizeOwner(ctx context.Context, w http.ResponseWriter, videoID, userID string) bool {
	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return false
		}
		logging.FromContext(ctx).Error("load video for authorization", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return false
	}

	if video.OwnerID != userID {
		respondError(ctx, w, http.StatusForbidden, "only the video owner may modify it")
		return false
	}

	return true
}

type updateVideoRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type videoResponse struct {
	Video models.Video      `json:"video"`
	Owner models.PublicUser `json:"owner"`
}

type videoListResponse struct {
	Videos []models.Video `json:"videos"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
