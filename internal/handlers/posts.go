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
	"github.com/cliptide/backend/internal/repositories"
)

// PostHandler implements the short-form post endpoints.
type PostHandler struct {
	Posts   PostStore
	Users   UserStore
	NowFunc func() time.Time
}

// Create handles POST /api/v1/posts requests.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "post content is required")
		return
	}

	now := h.now()
	post := models.Post{
		ID:        uuid.NewString(),
		OwnerID:   identity.UserID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Posts.Create(ctx, post); err != nil {
		logger.Error("create post", "error", err, "userId", identity.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to create post")
		return
	}

	respondData(ctx, w, http.StatusCreated, post, "post created")
}

// ListForUser handles GET /api/v1/users/{userID}/posts requests.
func (h PostHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userID")
	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logging.FromContext(ctx).Error("load user for posts", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load user")
		return
	}

	query := r.URL.Query()
	page := intQueryParam(query.Get("page"), 1)
	limit := intQueryParam(query.Get("limit"), 10)

	posts, total, err := h.Posts.ListByOwner(ctx, userID, page, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list posts", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list posts")
		return
	}

	respondData(ctx, w, http.StatusOK, postListResponse{
		Posts: posts,
		Total: total,
		Page:  page,
		Limit: limit,
	}, "posts")
}

// Update handles PATCH /api/v1/posts/{postID} requests.
func (h PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID := r.PathValue("postID")
	if !h.authorizeOwner(ctx, w, postID, identity.UserID) {
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "post content is required")
		return
	}

	post, err := h.Posts.Update(ctx, identity.UserID, postID, req.Content)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "post not found")
			return
		}
		logger.Error("update post", "error", err, "postId", postID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update post")
		return
	}

	respondData(ctx, w, http.StatusOK, post, "post updated")
}

// Delete handles DELETE /api/v1/posts/{postID} requests.
func (h PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID := r.PathValue("postID")
	if !h.authorizeOwner(ctx, w, postID, identity.UserID) {
		return
	}

	if err := h.Posts.Delete(ctx, identity.UserID, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "post not found")
			return
		}
		logger.Error("delete post", "error", err, "postId", postID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to delete post")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "post deleted")
}

func (h PostHandler) authorizeOwner(ctx context.Context, w http.ResponseWriter, postID, userID string) bool {
	post, err := h.Posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "post not found")
			return false
		}
		logging.FromContext(ctx).Error("load post for authorization", "error", err, "postId", postID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load post")
		return false
	}

	if post.OwnerID != userID {
		respondError(ctx, w, http.StatusForbidden, "only the post owner may modify it")
		return false
	}

	return true
}

type postRequest struct {
	Content string `json:"content"`
}

type postListResponse struct {
	Posts []models.Post `json:"posts"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (h PostHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
