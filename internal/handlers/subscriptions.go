package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/logging"
	"github.com/cliptide/backend/internal/relationships"
	"github.com/cliptide/backend/internal/repositories"
)

// SubscriptionHandler implements the subscription toggle and read endpoints.
type SubscriptionHandler struct {
	Engine        RelationshipEngine
	Subscriptions SubscriptionStore
	Users         UserStore
}

// Toggle handles POST /api/v1/subscriptions/{channelID} requests. The first
// call creates the edge, the next removes it; toggling twice always lands back
// where it started.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	channelID := strings.TrimSpace(r.PathValue("channelID"))
	if channelID == "" {
		respondError(ctx, w, http.StatusBadRequest, "channel id is required")
		return
	}

	channel, err := h.Users.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		logger.Error("toggle subscription channel lookup", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to toggle subscription")
		return
	}

	subscribed, err := h.Engine.ToggleSubscription(ctx, identity.UserID, channelID)
	if err != nil {
		switch {
		case errors.Is(err, relationships.ErrSelfSubscription):
			respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		case errors.Is(err, relationships.ErrInvalidReference):
			respondError(ctx, w, http.StatusBadRequest, "channel id is required")
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, http.StatusNotFound, "channel not found")
		default:
			logger.Error("toggle subscription", "error", err, "channelId", channelID, "userId", identity.UserID)
			respondError(ctx, w, http.StatusInternalServerError, "unable to toggle subscription")
		}
		return
	}

	message := fmt.Sprintf("Subscribed to %s", channel.Username)
	if !subscribed {
		message = fmt.Sprintf("Unsubscribed from %s", channel.Username)
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// SubscriberCount handles GET /api/v1/channels/{channelID}/subscribers
// requests. The count is computed from the edges on every call.
func (h SubscriptionHandler) SubscriberCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID := strings.TrimSpace(r.PathValue("channelID"))
	if channelID == "" {
		respondError(ctx, w, http.StatusBadRequest, "channel id is required")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		logging.FromContext(ctx).Error("subscriber count channel lookup", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to count subscribers")
		return
	}

	count, err := h.Subscriptions.SubscriberCount(ctx, channelID)
	if err != nil {
		logging.FromContext(ctx).Error("count subscribers", "error", err, "channelId", channelID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to count subscribers")
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]int64{"subscriberCount": count}, "subscriber count")
}

// ListSubscribed handles GET /api/v1/subscriptions requests, returning the
// channels the caller subscribes to.
func (h SubscriptionHandler) ListSubscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	channels, err := h.Subscriptions.ListSubscribedChannels(ctx, identity.UserID)
	if err != nil {
		logging.FromContext(ctx).Error("list subscribed channels", "error", err, "userId", identity.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list subscriptions")
		return
	}

	respondData(ctx, w, http.StatusOK, channels, "subscribed channels")
}
