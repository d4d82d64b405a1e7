package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cliptide/backend/internal/logging"
)

// envelope is the uniform response body for every endpoint. Success responses
// carry the payload under data; failures carry the message and an errors list,
// empty unless the caller supplies field-level detail.
type envelope struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data,omitempty"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitzero"`
	Success    bool     `json:"success"`
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Message:    message,
		Errors:     []string{},
		Success:    false,
	})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", body.StatusCode, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case body.StatusCode >= http.StatusInternalServerError:
		logger.Error("request failed", "status", body.StatusCode, "message", body.Message)
	case body.StatusCode >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", body.StatusCode, "message", body.Message)
	}
}
