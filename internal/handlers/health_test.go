package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	HealthHandler{}.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "service healthy" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if got := string(env.Data); got != `{"status":"ok"}` {
		t.Fatalf("unexpected data %s", got)
	}
}
