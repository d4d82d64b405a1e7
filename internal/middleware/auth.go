package middleware

import (
	"net/http"
	"strings"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/logging"
)

// TokenValidator checks an access token and returns the subject user id.
type TokenValidator interface {
	ValidateAccess(token string) (string, error)
}

// Authenticate rejects requests that do not carry a valid access token, either
// as a bearer header or the session cookie. The resolved identity is attached
// to the request context.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractAccessToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			userID, err := validator.ValidateAccess(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("access token rejected", "error", err)
				unauthorized(w)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate attaches an identity when a valid access token is
// present and lets the request proceed anonymously otherwise.
func OptionalAuthenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractAccessToken(r); token != "" {
				if userID, err := validator.ValidateAccess(token); err == nil {
					ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: userID})
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractAccessToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}

	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}

	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"statusCode":401,"message":"authentication required","errors":[],"success":false}`))
}
