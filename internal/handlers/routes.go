package handlers

import (
	"net/http"

	"github.com/cliptide/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	requireAuth := middleware.Authenticate(deps.Tokens)
	optionalAuth := middleware.OptionalAuthenticate(deps.Tokens)

	health := HealthHandler{}
	authHandler := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Passwords: deps.Passwords, Limiter: deps.LoginLimiter}
	users := UserHandler{Users: deps.Users, Profiles: deps.Profiles, Assets: deps.Assets}
	subscriptions := SubscriptionHandler{Engine: deps.Engine, Subscriptions: deps.Subscriptions, Users: deps.Users}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Engine: deps.Engine}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Pipeline: deps.Pipeline, Assets: deps.Assets}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	posts := PostHandler{Posts: deps.Posts, Users: deps.Users}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.Handle("POST /api/v1/auth/logout", requireAuth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /api/v1/auth/change-password", requireAuth(http.HandlerFunc(authHandler.ChangePassword)))

	mux.Handle("GET /api/v1/users/me", requireAuth(http.HandlerFunc(users.CurrentUser)))
	mux.Handle("PATCH /api/v1/users/me", requireAuth(http.HandlerFunc(users.UpdateDetails)))
	mux.Handle("PATCH /api/v1/users/me/avatar", requireAuth(http.HandlerFunc(users.UpdateAvatar)))
	mux.Handle("PATCH /api/v1/users/me/cover", requireAuth(http.HandlerFunc(users.UpdateCover)))
	mux.Handle("GET /api/v1/users/me/history", requireAuth(http.HandlerFunc(users.WatchHistory)))
	mux.HandleFunc("GET /api/v1/users/{userID}/playlists", playlists.ListForUser)
	mux.HandleFunc("GET /api/v1/users/{userID}/posts", posts.ListForUser)

	mux.Handle("GET /api/v1/channels/{username}", optionalAuth(http.HandlerFunc(users.ChannelProfile)))
	mux.HandleFunc("GET /api/v1/channels/{channelID}/subscribers", subscriptions.SubscriberCount)

	mux.Handle("GET /api/v1/subscriptions", requireAuth(http.HandlerFunc(subscriptions.ListSubscribed)))
	mux.Handle("POST /api/v1/subscriptions/{channelID}", requireAuth(http.HandlerFunc(subscriptions.Toggle)))

	mux.Handle("POST /api/v1/playlists", requireAuth(http.HandlerFunc(playlists.Create)))
	mux.HandleFunc("GET /api/v1/playlists/{playlistID}", playlists.Get)
	mux.Handle("PATCH /api/v1/playlists/{playlistID}", requireAuth(http.HandlerFunc(playlists.Update)))
	mux.Handle("DELETE /api/v1/playlists/{playlistID}", requireAuth(http.HandlerFunc(playlists.Delete)))
	mux.Handle("POST /api/v1/playlists/{playlistID}/videos/{videoID}", requireAuth(http.HandlerFunc(playlists.AddVideo)))
	mux.Handle("DELETE /api/v1/playlists/{playlistID}/videos/{videoID}", requireAuth(http.HandlerFunc(playlists.RemoveVideo)))

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.Handle("POST /api/v1/videos", requireAuth(http.HandlerFunc(videos.Publish)))
	mux.Handle("GET /api/v1/videos/{videoID}", optionalAuth(http.HandlerFunc(videos.Get)))
	mux.Handle("PATCH /api/v1/videos/{videoID}", requireAuth(http.HandlerFunc(videos.Update)))
	mux.Handle("DELETE /api/v1/videos/{videoID}", requireAuth(http.HandlerFunc(videos.Delete)))
	mux.Handle("PATCH /api/v1/videos/{videoID}/publish", requireAuth(http.HandlerFunc(videos.TogglePublish)))

	mux.HandleFunc("GET /api/v1/videos/{videoID}/comments", comments.List)
	mux.Handle("POST /api/v1/videos/{videoID}/comments", requireAuth(http.HandlerFunc(comments.Create)))
	mux.Handle("PATCH /api/v1/comments/{commentID}", requireAuth(http.HandlerFunc(comments.Update)))
	mux.Handle("DELETE /api/v1/comments/{commentID}", requireAuth(http.HandlerFunc(comments.Delete)))

	mux.Handle("POST /api/v1/posts", requireAuth(http.HandlerFunc(posts.Create)))
	mux.Handle("PATCH /api/v1/posts/{postID}", requireAuth(http.HandlerFunc(posts.Update)))
	mux.Handle("DELETE /api/v1/posts/{postID}", requireAuth(http.HandlerFunc(posts.Delete)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Passwords     PasswordChanger
	Tokens        middleware.TokenValidator
	Engine        RelationshipEngine
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Videos        VideoStore
	Comments      CommentStore
	Posts         PostStore
	Profiles      ProfileReader
	Pipeline      MediaPipeline
	Assets        AssetSaver
	LoginLimiter  RateLimiter
}
