package app

import (
	"log/slog"
	"time"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/config"
	"github.com/cliptide/backend/internal/db"
	"github.com/cliptide/backend/internal/handlers"
	"github.com/cliptide/backend/internal/media"
	"github.com/cliptide/backend/internal/middleware"
	"github.com/cliptide/backend/internal/profiles"
	"github.com/cliptide/backend/internal/relationships"
	"github.com/cliptide/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, cfg config.Config, assets handlers.AssetSaver, logger *slog.Logger) (handlers.Dependencies, *media.Pipeline, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	posts := repositories.NewPostgresPostRepository(pool)
	profileStore := repositories.NewPostgresProfileRepository(pool, users)

	signer, err := auth.NewTokenSigner(auth.SignerConfig{
		AccessSecret:  []byte(cfg.Tokens.AccessSecret),
		RefreshSecret: []byte(cfg.Tokens.RefreshSecret),
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
		Issuer:        cfg.Tokens.Issuer,
	})
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	var storageBackend media.AssetStorage
	if saver, ok := assets.(media.AssetStorage); ok {
		storageBackend = saver
	}

	pipeline := media.NewPipeline(storageBackend, videos, media.PipelineConfig{
		QueueSize: cfg.UploadQueueSize,
		Workers:   cfg.UploadWorkers,
	}, logger)

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      auth.NewManager(signer, users),
		Passwords:     auth.NewCredentials(users),
		Tokens:        signer,
		Engine:        relationships.NewEngine(subscriptions, playlists, videos),
		Subscriptions: subscriptions,
		Playlists:     playlists,
		Videos:        videos,
		Comments:      comments,
		Posts:         posts,
		Profiles:      profiles.NewAggregator(profileStore),
		Pipeline:      pipeline,
		Assets:        assets,
		LoginLimiter:  middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}

	return deps, pipeline, nil
}
