package repositories

import (
	"context"
	"fmt"

	"github.com/cliptide/backend/internal/db"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/profiles"
)

// PostgresProfileRepository answers the read-side relationship queries behind
// channel profiles and watch history. It composes the user repository for
// lookups and computes counts directly from the subscription edges.
type PostgresProfileRepository struct {
	pool  db.Pool
	users *PostgresUserRepository
}

// NewPostgresProfileRepository constructs a profile repository backed by
// PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool, users *PostgresUserRepository) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool, users: users}
}

// FindUserByUsername resolves a channel by its unique lowercase username.
func (r *PostgresProfileRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.users.FindByUsername(ctx, username)
}

// SubscriberCount returns how many users subscribe to the channel.
func (r *PostgresProfileRepository) SubscriberCount(ctx context.Context, channelID string) (int64, error) {
	return r.countEdges(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// SubscribedToCount returns how many channels the user subscribes to.
func (r *PostgresProfileRepository) SubscribedToCount(ctx context.Context, subscriberID string) (int64, error) {
	return r.countEdges(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresProfileRepository) countEdges(ctx context.Context, query, id string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscription edges: %w", err)
	}

	return count, nil
}

// IsSubscribed reports whether the subscriber currently holds an edge to the
// channel.
func (r *PostgresProfileRepository) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
        )
    `, subscriberID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check subscription edge: %w", err)
	}

	return exists, nil
}

// WatchHistory expands the user's watch log, most recent first, joining each
// entry to the video and the video owner's public projection. Entries are not
// deduplicated.
func (r *PostgresProfileRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration, v.views, v.published, v.asset_status, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               h.watched_at
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1
        ORDER BY h.watched_at DESC, h.id DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var history []models.WatchedVideo
	for rows.Next() {
		var entry models.WatchedVideo
		if err := rows.Scan(&entry.Video.ID, &entry.Video.OwnerID, &entry.Video.Title, &entry.Video.Description,
			&entry.Video.MediaURL, &entry.Video.ThumbnailURL, &entry.Video.Duration, &entry.Video.Views,
			&entry.Video.Published, &entry.Video.AssetStatus, &entry.Video.CreatedAt, &entry.Video.UpdatedAt,
			&entry.Owner.ID, &entry.Owner.Username, &entry.Owner.FullName, &entry.Owner.AvatarURL,
			&entry.WatchedAt); err != nil {
			return nil, fmt.Errorf("scan watch history entry: %w", err)
		}
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return history, nil
}

var _ profiles.ProfileStore = (*PostgresProfileRepository)(nil)
