package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptide/backend/internal/db"
	"github.com/cliptide/backend/internal/models"
)

const videoColumns = `id, owner_id, title, description, media_url, thumbnail_url, duration, views, published, asset_status, created_at, updated_at`

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by
// PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	status := video.AssetStatus
	if strings.TrimSpace(status) == "" {
		status = models.AssetStatusPending
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, media_url, thumbnail_url, duration, views, published, asset_status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.MediaURL, video.ThumbnailURL,
		video.Duration, video.Views, video.Published, status, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by primary key.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, videoID string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// FindWithOwner fetches a video along with its owner's public projection.
func (r *PostgresVideoRepository) FindWithOwner(ctx context.Context, videoID string) (models.Video, models.PublicUser, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, models.PublicUser{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration, v.views, v.published, v.asset_status, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, videoID)

	var (
		video models.Video
		owner models.PublicUser
	)
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.MediaURL,
		&video.ThumbnailURL, &video.Duration, &video.Views, &video.Published, &video.AssetStatus,
		&video.CreatedAt, &video.UpdatedAt,
		&owner.ID, &owner.Username, &owner.FullName, &owner.AvatarURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, models.PublicUser{}, ErrNotFound
		}
		return models.Video{}, models.PublicUser{}, fmt.Errorf("select video with owner: %w", err)
	}

	return video, owner, nil
}

// IncrementViews bumps the view counter by one. The increment happens inside
// the update statement, so the counter never regresses under concurrency.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
    `, videoID)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateDetails edits title, description, and optionally the thumbnail,
// conditional on ownership.
func (r *PostgresVideoRepository) UpdateDetails(ctx context.Context, ownerID, videoID, title, description, thumbnailURL string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `
        UPDATE videos
        SET title = $3,
            description = $4,
            thumbnail_url = CASE WHEN $5 = '' THEN thumbnail_url ELSE $5 END,
            updated_at = now()
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns, videoID, ownerID, title, description, thumbnailURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}

	return video, nil
}

// Delete removes a video, conditional on ownership.
func (r *PostgresVideoRepository) Delete(ctx context.Context, ownerID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM videos
        WHERE id = $1 AND owner_id = $2
    `, videoID, ownerID)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// TogglePublish flips the publish flag in a single statement, conditional on
// ownership.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, ownerID, videoID string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `
        UPDATE videos
        SET published = NOT published, updated_at = now()
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns, videoID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("toggle publish: %w", err)
	}

	return video, nil
}

var videoSortColumns = map[string]string{
	"title":     "title",
	"createdAt": "created_at",
	"views":     "views",
}

// List returns published videos matching the options plus the total count for
// pagination.
func (r *PostgresVideoRepository) List(ctx context.Context, opts VideoListOptions) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sortColumn, ok := videoSortColumns[opts.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		order = "ASC"
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 10
	}

	where := `v.published`
	args := []any{}
	if opts.Username != "" {
		args = append(args, strings.ToLower(opts.Username))
		where += fmt.Sprintf(" AND u.username = $%d", len(args))
	}
	if opts.Query != "" {
		args = append(args, "%"+strings.ToLower(opts.Query)+"%")
		where += fmt.Sprintf(" AND (lower(v.title) LIKE $%d OR lower(v.description) LIKE $%d)", len(args), len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM videos v JOIN users u ON u.id = v.owner_id WHERE ` + where
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	listQuery := fmt.Sprintf(`
        SELECT v.id, v.owner_id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration, v.views, v.published, v.asset_status, v.created_at, v.updated_at
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE %s
        ORDER BY v.%s %s
        LIMIT $%d OFFSET $%d
    `, where, sortColumn, order, len(args)-1, len(args))

	rows, err := conn.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.MediaURL,
			&video.ThumbnailURL, &video.Duration, &video.Views, &video.Published, &video.AssetStatus,
			&video.CreatedAt, &video.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

// MarkAssetReady records a successful media upload for the video.
func (r *PostgresVideoRepository) MarkAssetReady(ctx context.Context, videoID, mediaURL string, duration float64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET asset_status = $2, media_url = $3, duration = $4, updated_at = now()
        WHERE id = $1
    `, videoID, models.AssetStatusReady, mediaURL, duration)
	if err != nil {
		return fmt.Errorf("mark asset ready: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkAssetFailed records a failed media upload for the video.
func (r *PostgresVideoRepository) MarkAssetFailed(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET asset_status = $2, updated_at = now()
        WHERE id = $1
    `, videoID, models.AssetStatusFailed)
	if err != nil {
		return fmt.Errorf("mark asset failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.MediaURL,
		&video.ThumbnailURL, &video.Duration, &video.Views, &video.Published, &video.AssetStatus,
		&video.CreatedAt, &video.UpdatedAt)
	return video, err
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
