package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/query"
)

type PostgresVideoStore struct {
	db *sql.DB
}

func NewPostgresVideoStore(db *sql.DB) *PostgresVideoStore {
	if db == nil {
		panic("db cannot be nil for PostgresVideoStore")
	}
	return &PostgresVideoStore{db: db}
}

// ownerColumns receives the nullable columns of a LEFT JOIN on users.
type ownerColumns struct {
	ID       uuid.NullUUID
	Username sql.NullString
	Avatar   sql.NullString
}

func (o *ownerColumns) targets() []interface{} {
	return []interface{}{&o.ID, &o.Username, &o.Avatar}
}

func (o *ownerColumns) profile() *models.OwnerProfile {
	if !o.ID.Valid {
		return nil
	}
	return &models.OwnerProfile{
		ID:       o.ID.UUID,
		Username: o.Username.String,
		Avatar:   o.Avatar.String,
	}
}

func (pg *PostgresVideoStore) ListVideos(ctx context.Context, q query.Query) ([]VideoSummary, int, error) {
	listing, err := videoRelation.buildListing(q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build video listing: %w", err)
	}

	var total int
	if err := pg.db.QueryRowContext(ctx, listing.CountSQL, listing.CountArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get total video count: %w", err)
	}

	rows, err := pg.db.QueryContext(ctx, listing.SelectSQL, listing.SelectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get videos: %w", err)
	}
	defer rows.Close()

	videos := []VideoSummary{}
	for rows.Next() {
		var v VideoSummary
		var owner ownerColumns

		if err := rows.Scan(videoSummaryTargets(&v, &owner, q.Projection)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan video row: %w", err)
		}
		v.Owner = owner.profile()

		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over video rows: %w", err)
	}

	return videos, total, nil
}

func videoSummaryTargets(v *VideoSummary, owner *ownerColumns, projection []query.Field) []interface{} {
	targets := make([]interface{}, 0, len(projection)+2)
	for _, f := range projection {
		switch f {
		case query.FieldID:
			targets = append(targets, &v.ID)
		case query.FieldThumbnail:
			targets = append(targets, &v.Thumbnail)
		case query.FieldTitle:
			targets = append(targets, &v.Title)
		case query.FieldViews:
			targets = append(targets, &v.Views)
		case query.FieldDuration:
			targets = append(targets, &v.Duration)
		case query.FieldCreatedAt:
			targets = append(targets, &v.CreatedAt)
		case query.FieldOwner:
			targets = append(targets, owner.targets()...)
		default:
			// selected but not part of the summary shape
			targets = append(targets, new(interface{}))
		}
	}
	return targets
}

func (pg *PostgresVideoStore) GetVideoDetail(ctx context.Context, videoID uuid.UUID, viewerID uuid.NullUUID) (*VideoDetail, error) {
	query := `
	SELECT
		v.id,
		v.video_url,
		v.thumbnail_url,
		v.title,
		v.description,
		v.duration,
		v.is_published,
		v.created_at,
		u.id,
		u.username,
		u.avatar,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = v.owner_id) AS subscribers_count,
		EXISTS (
			SELECT 1 FROM subscriptions s
			WHERE s.channel_id = v.owner_id AND s.subscriber_id = $2
		) AS is_subscribed
	FROM videos v
	LEFT JOIN users u ON u.id = v.owner_id
	WHERE v.id = $1
	`

	var video VideoDetail
	var owner ownerColumns
	var subscribers int64
	var isSubscribed bool

	err := pg.db.QueryRowContext(ctx, query, videoID, viewerID).Scan(
		&video.ID,
		&video.VideoFile,
		&video.Thumbnail,
		&video.Title,
		&video.Description,
		&video.Duration,
		&video.IsPublished,
		&video.CreatedAt,
		&owner.ID,
		&owner.Username,
		&owner.Avatar,
		&subscribers,
		&isSubscribed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}

	if profile := owner.profile(); profile != nil {
		video.Owner = &ChannelOwner{
			OwnerProfile:     *profile,
			SubscribersCount: subscribers,
			IsSubscribed:     isSubscribed,
		}
	}

	return &video, nil
}

func (pg *PostgresVideoStore) IncrementViews(ctx context.Context, videoID uuid.UUID) error {
	query := `
		UPDATE videos
		SET views = views + 1
		WHERE id = $1
	`

	res, err := pg.db.ExecContext(ctx, query, videoID)
	if err != nil {
		return fmt.Errorf("failed to update video views: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (pg *PostgresVideoStore) CreateVideo(ctx context.Context, video *models.Video) error {
	query := `
	INSERT INTO videos (
		video_url, video_public_id, thumbnail_url, thumbnail_public_id,
		title, description, duration, is_published, owner_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, views, created_at, updated_at;
	`

	err := pg.db.QueryRowContext(ctx, query,
		video.VideoFile,
		video.VideoPublicID,
		video.Thumbnail,
		video.ThumbnailPublicID,
		video.Title,
		video.Description,
		video.Duration,
		video.IsPublished,
		video.Owner,
	).Scan(&video.ID, &video.Views, &video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error running create video query: %w", err)
	}

	return nil
}
