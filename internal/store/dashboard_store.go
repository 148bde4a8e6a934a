package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ChannelStats summarises one owner's channel.
type ChannelStats struct {
	TotalVideos   int64 `json:"totalVideos"`
	TotalViews    int64 `json:"totalViews"`
	Subscribers   int64 `json:"subscribers"`
	TotalComments int64 `json:"totalComments"`
}

type PostgresDashboardStore struct {
	db *sql.DB
}

func NewPostgresDashboardStore(db *sql.DB) *PostgresDashboardStore {
	return &PostgresDashboardStore{db: db}
}

type DashboardStore interface {
	GetChannelStats(ctx context.Context, ownerID uuid.UUID) (*ChannelStats, error)
}

func (pg *PostgresDashboardStore) GetChannelStats(ctx context.Context, ownerID uuid.UUID) (*ChannelStats, error) {
	var stats ChannelStats

	query := `
		SELECT
			(SELECT COUNT(*) FROM videos WHERE owner_id = $1) AS total_videos,
			(SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1) AS total_views,
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1) AS subscribers,
			(SELECT COUNT(*) FROM comments c JOIN videos v ON v.id = c.video_id WHERE v.owner_id = $1) AS total_comments;
	`

	err := pg.db.QueryRowContext(ctx, query, ownerID).Scan(
		&stats.TotalVideos,
		&stats.TotalViews,
		&stats.Subscribers,
		&stats.TotalComments,
	)
	if err != nil {
		return nil, fmt.Errorf("error getting channel stats: %w", err)
	}

	return &stats, nil
}
