package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/grvbrk/videotube_server/internal/models"
)

type ClickhouseVideoStore struct {
	conn driver.Conn
}

func NewClickhouseVideoStore(conn driver.Conn) *ClickhouseVideoStore {
	return &ClickhouseVideoStore{conn: conn}
}

type DailyViews struct {
	Day           time.Time `json:"day"`
	Views         uint64    `json:"views"`
	UniqueViewers uint64    `json:"uniqueViewers"`
}

type AnalyticsVideoStore interface {
	RecordView(ctx context.Context, event models.ViewEvent) error
	GetVideoTimeline(ctx context.Context, videoID string, since time.Time) ([]DailyViews, error)
}

func (c *ClickhouseVideoStore) RecordView(ctx context.Context, event models.ViewEvent) error {
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO video_views (video_id, viewer_id, viewed_at)")
	if err != nil {
		return fmt.Errorf("failed to prepare view batch: %w", err)
	}

	if err := batch.AppendStruct(&event); err != nil {
		batch.Abort()
		return fmt.Errorf("failed to append view event: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send view event: %w", err)
	}

	return nil
}

func (c *ClickhouseVideoStore) GetVideoTimeline(ctx context.Context, videoID string, since time.Time) ([]DailyViews, error) {
	query := `
		SELECT
			toStartOfDay(viewed_at) AS day,
			count() AS views,
			uniqExactIf(viewer_id, viewer_id != '') AS unique_viewers
		FROM video_views
		WHERE video_id = ? AND viewed_at >= ?
		GROUP BY day
		ORDER BY day DESC
	`

	rows, err := c.conn.Query(ctx, query, videoID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get video analytics: %w", err)
	}
	defer rows.Close()

	timeline := []DailyViews{}

	for rows.Next() {
		var day DailyViews

		err := rows.Scan(
			&day.Day,
			&day.Views,
			&day.UniqueViewers,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily views: %w", err)
		}
		timeline = append(timeline, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over analytics rows: %w", err)
	}

	return timeline, nil
}
