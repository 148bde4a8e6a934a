package services

import (
	"context"
	"time"

	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/query"
	"github.com/grvbrk/videotube_server/internal/store/analytics"
)

const (
	defaultTimelineDays = 30
	maxTimelineDays     = 365
)

type AnalyticsService struct {
	views analytics.AnalyticsVideoStore
	now   func() time.Time
}

// NewAnalyticsService accepts a nil store when analytics is not configured.
func NewAnalyticsService(views analytics.AnalyticsVideoStore) *AnalyticsService {
	return &AnalyticsService{views: views, now: time.Now}
}

type VideoTimeline struct {
	VideoID string                 `json:"videoId"`
	Days    int                    `json:"days"`
	Daily   []analytics.DailyViews `json:"daily"`
}

func (s *AnalyticsService) VideoTimeline(ctx context.Context, rawVideoID, rawDays string) (*VideoTimeline, error) {
	if s.views == nil {
		return nil, apperror.Unavailable("Analytics is not enabled")
	}

	videoID, outcome := query.ParseID(rawVideoID)
	if outcome == query.Rejected {
		return nil, apperror.InvalidArgument("Invalid video id")
	}

	days, _ := query.ParsePositiveInt(rawDays, defaultTimelineDays)
	if days > maxTimelineDays {
		days = maxTimelineDays
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	daily, err := s.views.GetVideoTimeline(ctx, videoID.String(), since)
	if err != nil {
		return nil, apperror.Internal("failed to fetch video analytics", err)
	}

	return &VideoTimeline{VideoID: videoID.String(), Days: days, Daily: daily}, nil
}
