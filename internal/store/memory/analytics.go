package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/store/analytics"
)

type AnalyticsStore struct {
	mu     sync.Mutex
	events []models.ViewEvent
}

func NewAnalyticsStore() *AnalyticsStore {
	return &AnalyticsStore{}
}

func (a *AnalyticsStore) RecordView(ctx context.Context, event models.ViewEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *AnalyticsStore) Events() []models.ViewEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ViewEvent(nil), a.events...)
}

func (a *AnalyticsStore) GetVideoTimeline(ctx context.Context, videoID string, since time.Time) ([]analytics.DailyViews, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	type bucket struct {
		views   uint64
		viewers map[string]struct{}
	}
	days := map[time.Time]*bucket{}

	for _, e := range a.events {
		if e.VideoID != videoID || e.ViewedAt.Before(since) {
			continue
		}
		t := e.ViewedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		b, ok := days[day]
		if !ok {
			b = &bucket{viewers: map[string]struct{}{}}
			days[day] = b
		}
		b.views++
		if e.ViewerID != "" {
			b.viewers[e.ViewerID] = struct{}{}
		}
	}

	timeline := make([]analytics.DailyViews, 0, len(days))
	for day, b := range days {
		timeline = append(timeline, analytics.DailyViews{
			Day:           day,
			Views:         b.views,
			UniqueViewers: uint64(len(b.viewers)),
		})
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Day.After(timeline[j].Day)
	})

	return timeline, nil
}
