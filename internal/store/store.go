package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/query"
)

var ErrNotFound = errors.New("record not found")

// ErrUnknownUser is returned when a write references a user that has no
// users row.
var ErrUnknownUser = errors.New("user does not exist")

// VideoSummary is a video as projected by the listing read.
type VideoSummary struct {
	ID        uuid.UUID            `json:"id"`
	Thumbnail string               `json:"thumbnail"`
	Title     string               `json:"title"`
	Views     int64                `json:"views"`
	Duration  float64              `json:"duration"`
	CreatedAt time.Time            `json:"createdAt"`
	Owner     *models.OwnerProfile `json:"owner"`
}

type ChannelOwner struct {
	models.OwnerProfile
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoDetail is a single video enriched with its owner's channel data.
// The view counter is deliberately not part of it.
type VideoDetail struct {
	ID          uuid.UUID     `json:"id"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    float64       `json:"duration"`
	IsPublished bool          `json:"isPublished"`
	CreatedAt   time.Time     `json:"createdAt"`
	Owner       *ChannelOwner `json:"owner"`
}

type CommentWithOwner struct {
	ID        uuid.UUID            `json:"id"`
	Content   string               `json:"content"`
	VideoID   uuid.UUID            `json:"video"`
	Owner     *models.OwnerProfile `json:"owner"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type VideoStore interface {
	ListVideos(ctx context.Context, q query.Query) ([]VideoSummary, int, error)
	// GetVideoDetail returns ErrNotFound when no video has videoID. viewerID
	// may be invalid (anonymous), in which case IsSubscribed is false.
	GetVideoDetail(ctx context.Context, videoID uuid.UUID, viewerID uuid.NullUUID) (*VideoDetail, error)
	// IncrementViews atomically adds one to the video's view counter.
	IncrementViews(ctx context.Context, videoID uuid.UUID) error
	CreateVideo(ctx context.Context, video *models.Video) error
}

type CommentStore interface {
	ListComments(ctx context.Context, q query.Query) ([]CommentWithOwner, int, error)
}

type WatchHistoryStore interface {
	// AddToWatchHistory is an atomic set-add. It reports whether videoID
	// was not yet in the user's watch history.
	AddToWatchHistory(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
}
