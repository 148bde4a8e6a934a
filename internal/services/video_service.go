package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/media"
	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/query"
	"github.com/grvbrk/videotube_server/internal/store"
	"github.com/grvbrk/videotube_server/internal/store/analytics"
	"golang.org/x/exp/slog"
)

type VideoService struct {
	videos    store.VideoStore
	history   store.WatchHistoryStore
	analytics analytics.AnalyticsVideoStore
	uploader  media.Uploader
	logger    *slog.Logger
	now       func() time.Time
}

// NewVideoService wires the video operations. views may be nil, in which case
// no view events are recorded.
func NewVideoService(videos store.VideoStore, history store.WatchHistoryStore, views analytics.AnalyticsVideoStore, uploader media.Uploader, logger *slog.Logger) *VideoService {
	return &VideoService{
		videos:    videos,
		history:   history,
		analytics: views,
		uploader:  uploader,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *VideoService) ListVideos(ctx context.Context, params query.VideoListParams) ([]store.VideoSummary, query.Pagination, error) {
	q, err := query.VideoListQuery(params)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	videos, total, err := s.videos.ListVideos(ctx, q)
	if err != nil {
		return nil, query.Pagination{}, apperror.Internal("failed to fetch videos", err)
	}

	return videos, query.NewPagination(total, q.Page, q.Limit), nil
}

// GetVideo returns the enriched video and counts the view. An authenticated
// viewer is counted once per video; anonymous fetches always count.
func (s *VideoService) GetVideo(ctx context.Context, rawVideoID string, viewer uuid.NullUUID) (*store.VideoDetail, error) {
	videoID, outcome := query.ParseID(rawVideoID)
	if outcome == query.Rejected {
		return nil, apperror.InvalidArgument("Invalid video id")
	}

	detail, err := s.videos.GetVideoDetail(ctx, videoID, viewer)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("Video not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to fetch video", err)
	}

	count := true
	if viewer.Valid {
		added, err := s.history.AddToWatchHistory(ctx, viewer.UUID, videoID)
		if errors.Is(err, store.ErrUnknownUser) {
			return nil, apperror.Unauthorized("Unauthorized request")
		}
		if err != nil {
			return nil, apperror.Internal("failed to update watch history", err)
		}
		count = added
	}

	if count {
		err := s.videos.IncrementViews(ctx, videoID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("Video not found")
		}
		if err != nil {
			return nil, apperror.Internal("failed to update views", err)
		}
		s.recordView(ctx, videoID, viewer)
	}

	return detail, nil
}

func (s *VideoService) recordView(ctx context.Context, videoID uuid.UUID, viewer uuid.NullUUID) {
	if s.analytics == nil {
		return
	}

	event := models.ViewEvent{VideoID: videoID.String(), ViewedAt: s.now().UTC()}
	if viewer.Valid {
		event.ViewerID = viewer.UUID.String()
	}

	if err := s.analytics.RecordView(ctx, event); err != nil {
		s.logger.Warn("failed to record view event", "video_id", event.VideoID, "err", err)
	}
}

type PublishVideoInput struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
	Owner         uuid.UUID
}

func (s *VideoService) PublishVideo(ctx context.Context, in PublishVideoInput) (*models.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, apperror.InvalidArgument("title and description are required")
	}
	if in.VideoPath == "" || in.ThumbnailPath == "" {
		return nil, apperror.InvalidArgument("video and thumbnail is required")
	}

	videoAsset, err := s.uploader.Upload(ctx, in.VideoPath, media.KindVideo)
	if err != nil {
		return nil, apperror.UpstreamFailure("failed to upload video file", err)
	}

	thumbnailAsset, err := s.uploader.Upload(ctx, in.ThumbnailPath, media.KindImage)
	if err != nil {
		s.discard(ctx, videoAsset.PublicID)
		return nil, apperror.UpstreamFailure("failed to upload thumbnail", err)
	}

	video := &models.Video{
		VideoFile:         videoAsset.URL,
		VideoPublicID:     videoAsset.PublicID,
		Thumbnail:         thumbnailAsset.URL,
		ThumbnailPublicID: thumbnailAsset.PublicID,
		Title:             title,
		Description:       description,
		Duration:          videoAsset.Duration,
		IsPublished:       true,
		Owner:             uuid.NullUUID{UUID: in.Owner, Valid: in.Owner != uuid.Nil},
	}

	if err := s.videos.CreateVideo(ctx, video); err != nil {
		s.discard(ctx, videoAsset.PublicID, thumbnailAsset.PublicID)
		return nil, apperror.Internal("something went wrong while saving the video", err)
	}

	s.logger.Info("video published", "video_id", video.ID, "owner", in.Owner)
	return video, nil
}

// discard removes uploaded assets that will not be referenced by any video.
func (s *VideoService) discard(ctx context.Context, publicIDs ...string) {
	for _, id := range publicIDs {
		if err := s.uploader.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete orphaned asset", "public_id", id, "err", err)
		}
	}
}
