package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/query"
	"github.com/grvbrk/videotube_server/internal/store"
)

// Store keeps users, videos, comments, subscriptions and watch histories in
// process. It satisfies store.VideoStore, store.CommentStore and
// store.WatchHistoryStore.
type Store struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]models.User
	videos        map[uuid.UUID]*models.Video
	comments      []models.Comment
	subscriptions []models.Subscription
	history       map[uuid.UUID]map[uuid.UUID]struct{}
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]models.User),
		videos:  make(map[uuid.UUID]*models.Video),
		history: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		now:     time.Now,
	}
}

func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
		u.UpdatedAt = u.CreatedAt
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) RemoveUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *Store) AddVideo(v models.Video) models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}
	copied := v
	s.videos[v.ID] = &copied
	return v
}

func (s *Store) AddComment(c models.Comment) models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	s.comments = append(s.comments, c)
	return c
}

func (s *Store) Subscribe(subscriberID, channelID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscriptions = append(s.subscriptions, models.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    s.now(),
	})
}

// Video returns a copy of the stored video.
func (s *Store) Video(id uuid.UUID) (models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[id]
	if !ok {
		return models.Video{}, false
	}
	return *v, true
}

func (s *Store) InWatchHistory(userID, videoID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.history[userID][videoID]
	return ok
}

func (s *Store) ownerProfile(id uuid.NullUUID) *models.OwnerProfile {
	if !id.Valid {
		return nil
	}
	u, ok := s.users[id.UUID]
	if !ok {
		return nil
	}
	return &models.OwnerProfile{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

func videoFields(v models.Video) getter {
	return func(f query.Field) any {
		switch f {
		case query.FieldID:
			return v.ID
		case query.FieldTitle:
			return v.Title
		case query.FieldDescription:
			return v.Description
		case query.FieldThumbnail:
			return v.Thumbnail
		case query.FieldVideoFile:
			return v.VideoFile
		case query.FieldViews:
			return v.Views
		case query.FieldDuration:
			return v.Duration
		case query.FieldCreatedAt:
			return v.CreatedAt
		case query.FieldUpdatedAt:
			return v.UpdatedAt
		case query.FieldOwner:
			if v.Owner.Valid {
				return v.Owner.UUID
			}
		}
		return nil
	}
}

func (s *Store) ListVideos(ctx context.Context, q query.Query) ([]store.VideoSummary, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		all = append(all, *v)
	}

	page, total, err := apply(all, q, videoFields)
	if err != nil {
		return nil, 0, err
	}

	videos := make([]store.VideoSummary, 0, len(page))
	for _, v := range page {
		var summary store.VideoSummary
		for _, f := range q.Projection {
			switch f {
			case query.FieldID:
				summary.ID = v.ID
			case query.FieldThumbnail:
				summary.Thumbnail = v.Thumbnail
			case query.FieldTitle:
				summary.Title = v.Title
			case query.FieldViews:
				summary.Views = v.Views
			case query.FieldDuration:
				summary.Duration = v.Duration
			case query.FieldCreatedAt:
				summary.CreatedAt = v.CreatedAt
			case query.FieldOwner:
				summary.Owner = s.ownerProfile(v.Owner)
			}
		}
		videos = append(videos, summary)
	}

	return videos, total, nil
}

func (s *Store) GetVideoDetail(ctx context.Context, videoID uuid.UUID, viewerID uuid.NullUUID) (*store.VideoDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[videoID]
	if !ok {
		return nil, store.ErrNotFound
	}

	detail := &store.VideoDetail{
		ID:          v.ID,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
	}

	if profile := s.ownerProfile(v.Owner); profile != nil {
		owner := &store.ChannelOwner{OwnerProfile: *profile}
		for _, sub := range s.subscriptions {
			if sub.ChannelID != profile.ID {
				continue
			}
			owner.SubscribersCount++
			if viewerID.Valid && sub.SubscriberID == viewerID.UUID {
				owner.IsSubscribed = true
			}
		}
		detail.Owner = owner
	}

	return detail, nil
}

func (s *Store) IncrementViews(ctx context.Context, videoID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[videoID]
	if !ok {
		return store.ErrNotFound
	}
	v.Views++
	return nil
}

func (s *Store) CreateVideo(ctx context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	video.ID = uuid.New()
	video.Views = 0
	video.CreatedAt = s.now()
	video.UpdatedAt = video.CreatedAt

	copied := *video
	s.videos[video.ID] = &copied
	return nil
}

func (s *Store) AddToWatchHistory(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.history[userID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		s.history[userID] = set
	}
	if _, seen := set[videoID]; seen {
		return false, nil
	}
	set[videoID] = struct{}{}
	return true, nil
}

func commentFields(c models.Comment) getter {
	return func(f query.Field) any {
		switch f {
		case query.FieldID:
			return c.ID
		case query.FieldContent:
			return c.Content
		case query.FieldVideo:
			return c.VideoID
		case query.FieldCreatedAt:
			return c.CreatedAt
		case query.FieldUpdatedAt:
			return c.UpdatedAt
		case query.FieldOwner:
			if c.Owner.Valid {
				return c.Owner.UUID
			}
		}
		return nil
	}
}

func (s *Store) ListComments(ctx context.Context, q query.Query) ([]store.CommentWithOwner, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, total, err := apply(s.comments, q, commentFields)
	if err != nil {
		return nil, 0, err
	}

	comments := make([]store.CommentWithOwner, 0, len(page))
	for _, c := range page {
		var out store.CommentWithOwner
		for _, f := range q.Projection {
			switch f {
			case query.FieldID:
				out.ID = c.ID
			case query.FieldContent:
				out.Content = c.Content
			case query.FieldVideo:
				out.VideoID = c.VideoID
			case query.FieldCreatedAt:
				out.CreatedAt = c.CreatedAt
			case query.FieldUpdatedAt:
				out.UpdatedAt = c.UpdatedAt
			case query.FieldOwner:
				out.Owner = s.ownerProfile(c.Owner)
			}
		}
		comments = append(comments, out)
	}

	return comments, total, nil
}

func (s *Store) GetChannelStats(ctx context.Context, ownerID uuid.UUID) (*store.ChannelStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats store.ChannelStats
	owned := make(map[uuid.UUID]bool)
	for _, v := range s.videos {
		if v.Owner.Valid && v.Owner.UUID == ownerID {
			owned[v.ID] = true
			stats.TotalVideos++
			stats.TotalViews += v.Views
		}
	}
	for _, sub := range s.subscriptions {
		if sub.ChannelID == ownerID {
			stats.Subscribers++
		}
	}
	for _, c := range s.comments {
		if owned[c.VideoID] {
			stats.TotalComments++
		}
	}
	return &stats, nil
}
