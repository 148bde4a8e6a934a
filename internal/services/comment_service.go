package services

import (
	"context"

	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/query"
	"github.com/grvbrk/videotube_server/internal/store"
)

type CommentService struct {
	comments store.CommentStore
}

func NewCommentService(comments store.CommentStore) *CommentService {
	return &CommentService{comments: comments}
}

// ListComments pages through a video's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, rawVideoID, rawPage, rawLimit string) ([]store.CommentWithOwner, query.Pagination, error) {
	q, err := query.CommentListQuery(rawVideoID, rawPage, rawLimit)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	comments, total, err := s.comments.ListComments(ctx, q)
	if err != nil {
		return nil, query.Pagination{}, apperror.Internal("failed to fetch comments", err)
	}

	return comments, query.NewPagination(total, q.Page, q.Limit), nil
}
