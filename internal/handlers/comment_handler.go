package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grvbrk/videotube_server/internal/query"
	"github.com/grvbrk/videotube_server/internal/store"
	"github.com/grvbrk/videotube_server/internal/utils"
	"golang.org/x/exp/slog"
)

type CommentService interface {
	ListComments(ctx context.Context, rawVideoID, rawPage, rawLimit string) ([]store.CommentWithOwner, query.Pagination, error)
}

type CommentHandler struct {
	CommentService CommentService
	Logger         *slog.Logger
}

func NewCommentHandler(commentService CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		CommentService: commentService,
		Logger:         logger,
	}
}

// commentPagination is query.Pagination with the total reported as
// totalComments.
type commentPagination struct {
	TotalComments int  `json:"totalComments"`
	Limit         int  `json:"limit"`
	Page          int  `json:"page"`
	TotalPages    int  `json:"totalPages"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

func (ch *CommentHandler) HandlerGetVideoComments(w http.ResponseWriter, r *http.Request) {
	comments, p, err := ch.CommentService.ListComments(
		r.Context(),
		chi.URLParam(r, "videoId"),
		r.URL.Query().Get("page"),
		r.URL.Query().Get("limit"),
	)
	if err != nil {
		logError(ch.Logger, r, "Error listing comments", err)
		utils.WriteError(w, ch.Logger, err)
		return
	}

	utils.WriteSuccess(w, ch.Logger, http.StatusOK, utils.Envelope{
		"comments": comments,
		"pagination": commentPagination{
			TotalComments: p.Total,
			Limit:         p.Limit,
			Page:          p.Page,
			TotalPages:    p.TotalPages,
			HasNextPage:   p.HasNextPage,
			HasPrevPage:   p.HasPrevPage,
		},
	}, "Comments fetched successfully")
}
