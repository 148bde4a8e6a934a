package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/middlewares"
	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/query"
	"github.com/grvbrk/videotube_server/internal/services"
	"github.com/grvbrk/videotube_server/internal/store"
	"github.com/grvbrk/videotube_server/internal/utils"
	"golang.org/x/exp/slog"
)

type VideoService interface {
	ListVideos(ctx context.Context, params query.VideoListParams) ([]store.VideoSummary, query.Pagination, error)
	GetVideo(ctx context.Context, rawVideoID string, viewer uuid.NullUUID) (*store.VideoDetail, error)
	PublishVideo(ctx context.Context, in services.PublishVideoInput) (*models.Video, error)
}

type FileStager interface {
	Stage(fh *multipart.FileHeader) (string, error)
	Remove(paths ...string)
}

type VideoHandler struct {
	VideoService   VideoService
	Stager         FileStager
	MaxUploadBytes int64
	Logger         *slog.Logger
}

func NewVideoHandler(videoService VideoService, stager FileStager, maxUploadBytes int64, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		VideoService:   videoService,
		Stager:         stager,
		MaxUploadBytes: maxUploadBytes,
		Logger:         logger,
	}
}

func (vh *VideoHandler) HandlerGetVideos(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	params := query.VideoListParams{
		Search:   qs.Get("search"),
		SortBy:   qs.Get("sortBy"),
		SortType: qs.Get("sortType"),
		UserID:   qs.Get("userId"),
		Page:     qs.Get("page"),
		Limit:    qs.Get("limit"),
	}

	videos, pagination, err := vh.VideoService.ListVideos(r.Context(), params)
	if err != nil {
		vh.fail(w, r, "Error listing videos", err)
		return
	}

	utils.WriteSuccess(w, vh.Logger, http.StatusOK, utils.Envelope{
		"videos":     videos,
		"pagination": pagination,
	}, "Videos fetched successfully")
}

func (vh *VideoHandler) HandlerGetVideoByID(w http.ResponseWriter, r *http.Request) {
	video, err := vh.VideoService.GetVideo(r.Context(), chi.URLParam(r, "videoId"), middlewares.ViewerID(r))
	if err != nil {
		vh.fail(w, r, "Error getting video", err)
		return
	}

	utils.WriteSuccess(w, vh.Logger, http.StatusOK, video, "Video fetched successfully")
}

func (vh *VideoHandler) HandlerPublishVideo(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		utils.WriteError(w, vh.Logger, apperror.Unauthorized("Unauthorized request"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, vh.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			vh.fail(w, r, "Upload too large", apperror.InvalidArgument("upload exceeds the size limit"))
			return
		}
		vh.fail(w, r, "Error parsing multipart form", apperror.InvalidArgument("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	videoPath, err := vh.stage(r.MultipartForm, "videoFile")
	if err != nil {
		vh.fail(w, r, "Error staging video file", apperror.Internal("failed to stage upload", err))
		return
	}
	defer vh.Stager.Remove(videoPath)

	thumbnailPath, err := vh.stage(r.MultipartForm, "thumbnail")
	if err != nil {
		vh.fail(w, r, "Error staging thumbnail", apperror.Internal("failed to stage upload", err))
		return
	}
	defer vh.Stager.Remove(thumbnailPath)

	video, err := vh.VideoService.PublishVideo(r.Context(), services.PublishVideoInput{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		VideoPath:     videoPath,
		ThumbnailPath: thumbnailPath,
		Owner:         user.ID,
	})
	if err != nil {
		vh.fail(w, r, "Error publishing video", err)
		return
	}

	utils.WriteSuccess(w, vh.Logger, http.StatusCreated, video, "Video published successfully")
}

// stage returns an empty path when the form has no file under field.
func (vh *VideoHandler) stage(form *multipart.Form, field string) (string, error) {
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}
	return vh.Stager.Stage(files[0])
}

func (vh *VideoHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logError(vh.Logger, r, msg, err)
	utils.WriteError(w, vh.Logger, err)
}

// logError logs server-side failures at error level and client mistakes at
// debug level.
func logError(logger *slog.Logger, r *http.Request, msg string, err error) {
	if apperror.StatusCode(err) >= http.StatusInternalServerError {
		logger.Error(msg, "path", r.URL.Path, "err", err)
		return
	}
	logger.Debug(msg, "path", r.URL.Path, "err", err)
}
