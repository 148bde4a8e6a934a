package analytics

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/services"
	"github.com/grvbrk/videotube_server/internal/utils"
	"golang.org/x/exp/slog"
)

type TimelineService interface {
	VideoTimeline(ctx context.Context, rawVideoID, rawDays string) (*services.VideoTimeline, error)
}

type AnalyticsVideoHandler struct {
	AnalyticsService TimelineService
	Logger           *slog.Logger
}

func NewAnalyticsVideoHandler(analyticsService TimelineService, logger *slog.Logger) *AnalyticsVideoHandler {
	return &AnalyticsVideoHandler{
		AnalyticsService: analyticsService,
		Logger:           logger,
	}
}

func (ah *AnalyticsVideoHandler) HandlerGetVideoAnalyticsByID(w http.ResponseWriter, r *http.Request) {
	timeline, err := ah.AnalyticsService.VideoTimeline(r.Context(), chi.URLParam(r, "videoId"), r.URL.Query().Get("days"))
	if err != nil {
		if apperror.StatusCode(err) >= http.StatusInternalServerError && !apperror.Is(err, apperror.KindUnavailable) {
			ah.Logger.Error("Error getting video analytics", "err", err)
		}
		utils.WriteError(w, ah.Logger, err)
		return
	}

	utils.WriteSuccess(w, ah.Logger, http.StatusOK, timeline, "Video analytics fetched successfully")
}
