package handlers

import (
	"net/http"

	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/middlewares"
	"github.com/grvbrk/videotube_server/internal/store"
	"github.com/grvbrk/videotube_server/internal/utils"
	"golang.org/x/exp/slog"
)

type DashboardHandler struct {
	DashboardStore store.DashboardStore
	Logger         *slog.Logger
}

func NewDashboardHandler(dashboardStore store.DashboardStore, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		DashboardStore: dashboardStore,
		Logger:         logger,
	}
}

func (dh *DashboardHandler) HandlerGetChannelStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		utils.WriteError(w, dh.Logger, apperror.Unauthorized("Unauthorized request"))
		return
	}

	stats, err := dh.DashboardStore.GetChannelStats(r.Context(), user.ID)
	if err != nil {
		dh.Logger.Error("Error getting channel stats", "user_id", user.ID, "err", err)
		utils.WriteError(w, dh.Logger, apperror.Internal("failed to fetch channel stats", err))
		return
	}

	utils.WriteSuccess(w, dh.Logger, http.StatusOK, stats, "Channel stats fetched successfully")
}
