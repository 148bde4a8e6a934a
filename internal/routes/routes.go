package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/app"
	"github.com/grvbrk/videotube_server/internal/utils"
)

func SetupRoutes(app *app.Application) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitAll(200, time.Minute))
	r.Use(app.MiddlewareHandler.RequestLogger)
	r.Use(app.MiddlewareHandler.Security)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.Ping(ctx); err != nil {
			app.Logger.Error("health check failed", "err", err)
			utils.WriteError(w, app.Logger, apperror.Internal("unhealthy", err))
			return
		}
		utils.WriteSuccess(w, app.Logger, http.StatusOK, nil, "ok")
	})

	if app.LocalMediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(app.LocalMediaDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(app.Config.RequestsPerMinute, time.Minute))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.Config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: true,
			MaxAge:           86400,
		}))

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(app.MiddlewareHandler.Authenticate)
			r.Get("/stats", app.DashboardHandler.HandlerGetChannelStats)
		})

		r.Route("/videos", func(r chi.Router) {
			// auth routes
			r.Group(func(r chi.Router) {
				r.Use(app.MiddlewareHandler.Authenticate)
				r.Get("/", app.VideoHandler.HandlerGetVideos)
				r.Post("/", app.VideoHandler.HandlerPublishVideo)
			})

			// public routes, viewer attached when known
			r.Group(func(r chi.Router) {
				r.Use(app.MiddlewareHandler.OptionalAuthenticate)
				r.Get("/{videoId}", app.VideoHandler.HandlerGetVideoByID)
				r.Get("/{videoId}/comments", app.CommentHandler.HandlerGetVideoComments)
				r.Get("/{videoId}/analytics", app.AnalyticsVideoHandler.HandlerGetVideoAnalyticsByID)
			})
		})
	})

	return r
}
