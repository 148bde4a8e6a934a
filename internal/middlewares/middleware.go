package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/apperror"
	"github.com/grvbrk/videotube_server/internal/auth"
	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/utils"
	"golang.org/x/exp/slog"
)

type contextKey string

const UserContextKey contextKey = "user"

type ViewerResolver interface {
	ViewerFromRequest(r *http.Request) (uuid.UUID, error)
}

type MiddlewareHandler struct {
	Logger *slog.Logger
	Auth   ViewerResolver
}

func NewMiddlewareHandler(logger *slog.Logger, resolver ViewerResolver) *MiddlewareHandler {
	return &MiddlewareHandler{
		Logger: logger,
		Auth:   resolver,
	}
}

// Authenticate rejects requests without a valid viewer.
func (mh *MiddlewareHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := mh.Auth.ViewerFromRequest(r)
		if err != nil {
			mh.Logger.Debug("rejected unauthenticated request", "path", r.URL.Path, "err", err)
			utils.WriteError(w, mh.Logger, apperror.Unauthorized("Unauthorized request"))
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), id)))
	})
}

// OptionalAuthenticate attaches the viewer when one can be resolved and
// otherwise lets the request through anonymously.
func (mh *MiddlewareHandler) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := mh.Auth.ViewerFromRequest(r)
		if err != nil {
			if !errors.Is(err, auth.ErrNoCredentials) {
				mh.Logger.Debug("ignoring invalid credentials", "path", r.URL.Path, "err", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), id)))
	})
}

func (mh *MiddlewareHandler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		mh.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"origin", r.Header.Get("Origin"),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (mh *MiddlewareHandler) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

func withUser(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserContextKey, &models.User{ID: id})
}

func GetUserFromContext(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}

// ViewerID is the authenticated viewer, or an invalid NullUUID for anonymous
// requests.
func ViewerID(r *http.Request) uuid.NullUUID {
	if user, ok := GetUserFromContext(r); ok {
		return uuid.NullUUID{UUID: user.ID, Valid: true}
	}
	return uuid.NullUUID{}
}
