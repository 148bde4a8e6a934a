package middlewares

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/auth"
	"golang.org/x/exp/slog"
)

type stubResolver struct {
	id  uuid.UUID
	err error
}

func (s stubResolver) ViewerFromRequest(r *http.Request) (uuid.UUID, error) {
	return s.id, s.err
}

func viewerEcho(w http.ResponseWriter, r *http.Request) {
	viewer := ViewerID(r)
	if !viewer.Valid {
		io.WriteString(w, "anonymous")
		return
	}
	io.WriteString(w, viewer.UUID.String())
}

func newHandler(res stubResolver) *MiddlewareHandler {
	return NewMiddlewareHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), res)
}

func TestAuthenticate(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		resolver stubResolver
		status   int
		body     string
	}{
		{"valid viewer", stubResolver{id: id}, http.StatusOK, id.String()},
		{"no credentials", stubResolver{err: auth.ErrNoCredentials}, http.StatusUnauthorized, ""},
		{"bad token", stubResolver{err: auth.ErrInvalidCredentials}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHandler(tt.resolver).Authenticate(http.HandlerFunc(viewerEcho)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		resolver stubResolver
		body     string
	}{
		{"valid viewer", stubResolver{id: id}, id.String()},
		{"no credentials", stubResolver{err: auth.ErrNoCredentials}, "anonymous"},
		{"bad token", stubResolver{err: errors.Join(auth.ErrInvalidCredentials, errors.New("expired"))}, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHandler(tt.resolver).OptionalAuthenticate(http.HandlerFunc(viewerEcho)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != http.StatusOK || rec.Body.String() != tt.body {
				t.Errorf("got %d %q, want 200 %q", rec.Code, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	h := newHandler(stubResolver{})
	h.RequestLogger(h.Security(http.HandlerFunc(viewerEcho))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Frame-Options") != "DENY" || rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing security headers: %v", rec.Header())
	}
}
