package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/grvbrk/videotube_server/internal/auth"
	"github.com/grvbrk/videotube_server/internal/handlers"
	"github.com/grvbrk/videotube_server/internal/media"
	"github.com/grvbrk/videotube_server/internal/middlewares"
	"github.com/grvbrk/videotube_server/internal/models"
	"github.com/grvbrk/videotube_server/internal/services"
	"github.com/grvbrk/videotube_server/internal/store/memory"
	"golang.org/x/exp/slog"
)

// headerResolver treats the X-Viewer header as the viewer id.
type headerResolver struct{}

func (headerResolver) ViewerFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-Viewer")
	if raw == "" {
		return uuid.Nil, auth.ErrNoCredentials
	}
	return uuid.Parse(raw)
}

type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

type testServer struct {
	router http.Handler
	store  *memory.Store
	media  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := memory.NewStore()
	mediaDir := t.TempDir()

	videoService := services.NewVideoService(s, s, nil, media.NewLocalUploader(mediaDir, "/media"), logger)
	vh := handlers.NewVideoHandler(videoService, media.NewStager(t.TempDir()), 1<<20, logger)
	ch := handlers.NewCommentHandler(services.NewCommentService(s), logger)
	mw := middlewares.NewMiddlewareHandler(logger, headerResolver{})

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Get("/videos", vh.HandlerGetVideos)
		r.Post("/videos", vh.HandlerPublishVideo)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.OptionalAuthenticate)
		r.Get("/videos/{videoId}", vh.HandlerGetVideoByID)
		r.Get("/videos/{videoId}/comments", ch.HandlerGetVideoComments)
	})

	return &testServer{router: r, store: s, media: mediaDir}
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope %q: %v", rec.Body.String(), err)
	}
	if env.Status != rec.Code {
		t.Errorf("envelope status %d does not match HTTP status %d", env.Status, rec.Code)
	}
	return rec, env
}

func TestGetVideosRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, httptest.NewRequest(http.MethodGet, "/videos", nil))
	if rec.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401 error envelope, got %d %+v", rec.Code, env)
	}
}

func TestGetVideosListing(t *testing.T) {
	ts := newTestServer(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		ts.store.AddVideo(models.Video{Title: "clip " + strconv.Itoa(i), Views: int64(i), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	req := httptest.NewRequest(http.MethodGet, "/videos?sortBy=views&sortType=asc&page=2&limit=5", nil)
	req.Header.Set("X-Viewer", uuid.NewString())
	rec, env := ts.do(t, req)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	var data struct {
		Videos []struct {
			ID    uuid.UUID `json:"id"`
			Title string    `json:"title"`
			Views int64     `json:"views"`
		} `json:"videos"`
		Pagination map[string]interface{} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}

	var views []int64
	for _, v := range data.Videos {
		views = append(views, v.Views)
	}
	if diff := cmp.Diff([]int64{5, 6, 7, 8, 9}, views); diff != "" {
		t.Errorf("views mismatch (-want +got):\n%s", diff)
	}

	wantPagination := map[string]interface{}{
		"total": float64(12), "limit": float64(5), "page": float64(2),
		"totalPages": float64(3), "hasNextPage": true, "hasPrevPage": true,
	}
	if diff := cmp.Diff(wantPagination, data.Pagination); diff != "" {
		t.Errorf("pagination mismatch (-want +got):\n%s", diff)
	}
}

func TestGetVideosInvalidUserID(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/videos?userId=abc", nil)
	req.Header.Set("X-Viewer", uuid.NewString())
	rec, env := ts.do(t, req)
	if rec.Code != http.StatusBadRequest || env.Message != "Invalid user id" {
		t.Errorf("got %d %q", rec.Code, env.Message)
	}
}

func TestGetVideoByID(t *testing.T) {
	ts := newTestServer(t)
	channel := ts.store.AddUser(models.User{Username: "channel", Avatar: "c.png"})
	viewer := ts.store.AddUser(models.User{Username: "viewer"})
	ts.store.Subscribe(viewer.ID, channel.ID)
	v := ts.store.AddVideo(models.Video{Title: "V1", Views: 5, Owner: uuid.NullUUID{UUID: channel.ID, Valid: true}})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/videos/"+v.ID.String(), nil)
		req.Header.Set("X-Viewer", viewer.ID.String())
		rec, env := ts.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("fetch %d: status %d", i, rec.Code)
		}

		var detail struct {
			Title string `json:"title"`
			Owner struct {
				Username         string `json:"username"`
				SubscribersCount int64  `json:"subscribersCount"`
				IsSubscribed     bool   `json:"isSubscribed"`
			} `json:"owner"`
		}
		json.Unmarshal(env.Data, &detail)
		if detail.Owner.Username != "channel" || detail.Owner.SubscribersCount != 1 || !detail.Owner.IsSubscribed {
			t.Errorf("unexpected owner %+v", detail.Owner)
		}
	}

	if got, _ := ts.store.Video(v.ID); got.Views != 6 {
		t.Errorf("views = %d, want 6", got.Views)
	}

	rec, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/videos/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing video status = %d", rec.Code)
	}
	rec, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/videos/xyz", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d", rec.Code)
	}
}

func TestGetVideoComments(t *testing.T) {
	ts := newTestServer(t)
	video := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		ts.store.AddComment(models.Comment{Content: strconv.Itoa(i), VideoID: video, CreatedAt: base.Add(time.Duration(i) * time.Second)})
	}

	rec, env := ts.do(t, httptest.NewRequest(http.MethodGet, "/videos/"+video.String()+"/comments?page=2&limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var data struct {
		Comments   []map[string]interface{} `json:"comments"`
		Pagination map[string]interface{}   `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Comments) != 5 {
		t.Errorf("comments = %d, want 5", len(data.Comments))
	}

	wantPagination := map[string]interface{}{
		"totalComments": float64(15), "limit": float64(10), "page": float64(2),
		"totalPages": float64(2), "hasNextPage": false, "hasPrevPage": true,
	}
	if diff := cmp.Diff(wantPagination, data.Pagination); diff != "" {
		t.Errorf("pagination mismatch (-want +got):\n%s", diff)
	}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte("content of " + name))
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestPublishVideo(t *testing.T) {
	ts := newTestServer(t)
	owner := uuid.New()

	body, ct := multipartBody(t,
		map[string]string{"title": "Trip", "description": "Alps"},
		map[string]string{"videoFile": "trip.mp4", "thumbnail": "trip.png"},
	)
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Viewer", owner.String())

	rec, env := ts.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var video models.Video
	if err := json.Unmarshal(env.Data, &video); err != nil {
		t.Fatal(err)
	}
	if !video.IsPublished || video.Owner.UUID != owner || video.Title != "Trip" {
		t.Errorf("unexpected video %+v", video)
	}

	matches, _ := filepath.Glob(filepath.Join(ts.media, "videos", "*.mp4"))
	if len(matches) != 1 {
		t.Errorf("expected the video asset to be stored, found %v", matches)
	}
}

func TestPublishVideoValidation(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		files   map[string]string
		message string
	}{
		{
			name:    "missing description",
			fields:  map[string]string{"title": "Trip"},
			files:   map[string]string{"videoFile": "a.mp4", "thumbnail": "a.png"},
			message: "title and description are required",
		},
		{
			name:    "missing thumbnail",
			fields:  map[string]string{"title": "Trip", "description": "Alps"},
			files:   map[string]string{"videoFile": "a.mp4"},
			message: "video and thumbnail is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			body, ct := multipartBody(t, tt.fields, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/videos", body)
			req.Header.Set("Content-Type", ct)
			req.Header.Set("X-Viewer", uuid.NewString())

			rec, env := ts.do(t, req)
			if rec.Code != http.StatusBadRequest || env.Message != tt.message {
				t.Errorf("got %d %q, want 400 %q", rec.Code, env.Message, tt.message)
			}
		})
	}
}
