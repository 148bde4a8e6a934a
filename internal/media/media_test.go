package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeObjects struct {
	puts    map[string][]byte
	types   map[string]string
	deleted []string
	failPut bool
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("bucket unavailable")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestS3UploaderUpload(t *testing.T) {
	objects := &fakeObjects{puts: map[string][]byte{}, types: map[string]string{}}
	u := &S3Uploader{client: objects, bucket: "media", baseURL: "https://cdn.example.com"}

	res, err := u.Upload(context.Background(), writeTemp(t, "clip.MP4", "frames"), KindVideo)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.HasPrefix(res.PublicID, "videos/") || !strings.HasSuffix(res.PublicID, ".mp4") {
		t.Errorf("unexpected key %q", res.PublicID)
	}
	if res.URL != "https://cdn.example.com/"+res.PublicID {
		t.Errorf("URL = %q", res.URL)
	}
	if string(objects.puts[res.PublicID]) != "frames" {
		t.Errorf("object body = %q", objects.puts[res.PublicID])
	}

	img, err := u.Upload(context.Background(), writeTemp(t, "cover.PNG", "px"), KindImage)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(img.PublicID, "thumbnails/") {
		t.Errorf("unexpected key %q", img.PublicID)
	}
	if objects.types[img.PublicID] != "image/png" {
		t.Errorf("content type = %q", objects.types[img.PublicID])
	}

	if err := u.Delete(context.Background(), res.PublicID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(objects.deleted) != 1 || objects.deleted[0] != res.PublicID {
		t.Errorf("deleted = %v", objects.deleted)
	}
}

func TestS3UploaderFailure(t *testing.T) {
	u := &S3Uploader{client: &fakeObjects{failPut: true}, bucket: "media"}

	if _, err := u.Upload(context.Background(), writeTemp(t, "thumb.png", "px"), KindImage); err == nil {
		t.Fatal("expected upload error")
	}
	if _, err := u.Upload(context.Background(), "/does/not/exist.png", KindImage); err == nil {
		t.Fatal("expected error for missing staged file")
	}
	if err := u.Delete(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir, "/media/")

	res, err := u.Upload(context.Background(), writeTemp(t, "thumb.png", "px"), KindImage)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(res.URL, "/media/thumbnails/") {
		t.Errorf("URL = %q", res.URL)
	}

	stored := filepath.Join(dir, filepath.FromSlash(res.PublicID))
	if b, err := os.ReadFile(stored); err != nil || string(b) != "px" {
		t.Fatalf("stored file = %q, %v", b, err)
	}

	if err := u.Delete(context.Background(), res.PublicID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err = %v", err)
	}

	if err := u.Delete(context.Background(), "../outside.txt"); err == nil {
		t.Errorf("expected traversal to be rejected")
	}
}

func TestStager(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("videoFile", "Holiday.MOV")
	fw.Write([]byte("movie"))
	mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}

	s := NewStager(filepath.Join(t.TempDir(), "temp"))
	path, err := s.Stage(req.MultipartForm.File["videoFile"][0])
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if filepath.Ext(path) != ".mov" {
		t.Errorf("staged path %q should keep the extension", path)
	}
	if b, _ := os.ReadFile(path); string(b) != "movie" {
		t.Errorf("staged content = %q", b)
	}

	s.Remove(path, "")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("staged file should be removed")
	}
}
