package media

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

func (k Kind) prefix() string {
	if k == KindVideo {
		return "videos"
	}
	return "thumbnails"
}

// UploadResult describes an asset once the provider has accepted it.
// Duration is in seconds and stays zero when the provider cannot probe it.
type UploadResult struct {
	URL      string  `json:"url"`
	PublicID string  `json:"publicId"`
	Duration float64 `json:"duration"`
}

type Uploader interface {
	Upload(ctx context.Context, localPath string, kind Kind) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// objectKey places an asset under its kind's prefix with a fresh name and the
// source file's extension.
func objectKey(localPath string, kind Kind) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return kind.prefix() + "/" + uuid.NewString() + ext
}
