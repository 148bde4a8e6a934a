package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader copies assets into a directory that the server exposes under
// baseURL. Meant for development.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) *LocalUploader {
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (u *LocalUploader) Dir() string {
	return u.dir
}

func (u *LocalUploader) Upload(ctx context.Context, localPath string, kind Kind) (*UploadResult, error) {
	key := objectKey(localPath, kind)
	dst := filepath.Join(u.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := copyFile(localPath, dst); err != nil {
		return nil, err
	}

	return &UploadResult{URL: u.baseURL + "/" + key, PublicID: key}, nil
}

func (u *LocalUploader) Delete(ctx context.Context, publicID string) error {
	clean := filepath.Clean(filepath.FromSlash(publicID))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid media id %q", publicID)
	}
	if err := os.Remove(filepath.Join(u.dir, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}
