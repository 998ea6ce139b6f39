package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/user/caption-service/internal/entity"
)

// UploadStoreImpl keeps uploads in a single working directory. Every saved
// file gets a fresh UUID prefix, so concurrent uploads of the same filename
// never share a path.
type UploadStoreImpl struct {
	dir string
}

// NewUploadStore creates dir if needed and returns a store rooted at it.
func NewUploadStore(dir string) (*UploadStoreImpl, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &UploadStoreImpl{dir: dir}, nil
}

// Dir returns the working directory.
func (s *UploadStoreImpl) Dir() string {
	return s.dir
}

// Save writes content to <dir>/<uuid>_<name>. A partially written file is
// removed before the error is returned.
func (s *UploadStoreImpl) Save(ctx context.Context, name string, content io.Reader) (*entity.StoredUpload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	fileName := token
	if name != "" {
		fileName = token + "_" + name
	}
	path := filepath.Join(s.dir, fileName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, copyErr := io.Copy(f, content)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &entity.StoredUpload{
		Token: token,
		Name:  name,
		Path:  path,
		Size:  n,
	}, nil
}

func (s *UploadStoreImpl) Read(ctx context.Context, upload *entity.StoredUpload) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", upload.Path, err)
	}
	return data, nil
}

// Remove ignores the request context: cleanup must still happen after the
// client has gone away.
func (s *UploadStoreImpl) Remove(_ context.Context, upload *entity.StoredUpload) error {
	if err := os.Remove(upload.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", upload.Path, err)
	}
	return nil
}
