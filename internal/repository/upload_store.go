package repository

import (
	"context"
	"io"

	"github.com/user/caption-service/internal/entity"
)

// UploadStore defines the contract for the transient working directory that
// holds uploads while they are analyzed.
type UploadStore interface {
	// Save persists content under a name unique to this call. name must already be sanitized.
	Save(ctx context.Context, name string, content io.Reader) (*entity.StoredUpload, error)
	// Read returns the stored bytes.
	Read(ctx context.Context, upload *entity.StoredUpload) ([]byte, error)
	// Remove deletes the stored file. Removing an already absent file is not an error.
	Remove(ctx context.Context, upload *entity.StoredUpload) error
}
