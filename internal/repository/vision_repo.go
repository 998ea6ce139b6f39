package repository

import (
	"context"

	"github.com/user/caption-service/internal/entity"
)

// VisionRepository defines the contract for the remote image-analysis service.
type VisionRepository interface {
	// Analyze submits image once and returns what the service found.
	// Failures wrap one of the ErrVision* sentinels.
	Analyze(ctx context.Context, image []byte, opts entity.AnalysisOptions) (*entity.AnalysisResult, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}
