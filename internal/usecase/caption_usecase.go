package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/caption-service/internal/entity"
	"github.com/user/caption-service/internal/repository"
	"github.com/user/caption-service/pkg/metrics"
	"github.com/user/caption-service/pkg/utils"
)

var (
	ErrMissingFile     = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrStorage         = errors.New("upload storage failed")
	ErrAnalysis        = errors.New("image analysis failed")
)

const (
	defaultAnalyzeTimeout = 30 * time.Second
	cleanupTimeout        = 5 * time.Second
)

// CaptionPipeline turns one uploaded image into a caption.
type CaptionPipeline interface {
	Caption(ctx context.Context, upload entity.UploadedImage) (*entity.Analysis, error)
}

// PipelineOptions tunes a CaptionPipeline. Zero values fall back to defaults.
type PipelineOptions struct {
	AllowedExtensions []string
	AnalyzeTimeout    time.Duration
	CacheTTL          time.Duration
}

type captionUseCase struct {
	uploads repository.UploadStore
	vision  repository.VisionRepository
	cache   repository.CaptionCacheRepository // nil disables caching
	metrics *metrics.Metrics
	opts    PipelineOptions
}

// NewCaptionPipeline creates the upload-and-analyze pipeline. cache may be nil.
func NewCaptionPipeline(
	uploads repository.UploadStore,
	vision repository.VisionRepository,
	cache repository.CaptionCacheRepository,
	m *metrics.Metrics,
	opts PipelineOptions,
) CaptionPipeline {
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = utils.DefaultAllowedExtensions
	}
	if opts.AnalyzeTimeout <= 0 {
		opts.AnalyzeTimeout = defaultAnalyzeTimeout
	}
	return &captionUseCase{
		uploads: uploads,
		vision:  vision,
		cache:   cache,
		metrics: m,
		opts:    opts,
	}
}

// Caption validates the upload, stores it under a unique name, analyzes it
// and removes it again. The stored file is removed on every path once Save
// has succeeded.
func (uc *captionUseCase) Caption(ctx context.Context, upload entity.UploadedImage) (*entity.Analysis, error) {
	analysis, err := uc.caption(ctx, upload)
	if err != nil {
		uc.metrics.ObserveAnalysisFailure(ErrorType(err))
		return nil, err
	}
	uc.metrics.ObserveAnalysisSuccess()
	return analysis, nil
}

func (uc *captionUseCase) caption(ctx context.Context, upload entity.UploadedImage) (*entity.Analysis, error) {
	if upload.Content == nil || upload.Filename == "" {
		return nil, ErrMissingFile
	}
	if !utils.IsAllowedFile(upload.Filename, uc.opts.AllowedExtensions) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, upload.Filename)
	}

	start := time.Now()
	stored, err := uc.uploads.Save(ctx, utils.SanitizeFilename(upload.Filename), upload.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer uc.release(stored)

	image, err := uc.uploads.Read(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	analysis := &entity.Analysis{
		Token:    stored.Token,
		Filename: upload.Filename,
	}

	hash := utils.HashBytes(image)
	if caption, ok := uc.cachedCaption(ctx, hash); ok {
		analysis.Caption = caption
		analysis.FromCache = true
		analysis.Duration = time.Since(start)
		return analysis, nil
	}

	result, err := uc.analyze(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	analysis.Result = result
	analysis.Caption = result.CaptionText()
	analysis.Duration = time.Since(start)

	if result.Caption != nil && result.Caption.Text != "" {
		uc.storeCaption(ctx, hash, analysis.Caption)
	}

	slog.Info("Image analyzed",
		"token", stored.Token,
		"filename", stored.Name,
		"size", stored.Size,
		"provider", uc.vision.Name(),
		"has_caption", result.Caption != nil,
		"read_lines", len(result.ReadLines),
		"duration_ms", analysis.Duration.Milliseconds(),
	)
	return analysis, nil
}

func (uc *captionUseCase) analyze(ctx context.Context, image []byte) (*entity.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.AnalyzeTimeout)
	defer cancel()

	start := time.Now()
	result, err := uc.vision.Analyze(ctx, image, entity.AnalysisOptions{
		Features:             []entity.VisualFeature{entity.FeatureCaption, entity.FeatureRead},
		GenderNeutralCaption: true,
	})
	uc.metrics.AnalysisDuration.WithLabelValues(uc.vision.Name()).Observe(time.Since(start).Seconds())

	if err == nil && result == nil {
		err = repository.ErrVisionMalformedResponse
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, repository.ErrVisionTimeout) {
		err = fmt.Errorf("%w: %w", repository.ErrVisionTimeout, err)
	}
	return result, err
}

// release removes the stored upload. It runs detached from the request
// context so a canceled request still cleans up.
func (uc *captionUseCase) release(stored *entity.StoredUpload) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := uc.uploads.Remove(ctx, stored); err != nil {
		slog.Error("Failed to remove temporary upload", "path", stored.Path, "error", err)
	}
}

func (uc *captionUseCase) cachedCaption(ctx context.Context, hash string) (string, bool) {
	if uc.cache == nil {
		return "", false
	}
	caption, found, err := uc.cache.Get(ctx, hash)
	switch {
	case err != nil:
		uc.metrics.ObserveCacheLookup("error")
		slog.Warn("Caption cache lookup failed", "error", err)
		return "", false
	case !found:
		uc.metrics.ObserveCacheLookup("miss")
		return "", false
	default:
		uc.metrics.ObserveCacheLookup("hit")
		return caption, true
	}
}

func (uc *captionUseCase) storeCaption(ctx context.Context, hash, caption string) {
	if uc.cache == nil || uc.opts.CacheTTL <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, hash, caption, uc.opts.CacheTTL); err != nil {
		// Not critical, the next identical upload just calls the service again.
		slog.Warn("Failed to cache caption", "error", err)
	}
}

// ErrorType classifies a pipeline error for logs and metric labels.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return "missing_file"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, repository.ErrVisionTimeout):
		return "analysis_timeout"
	case errors.Is(err, ErrAnalysis):
		return "analysis"
	default:
		return "unknown"
	}
}
