package handler

import (
	"context"
	"sync"
	"time"

	"github.com/user/caption-service/internal/entity"
)

// --- Mocks ---

type stubVision struct {
	mu     sync.Mutex
	result *entity.AnalysisResult
	err    error
	calls  int
	images [][]byte
}

func (s *stubVision) Analyze(ctx context.Context, image []byte, opts entity.AnalysisOptions) (*entity.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.images = append(s.images, image)
	return s.result, s.err
}

func (s *stubVision) Name() string {
	return "stub"
}

type stubCache struct {
	pingErr error
}

func (s *stubCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (s *stubCache) Set(ctx context.Context, key, caption string, expiry time.Duration) error {
	return nil
}

func (s *stubCache) Ping(ctx context.Context) error {
	return s.pingErr
}
