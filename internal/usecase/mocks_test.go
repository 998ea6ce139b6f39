package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/user/caption-service/internal/entity"
)

// --- Mocks ---

type mockVision struct {
	result   *entity.AnalysisResult
	err      error
	delay    time.Duration
	calls    int
	lastOpts entity.AnalysisOptions
	lastData []byte
}

func (m *mockVision) Analyze(ctx context.Context, image []byte, opts entity.AnalysisOptions) (*entity.AnalysisResult, error) {
	m.calls++
	m.lastOpts = opts
	m.lastData = image
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.result, m.err
}

func (m *mockVision) Name() string {
	return "mock"
}

// memoryStore records every path it hands out so tests can assert cleanup.
type memoryStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	saved    []*entity.StoredUpload
	saveErr  error
	readErr  error
	nextID   int
	lastName string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}}
}

func (s *memoryStore) Save(ctx context.Context, name string, content io.Reader) (*entity.StoredUpload, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.lastName = name
	token := fmt.Sprintf("tok-%d", s.nextID)
	stored := &entity.StoredUpload{
		Token: token,
		Name:  name,
		Path:  "mem/" + token + "_" + name,
		Size:  int64(len(data)),
	}
	s.files[stored.Path] = data
	s.saved = append(s.saved, stored)
	return stored, nil
}

func (s *memoryStore) Read(ctx context.Context, upload *entity.StoredUpload) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[upload.Path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (s *memoryStore) Remove(ctx context.Context, upload *entity.StoredUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, upload.Path)
	return nil
}

func (s *memoryStore) remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type mockCache struct {
	data   map[string]string
	getErr error
	setErr error
	ttl    time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string]string{}}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key, caption string, expiry time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = caption
	m.ttl = expiry
	return nil
}

func (m *mockCache) Ping(ctx context.Context) error {
	return m.getErr
}

var errNetwork = errors.New("dial tcp: connection refused")
