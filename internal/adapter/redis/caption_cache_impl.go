package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const captionKeyPrefix = "caption:"

// CaptionCacheImpl provides a concrete implementation for the CaptionCacheRepository interface using Redis.
type CaptionCacheImpl struct {
	client redis.UniversalClient
}

// NewCaptionCache creates a new instance of CaptionCacheImpl.
func NewCaptionCache(client redis.UniversalClient) *CaptionCacheImpl {
	return &CaptionCacheImpl{client: client}
}

// generateKey namespaces a content hash.
func (r *CaptionCacheImpl) generateKey(hash string) string {
	return fmt.Sprintf("%s%s", captionKeyPrefix, hash)
}

// Get returns the cached caption for hash. A missing key is not an error.
func (r *CaptionCacheImpl) Get(ctx context.Context, hash string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.generateKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores caption with an expiry; SETEX keeps the write and TTL atomic.
func (r *CaptionCacheImpl) Set(ctx context.Context, hash, caption string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(hash), caption, expiry).Err()
}

func (r *CaptionCacheImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
