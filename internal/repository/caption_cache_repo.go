package repository

import (
	"context"
	"time"
)

// CaptionCacheRepository defines the interface for short-lived caption reuse
// between identical uploads.
type CaptionCacheRepository interface {
	// Get returns the caption stored for key, and whether one was found.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores caption for key with the given expiry.
	Set(ctx context.Context, key, caption string, expiry time.Duration) error
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
