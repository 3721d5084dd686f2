package ratelimit

import (
	"context"
	"time"
)

// Limiter counts requests per client key within a sliding window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
