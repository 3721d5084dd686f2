package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// FailoverLimiter uses the primary limiter until it errors, then serves
// from the fallback and retries the primary every minute.
type FailoverLimiter struct {
	primary   Limiter
	fallback  Limiter
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverLimiter(primary, fallback Limiter, logger *zerolog.Logger) *FailoverLimiter {
	return &FailoverLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !f.isDown.Load() {
		allowed, err := f.primary.Allow(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		f.logger.Error().Err(err).Msg("Primary rate limiter failed, falling back to memory")
		f.isDown.Store(true)
		f.lastCheck.Store(time.Now().UnixNano())
	}

	// Пробуем восстановиться через минуту
	if f.isDown.Load() && time.Since(time.Unix(0, f.lastCheck.Load())) > time.Minute {
		allowed, err := f.primary.Allow(ctx, key, limit, window)
		if err == nil {
			f.isDown.Store(false)
			return allowed, nil
		}
		f.lastCheck.Store(time.Now().UnixNano())
	}

	return f.fallback.Allow(ctx, key, limit, window)
}
