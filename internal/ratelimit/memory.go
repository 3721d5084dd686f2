package ratelimit

import (
	"context"
	"sync"
	"time"
)

type MemoryLimiter struct {
	entries sync.Map
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{}
}

type entry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, _ := m.entries.LoadOrStore(key, &entry{})
	e := val.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if now.After(e.expiresAt) {
		e.count = 1
		e.expiresAt = now.Add(window)
	} else {
		e.count++
	}

	return e.count <= limit, nil
}
