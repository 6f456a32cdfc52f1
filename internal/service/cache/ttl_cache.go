package cache

import (
	"context"
	"sync"
	"time"

	"TechScreen/internal/domain/models"
)

type entry struct {
	h   models.History
	exp time.Time
}

// TTLCache is an in-process BarCache.
type TTLCache struct {
	mu sync.RWMutex
	m  map[string]entry
}

func NewTTLCache() *TTLCache {
	return &TTLCache{m: make(map[string]entry)}
}

func (c *TTLCache) Get(_ context.Context, key string) (models.History, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return models.History{}, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return models.History{}, false, nil
	}
	return e.h, true, nil
}

func (c *TTLCache) Set(_ context.Context, key string, h models.History, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{h: h, exp: exp}
	c.mu.Unlock()
	return nil
}
