package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"TechScreen/internal/domain/models"
)

// RedisCache is a BarCache shared across screener instances. Histories are
// stored as JSON.
type RedisCache struct {
	cli *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisCache(cfg RedisConfig) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisCache{cli: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) (models.History, bool, error) {
	b, err := r.cli.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.History{}, false, nil
		}
		return models.History{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var h models.History
	if err := json.Unmarshal(b, &h); err != nil {
		// treat corrupt entries as misses so the fetch path can repair them
		return models.History{}, false, nil
	}
	return h, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, h models.History, ttl time.Duration) error {
	b, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal history %s: %w", key, err)
	}
	if err := r.cli.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Close() error { return r.cli.Close() }
