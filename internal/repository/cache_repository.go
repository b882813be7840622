package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheRepository 基于 Redis 的缓存与短锁，Redis 未启用时所有操作退化为未命中/直接放行
type CacheRepository struct {
	Redis *redis.Client
}

func NewCacheRepository(rdb *redis.Client) *CacheRepository {
	return &CacheRepository{Redis: rdb}
}

func (r *CacheRepository) Enabled() bool {
	return r != nil && r.Redis != nil
}

// GetJSON 命中时返回 true
func (r *CacheRepository) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	val, err := r.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *CacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, key, raw, ttl).Err()
}

// AcquireLock 获取到锁返回 true；Redis 未启用时总是返回 true
func (r *CacheRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if !r.Enabled() {
		return true, nil
	}
	return r.Redis.SetNX(ctx, key, "1", ttl).Result()
}

func (r *CacheRepository) ReleaseLock(ctx context.Context, key string) error {
	if !r.Enabled() {
		return nil
	}
	return r.Redis.Del(ctx, key).Err()
}
