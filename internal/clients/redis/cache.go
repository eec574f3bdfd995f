package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	ocerrors "github.com/opencircle/opencircle-backend/internal/pkg/errors"
	"github.com/opencircle/opencircle-backend/internal/pkg/logger"
)

// CacheStore is the TTL'd key/value surface the feed cache manager consumes.
// All errors returned wrap ErrCacheUnavailable so callers can fail open.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	MGet(ctx context.Context, keys []string) (map[string]string, error)
	MSet(ctx context.Context, values map[string]string, ttl time.Duration) error
}

type cacheStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewCacheStore(rdb *goredis.Client, baseLog *logger.Logger) CacheStore {
	return &cacheStore{
		log: baseLog.With("client", "RedisCache"),
		rdb: rdb,
	}
}

func (c *cacheStore) Get(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.rdb == nil {
		return "", false, ocerrors.ErrCacheUnavailable
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: get %s: %v", ocerrors.ErrCacheUnavailable, key, err)
	}
	return val, true, nil
}

func (c *cacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return ocerrors.ErrCacheUnavailable
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ocerrors.ErrCacheUnavailable, key, err)
	}
	return nil
}

func (c *cacheStore) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil {
		return ocerrors.ErrCacheUnavailable
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: delete: %v", ocerrors.ErrCacheUnavailable, err)
	}
	return nil
}

func (c *cacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if c == nil || c.rdb == nil {
		return ocerrors.ErrCacheUnavailable
	}
	iter := c.rdb.Scan(ctx, 0, pattern, 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 200 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("%w: delete by pattern %s: %v", ocerrors.ErrCacheUnavailable, pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan %s: %v", ocerrors.ErrCacheUnavailable, pattern, err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("%w: delete by pattern %s: %v", ocerrors.ErrCacheUnavailable, pattern, err)
		}
	}
	return nil
}

func (c *cacheStore) MGet(ctx context.Context, keys []string) (map[string]string, error) {
	if c == nil || c.rdb == nil {
		return nil, ocerrors.ErrCacheUnavailable
	}
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: mget: %v", ocerrors.ErrCacheUnavailable, err)
	}
	for i, v := range vals {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

func (c *cacheStore) MSet(ctx context.Context, values map[string]string, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return ocerrors.ErrCacheUnavailable
	}
	if len(values) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for k, v := range values {
		pipe.Set(ctx, k, v, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: mset: %v", ocerrors.ErrCacheUnavailable, err)
	}
	return nil
}
