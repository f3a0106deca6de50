package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by a redis server. Expiry is delegated to
// redis via per-key TTLs, so expired entries are simply absent on read.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore creates a redis-backed store. All keys are namespaced under
// prefix to keep the cache separable from other users of the same server.
func NewRedisStore(rdb *redis.Client, prefix string) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("nil redis client")
	}
	if prefix == "" {
		prefix = "httpkit:cache:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis get")
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.Wrap(s.rdb.Set(ctx, s.prefix+key, value, ttl).Err(), "redis set")
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, s.prefix+key).Err(), "redis del")
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "redis del")
		}
	}
	return errors.Wrap(iter.Err(), "redis scan")
}
