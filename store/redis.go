package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rushteam/courserec/core"
)

// DefaultKeyPrefix 是 RedisStore 的默认 key 前缀，便于与其他业务共用实例。
const DefaultKeyPrefix = "courserec:"

// RedisStore 是 Redis 实现的 core.Store，多实例部署时共享推荐结果缓存。
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ core.Store = (*RedisStore)(nil)

// NewRedisStore 连接 Redis 并 Ping；不可达时返回 UNAVAILABLE 错误。
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "redis ping "+addr, err)
	}
	return &RedisStore{client: client, prefix: DefaultKeyPrefix}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	return r.client.Set(ctx, r.prefix+key, value, expiration).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
