package store

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/trainkit/core"
)

// RedisStore 是 Redis 实现的 ModelStore。
// 多个预测 worker 共享同一份持久化模型时常用：训练端写入一次，
// 各 worker 物化集成时只读加载。
//
// 键布局：<namespace>:<逻辑路径>，目录列举通过 SCAN 前缀匹配实现。
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(addr string, db int, namespace string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = "trainkit"
	}
	return &RedisStore{client: client, namespace: namespace}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) key(path string) string {
	return r.namespace + ":" + path
}

func (r *RedisStore) Put(ctx context.Context, path string, data []byte) error {
	return r.client.Set(ctx, r.key(path), data, 0).Err()
}

func (r *RedisStore) Get(ctx context.Context, path string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(path)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) List(ctx context.Context, path string) ([]string, error) {
	prefix := r.key(strings.TrimSuffix(path, "/") + "/")
	seen := make(map[string]bool)

	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		rest := strings.TrimPrefix(iter.Val(), prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i]
		}
		seen[rest] = true
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names, nil
}

func (r *RedisStore) Delete(ctx context.Context, path string) error {
	prefix := r.key(strings.TrimSuffix(path, "/") + "/")

	keys := []string{r.key(path)}
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// 确保 RedisStore 实现了 core.ModelStore 接口
var _ core.ModelStore = (*RedisStore)(nil)
