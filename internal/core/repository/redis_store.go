package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

// DefaultRedisPrefix Redis 鍵前綴
const DefaultRedisPrefix = "meal:recipes:"

const scanCount = 100

// RedisOptions Redis 快取設定
type RedisOptions struct {
	Addr   string
	DB     int
	TTL    time.Duration
	Prefix string
}

// RedisStore 以 JSON 儲存食譜清單的 Redis 快取
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewRedisStore 創建 Redis 快取並測試連接
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return NewRedisStoreWithClient(client, opts.TTL, opts.Prefix), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.misses.Add(1)
			common.LogCacheMiss(BackendRedis, key)
			return Entry{}, common.ErrCacheMiss
		}
		s.errors.Add(1)
		return Entry{}, fmt.Errorf("failed to get cache: %w", err)
	}

	e, err := common.ParseJSONBytes[Entry](data)
	if err != nil {
		s.errors.Add(1)
		return Entry{}, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	s.hits.Add(1)
	common.LogCacheHit(BackendRedis, key)
	return e, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, key string, recipes []common.Recipe) error {
	data, err := common.ToJSON(Entry{Recipes: recipes, StoredAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal recipes: %w", err)
	}

	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 刪除緩存
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Clear 以 SCAN + DEL 刪除前綴下的所有鍵
func (s *RedisStore) Clear(ctx context.Context) error {
	keys, err := s.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	common.LogInfo("Redis 快取已清空", zap.Int("removed", len(keys)))
	return nil
}

// Keys 回傳去除前綴後的鍵
func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, s.prefix))
	}
	sort.Strings(out)
	return out, nil
}

func (s *RedisStore) scan(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanCount).Result()
		if err != nil {
			s.errors.Add(1)
			return nil, fmt.Errorf("failed to scan cache keys: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// Stats 回傳統計，Size 需要額外掃描因此不填
func (s *RedisStore) Stats() StoreStats {
	hits, misses := s.hits.Load(), s.misses.Load()
	return StoreStats{
		Backend:  BackendRedis,
		Hits:     hits,
		Misses:   misses,
		Errors:   s.errors.Load(),
		HitRatio: hitRatio(hits, misses),
	}
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
