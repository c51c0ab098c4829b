package repository

import (
	"context"
	"sync/atomic"
	"time"

	"meal-planner/internal/pkg/common"
)

// 快取後端
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Entry 快取條目
type Entry struct {
	Recipes  []common.Recipe `json:"recipes"`
	StoredAt time.Time       `json:"stored_at"`
}

// StoreStats 快取統計
type StoreStats struct {
	Backend   string  `json:"backend"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size,omitempty"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Errors    int64   `json:"errors"`
	HitRatio  float64 `json:"hit_ratio"`
}

// Store 以鍵存放食譜清單的快取
// 找不到或已過期時 Get 回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, recipes []common.Recipe) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
	Stats() StoreStats
	Close() error
}

func hitRatio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// NoopStore 快取停用時使用，永遠未命中
type NoopStore struct {
	misses atomic.Int64
}

// Get 永遠回傳未命中
func (s *NoopStore) Get(ctx context.Context, key string) (Entry, error) {
	s.misses.Add(1)
	return Entry{}, common.ErrCacheMiss
}

func (s *NoopStore) Set(ctx context.Context, key string, recipes []common.Recipe) error { return nil }
func (s *NoopStore) Delete(ctx context.Context, key string) error                       { return nil }
func (s *NoopStore) Clear(ctx context.Context) error                                    { return nil }
func (s *NoopStore) Keys(ctx context.Context) ([]string, error)                         { return nil, nil }
func (s *NoopStore) Close() error                                                       { return nil }

// Stats 快取統計
func (s *NoopStore) Stats() StoreStats {
	return StoreStats{Backend: BackendNone, Misses: s.misses.Load()}
}
