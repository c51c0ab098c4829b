package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

// MemoryOptions 記憶體快取設定
type MemoryOptions struct {
	MaxSize         int
	TTL             time.Duration
	CleanupInterval time.Duration
}

// MemoryStore 記憶體快取，支援 TTL 與 LRU 淘汰
type MemoryStore struct {
	opts  MemoryOptions
	mu    sync.RWMutex
	store map[string]memoryEntry
	stats cacheStats
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// memoryEntry 緩存條目
type memoryEntry struct {
	entry       Entry
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewMemoryStore 創建新的記憶體快取
func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	if opts.MaxSize <= 0 {
		opts.MaxSize = 100
	}

	m := &MemoryStore{
		opts:  opts,
		store: make(map[string]memoryEntry),
		now:   time.Now,
		done:  make(chan struct{}),
	}

	// 啟動清理過期緩存的協程
	if opts.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("記憶體快取已初始化",
		zap.Int("max_size", opts.MaxSize),
		zap.Duration("ttl", opts.TTL),
		zap.Duration("cleanup_interval", opts.CleanupInterval),
	)
	return m
}

// Get 獲取緩存值
func (m *MemoryStore) Get(ctx context.Context, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.store[key]
	if !exists {
		m.stats.misses++
		common.LogCacheMiss(BackendMemory, key)
		return Entry{}, common.ErrCacheMiss
	}

	if m.expired(e) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		common.LogDebug("快取已過期", zap.String("key", key))
		return Entry{}, common.ErrCacheMiss
	}

	// 更新訪問統計
	e.lastAccess = m.now()
	e.accessCount++
	m.store[key] = e
	m.stats.hits++

	common.LogCacheHit(BackendMemory, key)
	return e.entry, nil
}

// Set 設置緩存值
func (m *MemoryStore) Set(ctx context.Context, key string, recipes []common.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, replacing := m.store[key]
	if !replacing && len(m.store) >= m.opts.MaxSize {
		evicted := m.cleanup()
		if evicted > 0 {
			common.LogDebug("快取清理執行", zap.Int("evicted", evicted))
		}

		// 如果仍然超過大小限制，執行 LRU 清理
		if len(m.store) >= m.opts.MaxSize {
			m.evictLRU()
		}

		if len(m.store) >= m.opts.MaxSize {
			m.stats.errors++
			common.LogWarn("快取已滿", zap.Int("size", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := m.now()
	e := memoryEntry{
		entry:      Entry{Recipes: recipes, StoredAt: now},
		lastAccess: now,
	}
	if m.opts.TTL > 0 {
		e.expiresAt = now.Add(m.opts.TTL)
	}
	m.store[key] = e

	common.LogDebug("快取已儲存", zap.String("key", key), zap.Int("recipes", len(recipes)))
	return nil
}

// Delete 刪除緩存
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

// Clear 清空緩存
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.store)
	m.store = make(map[string]memoryEntry)
	common.LogInfo("記憶體快取已清空", zap.Int("removed", n))
	return nil
}

// Keys 回傳未過期的鍵，依字母排序
func (m *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.store))
	for k, e := range m.store {
		if !m.expired(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

// startCleanup 定期清理過期緩存
func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		}
	}
}

// cleanup 清理過期的緩存，呼叫端需持有寫鎖
func (m *MemoryStore) cleanup() int {
	count := 0
	for key, e := range m.store {
		if m.expired(e) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰最少使用的項目
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, e := range m.store {
		if oldestKey == "" ||
			e.accessCount < lowestAccessCount ||
			(e.accessCount == lowestAccessCount && e.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = e.lastAccess
			lowestAccessCount = e.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("快取已淘汰(LRU)", zap.String("key", oldestKey))
	}
}

// Stats 獲取緩存統計信息
func (m *MemoryStore) Stats() StoreStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return StoreStats{
		Backend:   BackendMemory,
		Size:      len(m.store),
		MaxSize:   m.opts.MaxSize,
		Hits:      m.stats.hits,
		Misses:    m.stats.misses,
		Evictions: m.stats.evictions,
		Errors:    m.stats.errors,
		HitRatio:  hitRatio(m.stats.hits, m.stats.misses),
	}
}

// Close 關閉緩存並停止清理協程
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]memoryEntry)
	common.LogInfo("記憶體快取已關閉",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	return nil
}
