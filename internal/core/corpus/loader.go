package corpus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"meal-planner/internal/pkg/common"
)

const loadKey = "corpus"

// LoaderStats 載入器狀態
type LoaderStats struct {
	Source   string     `json:"source"`
	Records  int        `json:"records"`
	LoadedAt time.Time  `json:"loaded_at,omitempty"`
	Age      string     `json:"age,omitempty"`
	Fetches  int64      `json:"fetches"`
	Loading  bool       `json:"loading"`
	Parse    ParseStats `json:"parse"`
}

// Loader 載入並快取語料，同時間只會有一次下載
type Loader struct {
	source Source
	opts   Options
	ttl    time.Duration

	mu       sync.RWMutex
	records  []Record
	stats    ParseStats
	loadedAt time.Time
	gen      uint64

	group   singleflight.Group
	fetches atomic.Int64
	loading atomic.Bool
	now     func() time.Time
}

// NewLoader 創建新的載入器
func NewLoader(source Source, opts Options, ttl time.Duration) *Loader {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}
	return &Loader{
		source: source,
		opts:   opts,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Load 取得語料，快取過期或為空時重新下載
func (l *Loader) Load(ctx context.Context) ([]Record, error) {
	if records, ok := l.cached(); ok {
		common.LogCacheHit("corpus", l.source.Name())
		return records, nil
	}

	ch := l.group.DoChan(loadKey, func() (interface{}, error) {
		// 呼叫端放棄時仍完成下載
		return l.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Record), nil
	}
}

func (l *Loader) cached() ([]Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.records) == 0 {
		return nil, false
	}
	if l.ttl > 0 && l.now().Sub(l.loadedAt) > l.ttl {
		return nil, false
	}
	return l.records, true
}

func (l *Loader) fetch(ctx context.Context) ([]Record, error) {
	l.loading.Store(true)
	defer l.loading.Store(false)

	l.mu.RLock()
	gen := l.gen
	l.mu.RUnlock()

	l.fetches.Add(1)
	start := time.Now()
	common.LogInfo("開始載入語料", zap.String("source", l.source.Name()))

	body, err := l.source.Open(ctx)
	if err != nil {
		common.LogError("語料下載失敗", zap.String("source", l.source.Name()), zap.Error(err))
		return nil, err
	}
	defer body.Close()

	records, stats, err := ParseReader(ctx, body, l.opts)
	if err != nil {
		common.LogError("語料解析失敗", zap.Error(err))
		return nil, common.Wrap(common.ErrCorpusFetch, err)
	}
	if len(records) == 0 {
		return nil, common.ErrCorpusEmpty
	}

	l.mu.Lock()
	// 期間被清除時不寫回快取
	if l.gen == gen {
		l.records = records
		l.stats = stats
		l.loadedAt = l.now()
	}
	l.mu.Unlock()

	common.LogDuration("語料載入完成", start, zap.Int("records", len(records)))
	return records, nil
}

// Clear 清除語料快取
func (l *Loader) Clear() {
	l.mu.Lock()
	l.records = nil
	l.stats = ParseStats{}
	l.loadedAt = time.Time{}
	l.gen++
	l.mu.Unlock()
	l.group.Forget(loadKey)
}

// Loading 是否正在載入
func (l *Loader) Loading() bool {
	return l.loading.Load()
}

// Ready 快取是否可用
func (l *Loader) Ready() bool {
	_, ok := l.cached()
	return ok
}

// Stats 回傳載入器狀態
func (l *Loader) Stats() LoaderStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := LoaderStats{
		Source:  l.source.Name(),
		Records: len(l.records),
		Fetches: l.fetches.Load(),
		Loading: l.loading.Load(),
		Parse:   l.stats,
	}
	if !l.loadedAt.IsZero() {
		s.LoadedAt = l.loadedAt
		s.Age = l.now().Sub(l.loadedAt).Round(time.Second).String()
	}
	return s
}
