package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"meal-planner/internal/core/corpus"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/pkg/common"
)

// 預設值
const (
	DefaultGoalLimit     = 200
	DefaultFallbackLimit = 30
	DefaultPopularLimit  = 30
	DefaultSearchLimit   = 50
	topStatistics        = 10
)

// State 倉庫狀態
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
)

// CorpusLoader 語料載入
type CorpusLoader interface {
	Load(ctx context.Context) ([]corpus.Record, error)
	Clear()
	Loading() bool
	Ready() bool
	Stats() corpus.LoaderStats
}

// Options 倉庫設定
type Options struct {
	GoalLimit        int
	FallbackLimit    int
	BatchSize        int
	Keywords         KeywordSet
	FallbackKeywords KeywordSet
}

// Repository 依目標索引的食譜倉庫
// --------------------------------------------------
type Repository struct {
	loader      CorpusLoader
	transformer *recipe.Transformer
	store       Store
	opts        Options
	group       singleflight.Group

	// gen 於 ClearCache 遞增，清除前開始的載入不得寫回快取
	mu  sync.RWMutex
	gen uint64
}

// New 創建食譜倉庫
func New(loader CorpusLoader, transformer *recipe.Transformer, store Store, opts Options) *Repository {
	if opts.GoalLimit <= 0 {
		opts.GoalLimit = DefaultGoalLimit
	}
	if opts.FallbackLimit <= 0 {
		opts.FallbackLimit = DefaultFallbackLimit
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Keywords == nil {
		opts.Keywords = DefaultGoalKeywords()
	}
	if opts.FallbackKeywords == nil {
		opts.FallbackKeywords = DefaultFallbackKeywords()
	}
	if store == nil {
		store = NewMemoryStore(MemoryOptions{})
	}
	return &Repository{
		loader:      loader,
		transformer: transformer,
		store:       store,
		opts:        opts,
	}
}

// Load 預先載入語料，可重複呼叫
func (r *Repository) Load(ctx context.Context) error {
	_, err := r.loader.Load(ctx)
	return err
}

// State 回傳目前狀態
func (r *Repository) State() State {
	switch {
	case r.loader.Loading():
		return StateLoading
	case r.loader.Ready():
		return StateReady
	default:
		return StateUninitialized
	}
}

func goalKey(goal common.Goal) string {
	return "goal_" + string(goal)
}

// GetRecipesByGoal 取得適合目標的食譜，依品質分數排序
// 管線與備援都失敗時回傳空清單，不回傳錯誤
func (r *Repository) GetRecipesByGoal(ctx context.Context, goal common.Goal, limit int) ([]common.Recipe, error) {
	if _, err := common.ParseGoal(string(goal)); err != nil {
		return nil, err
	}

	key := goalKey(goal)
	if recipes, ok := r.cached(ctx, key); ok {
		return truncate(recipes, limit), nil
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		return r.runGoalPipeline(context.WithoutCancel(ctx), goal)
	})

	var recipes []common.Recipe
	select {
	case <-ctx.Done():
		common.LogWarn("目標食譜請求已取消", zap.String("goal", string(goal)), zap.Error(ctx.Err()))
		return []common.Recipe{}, nil
	case res := <-ch:
		if res.Err == nil {
			recipes = res.Val.([]common.Recipe)
			break
		}
		common.LogWarn("目標食譜載入失敗，改用備援搜尋",
			zap.String("goal", string(goal)),
			zap.Error(res.Err),
		)
		fallback, err := r.fallbackByGoal(ctx, goal)
		if err != nil {
			common.LogError("備援搜尋也失敗", zap.String("goal", string(goal)), zap.Error(err))
			return []common.Recipe{}, nil
		}
		recipes = fallback
	}

	return truncate(recipes, limit), nil
}

// cached 讀取快取，空條目視為未命中並刪除
func (r *Repository) cached(ctx context.Context, key string) ([]common.Recipe, bool) {
	entry, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("快取讀取失敗", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(entry.Recipes) == 0 {
		common.LogInfo("快取為空，重新載入", zap.String("key", key))
		if err := r.store.Delete(ctx, key); err != nil {
			common.LogWarn("刪除空快取失敗", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return entry.Recipes, true
}

// generation 回傳目前的快取世代
func (r *Repository) generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gen
}

// storeIfCurrent 世代未變且結果非空時才寫入快取
func (r *Repository) storeIfCurrent(ctx context.Context, gen uint64, key string, recipes []common.Recipe) {
	if len(recipes) == 0 {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.gen != gen {
		common.LogInfo("快取已在載入期間清除，略過寫入", zap.String("key", key))
		return
	}
	if err := r.store.Set(ctx, key, recipes); err != nil {
		common.LogWarn("快取寫入失敗", zap.String("key", key), zap.Error(err))
	}
}

func (r *Repository) runGoalPipeline(ctx context.Context, goal common.Goal) ([]common.Recipe, error) {
	start := time.Now()
	gen := r.generation()

	records, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	keywords := r.opts.Keywords[goal]
	stopAt := r.opts.GoalLimit * 3
	matched := make([]corpus.Record, 0, stopAt)
	for _, rec := range records {
		if matchesAny(rec, keywords) {
			matched = append(matched, rec)
			if len(matched) >= stopAt {
				break
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Popularity() > matched[j].Popularity()
	})
	if len(matched) > r.opts.GoalLimit {
		matched = matched[:r.opts.GoalLimit]
	}

	converted, stats, err := transformBatches(ctx, "goal_"+string(goal), matched, r.opts.BatchSize, r.transformer.Transform)
	if err != nil {
		return nil, err
	}

	recipes := rankForGoal(converted, goal)
	r.storeIfCurrent(ctx, gen, goalKey(goal), recipes)

	common.LogDuration("目標食譜載入完成", start,
		zap.String("goal", string(goal)),
		zap.Int("corpus", len(records)),
		zap.Int("matched", len(matched)),
		zap.Int("failed", stats.Failed),
		zap.Int("recipes", len(recipes)),
	)
	return recipes, nil
}

// fallbackByGoal 以精簡關鍵字搜尋名稱、標題與介紹
func (r *Repository) fallbackByGoal(ctx context.Context, goal common.Goal) ([]common.Recipe, error) {
	records, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	keywords := r.opts.FallbackKeywords[goal]
	matched := lo.Filter(records, func(rec corpus.Record, _ int) bool {
		return matchesLoose(rec, keywords)
	})
	if len(matched) > r.opts.FallbackLimit {
		matched = matched[:r.opts.FallbackLimit]
	}

	converted, _, err := transformBatches(ctx, "fallback_"+string(goal), matched, r.opts.BatchSize, r.transformer.Transform)
	if err != nil {
		return nil, err
	}
	return rankForGoal(converted, goal), nil
}

// rankForGoal 保留適合目標的食譜並依品質分數穩定排序
func rankForGoal(recipes []common.Recipe, goal common.Goal) []common.Recipe {
	kept := lo.Filter(recipes, func(rec common.Recipe, _ int) bool {
		return rec.Fits(goal)
	})
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Overall() > kept[j].Overall()
	})
	return kept
}

func truncate(recipes []common.Recipe, limit int) []common.Recipe {
	if limit > 0 && len(recipes) > limit {
		return recipes[:limit]
	}
	return recipes
}

// ClearCache 清除目標快取與語料快取
func (r *Repository) ClearCache(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++

	r.loader.Clear()
	for _, goal := range common.AllGoals {
		r.group.Forget(goalKey(goal))
	}
	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear recipe cache: %w", err)
	}
	common.LogInfo("食譜快取已清除")
	return nil
}

// GetPopularRecipes 依瀏覽數取得熱門食譜
func (r *Repository) GetPopularRecipes(ctx context.Context, limit int) ([]common.Recipe, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	key := "popular_" + strconv.Itoa(limit)
	if recipes, ok := r.cached(ctx, key); ok {
		return recipes, nil
	}

	gen := r.generation()
	records, err := r.loader.Load(ctx)
	if err != nil {
		common.LogError("熱門食譜載入失敗", zap.Error(err))
		return []common.Recipe{}, nil
	}

	sorted := make([]corpus.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Views > sorted[j].Views
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	recipes, _, err := transformBatches(ctx, "popular", sorted, r.opts.BatchSize, r.transformer.Transform)
	if err != nil {
		return nil, err
	}
	r.storeIfCurrent(ctx, gen, key, recipes)
	return recipes, nil
}

// SearchRecipes 以名稱、標題與介紹搜尋，不分大小寫
func (r *Repository) SearchRecipes(ctx context.Context, query string, limit int) ([]common.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []common.Recipe{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	records, err := r.loader.Load(ctx)
	if err != nil {
		common.LogError("食譜搜尋失敗", zap.String("query", query), zap.Error(err))
		return []common.Recipe{}, nil
	}

	terms := []string{query}
	matched := make([]corpus.Record, 0, limit)
	for _, rec := range records {
		if matchesLoose(rec, terms) {
			matched = append(matched, rec)
			if len(matched) >= limit {
				break
			}
		}
	}

	recipes, _, err := transformBatches(ctx, "search", matched, r.opts.BatchSize, r.transformer.Transform)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountEntry 名稱與次數
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Statistics 語料統計
type Statistics struct {
	TotalRecipes int          `json:"total_recipes"`
	AvgViews     float64      `json:"avg_views"`
	AvgScraps    float64      `json:"avg_scraps"`
	TopKinds     []CountEntry `json:"top_categories"`
	TopMethods   []CountEntry `json:"top_cooking_methods"`
}

// GetStatistics 計算語料統計
func (r *Repository) GetStatistics(ctx context.Context) (Statistics, error) {
	records, err := r.loader.Load(ctx)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{TotalRecipes: len(records)}
	if len(records) > 0 {
		views := lo.SumBy(records, func(rec corpus.Record) int { return rec.Views })
		scraps := lo.SumBy(records, func(rec corpus.Record) int { return rec.Scraps })
		stats.AvgViews = common.Round1(float64(views) / float64(len(records)))
		stats.AvgScraps = common.Round1(float64(scraps) / float64(len(records)))
	}

	stats.TopKinds = topCounts(records, func(rec corpus.Record) string { return rec.Kind })
	stats.TopMethods = topCounts(records, func(rec corpus.Record) string { return rec.Method })
	return stats, nil
}

// topCounts 依次數遞減取前十，同次數依名稱排序
func topCounts(records []corpus.Record, field func(corpus.Record) string) []CountEntry {
	values := lo.FilterMap(records, func(rec corpus.Record, _ int) (string, bool) {
		v := field(rec)
		return v, v != ""
	})
	entries := lo.MapToSlice(lo.CountValues(values), func(name string, count int) CountEntry {
		return CountEntry{Name: name, Count: count}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > topStatistics {
		entries = entries[:topStatistics]
	}
	return entries
}

// FindRecipeByID 以食譜 ID 或序號查詢
func (r *Repository) FindRecipeByID(ctx context.Context, id string) (common.Recipe, error) {
	serial := strings.TrimPrefix(strings.TrimSpace(id), recipe.IDPrefix)
	if serial == "" {
		return common.Recipe{}, common.Wrap(common.ErrRecipeNotFound, fmt.Errorf("empty id"))
	}

	records, err := r.loader.Load(ctx)
	if err != nil {
		return common.Recipe{}, err
	}

	rec, ok := lo.Find(records, func(rec corpus.Record) bool {
		return rec.SerialID == serial
	})
	if !ok {
		return common.Recipe{}, common.Wrap(common.ErrRecipeNotFound, fmt.Errorf("id %s", id))
	}
	return r.transformer.Transform(rec), nil
}

// EntryStatus 單一快取條目狀態
type EntryStatus struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
	Age  string `json:"age"`
}

// CacheStatus 倉庫快取狀態
type CacheStatus struct {
	State   State              `json:"state"`
	Corpus  corpus.LoaderStats `json:"corpus"`
	Store   StoreStats         `json:"store"`
	Entries []EntryStatus      `json:"entries"`
}

// CacheStatus 回傳每個快取鍵的大小與存活時間
func (r *Repository) CacheStatus(ctx context.Context) (CacheStatus, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return CacheStatus{}, err
	}

	status := CacheStatus{
		State:   r.State(),
		Corpus:  r.loader.Stats(),
		Entries: make([]EntryStatus, 0, len(keys)),
	}
	for _, k := range keys {
		entry, err := r.store.Get(ctx, k)
		if err != nil {
			continue
		}
		status.Entries = append(status.Entries, EntryStatus{
			Key:  k,
			Size: len(entry.Recipes),
			Age:  time.Since(entry.StoredAt).Round(time.Second).String(),
		})
	}
	status.Store = r.store.Stats()
	return status, nil
}

// Transformer 回傳轉換器
func (r *Repository) Transformer() *recipe.Transformer {
	return r.transformer
}
