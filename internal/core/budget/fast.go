package budget

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// 快速模式參數
const (
	DefaultFastCacheTTL = 10 * time.Minute
	fastBudgetShare     = 0.6
	fastTopCandidates   = 20
	fastPicks           = 3
	fastRemainingShare  = 0.9
)

// FastResult 快速推薦結果
type FastResult struct {
	Recipes        []common.Recipe       `json:"recommended_recipes"`
	BudgetAnalysis common.BudgetAnalysis `json:"budget_analysis"`
	Fallback       bool                  `json:"fallback,omitempty"`
}

// FastStats 快速引擎統計
type FastStats struct {
	CacheSize         int   `json:"cache_size"`
	EstimateCacheSize int   `json:"nutrition_cache_size"`
	Hits              int64 `json:"hits"`
	Misses            int64 `json:"misses"`
}

type fastEntry struct {
	result   FastResult
	storedAt time.Time
}

type scored struct {
	recipe     common.Recipe
	estimate   nutrition.FastEstimate
	score      float64
	efficiency float64
}

// FastEngine 以快速估算做貪婪選擇的推薦引擎
// --------------------------------------------------
type FastEngine struct {
	source RecipeSource
	ttl    time.Duration

	mu        sync.Mutex
	cache     map[string]fastEntry
	estimates map[string]nutrition.FastEstimate
	hits      int64
	misses    int64
	now       func() time.Time
}

// NewFastEngine 創建快速推薦引擎
func NewFastEngine(source RecipeSource, ttl time.Duration) *FastEngine {
	if ttl <= 0 {
		ttl = DefaultFastCacheTTL
	}
	return &FastEngine{
		source:    source,
		ttl:       ttl,
		cache:     make(map[string]fastEntry),
		estimates: make(map[string]nutrition.FastEstimate),
		now:       time.Now,
	}
}

func fastKey(goal common.Goal, tdee, budget int) string {
	return fmt.Sprintf("%s_%d_%d", goal, tdee, budget)
}

// Recommend 產生最多三道食譜，沒有候選時回傳預設食譜
func (e *FastEngine) Recommend(ctx context.Context, goal common.Goal, tdee, budget int) (FastResult, error) {
	if budget <= 0 {
		return FastResult{}, common.Wrap(common.ErrInvalidBudget, fmt.Errorf("budget %d", budget))
	}
	if _, err := common.ParseGoal(string(goal)); err != nil {
		return FastResult{}, err
	}

	key := fastKey(goal, tdee, budget)
	if res, ok := e.cached(key); ok {
		return res, nil
	}

	start := time.Now()
	recipes, err := e.source.GetRecipesByGoal(ctx, goal, 0)
	if err != nil {
		common.LogWarn("快速推薦取得食譜失敗", zap.String("goal", string(goal)), zap.Error(err))
		return simpleFallback(nil, budget), nil
	}
	if len(recipes) == 0 {
		return simpleFallback(nil, budget), nil
	}

	affordable := e.affordable(recipes, budget)
	if len(affordable) == 0 {
		common.LogInfo("快速推薦沒有符合預算的食譜", zap.Int("budget", budget))
		return simpleFallback(recipes, budget), nil
	}

	picked := pickGreedy(affordable, budget)
	res := FastResult{
		Recipes:        lo.Map(picked, func(s scored, _ int) common.Recipe { return s.recipe }),
		BudgetAnalysis: Analyze(lo.Map(picked, func(s scored, _ int) RecipeCost {
			return RecipeCost{RecipeID: s.recipe.ID, Name: s.recipe.Name, Monthly: s.estimate.MonthlyCost, Estimated: true}
		}), budget),
	}

	e.mu.Lock()
	e.cache[key] = fastEntry{result: res, storedAt: e.now()}
	e.mu.Unlock()

	common.LogDuration("快速推薦完成", start,
		zap.String("key", key),
		zap.Int("candidates", len(affordable)),
		zap.Int("selected", len(res.Recipes)),
	)
	return res, nil
}

// cached 讀取快取，過期或空結果視為未命中
func (e *FastEngine) cached(key string) (FastResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.cache[key]
	if ok && (e.now().Sub(entry.storedAt) > e.ttl || len(entry.result.Recipes) == 0) {
		delete(e.cache, key)
		ok = false
	}
	if !ok {
		e.misses++
		common.LogCacheMiss("fast", key)
		return FastResult{}, false
	}
	e.hits++
	common.LogCacheHit("fast", key)
	return entry.result, true
}

// estimate 以食譜 ID 快取快速估算
func (e *FastEngine) estimate(r common.Recipe) nutrition.FastEstimate {
	e.mu.Lock()
	defer e.mu.Unlock()
	if est, ok := e.estimates[r.ID]; ok {
		return est
	}
	est := nutrition.EstimateFast(r.Name, r.Tags)
	e.estimates[r.ID] = est
	return est
}

// affordable 預算 60% 以內，依分數取前 20
func (e *FastEngine) affordable(recipes []common.Recipe, budget int) []scored {
	limit := float64(budget) * fastBudgetShare
	var out []scored
	for _, r := range recipes {
		est := e.estimate(r)
		if float64(est.MonthlyCost) > limit {
			continue
		}
		out = append(out, scored{recipe: r, estimate: est, score: fastScore(r, est)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	if len(out) > fastTopCandidates {
		out = out[:fastTopCandidates]
	}
	return out
}

// fastScore 評分 40%、營養 40%、費用 20%
func fastScore(r common.Recipe, est nutrition.FastEstimate) float64 {
	rating := math.Min(r.Overall()*20, 100)
	nutri := math.Min(est.Protein*2+est.Calories*0.1, 100)
	cost := math.Max(100-float64(est.MonthlyCost)/1000, 0)
	return rating*0.4 + nutri*0.4 + cost*0.2
}

// pickGreedy 依分數對費用的效率貪婪挑選
func pickGreedy(candidates []scored, budget int) []scored {
	ranked := lo.Map(candidates, func(s scored, _ int) scored {
		s.efficiency = s.score
		if s.estimate.MonthlyCost > 0 {
			s.efficiency = s.score / (float64(s.estimate.MonthlyCost) / 10000)
		}
		return s
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].efficiency > ranked[j].efficiency
	})

	remaining := float64(budget)
	var picked []scored
	for _, s := range ranked {
		if len(picked) >= fastPicks {
			break
		}
		if float64(s.estimate.MonthlyCost) <= remaining*fastRemainingShare {
			picked = append(picked, s)
			remaining -= float64(s.estimate.MonthlyCost)
		}
	}

	if len(picked) == 0 {
		picked = ranked[:min(fastPicks, len(ranked))]
	}
	return picked
}

// simpleFallback 依評分取前三道，沒有食譜時使用預設食譜，預算平均分配
func simpleFallback(recipes []common.Recipe, budget int) FastResult {
	var chosen []common.Recipe
	if len(recipes) > 0 {
		chosen = make([]common.Recipe, len(recipes))
		copy(chosen, recipes)
		sort.SliceStable(chosen, func(i, j int) bool {
			return chosen[i].Overall() > chosen[j].Overall()
		})
		chosen = chosen[:min(fastPicks, len(chosen))]
	} else {
		chosen = PlaceholderRecipes()
	}

	per := int(math.Round(float64(budget) / float64(len(chosen))))
	share := math.Round(100 / float64(len(chosen)))
	return FastResult{
		Recipes:  chosen,
		Fallback: true,
		BudgetAnalysis: common.BudgetAnalysis{
			TotalEstimatedCost:    budget,
			BudgetUsagePercentage: 100,
			CostBreakdown: lo.Map(chosen, func(r common.Recipe, _ int) common.CostBreakdownItem {
				return common.CostBreakdownItem{
					RecipeID:       r.ID,
					RecipeName:     r.Name,
					MonthlyCost:    per,
					CostPercentage: share,
				}
			}),
		},
	}
}

// PlaceholderRecipes 三道預設食譜
func PlaceholderRecipes() []common.Recipe {
	ratings := func() *common.UserRatings {
		return &common.UserRatings{Overall: 4.0, Taste: 4.0, Difficulty: 4.0, Nutrition: 4.0, ReviewCount: 100}
	}
	steps := func() []string {
		return []string{"재료 준비", "조리하기", "완성"}
	}
	return []common.Recipe{
		{
			ID:           "fallback-breakfast",
			Name:         "추천 아침 레시피",
			Description:  "균형잡힌 아침 식사를 위한 추천 레시피",
			Image:        "https://images.unsplash.com/photo-1533089860892-a7c6f0a88666?q=80&w=400",
			CookingTime:  15,
			Difficulty:   common.DifficultyEasy,
			Instructions: steps(),
			Tags:         []string{"건강", "간편"},
			MealType:     common.MealBreakfast,
			GoalFit:      []common.Goal{common.GoalMaintenance},
			UserRatings:  ratings(),
		},
		{
			ID:           "fallback-lunch",
			Name:         "추천 점심 레시피",
			Description:  "든든한 점심 식사를 위한 추천 레시피",
			Image:        "https://images.unsplash.com/photo-1546833999-b9f581a1996d?q=80&w=400",
			CookingTime:  20,
			Difficulty:   common.DifficultyEasy,
			Instructions: steps(),
			Tags:         []string{"건강", "균형"},
			MealType:     common.MealLunch,
			GoalFit:      []common.Goal{common.GoalMaintenance},
			UserRatings:  ratings(),
		},
		{
			ID:           "fallback-dinner",
			Name:         "추천 저녁 레시피",
			Description:  "건강한 저녁 식사를 위한 추천 레시피",
			Image:        "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?q=80&w=400",
			CookingTime:  25,
			Difficulty:   common.DifficultyEasy,
			Instructions: steps(),
			Tags:         []string{"건강", "영양"},
			MealType:     common.MealDinner,
			GoalFit:      []common.Goal{common.GoalMaintenance},
			UserRatings:  ratings(),
		},
	}
}

// ClearCache 清除結果與估算快取
func (e *FastEngine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]fastEntry)
	e.estimates = make(map[string]nutrition.FastEstimate)
	common.LogInfo("快速推薦快取已清除")
}

// Stats 回傳快取統計
func (e *FastEngine) Stats() FastStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return FastStats{
		CacheSize:         len(e.cache),
		EstimateCacheSize: len(e.estimates),
		Hits:              e.hits,
		Misses:            e.misses,
	}
}
