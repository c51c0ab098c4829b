package budget

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/core/product"
	"meal-planner/internal/pkg/common"
)

// 預設值
const (
	DefaultAffordableShare = 0.4
	DefaultMaxCombinations = 1000
	pairBudgetShare        = 0.9
	mealsPerDay            = 3
)

// RecipeSource 取得目標食譜
type RecipeSource interface {
	GetRecipesByGoal(ctx context.Context, goal common.Goal, limit int) ([]common.Recipe, error)
}

// Options 推薦設定
type Options struct {
	AffordableShare float64
	MaxCombinations int
	Frequency       int
	// Catalog 為 nil 時不推薦商品
	Catalog *product.Catalog
}

// Request 推薦請求
type Request struct {
	Goal          common.Goal
	Gender        nutrition.Gender
	Targets       NutritionTargets
	MonthlyBudget int
	Preferences   Preferences
}

// Recommendation 推薦結果
type Recommendation struct {
	ID               string                `json:"id"`
	Recipes          []common.Recipe       `json:"recommended_recipes"`
	Products         []common.Product      `json:"recommended_products"`
	BudgetAnalysis   common.BudgetAnalysis `json:"budget_analysis"`
	NutritionTargets NutritionTargets      `json:"nutrition_targets"`
	Message          string                `json:"personalized_message"`
	Costs            []RecipeCost          `json:"costs"`
}

type candidate struct {
	recipe common.Recipe
	cost   RecipeCost
}

// Recommender 在預算內挑選最接近營養目標的三道食譜
// --------------------------------------------------
type Recommender struct {
	source RecipeSource
	costs  *CostEstimator
	opts   Options
	now    func() time.Time
}

// NewRecommender 創建推薦器
func NewRecommender(source RecipeSource, opts Options) *Recommender {
	if opts.AffordableShare <= 0 || opts.AffordableShare > 1 {
		opts.AffordableShare = DefaultAffordableShare
	}
	if opts.MaxCombinations <= 0 {
		opts.MaxCombinations = DefaultMaxCombinations
	}
	return &Recommender{
		source: source,
		costs:  NewCostEstimator(opts.Frequency),
		opts:   opts,
		now:    time.Now,
	}
}

// Costs 回傳費用估算器
func (r *Recommender) Costs() *CostEstimator {
	return r.costs
}

// Recommend 產生預算內的推薦組合
func (r *Recommender) Recommend(ctx context.Context, req Request) (Recommendation, error) {
	if req.MonthlyBudget <= 0 {
		return Recommendation{}, common.Wrap(common.ErrInvalidBudget, fmt.Errorf("budget %d", req.MonthlyBudget))
	}
	if _, err := common.ParseGoal(string(req.Goal)); err != nil {
		return Recommendation{}, err
	}

	start := time.Now()
	recipes, err := r.source.GetRecipesByGoal(ctx, req.Goal, 0)
	if err != nil {
		return Recommendation{}, err
	}

	candidates := lo.Map(recipes, func(rec common.Recipe, _ int) candidate {
		return candidate{recipe: rec, cost: r.costs.Estimate(rec)}
	})
	selected := r.selectRecipes(candidates, req)

	rec := Recommendation{
		ID:               common.GenerateUUID(),
		Recipes:          lo.Map(selected, func(c candidate, _ int) common.Recipe { return c.recipe }),
		Costs:            lo.Map(selected, func(c candidate, _ int) RecipeCost { return c.cost }),
		Products:         RecommendProducts(r.opts.Catalog, req.Goal, req.Targets, req.MonthlyBudget),
		NutritionTargets: req.Targets,
	}
	rec.BudgetAnalysis = Analyze(rec.Costs, req.MonthlyBudget)
	rec.Message = BudgetMessage(req.Gender, req.Goal, req.MonthlyBudget, rec.BudgetAnalysis.TotalEstimatedCost)

	common.LogDuration("預算推薦完成", start,
		zap.String("goal", string(req.Goal)),
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)),
		zap.Int("products", len(rec.Products)),
		zap.Int("total", rec.BudgetAnalysis.TotalEstimatedCost),
	)
	return rec, nil
}

// Personalized 不考慮預算的個人化推薦
type Personalized struct {
	Recipes          []common.Recipe  `json:"recommended_recipes"`
	Products         []common.Product `json:"recommended_products"`
	NutritionTargets NutritionTargets `json:"nutrition_targets"`
	MealType         common.MealType  `json:"meal_type"`
}

// Personalize 依目前時段與偏好挑選食譜，商品以月預算篩選
func (r *Recommender) Personalize(ctx context.Context, req Request) (Personalized, error) {
	if _, err := common.ParseGoal(string(req.Goal)); err != nil {
		return Personalized{}, err
	}
	recipes, err := r.source.GetRecipesByGoal(ctx, req.Goal, 0)
	if err != nil {
		return Personalized{}, err
	}

	now := r.now()
	res := Personalized{
		Recipes:          PersonalizeRecipes(recipes, req.Goal, req.Targets, req.Preferences, now),
		Products:         RecommendProducts(r.opts.Catalog, req.Goal, req.Targets, req.MonthlyBudget),
		NutritionTargets: req.Targets,
		MealType:         MealTypeAt(now),
	}
	common.LogInfo("個人化推薦完成",
		zap.String("goal", string(req.Goal)),
		zap.String("meal_type", string(res.MealType)),
		zap.Int("candidates", len(recipes)),
		zap.Int("recipes", len(res.Recipes)),
		zap.Int("products", len(res.Products)),
	)
	return res, nil
}

// selectRecipes 依費用篩選後搜尋最佳組合，有候選時結果不會為空
func (r *Recommender) selectRecipes(candidates []candidate, req Request) []candidate {
	if len(candidates) == 0 {
		return nil
	}

	budget := float64(req.MonthlyBudget)
	byPrice := make([]candidate, len(candidates))
	copy(byPrice, candidates)
	sort.SliceStable(byPrice, func(i, j int) bool {
		return byPrice[i].cost.Monthly < byPrice[j].cost.Monthly
	})

	affordable := lo.Filter(byPrice, func(c candidate, _ int) bool {
		return float64(c.cost.Monthly) <= budget*r.opts.AffordableShare
	})
	if len(affordable) == 0 {
		common.LogInfo("沒有符合預算的食譜，改用最便宜的一道",
			zap.Int("budget", req.MonthlyBudget),
			zap.Int("cheapest", byPrice[0].cost.Monthly),
		)
		return byPrice[:1]
	}

	if best := r.bestTriple(affordable, req); best != nil {
		return best
	}

	if len(affordable) >= mealsPerDay {
		return affordable[:2]
	}
	return affordable
}

// bestTriple 以價格排序的候選列舉不重複的三道組合
func (r *Recommender) bestTriple(pool []candidate, req Request) []candidate {
	budget := float64(req.MonthlyBudget)
	n := len(pool)

	var best []candidate
	bestScore := -1.0
	tried := 0

outer:
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pair := pool[i].cost.Monthly + pool[j].cost.Monthly
			if float64(pair) > budget*pairBudgetShare {
				continue
			}
			for k := j + 1; k < n; k++ {
				if float64(pair+pool[k].cost.Monthly) > budget {
					break
				}
				tried++
				combo := []candidate{pool[i], pool[j], pool[k]}
				if score := comboScore(combo, req.Targets); score > bestScore {
					best, bestScore = combo, score
				}
				if tried >= r.opts.MaxCombinations {
					break outer
				}
			}
		}
	}

	common.LogDebug("組合搜尋完成",
		zap.Int("pool", n),
		zap.Int("combinations", tried),
		zap.Float64("best_score", bestScore),
	)
	return best
}

// comboScore 熱量與蛋白質越接近目標分數越高，各自最高 100
func comboScore(combo []candidate, t NutritionTargets) float64 {
	var total common.NutritionProfile
	for _, c := range combo {
		total = total.Add(c.recipe.Nutrition)
	}
	return closeness(total.Calories, float64(t.TargetCalories)) + closeness(total.Protein, t.MacroGrams.Protein)
}

func closeness(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Max(0, 100-math.Abs(actual-target)/target*100)
}

// Analyze 計算總費用與預算使用率
func Analyze(costs []RecipeCost, budget int) common.BudgetAnalysis {
	a := common.BudgetAnalysis{CostBreakdown: make([]common.CostBreakdownItem, 0, len(costs))}
	for _, c := range costs {
		a.TotalEstimatedCost += c.Monthly
		a.CostBreakdown = append(a.CostBreakdown, common.CostBreakdownItem{
			RecipeID:       c.RecipeID,
			RecipeName:     c.Name,
			MonthlyCost:    c.Monthly,
			CostPercentage: percentOf(c.Monthly, budget),
		})
	}
	a.BudgetUsagePercentage = percentOf(a.TotalEstimatedCost, budget)
	return a
}

func percentOf(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
