package budget

import (
	"sort"

	"github.com/samber/lo"

	"meal-planner/internal/core/product"
	"meal-planner/internal/pkg/common"
)

// 商品推薦參數
const (
	productPicks          = 12
	productTopCandidates  = 20
	productMealBudgetRate = 2.0
	daysPerMonth          = 30
	defaultProductDays    = 7
)

// productDurations 依規格字樣估計可用天數，依序比對
var productDurations = []struct {
	marks []string
	days  int
}{
	{[]string{"30팩"}, 30},
	{[]string{"20개", "20팩"}, 20},
	{[]string{"15팩"}, 15},
	{[]string{"12개", "12팩"}, 12},
	{[]string{"10팩", "10개"}, 10},
	{[]string{"8팩", "8개"}, 8},
	{[]string{"6개", "6팩"}, 6},
	{[]string{"5kg"}, 20},
	{[]string{"3kg"}, 15},
	{[]string{"500g"}, 5},
}

// ProductDuration 估計一件商品可吃幾天，無法判斷時為 7 天
func ProductDuration(weight string) int {
	for _, d := range productDurations {
		if common.ContainsAny(weight, d.marks) {
			return d.days
		}
	}
	return defaultProductDays
}

// candidatePool 依目標挑選商品池
func candidatePool(products []common.Product, goal common.Goal) []common.Product {
	byGoal := lo.GroupBy(products, func(p common.Product) common.Goal { return p.Goal })
	maintenance := byGoal[common.GoalMaintenance]

	switch goal {
	case common.GoalWeightLoss:
		return append(append([]common.Product{}, byGoal[common.GoalWeightLoss]...),
			lo.Filter(maintenance, func(p common.Product, _ int) bool { return p.Nutrition.Calories < 150 })...)
	case common.GoalMuscleGain:
		return append(append([]common.Product{}, byGoal[common.GoalMuscleGain]...),
			lo.Filter(maintenance, func(p common.Product, _ int) bool { return p.Nutrition.Protein > 15 })...)
	default:
		lean := byGoal[common.GoalWeightLoss]
		return append(append([]common.Product{}, maintenance...), lean[:min(2, len(lean))]...)
	}
}

// NutrientScore 商品營養適合度，滿分 100
// 熱量佔比 30、蛋白質 25、脂肪比例 20、鈉 15、每單位營養價格 10
func NutrientScore(p common.Product, goal common.Goal, targets NutritionTargets) float64 {
	n := p.Nutrition
	score := 0.0

	if targets.TargetCalories > 0 {
		ratio := n.Calories / float64(targets.TargetCalories) * 100
		switch {
		case ratio > 5 && ratio < 25:
			score += 30
		case ratio <= 5:
			score += 20
		}
	}

	if goal == common.GoalWeightLoss || goal == common.GoalMuscleGain {
		switch {
		case n.Protein > 20:
			score += 25
		case n.Protein > 15:
			score += 20
		case n.Protein > 10:
			score += 10
		}
	} else if n.Protein > 5 {
		score += 25
	}

	if n.Calories > 0 {
		fatRatio := n.Fat * 9 / n.Calories * 100
		switch {
		case goal == common.GoalWeightLoss && fatRatio < 30,
			goal == common.GoalMuscleGain && fatRatio > 20 && fatRatio < 40,
			goal == common.GoalMaintenance && fatRatio > 25 && fatRatio < 35:
			score += 20
		}
	}

	switch {
	case n.Sodium < 300:
		score += 15
	case n.Sodium < 500:
		score += 10
	case n.Sodium < 800:
		score += 5
	}

	if value := n.Protein*4 + n.Carb*4 + n.Fat*9; value > 0 {
		perNutrient := float64(p.Price) / value
		switch {
		case perNutrient < 50:
			score += 10
		case perNutrient < 100:
			score += 5
		}
	}

	return min(score, 100)
}

// diversify 每個分類先取第一名，其餘名額依分數補滿
func diversify(products []common.Product, limit int) []common.Product {
	picked := lo.UniqBy(products, func(p common.Product) string { return p.Category })
	chosen := lo.SliceToMap(picked, func(p common.Product) (string, bool) { return p.ID, true })
	rest := lo.Reject(products, func(p common.Product, _ int) bool { return chosen[p.ID] })

	out := append(picked, rest...)
	return out[:min(limit, len(out))]
}

// RecommendProducts 依目標、營養目標與月預算推薦最多 12 件商品
// 每餐成本以可用天數攤提，容許到每餐預算的兩倍
func RecommendProducts(catalog *product.Catalog, goal common.Goal, targets NutritionTargets, monthlyBudget int) []common.Product {
	if catalog == nil || monthlyBudget <= 0 {
		return []common.Product{}
	}

	mealBudget := float64(monthlyBudget) / daysPerMonth / mealsPerDay
	affordable := lo.Filter(candidatePool(catalog.Products, goal), func(p common.Product, _ int) bool {
		perMeal := float64(p.Price) / float64(ProductDuration(p.Weight)) / mealsPerDay
		return perMeal <= mealBudget*productMealBudgetRate
	})

	type scoredProduct struct {
		product common.Product
		score   float64
	}
	ranked := lo.Map(affordable, func(p common.Product, _ int) scoredProduct {
		return scoredProduct{product: p, score: NutrientScore(p, goal, targets)}
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	ranked = ranked[:min(productTopCandidates, len(ranked))]

	return diversify(lo.Map(ranked, func(s scoredProduct, _ int) common.Product { return s.product }), productPicks)
}
