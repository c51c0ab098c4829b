package budget

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

// DefaultMonthlyFrequency 每月預設烹調次數
const DefaultMonthlyFrequency = 10

// IngredientCost 單一食材的費用分析
type IngredientCost struct {
	Ingredient        string `json:"ingredient"`
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	PackageSize       string `json:"package_size"`
	Usage             string `json:"usage_per_recipe"`
	RecipesPerPackage int    `json:"max_recipes_from_package"`
	CostPerRecipe     int    `json:"cost_per_recipe"`
	ProductPrice      int    `json:"total_product_cost"`
}

// RecipeCost 食譜費用分析
type RecipeCost struct {
	RecipeID                    string           `json:"recipe_id"`
	Name                        string           `json:"recipe_name"`
	PerServing                  int              `json:"total_cost_per_recipe"`
	Monthly                     int              `json:"monthly_cost"`
	Items                       []IngredientCost `json:"ingredient_analysis"`
	MinPossibleRecipes          int              `json:"min_possible_recipes"`
	AverageRecipesPerIngredient int              `json:"average_recipes_per_ingredient"`
	// 沒有食材時使用快速模式估算
	Estimated bool `json:"estimated,omitempty"`
}

// CostEstimator 依商品包裝估算食譜費用
type CostEstimator struct {
	frequency int
}

// NewCostEstimator 創建費用估算器
func NewCostEstimator(frequency int) *CostEstimator {
	if frequency <= 0 {
		frequency = DefaultMonthlyFrequency
	}
	return &CostEstimator{frequency: frequency}
}

// Frequency 每月烹調次數
func (e *CostEstimator) Frequency() int {
	return e.frequency
}

// Estimate 計算每次與每月費用
func (e *CostEstimator) Estimate(r common.Recipe) RecipeCost {
	rc := RecipeCost{RecipeID: r.ID, Name: r.Name}

	if len(r.Ingredients) == 0 {
		fast := nutrition.EstimateFast(r.Name, r.Tags)
		rc.Monthly = fast.MonthlyCost
		rc.PerServing = int(math.Round(float64(fast.MonthlyCost) / float64(e.frequency)))
		rc.Estimated = true
		return rc
	}

	rc.Items = lo.Map(r.Ingredients, func(ing common.RecipeIngredient, _ int) IngredientCost {
		pkg := ParsePackage(ing.Product.Weight)
		n := RecipesPerPackage(pkg, ing.Quantity, ing.Unit)
		return IngredientCost{
			Ingredient:        ing.Name,
			ProductID:         ing.Product.ID,
			ProductName:       ing.Product.Name,
			PackageSize:       ing.Product.Weight,
			Usage:             fmt.Sprintf("%v%s", ing.Quantity, ing.Unit),
			RecipesPerPackage: n,
			CostPerRecipe:     int(math.Round(float64(ing.Product.Price) / float64(n))),
			ProductPrice:      ing.Product.Price,
		}
	})

	rc.PerServing = lo.SumBy(rc.Items, func(c IngredientCost) int { return c.CostPerRecipe })
	rc.Monthly = rc.PerServing * e.frequency

	counts := lo.Map(rc.Items, func(c IngredientCost, _ int) int { return c.RecipesPerPackage })
	rc.MinPossibleRecipes = lo.Min(counts)
	rc.AverageRecipesPerIngredient = int(math.Round(float64(lo.Sum(counts)) / float64(len(counts))))
	return rc
}
