package common

import (
	"fmt"
	"strings"
)

// Goal 飲食目標
type Goal string

const (
	GoalWeightLoss  Goal = "weight_loss"
	GoalMuscleGain  Goal = "muscle_gain"
	GoalMaintenance Goal = "maintenance"
)

// AllGoals 固定順序的全部目標
var AllGoals = []Goal{GoalWeightLoss, GoalMuscleGain, GoalMaintenance}

// ParseGoal 解析目標字串
func ParseGoal(s string) (Goal, error) {
	switch Goal(strings.ToLower(strings.TrimSpace(s))) {
	case GoalWeightLoss:
		return GoalWeightLoss, nil
	case GoalMuscleGain:
		return GoalMuscleGain, nil
	case GoalMaintenance:
		return GoalMaintenance, nil
	}
	return "", Wrap(ErrInvalidGoal, fmt.Errorf("unknown goal %q", s))
}

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Difficulty 難易度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParsedIngredient 解析後的食材
type ParsedIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// NutritionProfile 營養資訊
type NutritionProfile struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carb     float64 `json:"carb"`
	Fat      float64 `json:"fat"`
}

// Add 累加營養
func (n NutritionProfile) Add(o NutritionProfile) NutritionProfile {
	return NutritionProfile{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carb:     n.Carb + o.Carb,
		Fat:      n.Fat + o.Fat,
	}
}

// ProductNutrition 商品營養資訊（含鈉、糖）
type ProductNutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carb     float64 `json:"carb"`
	Fat      float64 `json:"fat"`
	Sodium   float64 `json:"sodium"`
	Sugar    float64 `json:"sugar"`
}

// Product 商品
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Price             int              `json:"price"`
	ImageURL          string           `json:"image_url"`
	PurchaseURL       string           `json:"purchase_url"`
	Category          string           `json:"category"`
	Nutrition         ProductNutrition `json:"nutrition"`
	Description       string           `json:"description"`
	Brand             string           `json:"brand"`
	Weight            string           `json:"weight"`
	Rating            float64          `json:"rating"`
	ReviewCount       int              `json:"review_count"`
	IsExpressDelivery bool             `json:"is_express_delivery"`
	Goal              Goal             `json:"goal,omitempty"`
}

// RecipeIngredient 食譜與商品的連結
type RecipeIngredient struct {
	Name        string  `json:"name"`
	Product     Product `json:"product"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	IsOptional  bool    `json:"is_optional"`
	Approximate bool    `json:"approximate,omitempty"`
}

// UserRatings 品質分數
type UserRatings struct {
	Overall     float64 `json:"overall"`
	Taste       float64 `json:"taste"`
	Difficulty  float64 `json:"difficulty"`
	Nutrition   float64 `json:"nutrition"`
	ReviewCount int     `json:"review_count"`
}

// NutritionHighlights 營養亮點
type NutritionHighlights struct {
	MainBenefits   []string `json:"main_benefits"`
	CalorieContext string   `json:"calorie_context"`
	DietaryInfo    []string `json:"dietary_info"`
}

// SourceInfo 來源資訊
type SourceInfo struct {
	Chef        string `json:"chef"`
	Source      string `json:"source"`
	Verified    bool   `json:"verified"`
	LastUpdated string `json:"last_updated"`
}

// Recipe 食譜
type Recipe struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Description         string               `json:"description"`
	Image               string               `json:"image"`
	CookingTime         int                  `json:"cooking_time"`
	Difficulty          Difficulty           `json:"difficulty"`
	Instructions        []string             `json:"instructions"`
	Tags                []string             `json:"tags"`
	MealType            MealType             `json:"meal_type"`
	GoalFit             []Goal               `json:"goal_fit"`
	Nutrition           NutritionProfile     `json:"nutrition"`
	Ingredients         []RecipeIngredient   `json:"ingredients,omitempty"`
	NutritionHighlights *NutritionHighlights `json:"nutrition_highlights,omitempty"`
	UserRatings         *UserRatings         `json:"user_ratings,omitempty"`
	SourceInfo          *SourceInfo          `json:"source_info,omitempty"`
	Category            string               `json:"category,omitempty"`
	Method              string               `json:"method,omitempty"`
	Views               int                  `json:"views"`
	Scraps              int                  `json:"scraps"`
}

// Overall 回傳綜合評分，無評分時為 0
func (r Recipe) Overall() float64 {
	if r.UserRatings == nil {
		return 0
	}
	return r.UserRatings.Overall
}

// Fits 檢查食譜是否適合指定目標
func (r Recipe) Fits(goal Goal) bool {
	for _, g := range r.GoalFit {
		if g == goal {
			return true
		}
	}
	return false
}

// CostBreakdownItem 單一食譜費用
type CostBreakdownItem struct {
	RecipeID       string  `json:"recipe_id"`
	RecipeName     string  `json:"recipe_name"`
	MonthlyCost    int     `json:"monthly_cost"`
	CostPercentage float64 `json:"cost_percentage"`
}

// BudgetAnalysis 預算分析
type BudgetAnalysis struct {
	TotalEstimatedCost    int                 `json:"total_estimated_cost"`
	BudgetUsagePercentage float64             `json:"budget_usage_percentage"`
	CostBreakdown         []CostBreakdownItem `json:"cost_breakdown"`
}
