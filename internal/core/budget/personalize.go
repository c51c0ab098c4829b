package budget

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"meal-planner/internal/pkg/common"
)

const personalizedPicks = 6

// CookingTimePreference 調理時間偏好
type CookingTimePreference string

const (
	CookingQuick  CookingTimePreference = "quick"
	CookingNormal CookingTimePreference = "normal"
	CookingSlow   CookingTimePreference = "slow"
)

// Preferences 使用者偏好與調理紀錄
type Preferences struct {
	CookingTime   CookingTimePreference `json:"cooking_time,omitempty"`
	Difficulty    common.Difficulty     `json:"difficulty,omitempty"`
	CookedRecipes []string              `json:"cooked_recipes,omitempty"`
}

// MealTypeAt 依時段決定餐別：11 點前早餐，17 點前午餐，其餘晚餐
func MealTypeAt(t time.Time) common.MealType {
	switch h := t.Hour(); {
	case h < 11:
		return common.MealBreakfast
	case h < 17:
		return common.MealLunch
	default:
		return common.MealDinner
	}
}

// acceptable 餐別、調理時間與難易度篩選
func (p Preferences) acceptable(r common.Recipe, meal common.MealType) bool {
	if r.MealType != meal {
		return false
	}
	if p.CookingTime == CookingQuick && r.CookingTime > 15 {
		return false
	}
	if p.CookingTime == CookingSlow && r.CookingTime < 20 {
		return false
	}
	return p.Difficulty == "" || r.Difficulty == p.Difficulty
}

// PersonalizationScore 食譜個人化分數，滿分 100
// 目標 40、調理時間 20、難易度 15、蛋白質熱量比 15、未煮過 10
func PersonalizationScore(r common.Recipe, goal common.Goal, targets NutritionTargets, prefs Preferences) float64 {
	score := 0.0

	if r.Fits(goal) {
		score += 40
	}

	switch {
	case prefs.CookingTime == CookingQuick && r.CookingTime <= 15,
		prefs.CookingTime == CookingNormal && r.CookingTime <= 30,
		prefs.CookingTime == CookingSlow && r.CookingTime > 30:
		score += 20
	default:
		score += 10
	}

	if prefs.Difficulty != "" && prefs.Difficulty == r.Difficulty {
		score += 15
	} else {
		score += 5
	}

	if r.Nutrition.Calories > 0 {
		ratio := r.Nutrition.Protein * 4 / r.Nutrition.Calories * 100
		switch diff := math.Abs(ratio - targets.MacroPercentages.Protein); {
		case diff < 10:
			score += 15
		case diff < 20:
			score += 10
		}
	}

	if prefs.CookedRecipes != nil && !lo.Contains(prefs.CookedRecipes, r.ID) {
		score += 10
	} else {
		score += 5
	}

	return min(score, 100)
}

// PersonalizeRecipes 篩選符合時段與偏好的食譜，依個人化分數取前六道
func PersonalizeRecipes(recipes []common.Recipe, goal common.Goal, targets NutritionTargets, prefs Preferences, now time.Time) []common.Recipe {
	meal := MealTypeAt(now)
	kept := lo.Filter(recipes, func(r common.Recipe, _ int) bool {
		return prefs.acceptable(r, meal)
	})

	scores := lo.SliceToMap(kept, func(r common.Recipe) (string, float64) {
		return r.ID, PersonalizationScore(r, goal, targets, prefs)
	})
	sort.SliceStable(kept, func(i, j int) bool {
		return scores[kept[i].ID] > scores[kept[j].ID]
	})
	return kept[:min(personalizedPicks, len(kept))]
}
