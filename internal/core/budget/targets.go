package budget

import (
	"math"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

var proteinPerKg = map[common.Goal]float64{
	common.GoalWeightLoss:  1.6,
	common.GoalMaintenance: 1.2,
	common.GoalMuscleGain:  1.8,
}

var fatPercentage = map[common.Goal]float64{
	common.GoalWeightLoss:  20,
	common.GoalMaintenance: 30,
	common.GoalMuscleGain:  25,
}

// MacroGrams 三大營養素克數
type MacroGrams struct {
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Carb    float64 `json:"carb"`
}

// NutritionTargets 個人化營養目標
type NutritionTargets struct {
	TargetCalories    int                   `json:"target_calories"`
	DailyProteinNeeds float64               `json:"daily_protein_needs"`
	MacroPercentages  nutrition.MacroRatios `json:"macro_percentages"`
	MacroGrams        MacroGrams            `json:"macro_grams"`
}

// TargetsFor 依體重與目標計算蛋白質需求與三大營養素比例
// 蛋白質比例限制在 15–35%，碳水至少 30%
func TargetsFor(p nutrition.UserProfile, targetCalories int) NutritionTargets {
	protein := p.Weight * proteinPerKg[p.Goal]
	fat, ok := fatPercentage[p.Goal]
	if !ok {
		fat = fatPercentage[common.GoalMaintenance]
	}

	proteinPct := 0.0
	if targetCalories > 0 {
		proteinPct = protein * 4 / float64(targetCalories) * 100
	}
	carbPct := 100 - proteinPct - fat
	target := float64(targetCalories)

	return NutritionTargets{
		TargetCalories:    targetCalories,
		DailyProteinNeeds: common.Round1(protein),
		MacroPercentages: nutrition.MacroRatios{
			Protein: common.Round1(math.Max(15, math.Min(35, proteinPct))),
			Fat:     fat,
			Carb:    common.Round1(math.Max(30, carbPct)),
		},
		MacroGrams: MacroGrams{
			Protein: common.Round1(protein),
			Fat:     common.Round1(target * fat / 100 / 9),
			Carb:    common.Round1(common.NonNegative(target * carbPct / 100 / 4)),
		},
	}
}
