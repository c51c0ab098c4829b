package budget

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"meal-planner/internal/core/nutrition"
	"meal-planner/internal/pkg/common"
)

var won = message.NewPrinter(language.Korean)

var goalLabels = map[common.Goal]string{
	common.GoalWeightLoss:  "다이어트",
	common.GoalMuscleGain:  "근성장",
	common.GoalMaintenance: "건강유지",
}

func honorific(g nutrition.Gender) string {
	if g == nutrition.GenderMale {
		return "형"
	}
	return "님"
}

// FormatWon 千分位格式，例如 140,000
func FormatWon(n int) string {
	return won.Sprintf("%d", n)
}

// BudgetMessage 依預算使用率產生說明文字
func BudgetMessage(gender nutrition.Gender, goal common.Goal, budget, total int) string {
	label, ok := goalLabels[goal]
	if !ok {
		label = goalLabels[common.GoalMaintenance]
	}
	base := fmt.Sprintf("%s의 %s 목표에 맞춰", honorific(gender), label)

	usage := 0.0
	if budget > 0 {
		usage = float64(total) / float64(budget) * 100
	}

	switch {
	case usage <= 70:
		return fmt.Sprintf("%s 예산을 알뜰하게 활용한 식단을 준비했어요! 월 %s원으로 목표 달성이 가능해요 (%s원 절약!)",
			base, FormatWon(total), FormatWon(budget-total))
	case usage <= 90:
		return fmt.Sprintf("%s 예산에 딱 맞는 효율적인 식단을 구성했어요! 월 %s원으로 목표 영양소를 충족할 수 있어요!",
			base, FormatWon(total))
	default:
		return fmt.Sprintf("%s 예산을 최대한 활용한 가성비 최고의 식단이에요! 월 %s원으로 최고의 영양 효과를 얻으세요!",
			base, FormatWon(total))
	}
}

// GoalMessage 不含預算的目標說明
func GoalMessage(p nutrition.UserProfile, t NutritionTargets) string {
	protein := int(math.Round(t.DailyProteinNeeds))
	switch p.Goal {
	case common.GoalWeightLoss:
		return fmt.Sprintf("%s의 다이어트 성공을 위해 일일 %dkcal, 단백질 %dg 목표로 맞춤 식단을 준비했어요!",
			honorific(p.Gender), t.TargetCalories, protein)
	case common.GoalMuscleGain:
		return fmt.Sprintf("%d세 %s의 근성장을 위해 일일 %dkcal, 고단백 %dg 식단으로 구성했어요!",
			p.Age, honorific(p.Gender), t.TargetCalories, protein)
	case common.GoalMaintenance:
		return fmt.Sprintf("%vkg 건강 유지를 위해 일일 %dkcal 균형 잡힌 식단을 추천드려요!", p.Weight, t.TargetCalories)
	default:
		return "맞춤형 식단을 준비했어요!"
	}
}
