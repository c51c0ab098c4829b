package nutrition

import (
	"strings"

	"meal-planner/internal/pkg/common"
)

// FastEstimate 快速模式的估算結果
type FastEstimate struct {
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carb        float64 `json:"carb"`
	Fat         float64 `json:"fat"`
	MonthlyCost int     `json:"monthly_cost"`
}

// 快速模式的基準值
const (
	BaseCalories    = 400
	BaseProtein     = 20
	BaseCarb        = 50
	BaseFat         = 15
	BaseMonthlyCost = 45000
)

// EstimateFast 只用名稱與標籤估算，不解析食材
func EstimateFast(name string, tags []string) FastEstimate {
	n := strings.ToLower(name)
	t := strings.ToLower(strings.Join(tags, " "))

	est := FastEstimate{
		Calories:    BaseCalories,
		Protein:     BaseProtein,
		Carb:        BaseCarb,
		Fat:         BaseFat,
		MonthlyCost: BaseMonthlyCost,
	}

	if common.ContainsAny(n, []string{"닭", "계란"}) || strings.Contains(t, "고단백") {
		est.Protein += 15
		est.Calories += 50
		est.MonthlyCost += 15000
	}

	if common.ContainsAny(n, []string{"샐러드", "야채"}) || strings.Contains(t, "저칼로리") {
		est.Calories -= 150
		est.Carb -= 20
		est.MonthlyCost -= 10000
	}

	if common.ContainsAny(n, []string{"밥", "면", "파스타"}) {
		est.Carb += 30
		est.Calories += 100
	}

	if common.ContainsAny(n, []string{"등심", "소고기"}) {
		est.Protein += 20
		est.Fat += 10
		est.Calories += 100
		est.MonthlyCost += 25000
	}

	est.Calories = common.NonNegative(est.Calories)
	est.Protein = common.NonNegative(est.Protein)
	est.Carb = common.NonNegative(est.Carb)
	est.Fat = common.NonNegative(est.Fat)
	if est.MonthlyCost < 0 {
		est.MonthlyCost = 0
	}
	return est
}
