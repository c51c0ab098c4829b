package classify

import (
	"fmt"
	"io"

	"meal-planner/internal/pkg/common"
)

// GoalRule 單一目標的判定規則，任一條件成立即標記
type GoalRule struct {
	Goal common.Goal `json:"goal"`

	// 熱量 < MaxCalories
	MaxCalories *float64 `json:"max_calories,omitempty"`
	// 蛋白質 > MinProtein
	MinProtein *float64 `json:"min_protein,omitempty"`

	IngredientKeywords  []string `json:"ingredient_keywords,omitempty"`
	Methods             []string `json:"methods,omitempty"`
	SoupMethods         []string `json:"soup_methods,omitempty"`
	SoupKeywords        []string `json:"soup_keywords,omitempty"`
	DescriptionKeywords []string `json:"description_keywords,omitempty"`
	Situations          []string `json:"situations,omitempty"`

	// 其他規則都沒有成立時觸發
	Fallback bool `json:"fallback,omitempty"`
}

// RuleTable 規則表，依順序評估
type RuleTable struct {
	Rules []GoalRule `json:"rules"`
}

func ptr(v float64) *float64 {
	return &v
}

// DefaultRules 預設規則表
func DefaultRules() RuleTable {
	return RuleTable{Rules: []GoalRule{
		{
			Goal:                common.GoalWeightLoss,
			MaxCalories:         ptr(400),
			IngredientKeywords:  []string{"배추", "숙주", "깻잎", "브로콜리", "양배추", "샐러드", "야채", "채소", "무", "당근", "시금치", "버섯", "콩나물"},
			Methods:             []string{"찌기", "삶기", "무침"},
			SoupMethods:         []string{"국/탕"},
			SoupKeywords:        []string{"국", "탕"},
			DescriptionKeywords: []string{"다이어트", "저칼로리", "살빼기", "헬시", "건강"},
		},
		{
			Goal:                common.GoalMuscleGain,
			MinProtein:          ptr(20),
			IngredientKeywords:  []string{"계란", "달걀", "닭", "소고기", "돼지", "연어", "참치", "두부", "새우", "조개", "생선", "육"},
			Methods:             []string{"굽기", "볶기", "튀기기"},
			DescriptionKeywords: []string{"단백질", "근육", "고단백", "프로틴"},
		},
		{
			Goal:        common.GoalMaintenance,
			SoupMethods: []string{"국/탕"},
			Situations:  []string{"일상"},
			Fallback:    true,
		},
	}}
}

// LoadRules 從 JSON 載入規則表
func LoadRules(r io.Reader) (RuleTable, error) {
	table, err := common.DecodeJSONStrict[RuleTable](r)
	if err != nil {
		return RuleTable{}, fmt.Errorf("failed to decode rule table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return RuleTable{}, err
	}
	return table, nil
}

// Validate 檢查規則表
func (t RuleTable) Validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("rule table is empty")
	}
	seen := make(map[common.Goal]bool, len(t.Rules))
	for _, rule := range t.Rules {
		if _, err := common.ParseGoal(string(rule.Goal)); err != nil {
			return err
		}
		if seen[rule.Goal] {
			return fmt.Errorf("duplicate rule for goal %s", rule.Goal)
		}
		seen[rule.Goal] = true
	}
	return nil
}
