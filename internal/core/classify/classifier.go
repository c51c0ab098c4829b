package classify

import (
	"strings"

	"github.com/samber/lo"

	"meal-planner/internal/pkg/common"
)

// Input 分類所需的食譜資訊
type Input struct {
	Ingredients []common.ParsedIngredient
	Method      string
	Situation   string
	Description string
	Nutrition   common.NutritionProfile
}

// Match 成立的目標與原因
type Match struct {
	Goal    common.Goal `json:"goal"`
	Reasons []string    `json:"reasons"`
}

// Classifier 目標分類器
type Classifier struct {
	rules RuleTable
}

// NewClassifier 創建分類器
func NewClassifier(rules RuleTable) *Classifier {
	if len(rules.Rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify 回傳固定順序的目標標籤，至少包含一個
func (c *Classifier) Classify(in Input) []common.Goal {
	return lo.Map(c.Explain(in), func(m Match, _ int) common.Goal {
		return m.Goal
	})
}

// Explain 回傳每個成立目標的原因
func (c *Classifier) Explain(in Input) []Match {
	desc := strings.ToLower(in.Description)
	names := lo.Map(in.Ingredients, func(ing common.ParsedIngredient, _ int) string {
		return strings.ToLower(ing.Name)
	})

	// 備援規則在其他規則之後評估，與表中順序無關
	regular, fallbacks := lo.FilterReject(c.rules.Rules, func(rule GoalRule, _ int) bool {
		return !rule.Fallback
	})

	var matches []Match
	for _, rule := range append(regular, fallbacks...) {
		reasons := evaluate(rule, in, desc, names)
		if rule.Fallback && len(matches) == 0 {
			reasons = append(reasons, "fallback")
		}
		if len(reasons) > 0 {
			matches = append(matches, Match{Goal: rule.Goal, Reasons: reasons})
		}
	}

	if len(matches) == 0 {
		matches = append(matches, Match{Goal: common.GoalMaintenance, Reasons: []string{"fallback"}})
	}
	return sortByGoalOrder(matches)
}

func evaluate(rule GoalRule, in Input, desc string, names []string) []string {
	var reasons []string

	if rule.MaxCalories != nil && in.Nutrition.Calories < *rule.MaxCalories {
		reasons = append(reasons, "calories")
	}
	if rule.MinProtein != nil && in.Nutrition.Protein > *rule.MinProtein {
		reasons = append(reasons, "protein")
	}
	if len(rule.IngredientKeywords) > 0 && lo.SomeBy(names, func(name string) bool {
		return common.ContainsAny(name, rule.IngredientKeywords)
	}) {
		reasons = append(reasons, "ingredient")
	}
	if lo.Contains(rule.Methods, in.Method) {
		reasons = append(reasons, "method")
	}
	if lo.Contains(rule.SoupMethods, in.Method) || common.ContainsAny(in.Description, rule.SoupKeywords) {
		reasons = append(reasons, "soup")
	}
	if common.ContainsAny(desc, rule.DescriptionKeywords) {
		reasons = append(reasons, "description")
	}
	if lo.Contains(rule.Situations, in.Situation) {
		reasons = append(reasons, "situation")
	}
	return reasons
}

func sortByGoalOrder(matches []Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, goal := range common.AllGoals {
		for _, m := range matches {
			if m.Goal == goal {
				out = append(out, m)
			}
		}
	}
	return out
}
