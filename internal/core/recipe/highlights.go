package recipe

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"meal-planner/internal/core/corpus"
	"meal-planner/internal/pkg/common"
)

var ingredientBenefits = map[string]string{
	"계란":   "완전단백질과 비타민 공급",
	"배추":   "식이섬유와 비타민C 풍부",
	"아보카도": "건강한 불포화지방산 함유",
}

var animalProducts = []string{"계란", "우삼겹", "훈제연어"}

// Tags 由調理法、營養、情境與時間產生標籤
func Tags(rec corpus.Record, n common.NutritionProfile) []string {
	tags := []string{}

	if rec.Method != "" {
		tags = append(tags, rec.Method)
	}
	if n.Protein > 15 {
		tags = append(tags, "고단백")
	}
	if n.Calories < 200 {
		tags = append(tags, "저칼로리")
	}
	if rec.Situation == "초스피드" {
		tags = append(tags, "간편")
	}
	if rec.DifficultyText == "아무나" {
		tags = append(tags, "초보자")
	}
	if strings.Contains(rec.TimeText, "10분") {
		tags = append(tags, "10분완성")
	}
	if strings.Contains(rec.TimeText, "15분") {
		tags = append(tags, "15분완성")
	}

	return tags
}

// Highlights 營養亮點
func Highlights(ings []common.ParsedIngredient, n common.NutritionProfile) *common.NutritionHighlights {
	benefits := []string{}
	if n.Protein > 15 {
		benefits = append(benefits, fmt.Sprintf("고단백질(%vg)로 근육 건강에 도움", n.Protein))
	}
	for _, ing := range ings {
		if b, ok := ingredientBenefits[ing.Name]; ok {
			benefits = append(benefits, b)
		}
	}

	info := []string{}
	if n.Protein > 15 {
		info = append(info, "고단백")
	}
	if n.Calories < 200 {
		info = append(info, "저칼로리")
	}
	hasAnimal := lo.SomeBy(ings, func(ing common.ParsedIngredient) bool {
		return lo.Contains(animalProducts, ing.Name)
	})
	if !hasAnimal {
		info = append(info, "비건")
	}

	return &common.NutritionHighlights{
		MainBenefits:   benefits,
		CalorieContext: fmt.Sprintf("%dkcal로 균형잡힌 한 끼", int(n.Calories)),
		DietaryInfo:    info,
	}
}
