package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/corpus"
	"meal-planner/internal/core/product"
	"meal-planner/internal/pkg/common"
)

func newTestTransformer(t *testing.T, opts ...Option) *Transformer {
	t.Helper()
	catalog, err := product.LoadEmbedded()
	require.NoError(t, err)
	return NewTransformer(product.NewMatcher(catalog), opts...)
}

func TestQualityScore(t *testing.T) {
	r := QualityScore(100, 2)
	assert.InDelta(t, 3.25, r.Overall, 0.051)
	assert.InDelta(t, 3.45, r.Taste, 1e-9)
	assert.InDelta(t, 3.35, r.Difficulty, 1e-9)
	assert.InDelta(t, 3.15, r.Nutrition, 1e-9)
	assert.Equal(t, 100, r.ReviewCount)

	assert.Equal(t, 3.5, QualityScore(400, 0).Overall)
	assert.Equal(t, 5.0, QualityScore(10000, 5000).Overall)

	zero := QualityScore(0, 0)
	assert.Equal(t, 0.0, zero.Overall)
	assert.Equal(t, 0.0, zero.Nutrition)
}

func TestInferMealType(t *testing.T) {
	tests := []struct {
		title, kind, situation string
		want                   common.MealType
	}{
		{"아침 토스트", "", "", common.MealBreakfast},
		{"간단 토스트", "", "아침대용", common.MealBreakfast},
		{"점심 도시락", "", "", common.MealLunch},
		{"저녁 한상", "", "", common.MealDinner},
		{"오징어볶음", "", "술안주", common.MealDinner},
		{"딸기잼", "양념/소스/잼", "", common.MealSnack},
		{"쿠키", "", "간식", common.MealSnack},
		{"미역국", "국/탕", "", common.MealDinner},
		{"멸치볶음", "밑반찬", "", common.MealLunch},
		{"무언가", "", "", common.MealLunch},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferMealType(tt.title, tt.kind, tt.situation), tt.title)
	}
}

func TestInferDifficulty(t *testing.T) {
	assert.Equal(t, common.DifficultyEasy, InferDifficulty("초급"))
	assert.Equal(t, common.DifficultyEasy, InferDifficulty("아무나"))
	assert.Equal(t, common.DifficultyMedium, InferDifficulty("중급"))
	assert.Equal(t, common.DifficultyMedium, InferDifficulty(""))
	assert.Equal(t, common.DifficultyHard, InferDifficulty("고급"))
	assert.Equal(t, common.DifficultyHard, InferDifficulty("신의경지"))
}

func TestInferCookingTime(t *testing.T) {
	assert.Equal(t, 30, InferCookingTime(""))
	assert.Equal(t, 10, InferCookingTime("10분이내"))
	assert.Equal(t, 120, InferCookingTime("2시간이내"))
	assert.Equal(t, 60, InferCookingTime("시간 이상"))
	assert.Equal(t, 15, InferCookingTime("잠깐"))
}

func TestInstructionTemplates(t *testing.T) {
	tpl := DefaultInstructions()
	assert.Len(t, tpl.For("볶음"), 4)
	assert.Equal(t, "냄비에 물을 넣고 끓여주세요", tpl.For("끓이기")[0])
	assert.Equal(t, GenericInstructions, tpl.For("굽기"))

	// 回傳副本，修改不影響範本
	steps := tpl.For("찜")
	steps[0] = "changed"
	assert.NotEqual(t, "changed", tpl.For("찜")[0])
}

func TestTransformFullRecord(t *testing.T) {
	tr := newTestTransformer(t)
	rec := corpus.Record{
		SerialID:       "1002",
		Title:          "아침 계란밥",
		DishName:       "계란밥",
		Views:          500,
		Scraps:         20,
		Method:         "볶음",
		Situation:      "초스피드",
		Kind:           "밥/죽/떡",
		Ingredients:    "[재료] 계란2개| 밥210g",
		DifficultyText: "아무나",
		TimeText:       "10분이내",
		RegisteredAt:   "20231201093000",
	}

	r := tr.Transform(rec)

	assert.Equal(t, "mankae-1002", r.ID)
	assert.Equal(t, "계란밥", r.Name)
	assert.Equal(t, DefaultDescription, r.Description)
	assert.Equal(t, DefaultImage, r.Image)
	assert.Equal(t, 10, r.CookingTime)
	assert.Equal(t, common.DifficultyEasy, r.Difficulty)
	assert.Equal(t, common.MealBreakfast, r.MealType)
	assert.Len(t, r.Instructions, 4)
	assert.Equal(t, 428.0, r.Nutrition.Calories)
	assert.Equal(t, []string{"볶음", "고단백", "간편", "초보자", "10분완성"}, r.Tags)
	assert.Equal(t, []common.Goal{common.GoalMuscleGain}, r.GoalFit)

	require.NotNil(t, r.NutritionHighlights)
	assert.True(t, strings.HasPrefix(r.NutritionHighlights.MainBenefits[0], "고단백질("))
	assert.Contains(t, r.NutritionHighlights.MainBenefits, "완전단백질과 비타민 공급")
	assert.Equal(t, "428kcal로 균형잡힌 한 끼", r.NutritionHighlights.CalorieContext)
	assert.Equal(t, []string{"고단백"}, r.NutritionHighlights.DietaryInfo)

	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "prod-egg-fresh-30", r.Ingredients[0].Product.ID)
	assert.False(t, r.Ingredients[0].Approximate)
	assert.Equal(t, 210.0, r.Ingredients[1].Quantity)

	require.NotNil(t, r.SourceInfo)
	assert.Equal(t, DefaultChef, r.SourceInfo.Chef)
	assert.Equal(t, "20231201", r.SourceInfo.LastUpdated)
	assert.True(t, r.SourceInfo.Verified)
	require.NotNil(t, r.UserRatings)
	assert.Equal(t, 500, r.UserRatings.ReviewCount)
}

func TestTransformAppliesDefaults(t *testing.T) {
	r := newTestTransformer(t).Transform(corpus.Record{SerialID: "1"})

	assert.Equal(t, DefaultName, r.Name)
	assert.Equal(t, common.DifficultyMedium, r.Difficulty)
	assert.Equal(t, DefaultCookingTime, r.CookingTime)
	assert.Equal(t, common.MealLunch, r.MealType)
	assert.Equal(t, GenericInstructions, r.Instructions)
	assert.NotEmpty(t, r.GoalFit)
	assert.Equal(t, DefaultRegistered, r.SourceInfo.LastUpdated)
	assert.False(t, r.SourceInfo.Verified)
	assert.Equal(t, []string{"비건"}, r.NutritionHighlights.DietaryInfo[len(r.NutritionHighlights.DietaryInfo)-1:])
}

func TestTransformFlagsApproximateUnits(t *testing.T) {
	r := newTestTransformer(t).Transform(corpus.Record{SerialID: "2", Ingredients: "[재료] 토마토2개"})
	require.Len(t, r.Ingredients, 1)
	assert.True(t, r.Ingredients[0].Approximate)
}

func TestTransformCustomTemplates(t *testing.T) {
	tr := newTestTransformer(t, WithInstructions(InstructionTemplates{"굽기": {"굽는다"}}))
	r := tr.Transform(corpus.Record{SerialID: "3", Method: "굽기"})
	assert.Equal(t, []string{"굽는다"}, r.Instructions)
}
