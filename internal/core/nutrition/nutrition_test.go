package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/pkg/common"
)

func TestCalculateSumsKnownIngredients(t *testing.T) {
	e := NewEstimator(nil, nil)
	p := e.Calculate([]common.ParsedIngredient{
		{Name: "계란", Quantity: 2, Unit: "개"},
		{Name: "밥", Quantity: 210, Unit: "g"},
		{Name: "알수없는재료", Quantity: 3, Unit: "개"},
	})

	assert.Equal(t, 428.0, p.Calories)
	assert.InDelta(t, 17.9, p.Protein, 0.051)
	assert.InDelta(t, 62.0, p.Carb, 0.051)
	assert.InDelta(t, 11.7, p.Fat, 0.051)
	assert.Equal(t, 2, p.Matched)
	assert.Equal(t, 1, p.Unknown)
	assert.Equal(t, 0, p.ApproximateItems)
}

func TestCalculateEmpty(t *testing.T) {
	p := NewEstimator(nil, nil).Calculate(nil)
	assert.Equal(t, common.NutritionProfile{}, p.NutritionProfile)
}

func TestCalculateFlagsApproximateUnits(t *testing.T) {
	p := NewEstimator(nil, nil).Calculate([]common.ParsedIngredient{
		{Name: "배추", Quantity: 1, Unit: "개"},
	})
	assert.Equal(t, 1, p.ApproximateItems)
	assert.Equal(t, 6.0, p.Calories)
}

func TestUnitConversion(t *testing.T) {
	u := DefaultUnits()
	tests := []struct {
		qty         float64
		unit        string
		name        string
		grams       float64
		approximate bool
	}{
		{2, "g", "밥", 2, false},
		{1.5, "kg", "소고기", 1500, false},
		{1, "공기", "밥", 150, false},
		{2, "T", "간장", 30, false},
		{1, "작은술", "설탕", 5, false},
		{1, "컵", "물", 200, false},
		{3, "개", "마늘", 15, false},
		{1, "개", "토마토", 50, true},
		{10, "장", "깻잎", 10, false},
		{1, "통", "알배기배추", 1500, false},
		{1, "봉", "팽이버섯", 150, false},
		{1, "단", "얼갈이", 300, false},
		{2, "주먹", "시금치", 100, true},
	}

	for _, tt := range tests {
		c := u.Convert(tt.qty, tt.unit, tt.name)
		assert.InDelta(t, tt.grams, c.Grams, 1e-9, "%v%s %s", tt.qty, tt.unit, tt.name)
		assert.Equal(t, tt.approximate, c.Approximate, "%v%s %s", tt.qty, tt.unit, tt.name)
	}
}

func TestUnitOverride(t *testing.T) {
	u := DefaultUnits()
	u.SetOverride("개", "토마토", 120)
	assert.Equal(t, Conversion{Grams: 240}, u.Convert(2, "개", "토마토"))
}

func TestEstimateFast(t *testing.T) {
	base := EstimateFast("된장찌개", nil)
	assert.Equal(t, FastEstimate{Calories: 400, Protein: 20, Carb: 50, Fat: 15, MonthlyCost: 45000}, base)

	salad := EstimateFast("닭가슴살 샐러드", nil)
	assert.Equal(t, 300.0, salad.Calories)
	assert.Equal(t, 35.0, salad.Protein)
	assert.Equal(t, 30.0, salad.Carb)
	assert.Equal(t, 50000, salad.MonthlyCost)

	beef := EstimateFast("소고기 볶음밥", nil)
	assert.Equal(t, 600.0, beef.Calories)
	assert.Equal(t, 40.0, beef.Protein)
	assert.Equal(t, 80.0, beef.Carb)
	assert.Equal(t, 25.0, beef.Fat)
	assert.Equal(t, 70000, beef.MonthlyCost)

	tagged := EstimateFast("두부조림", []string{"부침", "고단백"})
	assert.Equal(t, 35.0, tagged.Protein)
}

func TestEstimateFastNeverNegative(t *testing.T) {
	est := EstimateFast("야채 샐러드", []string{"저칼로리"})
	assert.GreaterOrEqual(t, est.Calories, 0.0)
	assert.GreaterOrEqual(t, est.Carb, 0.0)
	assert.GreaterOrEqual(t, est.MonthlyCost, 0)
}

func TestCalculatorMale(t *testing.T) {
	c := Calculator{}
	res, err := c.Calculate(UserProfile{
		Gender:        GenderMale,
		Age:           30,
		Height:        175,
		Weight:        70,
		ActivityLevel: ActivityModeratelyActive,
		Goal:          common.GoalWeightLoss,
	})
	require.NoError(t, err)

	assert.InDelta(t, 1648.75, res.BMR, 1e-9)
	assert.Equal(t, 2556, res.TDEE)
	assert.Equal(t, 2045, res.TargetCalories)
	assert.Equal(t, MacroRatios{Carb: 35, Protein: 40, Fat: 25}, res.Macros)
	assert.Equal(t, 22.9, res.BMI.BMI)
	assert.Equal(t, "normal", res.BMI.Category)
	assert.Equal(t, 67, res.SuggestedWeight)
	assert.NotEmpty(t, res.GoalDescription)
}

func TestCalculatorFemaleAndGoals(t *testing.T) {
	c := Calculator{}
	p := UserProfile{Gender: GenderFemale, Age: 25, Height: 160, Weight: 55, ActivityLevel: ActivitySedentary, Goal: common.GoalMaintenance}

	assert.InDelta(t, 1264.0, c.BMR(p), 1e-9)
	assert.Equal(t, 1517, c.TDEE(c.BMR(p), p.ActivityLevel))
	assert.Equal(t, 2939, c.TargetCalories(2556, common.GoalMuscleGain))
	assert.Equal(t, 2556, c.TargetCalories(2556, common.GoalMaintenance))
	assert.Equal(t, 0, c.SuggestTargetWeight(175, common.GoalMaintenance))
	assert.Equal(t, 70, c.SuggestTargetWeight(175, common.GoalMuscleGain))
}

func TestBMICategories(t *testing.T) {
	c := Calculator{}
	assert.Equal(t, "underweight", c.BMI(50, 175).Category)
	assert.Equal(t, "overweight", c.BMI(74, 175).Category)
	assert.Equal(t, "obese", c.BMI(90, 175).Category)
}

func TestProfileValidation(t *testing.T) {
	_, err := Calculator{}.Calculate(UserProfile{Gender: "x", Age: 30, Height: 170, Weight: 60, ActivityLevel: ActivitySedentary, Goal: common.GoalMaintenance})
	assert.ErrorIs(t, err, common.ErrInvalidProfile)

	_, err = Calculator{}.Calculate(UserProfile{Gender: GenderMale, Age: 30, Height: 170, Weight: 60, ActivityLevel: ActivitySedentary, Goal: "bulk"})
	assert.ErrorIs(t, err, common.ErrInvalidGoal)
}
