package nutrition

import (
	"fmt"
	"math"

	"meal-planner/internal/pkg/common"
)

// Gender 性別
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ActivityLevel 活動量
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtremelyActive  ActivityLevel = "extremely_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtremelyActive:  1.9,
}

var activityDescriptions = map[ActivityLevel]string{
	ActivitySedentary:        "주로 앉아서 일하고 운동을 거의 하지 않음",
	ActivityLightlyActive:    "가벼운 운동이나 스포츠 (주 1-3회)",
	ActivityModeratelyActive: "중간 강도 운동이나 스포츠 (주 3-5회)",
	ActivityVeryActive:       "고강도 운동이나 스포츠 (주 6-7회)",
	ActivityExtremelyActive:  "매우 고강도 운동, 육체적 직업 또는 하루 2회 운동",
}

var goalDescriptions = map[common.Goal]string{
	common.GoalWeightLoss:  "건강한 체중 감량을 위해 칼로리를 줄이고 단백질을 늘렸어요.",
	common.GoalMaintenance: "현재 체중을 유지하면서 균형잡힌 영양을 제공해요.",
	common.GoalMuscleGain:  "근육 성장을 위해 충분한 칼로리와 단백질을 확보했어요.",
}

// UserProfile 使用者身體資料
type UserProfile struct {
	Gender        Gender        `json:"gender"`
	Age           int           `json:"age"`
	Height        float64       `json:"height"`
	Weight        float64       `json:"weight"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          common.Goal   `json:"goal"`
}

// Validate 檢查身體資料
func (p UserProfile) Validate() error {
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		return common.Wrap(common.ErrInvalidProfile, fmt.Errorf("unknown gender %q", p.Gender))
	}
	if p.Age <= 0 || p.Height <= 0 || p.Weight <= 0 {
		return common.Wrap(common.ErrInvalidProfile, fmt.Errorf("age, height and weight must be positive"))
	}
	if _, ok := activityMultipliers[p.ActivityLevel]; !ok {
		return common.Wrap(common.ErrInvalidProfile, fmt.Errorf("unknown activity level %q", p.ActivityLevel))
	}
	if _, err := common.ParseGoal(string(p.Goal)); err != nil {
		return err
	}
	return nil
}

// MacroRatios 三大營養素比例（%）
type MacroRatios struct {
	Carb    float64 `json:"carb"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

var macroPresets = map[common.Goal]MacroRatios{
	common.GoalWeightLoss:  {Carb: 35, Protein: 40, Fat: 25},
	common.GoalMaintenance: {Carb: 45, Protein: 25, Fat: 30},
	common.GoalMuscleGain:  {Carb: 50, Protein: 30, Fat: 20},
}

// BMIResult BMI 與分類
type BMIResult struct {
	BMI         float64 `json:"bmi"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// CalorieCalculation 熱量計算結果
type CalorieCalculation struct {
	BMR                 float64     `json:"bmr"`
	TDEE                int         `json:"tdee"`
	TargetCalories      int         `json:"target_calories"`
	Macros              MacroRatios `json:"macros"`
	BMI                 BMIResult   `json:"bmi"`
	SuggestedWeight     int         `json:"suggested_weight"`
	GoalDescription     string      `json:"goal_description"`
	ActivityDescription string      `json:"activity_description"`
}

// Calculator Mifflin-St Jeor 熱量計算
type Calculator struct{}

// BMR 基礎代謝率
func (Calculator) BMR(p UserProfile) float64 {
	base := 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	if p.Gender == GenderMale {
		return base + 5
	}
	return base - 161
}

// TDEE 每日總消耗
func (Calculator) TDEE(bmr float64, level ActivityLevel) int {
	m, ok := activityMultipliers[level]
	if !ok {
		m = activityMultipliers[ActivitySedentary]
	}
	return int(math.Round(bmr * m))
}

// TargetCalories 依目標調整熱量
func (Calculator) TargetCalories(tdee int, goal common.Goal) int {
	switch goal {
	case common.GoalWeightLoss:
		return int(math.Round(float64(tdee) * 0.8))
	case common.GoalMuscleGain:
		return int(math.Round(float64(tdee) * 1.15))
	default:
		return tdee
	}
}

// Macros 目標對應的營養素比例
func (Calculator) Macros(goal common.Goal) MacroRatios {
	if m, ok := macroPresets[goal]; ok {
		return m
	}
	return macroPresets[common.GoalMaintenance]
}

// BMI 計算並分類
func (Calculator) BMI(weight, height float64) BMIResult {
	meters := height / 100
	bmi := common.Round1(weight / (meters * meters))

	switch {
	case bmi < 18.5:
		return BMIResult{BMI: bmi, Category: "underweight", Description: "저체중"}
	case bmi < 23:
		return BMIResult{BMI: bmi, Category: "normal", Description: "정상체중"}
	case bmi < 25:
		return BMIResult{BMI: bmi, Category: "overweight", Description: "과체중"}
	default:
		return BMIResult{BMI: bmi, Category: "obese", Description: "비만"}
	}
}

// SuggestTargetWeight 以 BMI 22 推算建議體重，維持目標回傳 0
func (Calculator) SuggestTargetWeight(height float64, goal common.Goal) int {
	meters := height / 100
	ideal := 22 * meters * meters

	switch goal {
	case common.GoalMaintenance:
		return 0
	case common.GoalMuscleGain:
		return int(math.Round(ideal + 3))
	default:
		return int(math.Round(ideal))
	}
}

// Calculate 完整計算
func (c Calculator) Calculate(p UserProfile) (CalorieCalculation, error) {
	if err := p.Validate(); err != nil {
		return CalorieCalculation{}, err
	}

	bmr := c.BMR(p)
	tdee := c.TDEE(bmr, p.ActivityLevel)
	return CalorieCalculation{
		BMR:                 bmr,
		TDEE:                tdee,
		TargetCalories:      c.TargetCalories(tdee, p.Goal),
		Macros:              c.Macros(p.Goal),
		BMI:                 c.BMI(p.Weight, p.Height),
		SuggestedWeight:     c.SuggestTargetWeight(p.Height, p.Goal),
		GoalDescription:     goalDescriptions[p.Goal],
		ActivityDescription: activityDescriptions[p.ActivityLevel],
	}, nil
}

// GoalDescription 目標說明
func GoalDescription(goal common.Goal) string {
	return goalDescriptions[goal]
}
